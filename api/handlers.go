// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
)

// maxRequestBodySize bounds POST bodies. A message holds at most eight
// accounts and a short instruction payload
const maxRequestBodySize = 64 << 10

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// statusForError maps ledger errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, campaign.ErrCampaignAlreadyExists),
		errors.Is(err, campaign.ErrDuplicateSignature):
		return http.StatusConflict
	case errors.Is(err, campaign.ErrInvalidOwner),
		errors.Is(err, campaign.ErrUnauthorized),
		errors.Is(err, campaign.ErrInvalidSignature),
		errors.Is(err, campaign.ErrFaucetDisabled),
		errors.Is(err, campaign.ErrAccountNotWriteable):
		return http.StatusForbidden
	case errors.Is(err, campaign.ErrCampaignNotFound),
		errors.Is(err, database.ErrAccountNotFound),
		errors.Is(err, models.ErrInstructionNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	var pErr *campaign.ProgramError
	if errors.As(err, &pErr) {
		return http.StatusBadRequest
	}
	for _, target := range []error{
		campaign.ErrInvalidInstruction,
		campaign.ErrMissingAccount,
		campaign.ErrInsufficientFunds,
		campaign.ErrArithmeticOverflow,
		campaign.ErrInvalidAccountData,
	} {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeLedgerError writes err with its mapped status. Internal errors are
// logged and not echoed to the client
func (s *Server) writeLedgerError(w http.ResponseWriter, op string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("failed to "+op, "error", err)
		writeError(w, status, "failed to "+op)
		return
	}
	resp := ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    err.Error(),
	}
	var pErr *campaign.ProgramError
	if errors.As(err, &pErr) {
		resp.Code = uint32(pErr.Code)
	}
	writeJSON(w, status, resp)
}

func pathPublicKey(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(r.PathValue(name))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			fmt.Sprintf("invalid %s: %s", name, err),
		)
		return solana.PublicKey{}, false
	}
	return key, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body: "+err.Error(),
		)
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

// handleDerive handles GET /api/v0/derive/{authority}
func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	authority, ok := pathPublicKey(w, r, "authority")
	if !ok {
		return
	}
	addr, bump, err := s.ledger.DeriveCampaignAddress(authority)
	if err != nil {
		s.writeLedgerError(w, "derive campaign address", err)
		return
	}
	writeJSON(w, http.StatusOK, DeriveResponse{
		Authority: authority.String(),
		ProgramID: s.ledger.ProgramID().String(),
		Address:   addr.String(),
		Bump:      bump,
	})
}

// handleCampaign handles GET /api/v0/campaigns/{address}
func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathPublicKey(w, r, "address")
	if !ok {
		return
	}
	record, lamports, err := s.ledger.Campaign(addr)
	if err != nil {
		s.writeLedgerError(w, "load campaign", err)
		return
	}
	writeJSON(w, http.StatusOK, CampaignResponse{
		Address:         addr.String(),
		Authority:       record.Authority.String(),
		Name:            record.Name,
		Description:     record.Description,
		TargetAmount:    record.TargetAmount,
		AmountDonated:   record.AmountDonated,
		AmountWithdrawn: record.AmountWithdrawn,
		Available:       record.Available(),
		Lamports:        lamports,
		Reserve:         s.ledger.Reserve(),
	})
}

// handleCampaignInstructions handles
// GET /api/v0/campaigns/{address}/instructions
func (s *Server) handleCampaignInstructions(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := pathPublicKey(w, r, "address")
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	includeRejected := false
	if param := r.URL.Query().Get("rejected"); param != "" {
		includeRejected, err = strconv.ParseBool(param)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid rejected parameter")
			return
		}
	}
	// The journal is read newest first, so fetch everything up to the end
	// of the requested page
	entries, err := s.ledger.Instructions(
		addr,
		params.Count*params.Page,
		includeRejected,
	)
	if err != nil {
		s.writeLedgerError(w, "load instructions", err)
		return
	}
	start := min(params.Count*(params.Page-1), len(entries))
	page := entries[start:]
	if params.Order == PaginationOrderAsc {
		slices.Reverse(page)
	}
	ret := make([]InstructionResponse, 0, len(page))
	for i := range page {
		ret = append(ret, instructionResponse(&page[i]))
	}
	writeJSON(w, http.StatusOK, ret)
}

// handleAccount handles GET /api/v0/accounts/{address}
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathPublicKey(w, r, "address")
	if !ok {
		return
	}
	account, err := s.ledger.Account(addr)
	if err != nil {
		s.writeLedgerError(w, "load account", err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address:  addr.String(),
		Owner:    account.Owner.String(),
		Data:     account.Data,
		Lamports: account.Lamports,
	})
}

// handleSubmitTransaction handles POST /api/v0/transactions
func (s *Server) handleSubmitTransaction(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sig, err := solana.SignatureFromBase58(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature: "+err.Error())
		return
	}
	tx := &ledger.Transaction{Signature: sig}
	if err := tx.Message.UnmarshalBinary(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message: "+err.Error())
		return
	}
	result, err := s.ledger.Process(r.Context(), tx)
	if err != nil {
		s.writeLedgerError(w, "process transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, TransactionResponse{
		Signature: result.Signature.String(),
		Kind:      result.Kind.String(),
		Campaign:  result.Campaign.String(),
		Sequence:  result.Sequence,
		Lamports:  result.Lamports,
		Closed:    result.Record == nil,
	})
}

// handleTransaction handles GET /api/v0/transactions/{signature}
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	sig, err := solana.SignatureFromBase58(r.PathValue("signature"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature: "+err.Error())
		return
	}
	entry, err := s.ledger.InstructionBySignature(sig)
	if err != nil {
		s.writeLedgerError(w, "load transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, instructionResponse(entry))
}

// handleAirdrop handles POST /api/v0/airdrop
func (s *Server) handleAirdrop(w http.ResponseWriter, r *http.Request) {
	var req AirdropRequest
	if !decodeBody(w, r, &req) {
		return
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient: "+err.Error())
		return
	}
	balance, err := s.ledger.Airdrop(r.Context(), recipient, req.Lamports)
	if err != nil {
		s.writeLedgerError(w, "airdrop", err)
		return
	}
	writeJSON(w, http.StatusOK, AirdropResponse{
		Recipient: recipient.String(),
		Balance:   balance,
	})
}

func instructionResponse(entry *models.Instruction) InstructionResponse {
	ret := InstructionResponse{
		CreatedAt: entry.CreatedAt,
		Campaign:  solana.PublicKeyFromBytes(entry.Campaign).String(),
		Signer:    solana.PublicKeyFromBytes(entry.Signer).String(),
		Kind:      entry.Kind,
		Result:    entry.Result,
		Error:     entry.Error,
		Sequence:  entry.Sequence,
		Amount:    uint64(entry.Amount),
		ErrorCode: entry.ErrorCode,
	}
	if len(entry.Signature) == solana.SignatureLength {
		sig := solana.SignatureFromBytes(entry.Signature)
		if !sig.IsZero() {
			ret.Signature = sig.String()
		}
	}
	return ret
}
