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

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/types"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result describes a committed instruction
type Result struct {
	// Record is nil after Close
	Record    *campaign.Record
	Kind      campaign.InstructionKind
	Signature solana.Signature
	Campaign  solana.PublicKey
	Sequence  uint64
	// Lamports is the custodial balance of the campaign after the instruction
	Lamports uint64
}

// Process authenticates a signed transaction and applies its instruction
func (ls *LedgerState) Process(
	ctx context.Context,
	tx *Transaction,
) (*Result, error) {
	signer, err := Authenticate(tx)
	if err != nil {
		return nil, ls.rejectMessage(ctx, tx, err)
	}
	if !tx.Message.ProgramID.Equals(ls.config.ProgramID) {
		return nil, ls.rejectMessage(ctx, tx, fmt.Errorf(
			"%w: message is for program %s",
			campaign.ErrInvalidInstruction,
			tx.Message.ProgramID,
		))
	}
	ix, err := tx.Message.Instruction()
	if err != nil {
		return nil, ls.rejectMessage(ctx, tx, err)
	}
	return ls.execute(ctx, signer, tx.Message.Accounts, ix, tx.Signature)
}

// rejectMessage accounts for a transaction refused before its instruction
// could be decoded. Nothing is journaled since the signer and campaign are
// not trusted yet.
func (ls *LedgerState) rejectMessage(
	ctx context.Context,
	tx *Transaction,
	err error,
) error {
	_, span := ls.tracer.Start(
		ctx,
		"ledger.unknown",
		trace.WithAttributes(
			attribute.String("crowdfund.program", tx.Message.ProgramID.String()),
		),
	)
	defer span.End()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ls.metrics.instructionsTotal.WithLabelValues(
		"unknown",
		models.InstructionResultRejected,
	).Inc()
	ls.config.Logger.Debug(
		"transaction rejected",
		"component", "ledger",
		"program", tx.Message.ProgramID.String(),
		"error", err,
	)
	return err
}

// Execute applies an instruction on behalf of an already authenticated
// signer. No signature is recorded, so the instruction cannot be looked up
// by signature afterwards.
func (ls *LedgerState) Execute(
	ctx context.Context,
	signer Signer,
	accounts []solana.PublicKey,
	ix campaign.Instruction,
) (*Result, error) {
	return ls.execute(ctx, signer, accounts, ix, solana.Signature{})
}

func (ls *LedgerState) execute(
	ctx context.Context,
	signer Signer,
	accounts []solana.PublicKey,
	ix campaign.Instruction,
	sig solana.Signature,
) (*Result, error) {
	kind := ix.Kind()
	start := time.Now()
	ctx, span := ls.tracer.Start(
		ctx,
		"ledger."+kind.String(),
		trace.WithAttributes(
			attribute.String("crowdfund.instruction", kind.String()),
			attribute.String("crowdfund.signer", signer.String()),
		),
	)
	defer span.End()
	defer func() {
		ls.metrics.instructionDuration.WithLabelValues(kind.String()).
			Observe(time.Since(start).Seconds())
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, ok := instructionHandlers[kind]
	if !ok {
		return nil, ls.reject(
			ctx,
			kind,
			signer,
			accounts,
			sig,
			fmt.Errorf("%w: unknown kind %s", campaign.ErrInvalidInstruction, kind),
		)
	}
	if signer.IsZero() {
		return nil, ls.reject(ctx, kind, signer, accounts, sig, campaign.ErrUnauthorized)
	}
	if err := h.checkAccounts(accounts, signer); err != nil {
		return nil, ls.reject(ctx, kind, signer, accounts, sig, err)
	}
	span.SetAttributes(
		attribute.String("crowdfund.campaign", accounts[0].String()),
	)
	// Single writer per account
	unlock := ls.locks.lock(accounts)
	defer unlock()
	var result *Result
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if !sig.IsZero() {
			dup, err := ls.db.HasSignature(sig, txn)
			if err != nil {
				return err
			}
			if dup {
				return campaign.ErrDuplicateSignature
			}
		}
		ic, err := ls.loadContext(signer, accounts, txn)
		if err != nil {
			return err
		}
		change, err := h.handler(ic, ix)
		if err != nil {
			return err
		}
		seq, err := ls.db.NextSequence()
		if err != nil {
			return err
		}
		if err := ls.applyChange(change, seq, txn); err != nil {
			return err
		}
		if !sig.IsZero() {
			if err := ls.db.SetSignature(sig, seq, txn); err != nil {
				return err
			}
		}
		if err := ls.db.AddInstruction(
			&models.Instruction{
				Signature: signatureBytes(sig),
				Campaign:  change.campaign.Bytes(),
				Signer:    signer.PublicKey().Bytes(),
				Kind:      kind.String(),
				Result:    models.InstructionResultOk,
				Sequence:  seq,
				Amount:    types.Uint64(change.amount),
			},
			txn,
		); err != nil {
			return err
		}
		result = &Result{
			Kind:      kind,
			Signature: sig,
			Campaign:  change.campaign,
			Sequence:  seq,
			Record:    change.record,
		}
		if acct := change.accounts[change.campaign]; acct != nil {
			result.Lamports = acct.Lamports
		}
		txn.OnCommit(func() { ls.committed(ctx, result, change) })
		return nil
	})
	if err != nil {
		// Accounts are durable, only the journal entry and mirror are lost
		if errors.Is(err, database.ErrPartialCommit) {
			ls.config.Logger.Error(
				"instruction applied without journal entry",
				"component", "ledger",
				"kind", kind.String(),
				"sequence", result.Sequence,
				"error", err,
			)
			return result, nil
		}
		return nil, ls.reject(ctx, kind, signer, accounts, sig, err)
	}
	return result, nil
}

// loadContext snapshots every account named by the instruction
func (ls *LedgerState) loadContext(
	signer Signer,
	accounts []solana.PublicKey,
	txn *database.Txn,
) (*instructionContext, error) {
	ic := &instructionContext{
		state:     make(map[solana.PublicKey]*database.Account, len(accounts)),
		accounts:  accounts,
		signer:    signer,
		programID: ls.config.ProgramID,
		reserve:   ls.reserve,
	}
	for _, addr := range accounts {
		if _, ok := ic.state[addr]; ok {
			continue
		}
		acct, err := ls.db.GetAccount(addr, txn)
		if err != nil {
			if errors.Is(err, database.ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		ic.state[addr] = acct
	}
	return ic, nil
}

// applyChange writes a state change and refreshes the campaign mirror
func (ls *LedgerState) applyChange(
	change *stateChange,
	seq uint64,
	txn *database.Txn,
) error {
	for addr, acct := range change.accounts {
		// Drained wallets are removed
		if acct == nil ||
			(acct.Lamports == 0 && len(acct.Data) == 0 && acct.Owner.IsZero()) {
			if err := ls.db.DeleteAccount(addr, txn); err != nil {
				return err
			}
			continue
		}
		if err := ls.db.SetAccount(addr, acct, txn); err != nil {
			return err
		}
	}
	if change.record == nil {
		return ls.db.DeleteCampaignMirror(change.campaign, txn)
	}
	var lamports uint64
	if acct := change.accounts[change.campaign]; acct != nil {
		lamports = acct.Lamports
	}
	return ls.db.SetCampaignMirror(
		change.campaign,
		change.record,
		lamports,
		seq,
		txn,
	)
}

// committed updates metrics and announces a committed instruction
func (ls *LedgerState) committed(
	ctx context.Context,
	result *Result,
	change *stateChange,
) {
	kind := result.Kind
	ls.metrics.instructionsTotal.WithLabelValues(
		kind.String(),
		models.InstructionResultOk,
	).Inc()
	ls.metrics.lastSequence.Set(float64(result.Sequence))
	var evtType event.EventType
	var evtData any
	switch evt := change.event.(type) {
	case event.CampaignCreatedEvent:
		ls.metrics.activeCampaigns.Inc()
		evt.Signature, evt.Sequence = result.Signature, result.Sequence
		evtType, evtData = event.CampaignCreatedEventType, evt
	case event.CampaignDonatedEvent:
		ls.metrics.lamportsDonated.Add(float64(evt.Amount))
		evt.Signature, evt.Sequence = result.Signature, result.Sequence
		evtType, evtData = event.CampaignDonatedEventType, evt
	case event.CampaignWithdrawnEvent:
		ls.metrics.lamportsWithdrawn.Add(float64(evt.Amount))
		evt.Signature, evt.Sequence = result.Signature, result.Sequence
		evtType, evtData = event.CampaignWithdrawnEventType, evt
	case event.CampaignClosedEvent:
		ls.metrics.activeCampaigns.Dec()
		evt.Signature, evt.Sequence = result.Signature, result.Sequence
		evtType, evtData = event.CampaignClosedEventType, evt
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("crowdfund.sequence", int64(result.Sequence)), //nolint:gosec // sequence fits
	)
	ls.config.Logger.Debug(
		"instruction committed",
		"component", "ledger",
		"kind", kind.String(),
		"campaign", result.Campaign.String(),
		"sequence", result.Sequence,
	)
	if ls.config.EventBus != nil && evtType != "" {
		ls.config.EventBus.Publish(evtType, event.NewEvent(evtType, evtData))
	}
}

// reject records a failed instruction in the journal and returns err. The
// journal entry is written on its own so it never carries partial state.
func (ls *LedgerState) reject(
	ctx context.Context,
	kind campaign.InstructionKind,
	signer Signer,
	accounts []solana.PublicKey,
	sig solana.Signature,
	err error,
) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ls.metrics.instructionsTotal.WithLabelValues(
		kind.String(),
		models.InstructionResultRejected,
	).Inc()
	entry := &models.Instruction{
		Signature: signatureBytes(sig),
		Signer:    signer.PublicKey().Bytes(),
		Kind:      kind.String(),
		Result:    models.InstructionResultRejected,
		Error:     err.Error(),
	}
	if len(accounts) > 0 {
		entry.Campaign = accounts[0].Bytes()
	}
	var progErr *campaign.ProgramError
	if errors.As(err, &progErr) {
		entry.ErrorCode = uint32(progErr.Code)
	}
	if jErr := ls.db.AddInstruction(entry, nil); jErr != nil {
		ls.config.Logger.Error(
			"failed to journal rejected instruction",
			"component", "ledger",
			"kind", kind.String(),
			"error", jErr,
		)
	}
	ls.config.Logger.Debug(
		"instruction rejected",
		"component", "ledger",
		"kind", kind.String(),
		"signer", signer.String(),
		"error", err,
	)
	return err
}

func signatureBytes(sig solana.Signature) []byte {
	if sig.IsZero() {
		return nil
	}
	return sig[:]
}
