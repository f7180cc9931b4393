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

import "time"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type DeriveResponse struct {
	Authority string `json:"authority"`
	ProgramID string `json:"program_id"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
}

type CampaignResponse struct {
	Address         string `json:"address"`
	Authority       string `json:"authority"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	TargetAmount    uint64 `json:"target_amount"`
	AmountDonated   uint64 `json:"amount_donated"`
	AmountWithdrawn uint64 `json:"amount_withdrawn"`
	Available       uint64 `json:"available"`
	Lamports        uint64 `json:"lamports"`
	Reserve         uint64 `json:"reserve"`
}

type AccountResponse struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Data     []byte `json:"data"`
	Lamports uint64 `json:"lamports"`
}

// InstructionResponse is a journal entry
type InstructionResponse struct {
	CreatedAt time.Time `json:"created_at"`
	Signature string    `json:"signature,omitempty"`
	Campaign  string    `json:"campaign"`
	Signer    string    `json:"signer"`
	Kind      string    `json:"kind"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
	Sequence  uint64    `json:"sequence"`
	Amount    uint64    `json:"amount"`
	ErrorCode uint32    `json:"error_code,omitempty"`
}

// TransactionRequest carries a signed message. Message is the binary
// message encoding (base64 in JSON) and Signature is base58.
type TransactionRequest struct {
	Message   []byte `json:"message"`
	Signature string `json:"signature"`
}

type TransactionResponse struct {
	Signature string `json:"signature,omitempty"`
	Kind      string `json:"kind"`
	Campaign  string `json:"campaign"`
	Sequence  uint64 `json:"sequence"`
	Lamports  uint64 `json:"lamports"`
	Closed    bool   `json:"closed"`
}

type AirdropRequest struct {
	Recipient string `json:"recipient"`
	Lamports  uint64 `json:"lamports"`
}

type AirdropResponse struct {
	Recipient string `json:"recipient"`
	Balance   uint64 `json:"balance"`
}

// ErrorResponse is the body of every non-2xx response. Code is the numbered
// program error code when there is one
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       uint32 `json:"code,omitempty"`
}
