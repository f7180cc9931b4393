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

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
)

// Ledger is the view of the ledger state used by the API. It is satisfied
// by *ledger.LedgerState.
type Ledger interface {
	ProgramID() solana.PublicKey
	Reserve() uint64
	DeriveCampaignAddress(
		authority solana.PublicKey,
	) (solana.PublicKey, uint8, error)
	Campaign(addr solana.PublicKey) (*campaign.Record, uint64, error)
	Account(addr solana.PublicKey) (*database.Account, error)
	Instructions(
		addr solana.PublicKey,
		limit int,
		includeRejected bool,
	) ([]models.Instruction, error)
	InstructionBySignature(sig solana.Signature) (*models.Instruction, error)
	Process(ctx context.Context, tx *ledger.Transaction) (*ledger.Result, error)
	Airdrop(
		ctx context.Context,
		recipient solana.PublicKey,
		amount uint64,
	) (uint64, error)
}

var _ Ledger = (*ledger.LedgerState)(nil)
