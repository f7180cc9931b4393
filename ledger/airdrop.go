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

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/types"
	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const airdropKind = "airdrop"

// Airdrop credits amount to a wallet and returns its new balance. It is only
// available when the faucet is enabled.
func (ls *LedgerState) Airdrop(
	ctx context.Context,
	recipient solana.PublicKey,
	amount uint64,
) (uint64, error) {
	_, span := ls.tracer.Start(
		ctx,
		"ledger."+airdropKind,
		trace.WithAttributes(
			attribute.String("crowdfund.recipient", recipient.String()),
		),
	)
	defer span.End()
	balance, err := ls.airdrop(recipient, amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.metrics.instructionsTotal.WithLabelValues(
			airdropKind,
			models.InstructionResultRejected,
		).Inc()
		return 0, err
	}
	ls.metrics.instructionsTotal.WithLabelValues(
		airdropKind,
		models.InstructionResultOk,
	).Inc()
	ls.metrics.lamportsAirdropped.Add(float64(amount))
	return balance, nil
}

func (ls *LedgerState) airdrop(
	recipient solana.PublicKey,
	amount uint64,
) (uint64, error) {
	if !ls.config.FaucetEnabled {
		return 0, campaign.ErrFaucetDisabled
	}
	if err := campaign.ValidateAmount(amount); err != nil {
		return 0, err
	}
	if recipient.IsZero() {
		return 0, campaign.ErrMissingAccount
	}
	unlock := ls.locks.lock([]solana.PublicKey{recipient})
	defer unlock()
	var balance uint64
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		acct, err := ls.db.GetAccount(recipient, txn)
		if err != nil {
			if !errors.Is(err, database.ErrAccountNotFound) {
				return err
			}
			acct = &database.Account{}
		}
		// Custodial balances only move through campaign instructions
		if !acct.Owner.IsZero() {
			return campaign.ErrAccountNotWriteable
		}
		if err := credit(acct, amount); err != nil {
			return err
		}
		seq, err := ls.db.NextSequence()
		if err != nil {
			return err
		}
		if err := ls.db.SetAccount(recipient, acct, txn); err != nil {
			return err
		}
		balance = acct.Lamports
		return ls.db.AddInstruction(
			&models.Instruction{
				Signer:   recipient.Bytes(),
				Kind:     airdropKind,
				Result:   models.InstructionResultOk,
				Sequence: seq,
				Amount:   types.Uint64(amount),
			},
			txn,
		)
	})
	// A partial commit still credited the wallet
	if err != nil && !errors.Is(err, database.ErrPartialCommit) {
		return 0, err
	}
	ls.config.Logger.Debug(
		"airdrop committed",
		"component", "ledger",
		"recipient", recipient.String(),
		"amount", amount,
	)
	return balance, nil
}
