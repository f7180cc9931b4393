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
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/gagliardetto/solana-go"
)

// handleWithdraw moves amount from the campaign to its authority. The
// reserve always stays behind.
func handleWithdraw(
	ic *instructionContext,
	ix campaign.Instruction,
) (*stateChange, error) {
	args, ok := ix.(campaign.WithdrawArgs)
	if !ok {
		return nil, campaign.ErrInvalidInstruction
	}
	if err := campaign.ValidateAmount(args.Amount); err != nil {
		return nil, err
	}
	campaignAddr := ic.accounts[0]
	campaignAcct, record, err := ic.loadCampaign(campaignAddr)
	if err != nil {
		return nil, err
	}
	if !ic.signer.Is(record.Authority) {
		return nil, campaign.ErrUnauthorized
	}
	updated, err := record.AddWithdrawal(
		args.Amount,
		campaignAcct.Lamports,
		ic.reserve,
	)
	if err != nil {
		return nil, err
	}
	authorityAcct := ic.account(record.Authority)
	if err := credit(authorityAcct, args.Amount); err != nil {
		return nil, err
	}
	campaignAcct.Lamports -= args.Amount
	if err := storeRecord(campaignAcct, updated); err != nil {
		return nil, err
	}
	return &stateChange{
		campaign: campaignAddr,
		record:   updated,
		amount:   args.Amount,
		accounts: map[solana.PublicKey]*database.Account{
			campaignAddr:     campaignAcct,
			record.Authority: authorityAcct,
		},
		event: event.CampaignWithdrawnEvent{
			Address:         campaignAddr,
			Authority:       record.Authority,
			Amount:          args.Amount,
			AmountWithdrawn: updated.AmountWithdrawn,
		},
	}, nil
}
