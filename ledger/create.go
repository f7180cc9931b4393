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
	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/gagliardetto/solana-go"
)

// handleCreate allocates the campaign account of the signer. The signer pays
// whatever the account lacks to reach the reserve.
func handleCreate(
	ic *instructionContext,
	ix campaign.Instruction,
) (*stateChange, error) {
	args, ok := ix.(campaign.CreateArgs)
	if !ok {
		return nil, campaign.ErrInvalidInstruction
	}
	campaignAddr := ic.accounts[0]
	authority := ic.signer.PublicKey()
	if err := address.Verify(ic.programID, authority, campaignAddr); err != nil {
		return nil, err
	}
	if err := campaign.ValidateName(args.Name); err != nil {
		return nil, err
	}
	if err := campaign.ValidateDescription(args.Description); err != nil {
		return nil, err
	}
	campaignAcct := ic.account(campaignAddr)
	if len(campaignAcct.Data) > 0 || !campaignAcct.Owner.IsZero() {
		return nil, campaign.ErrCampaignAlreadyExists
	}
	var payment uint64
	if campaignAcct.Lamports < ic.reserve {
		payment = ic.reserve - campaignAcct.Lamports
	}
	signerAcct := ic.account(authority)
	if err := debit(signerAcct, payment); err != nil {
		return nil, err
	}
	campaignAcct.Lamports += payment
	campaignAcct.Owner = ic.programID
	record := campaign.NewRecord(
		authority,
		args.Name,
		args.Description,
		args.TargetAmount,
	)
	if err := storeRecord(campaignAcct, record); err != nil {
		return nil, err
	}
	return &stateChange{
		campaign: campaignAddr,
		record:   record,
		amount:   payment,
		accounts: map[solana.PublicKey]*database.Account{
			campaignAddr: campaignAcct,
			authority:    signerAcct,
		},
		event: event.CampaignCreatedEvent{
			Address:      campaignAddr,
			Authority:    authority,
			Name:         record.Name,
			TargetAmount: record.TargetAmount,
			Reserve:      campaignAcct.Lamports,
		},
	}, nil
}
