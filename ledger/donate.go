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

// handleDonate moves amount from the signer into the campaign named by its
// authority. Any identity may donate.
func handleDonate(
	ic *instructionContext,
	ix campaign.Instruction,
) (*stateChange, error) {
	args, ok := ix.(campaign.DonateArgs)
	if !ok {
		return nil, campaign.ErrInvalidInstruction
	}
	if err := campaign.ValidateAmount(args.Amount); err != nil {
		return nil, err
	}
	campaignAddr := ic.accounts[0]
	authority := ic.accounts[1]
	donor := ic.signer.PublicKey()
	if err := address.Verify(ic.programID, authority, campaignAddr); err != nil {
		return nil, err
	}
	campaignAcct, record, err := ic.loadCampaign(campaignAddr)
	if err != nil {
		return nil, err
	}
	if !record.IsAuthority(authority) {
		return nil, campaign.ErrInvalidOwner
	}
	updated, err := record.AddDonation(args.Amount)
	if err != nil {
		return nil, err
	}
	donorAcct := ic.account(donor)
	if err := debit(donorAcct, args.Amount); err != nil {
		return nil, err
	}
	if err := credit(campaignAcct, args.Amount); err != nil {
		return nil, err
	}
	if err := storeRecord(campaignAcct, updated); err != nil {
		return nil, err
	}
	return &stateChange{
		campaign: campaignAddr,
		record:   updated,
		amount:   args.Amount,
		accounts: map[solana.PublicKey]*database.Account{
			campaignAddr: campaignAcct,
			donor:        donorAcct,
		},
		event: event.CampaignDonatedEvent{
			Address:       campaignAddr,
			Donor:         donor,
			Amount:        args.Amount,
			AmountDonated: updated.AmountDonated,
		},
	}, nil
}
