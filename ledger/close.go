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

// handleClose deallocates the campaign and returns every custodial lamport,
// reserve included, to the authority
func handleClose(
	ic *instructionContext,
	ix campaign.Instruction,
) (*stateChange, error) {
	if _, ok := ix.(campaign.CloseArgs); !ok {
		return nil, campaign.ErrInvalidInstruction
	}
	campaignAddr := ic.accounts[0]
	campaignAcct, record, err := ic.loadCampaign(campaignAddr)
	if err != nil {
		return nil, err
	}
	if !ic.signer.Is(record.Authority) {
		return nil, campaign.ErrUnauthorized
	}
	authorityAcct := ic.account(record.Authority)
	if err := credit(authorityAcct, campaignAcct.Lamports); err != nil {
		return nil, err
	}
	return &stateChange{
		campaign: campaignAddr,
		amount:   campaignAcct.Lamports,
		accounts: map[solana.PublicKey]*database.Account{
			campaignAddr:     nil,
			record.Authority: authorityAcct,
		},
		event: event.CampaignClosedEvent{
			Address:   campaignAddr,
			Authority: record.Authority,
			Lamports:  campaignAcct.Lamports,
		},
	}, nil
}
