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

package database

import (
	"errors"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/types"
	"github.com/gagliardetto/solana-go"
)

// GetCampaignMirror returns the SQL mirror row for the campaign at address
func (d *Database) GetCampaignMirror(
	address solana.PublicKey,
	txn *Txn,
) (*models.Campaign, error) {
	if txn == nil {
		txn = NewMetadataOnlyTxn(d, false)
		defer txn.Release()
	}
	return d.Metadata().GetCampaign(address[:], txn.Metadata())
}

// GetCampaignMirrorByAuthority returns the SQL mirror row for the active
// campaign of an authority
func (d *Database) GetCampaignMirrorByAuthority(
	authority solana.PublicKey,
	txn *Txn,
) (*models.Campaign, error) {
	if txn == nil {
		txn = NewMetadataOnlyTxn(d, false)
		defer txn.Release()
	}
	return d.Metadata().GetCampaignByAuthority(authority[:], txn.Metadata())
}

// SetCampaignMirror upserts the SQL mirror of a campaign record. The created
// sequence is only recorded on insert.
func (d *Database) SetCampaignMirror(
	address solana.PublicKey,
	record *campaign.Record,
	lamports uint64,
	sequence uint64,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	tmpCampaign := &models.Campaign{
		Address:         address.Bytes(),
		Authority:       record.Authority.Bytes(),
		Name:            record.Name,
		Description:     record.Description,
		TargetAmount:    types.Uint64(record.TargetAmount),
		AmountDonated:   types.Uint64(record.AmountDonated),
		AmountWithdrawn: types.Uint64(record.AmountWithdrawn),
		Lamports:        types.Uint64(lamports),
		CreatedSequence: sequence,
		UpdatedSequence: sequence,
	}
	return d.Metadata().SetCampaign(tmpCampaign, txn.Metadata())
}

// DeleteCampaignMirror removes the SQL mirror of a closed campaign
func (d *Database) DeleteCampaignMirror(
	address solana.PublicKey,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.Metadata().DeleteCampaign(address[:], txn.Metadata())
}

// CountCampaigns returns the number of active campaigns in the mirror
func (d *Database) CountCampaigns(txn *Txn) (int64, error) {
	if txn == nil {
		txn = NewMetadataOnlyTxn(d, false)
		defer txn.Release()
	}
	return d.Metadata().CountCampaigns(txn.Metadata())
}

// GetCampaign returns the decoded campaign record stored in the account at
// address along with its custodial lamports
func (d *Database) GetCampaign(
	address solana.PublicKey,
	txn *Txn,
) (*campaign.Record, uint64, error) {
	account, err := d.GetAccount(address, txn)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, 0, campaign.ErrCampaignNotFound
		}
		return nil, 0, err
	}
	record, err := campaign.UnmarshalAccountData(account.Data)
	if err != nil {
		return nil, 0, err
	}
	return record, account.Lamports, nil
}
