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

package gormstore

import (
	"errors"

	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCampaign returns the campaign row for an account address
func (s *Store) GetCampaign(
	address []byte,
	txn types.Txn,
) (*models.Campaign, error) {
	return s.getCampaign("address = ?", address, txn)
}

// GetCampaignByAuthority returns the active campaign row of an authority
func (s *Store) GetCampaignByAuthority(
	authority []byte,
	txn types.Txn,
) (*models.Campaign, error) {
	return s.getCampaign("authority = ?", authority, txn)
}

func (s *Store) getCampaign(
	query string,
	arg []byte,
	txn types.Txn,
) (*models.Campaign, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Campaign{}
	result := db.Where(query, arg).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrCampaignNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetCampaign inserts or updates the campaign row keyed by address
func (s *Store) SetCampaign(
	campaign *models.Campaign,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"description",
			"target_amount",
			"amount_donated",
			"amount_withdrawn",
			"lamports",
			"updated_sequence",
		}),
	}).Create(campaign)
	return result.Error
}

// DeleteCampaign removes the campaign row for an address. Deleting a missing
// row is not an error.
func (s *Store) DeleteCampaign(address []byte, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("address = ?", address).Delete(&models.Campaign{})
	return result.Error
}

// CountCampaigns returns the number of active campaigns
func (s *Store) CountCampaigns(txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.Campaign{}).Count(&count)
	return count, result.Error
}
