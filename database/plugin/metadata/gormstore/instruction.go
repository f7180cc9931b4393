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
)

// AddInstruction appends a journal entry
func (s *Store) AddInstruction(
	instruction *models.Instruction,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(instruction).Error
}

// GetInstructionBySignature returns the committed journal entry for a
// transaction signature
func (s *Store) GetInstructionBySignature(
	signature []byte,
	txn types.Txn,
) (*models.Instruction, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Instruction{}
	result := db.Where(
		"signature = ? AND result = ?",
		signature,
		models.InstructionResultOk,
	).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrInstructionNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetInstructions returns journal entries for a campaign address, newest
// first. A limit of 0 or less returns every entry. Rejected entries are
// skipped unless includeRejected is set.
func (s *Store) GetInstructions(
	campaign []byte,
	limit int,
	includeRejected bool,
	txn types.Txn,
) ([]models.Instruction, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Instruction
	query := db.Where("campaign = ?", campaign)
	if !includeRejected {
		query = query.Where("result = ?", models.InstructionResultOk)
	}
	query = query.Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
