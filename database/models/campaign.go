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

package models

import (
	"errors"

	"github.com/blinklabs-io/crowdfund/database/types"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// Campaign mirrors the active campaign record for SQL observers. The
// authoritative copy lives in the campaign account data in the blob store.
type Campaign struct {
	Address         []byte `gorm:"uniqueIndex;size:32"`
	Authority       []byte `gorm:"uniqueIndex;size:32"`
	Name            string `gorm:"size:50"`
	Description     string `gorm:"size:250"`
	ID              uint   `gorm:"primarykey"`
	CreatedSequence uint64 `gorm:"index"`
	UpdatedSequence uint64
	TargetAmount    types.Uint64
	AmountDonated   types.Uint64
	AmountWithdrawn types.Uint64
	Lamports        types.Uint64
}

func (Campaign) TableName() string {
	return "campaign"
}
