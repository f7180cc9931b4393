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
	"time"

	"github.com/blinklabs-io/crowdfund/database/types"
)

var ErrInstructionNotFound = errors.New("instruction not found")

const (
	InstructionResultOk       = "ok"
	InstructionResultRejected = "rejected"
)

// Instruction is an append-only journal entry for every processed
// instruction, whether it committed or was rejected
type Instruction struct {
	CreatedAt time.Time
	Signature []byte `gorm:"index;size:64"`
	Campaign  []byte `gorm:"index;size:32"`
	Signer    []byte `gorm:"index;size:32"`
	Kind      string `gorm:"size:32"`
	Result    string `gorm:"size:16"`
	Error     string
	ID        uint   `gorm:"primarykey"`
	Sequence  uint64 `gorm:"index"`
	Amount    types.Uint64
	ErrorCode uint32
}

func (Instruction) TableName() string {
	return "instruction"
}
