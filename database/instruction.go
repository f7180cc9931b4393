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
	"encoding/binary"
	"errors"

	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/types"
	"github.com/gagliardetto/solana-go"
)

// NextSequence returns the next instruction sequence number
func (d *Database) NextSequence() (uint64, error) {
	return d.Blob().NextSequence()
}

// AddInstruction appends an entry to the instruction journal. With a nil
// txn the entry is written in its own metadata transaction.
func (d *Database) AddInstruction(
	instruction *models.Instruction,
	txn *Txn,
) error {
	if txn == nil {
		return NewMetadataOnlyTxn(d, true).Do(func(txn *Txn) error {
			return d.Metadata().AddInstruction(instruction, txn.Metadata())
		})
	}
	return d.Metadata().AddInstruction(instruction, txn.Metadata())
}

// GetInstructionBySignature returns the committed journal entry for a
// transaction signature
func (d *Database) GetInstructionBySignature(
	signature solana.Signature,
	txn *Txn,
) (*models.Instruction, error) {
	if txn == nil {
		txn = NewMetadataOnlyTxn(d, false)
		defer txn.Release()
	}
	return d.Metadata().GetInstructionBySignature(
		signature[:],
		txn.Metadata(),
	)
}

// GetInstructions returns the newest journal entries for a campaign address
func (d *Database) GetInstructions(
	address solana.PublicKey,
	limit int,
	includeRejected bool,
	txn *Txn,
) ([]models.Instruction, error) {
	if txn == nil {
		txn = NewMetadataOnlyTxn(d, false)
		defer txn.Release()
	}
	return d.Metadata().GetInstructions(
		address[:],
		limit,
		includeRejected,
		txn.Metadata(),
	)
}

// HasSignature reports whether a transaction with this signature has already
// been committed
func (d *Database) HasSignature(
	signature solana.Signature,
	txn *Txn,
) (bool, error) {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	_, err := d.Blob().Get(txn.Blob(), types.SignatureBlobKey(signature[:]))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetSignature records a committed transaction signature along with its
// sequence number
func (d *Database) SetSignature(
	signature solana.Signature,
	sequence uint64,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	val := binary.BigEndian.AppendUint64(nil, sequence)
	return d.Blob().Set(
		txn.Blob(),
		types.SignatureBlobKey(signature[:]),
		val,
	)
}
