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
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/crowdfund/database/types"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ErrAccountNotFound = errors.New("account not found")

// Account holds the lamports, owning program and data stored at an address.
// Wallets have a zero owner and no data.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// IsOwnedBy reports whether the account belongs to the given program
func (a *Account) IsOwnedBy(programID solana.PublicKey) bool {
	return a.Owner.Equals(programID)
}

func (a *Account) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.Encode(a.Lamports); err != nil {
		return err
	}
	if err := encoder.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	return encoder.WriteBytes(a.Data, true)
}

func (a *Account) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	if err := decoder.Decode(&a.Lamports); err != nil {
		return err
	}
	owner, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(a.Owner[:], owner)
	data, err := decoder.ReadByteSlice()
	if err != nil {
		return err
	}
	a.Data = data
	return nil
}

// GetAccount returns the account stored at address
func (d *Database) GetAccount(
	address solana.PublicKey,
	txn *Txn,
) (*Account, error) {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	val, err := d.Blob().Get(txn.Blob(), types.AccountBlobKey(address[:]))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	ret := &Account{}
	if err := ret.UnmarshalWithDecoder(bin.NewBorshDecoder(val)); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	return ret, nil
}

// GetBalance returns the lamports at address, which is zero for an address
// that has never been funded
func (d *Database) GetBalance(
	address solana.PublicKey,
	txn *Txn,
) (uint64, error) {
	account, err := d.GetAccount(address, txn)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Lamports, nil
}

// SetAccount stores the account at address
func (d *Database) SetAccount(
	address solana.PublicKey,
	account *Account,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	buf := new(bytes.Buffer)
	if err := account.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return fmt.Errorf("encode account %s: %w", address, err)
	}
	return d.Blob().Set(
		txn.Blob(),
		types.AccountBlobKey(address[:]),
		buf.Bytes(),
	)
}

// DeleteAccount removes the account at address
func (d *Database) DeleteAccount(
	address solana.PublicKey,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Delete(txn.Blob(), types.AccountBlobKey(address[:]))
}
