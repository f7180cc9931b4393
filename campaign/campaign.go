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

// Package campaign holds the campaign record, its persisted layout, the
// instruction codec and the stateless validation rules.
package campaign

import (
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 250
)

// Record is the persisted state of a single campaign. Field order matches
// the on-disk layout.
type Record struct {
	Authority       solana.PublicKey
	Name            string
	Description     string
	TargetAmount    uint64
	AmountDonated   uint64
	AmountWithdrawn uint64
}

// NewRecord returns a freshly created record with zeroed custody counters
func NewRecord(
	authority solana.PublicKey,
	name string,
	description string,
	targetAmount uint64,
) *Record {
	return &Record{
		Authority:    authority,
		Name:         name,
		Description:  description,
		TargetAmount: targetAmount,
	}
}

// Available returns the donated value that has not been withdrawn yet
func (r *Record) Available() uint64 {
	if r.AmountWithdrawn > r.AmountDonated {
		return 0
	}
	return r.AmountDonated - r.AmountWithdrawn
}

// IsAuthority reports whether the given identity may withdraw from or close
// the campaign
func (r *Record) IsAuthority(identity solana.PublicKey) bool {
	return r.Authority.Equals(identity)
}

// AddDonation returns a copy of the record with amount added to the donated
// counter
func (r *Record) AddDonation(amount uint64) (*Record, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	sum, carry := bits.Add64(r.AmountDonated, amount, 0)
	if carry != 0 {
		return nil, ErrArithmeticOverflow
	}
	ret := *r
	ret.AmountDonated = sum
	return &ret, nil
}

// AddWithdrawal returns a copy of the record with amount added to the
// withdrawn counter. custodial is the current value held by the campaign
// account and reserve is the part of it that can never be withdrawn.
func (r *Record) AddWithdrawal(
	amount uint64,
	custodial uint64,
	reserve uint64,
) (*Record, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := r.CanWithdraw(amount, custodial, reserve); err != nil {
		return nil, err
	}
	ret := *r
	ret.AmountWithdrawn += amount
	return &ret, nil
}

// CanWithdraw checks that amount is covered both by the record counters and
// by the custodial value above the reserve floor
func (r *Record) CanWithdraw(
	amount uint64,
	custodial uint64,
	reserve uint64,
) error {
	if amount > r.Available() {
		return ErrInsufficientCampaignBalance
	}
	if custodial < reserve || amount > custodial-reserve {
		return ErrInsufficientCampaignBalance
	}
	return nil
}

// Validate checks the record invariants
func (r *Record) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	if r.AmountWithdrawn > r.AmountDonated {
		return ErrInvalidAccountData
	}
	return nil
}

// ValidateName checks the campaign name length in bytes
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return ErrCampaignNameTooLong
	}
	return nil
}

// ValidateDescription checks the campaign description length in bytes
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return ErrCampaignDescriptionTooLong
	}
	return nil
}

// ValidateAmount rejects zero amounts
func ValidateAmount(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}
