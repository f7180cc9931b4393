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

package campaign

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, numbered program error code surfaced to callers.
// Numbering starts at 6000 to stay compatible with existing clients.
type ErrorCode uint32

const (
	ErrorCodeCampaignNameTooLong ErrorCode = 6000 + iota
	ErrorCodeCampaignDescriptionTooLong
	ErrorCodeInvalidAmount
	ErrorCodeCampaignAlreadyExists
	ErrorCodeInvalidOwner
	ErrorCodeInsufficientCampaignBalance
)

// ProgramError is a numbered error returned by the campaign program
type ProgramError struct {
	Name    string
	Message string
	Code    ErrorCode
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf(
		"program error %d (%s): %s",
		e.Code,
		e.Name,
		e.Message,
	)
}

// Is matches any ProgramError carrying the same code, so wrapped and
// re-created errors compare equal to the package sentinels
func (e *ProgramError) Is(target error) bool {
	var t *ProgramError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrCampaignNameTooLong = &ProgramError{
		Code: ErrorCodeCampaignNameTooLong,
		Name: "CampaignNameTooLong",
		Message: fmt.Sprintf(
			"Campaign name may only hold characters below %d of Length",
			MaxNameLength,
		),
	}
	ErrCampaignDescriptionTooLong = &ProgramError{
		Code: ErrorCodeCampaignDescriptionTooLong,
		Name: "CampaignDescriptionTooLong",
		Message: fmt.Sprintf(
			"Campaign description may only hold characters below %d of Length",
			MaxDescriptionLength,
		),
	}
	ErrInvalidAmount = &ProgramError{
		Code:    ErrorCodeInvalidAmount,
		Name:    "InvalidAmount",
		Message: "Amount must be greater than zero",
	}
	ErrCampaignAlreadyExists = &ProgramError{
		Code:    ErrorCodeCampaignAlreadyExists,
		Name:    "CampaignAlreadyExists",
		Message: "User already has an active campaign.",
	}
	ErrInvalidOwner = &ProgramError{
		Code:    ErrorCodeInvalidOwner,
		Name:    "InvalidOwner",
		Message: "PDA is owned by an invalid owner",
	}
	ErrInsufficientCampaignBalance = &ProgramError{
		Code:    ErrorCodeInsufficientCampaignBalance,
		Name:    "InsufficientCampaignBalance",
		Message: "insufficient balance in the campaign account",
	}
)

var programErrors = []*ProgramError{
	ErrCampaignNameTooLong,
	ErrCampaignDescriptionTooLong,
	ErrInvalidAmount,
	ErrCampaignAlreadyExists,
	ErrInvalidOwner,
	ErrInsufficientCampaignBalance,
}

// ProgramErrorFromCode returns the program error for a numeric code, or nil
// if the code is unknown
func ProgramErrorFromCode(code ErrorCode) *ProgramError {
	for _, e := range programErrors {
		if e.Code == code {
			return e
		}
	}
	return nil
}

// Runtime errors. These are not part of the numbered program error set.
var (
	ErrCampaignNotFound    = errors.New("campaign account not initialized")
	ErrUnauthorized        = errors.New("signer is not the campaign authority")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrInvalidInstruction  = errors.New("invalid instruction data")
	ErrInvalidAccountData  = errors.New("invalid campaign account data")
	ErrInsufficientFunds   = errors.New("insufficient funds for transfer")
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrDuplicateSignature  = errors.New("transaction already processed")
	ErrMissingAccount      = errors.New("instruction is missing a required account")
	ErrFaucetDisabled      = errors.New("faucet is disabled")
	ErrAccountNotWriteable = errors.New("account is owned by another program")
)
