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
	"fmt"
	"math/bits"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/gagliardetto/solana-go"
)

// instructionContext is everything a handler may look at: the authenticated
// signer, the accounts named by the instruction and a snapshot of their
// current state. A missing snapshot entry is an absent account.
type instructionContext struct {
	state     map[solana.PublicKey]*database.Account
	accounts  []solana.PublicKey
	signer    Signer
	programID solana.PublicKey
	reserve   uint64
}

// stateChange is the full effect of an accepted instruction. A nil account
// deletes it. A nil record means the campaign was closed.
type stateChange struct {
	accounts map[solana.PublicKey]*database.Account
	record   *campaign.Record
	event    any
	campaign solana.PublicKey
	amount   uint64
}

type handlerFunc func(*instructionContext, campaign.Instruction) (*stateChange, error)

type instructionHandler struct {
	handler handlerFunc
	// accountCount is the number of accounts the instruction names
	accountCount int
	// signerIndex is the position of the signer in the account list
	signerIndex int
}

var instructionHandlers = map[campaign.InstructionKind]instructionHandler{
	campaign.InstructionKindCreate: {
		handler:      handleCreate,
		accountCount: 2,
		signerIndex:  1,
	},
	campaign.InstructionKindDonate: {
		handler:      handleDonate,
		accountCount: 3,
		signerIndex:  2,
	},
	campaign.InstructionKindWithdraw: {
		handler:      handleWithdraw,
		accountCount: 2,
		signerIndex:  1,
	},
	campaign.InstructionKindClose: {
		handler:      handleClose,
		accountCount: 2,
		signerIndex:  1,
	},
}

// checkAccounts validates the shape of the account list of an instruction
func (h instructionHandler) checkAccounts(
	accounts []solana.PublicKey,
	signer Signer,
) error {
	if len(accounts) != h.accountCount {
		return fmt.Errorf(
			"%w: expected %d accounts, got %d",
			campaign.ErrMissingAccount,
			h.accountCount,
			len(accounts),
		)
	}
	if !signer.Is(accounts[h.signerIndex]) {
		return campaign.ErrUnauthorized
	}
	return nil
}

// account returns a copy of the snapshot entry for addr, or an empty wallet
func (ic *instructionContext) account(addr solana.PublicKey) *database.Account {
	if acct, ok := ic.state[addr]; ok && acct != nil {
		ret := *acct
		return &ret
	}
	return &database.Account{}
}

// loadCampaign returns the campaign account at addr and its decoded record
func (ic *instructionContext) loadCampaign(
	addr solana.PublicKey,
) (*database.Account, *campaign.Record, error) {
	acct, ok := ic.state[addr]
	if !ok || acct == nil || len(acct.Data) == 0 {
		return nil, nil, campaign.ErrCampaignNotFound
	}
	if !acct.IsOwnedBy(ic.programID) {
		return nil, nil, campaign.ErrInvalidOwner
	}
	record, err := campaign.UnmarshalAccountData(acct.Data)
	if err != nil {
		return nil, nil, err
	}
	// The account must sit at the derived address of the stored authority
	if err := address.Verify(ic.programID, record.Authority, addr); err != nil {
		return nil, nil, err
	}
	ret := *acct
	return &ret, record, nil
}

// credit adds amount to the lamports of an account
func credit(acct *database.Account, amount uint64) error {
	sum, carry := bits.Add64(acct.Lamports, amount, 0)
	if carry != 0 {
		return campaign.ErrArithmeticOverflow
	}
	acct.Lamports = sum
	return nil
}

// debit removes amount from the lamports of a wallet
func debit(acct *database.Account, amount uint64) error {
	if acct.Lamports < amount {
		return campaign.ErrInsufficientFunds
	}
	acct.Lamports -= amount
	return nil
}

func storeRecord(acct *database.Account, record *campaign.Record) error {
	data, err := record.MarshalAccountData()
	if err != nil {
		return err
	}
	acct.Data = data
	return nil
}
