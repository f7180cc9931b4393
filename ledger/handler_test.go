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
	"bytes"
	"math"
	"testing"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testReserve   = DefaultRentConfig().MinimumBalance(campaign.Space)
	testAuthority = solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x11}, 32))
	testDonor     = solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
)

func testCampaignAddress(t *testing.T, authority solana.PublicKey) solana.PublicKey {
	t.Helper()
	addr, _, err := address.Derive(address.DefaultProgramID, authority)
	require.NoError(t, err)
	return addr
}

// testCampaignAccount returns a campaign account holding the reserve plus
// whatever is still available
func testCampaignAccount(t *testing.T, rec *campaign.Record) *database.Account {
	t.Helper()
	data, err := rec.MarshalAccountData()
	require.NoError(t, err)
	return &database.Account{
		Lamports: testReserve + rec.Available(),
		Owner:    address.DefaultProgramID,
		Data:     data,
	}
}

func newTestContext(
	signer solana.PublicKey,
	accounts []solana.PublicKey,
	state map[solana.PublicKey]*database.Account,
) *instructionContext {
	if state == nil {
		state = make(map[solana.PublicKey]*database.Account)
	}
	return &instructionContext{
		state:     state,
		accounts:  accounts,
		signer:    TrustedSigner(signer),
		programID: address.DefaultProgramID,
		reserve:   testReserve,
	}
}

func TestDefaultReserve(t *testing.T) {
	assert.Equal(t, uint64(3_480_000), testReserve)
}

func TestHandleCreate(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	ic := newTestContext(
		testAuthority,
		[]solana.PublicKey{campaignAddr, testAuthority},
		map[solana.PublicKey]*database.Account{
			testAuthority: {Lamports: testReserve + 5},
		},
	)
	change, err := handleCreate(ic, campaign.CreateArgs{
		Name:         "Test Campaign",
		Description:  "Test Description",
		TargetAmount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), change.accounts[testAuthority].Lamports)
	campaignAcct := change.accounts[campaignAddr]
	require.NotNil(t, campaignAcct)
	assert.Equal(t, testReserve, campaignAcct.Lamports)
	assert.True(t, campaignAcct.IsOwnedBy(address.DefaultProgramID))
	rec, err := campaign.UnmarshalAccountData(campaignAcct.Data)
	require.NoError(t, err)
	assert.Equal(t, testAuthority, rec.Authority)
	assert.Equal(t, uint64(0), rec.AmountDonated)
	assert.Equal(t, uint64(0), rec.AmountWithdrawn)
	// The snapshot is never modified
	assert.Equal(t, testReserve+5, ic.state[testAuthority].Lamports)
}

func TestHandleCreatePrefundedAccount(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	ic := newTestContext(
		testAuthority,
		[]solana.PublicKey{campaignAddr, testAuthority},
		map[solana.PublicKey]*database.Account{
			testAuthority: {Lamports: testReserve},
			campaignAddr:  {Lamports: 1000},
		},
	)
	change, err := handleCreate(ic, campaign.CreateArgs{Name: "Test Campaign"})
	require.NoError(t, err)
	assert.Equal(t, testReserve-1000, change.amount)
	assert.Equal(t, uint64(1000), change.accounts[testAuthority].Lamports)
	assert.Equal(t, testReserve, change.accounts[campaignAddr].Lamports)
}

func TestHandleCreateRejections(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	existing := testCampaignAccount(
		t,
		campaign.NewRecord(testAuthority, "Test Campaign", "", 5),
	)
	testDefs := []struct {
		name        string
		accounts    []solana.PublicKey
		state       map[solana.PublicKey]*database.Account
		args        campaign.CreateArgs
		expectedErr error
	}{
		{
			name:        "wrong address",
			accounts:    []solana.PublicKey{testCampaignAddress(t, testDonor), testAuthority},
			args:        campaign.CreateArgs{Name: "Test Campaign"},
			expectedErr: campaign.ErrInvalidOwner,
		},
		{
			name:     "name too long",
			accounts: []solana.PublicKey{campaignAddr, testAuthority},
			args: campaign.CreateArgs{
				Name: string(bytes.Repeat([]byte{'n'}, campaign.MaxNameLength+1)),
			},
			expectedErr: campaign.ErrCampaignNameTooLong,
		},
		{
			name:     "description too long",
			accounts: []solana.PublicKey{campaignAddr, testAuthority},
			args: campaign.CreateArgs{
				Description: string(
					bytes.Repeat([]byte{'d'}, campaign.MaxDescriptionLength+1),
				),
			},
			expectedErr: campaign.ErrCampaignDescriptionTooLong,
		},
		{
			name:     "already exists",
			accounts: []solana.PublicKey{campaignAddr, testAuthority},
			state: map[solana.PublicKey]*database.Account{
				campaignAddr:  existing,
				testAuthority: {Lamports: testReserve},
			},
			args:        campaign.CreateArgs{Name: "Test Campaign"},
			expectedErr: campaign.ErrCampaignAlreadyExists,
		},
		{
			name:        "insufficient funds",
			accounts:    []solana.PublicKey{campaignAddr, testAuthority},
			args:        campaign.CreateArgs{Name: "Test Campaign"},
			expectedErr: campaign.ErrInsufficientFunds,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			ic := newTestContext(testAuthority, testDef.accounts, testDef.state)
			_, err := handleCreate(ic, testDef.args)
			require.ErrorIs(t, err, testDef.expectedErr)
		})
	}
}

func TestHandleDonate(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	accounts := []solana.PublicKey{campaignAddr, testAuthority, testDonor}
	state := map[solana.PublicKey]*database.Account{
		campaignAddr: testCampaignAccount(t, rec),
		testDonor:    {Lamports: 100},
	}
	change, err := handleDonate(
		newTestContext(testDonor, accounts, state),
		campaign.DonateArgs{Amount: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), change.record.AmountDonated)
	assert.Equal(t, uint64(90), change.accounts[testDonor].Lamports)
	assert.Equal(t, testReserve+10, change.accounts[campaignAddr].Lamports)
	// Only the donated counter moves
	assert.Equal(t, rec.Name, change.record.Name)
	assert.Equal(t, rec.TargetAmount, change.record.TargetAmount)
	assert.Equal(t, rec.AmountWithdrawn, change.record.AmountWithdrawn)

	_, err = handleDonate(
		newTestContext(testDonor, accounts, state),
		campaign.DonateArgs{Amount: 0},
	)
	require.ErrorIs(t, err, campaign.ErrInvalidAmount)

	_, err = handleDonate(
		newTestContext(testDonor, accounts, state),
		campaign.DonateArgs{Amount: 101},
	)
	require.ErrorIs(t, err, campaign.ErrInsufficientFunds)
}

func TestHandleDonateRejectsMismatchedAuthority(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	state := map[solana.PublicKey]*database.Account{
		campaignAddr: testCampaignAccount(t, rec),
		testDonor:    {Lamports: 100},
	}
	// The named authority does not derive the campaign address
	_, err := handleDonate(
		newTestContext(
			testDonor,
			[]solana.PublicKey{campaignAddr, testDonor, testDonor},
			state,
		),
		campaign.DonateArgs{Amount: 10},
	)
	require.ErrorIs(t, err, campaign.ErrInvalidOwner)

	// Absent campaign
	_, err = handleDonate(
		newTestContext(
			testDonor,
			[]solana.PublicKey{testCampaignAddress(t, testDonor), testDonor, testDonor},
			state,
		),
		campaign.DonateArgs{Amount: 10},
	)
	require.ErrorIs(t, err, campaign.ErrCampaignNotFound)
}

func TestHandleDonateOverflow(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	rec.AmountDonated = math.MaxUint64
	rec.AmountWithdrawn = math.MaxUint64
	state := map[solana.PublicKey]*database.Account{
		campaignAddr: testCampaignAccount(t, rec),
		testDonor:    {Lamports: 100},
	}
	_, err := handleDonate(
		newTestContext(
			testDonor,
			[]solana.PublicKey{campaignAddr, testAuthority, testDonor},
			state,
		),
		campaign.DonateArgs{Amount: 1},
	)
	require.ErrorIs(t, err, campaign.ErrArithmeticOverflow)
}

func TestHandleWithdraw(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	rec.AmountDonated = 10
	accounts := []solana.PublicKey{campaignAddr, testAuthority}
	state := map[solana.PublicKey]*database.Account{
		campaignAddr: testCampaignAccount(t, rec),
	}
	change, err := handleWithdraw(
		newTestContext(testAuthority, accounts, state),
		campaign.WithdrawArgs{Amount: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), change.record.AmountWithdrawn)
	assert.Equal(t, uint64(10), change.accounts[testAuthority].Lamports)
	assert.Equal(t, testReserve, change.accounts[campaignAddr].Lamports)

	_, err = handleWithdraw(
		newTestContext(testAuthority, accounts, state),
		campaign.WithdrawArgs{Amount: 11},
	)
	require.ErrorIs(t, err, campaign.ErrInsufficientCampaignBalance)

	_, err = handleWithdraw(
		newTestContext(testDonor, []solana.PublicKey{campaignAddr, testDonor}, state),
		campaign.WithdrawArgs{Amount: 1},
	)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)
}

func TestHandleWithdrawReserveFloor(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	rec.AmountDonated = 10
	acct := testCampaignAccount(t, rec)
	// Custodial value short of reserve plus available
	acct.Lamports = testReserve + 4
	_, err := handleWithdraw(
		newTestContext(
			testAuthority,
			[]solana.PublicKey{campaignAddr, testAuthority},
			map[solana.PublicKey]*database.Account{campaignAddr: acct},
		),
		campaign.WithdrawArgs{Amount: 5},
	)
	require.ErrorIs(t, err, campaign.ErrInsufficientCampaignBalance)
}

func TestHandleClose(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	rec := campaign.NewRecord(testAuthority, "Test Campaign", "", 5)
	rec.AmountDonated = 10
	state := map[solana.PublicKey]*database.Account{
		campaignAddr:  testCampaignAccount(t, rec),
		testAuthority: {Lamports: 1},
	}
	change, err := handleClose(
		newTestContext(
			testAuthority,
			[]solana.PublicKey{campaignAddr, testAuthority},
			state,
		),
		campaign.CloseArgs{},
	)
	require.NoError(t, err)
	assert.Nil(t, change.record)
	acct, ok := change.accounts[campaignAddr]
	require.True(t, ok)
	assert.Nil(t, acct)
	assert.Equal(t, testReserve+10+1, change.accounts[testAuthority].Lamports)

	_, err = handleClose(
		newTestContext(testDonor, []solana.PublicKey{campaignAddr, testDonor}, state),
		campaign.CloseArgs{},
	)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)
}

func TestLoadCampaignRejectsForeignOwner(t *testing.T) {
	campaignAddr := testCampaignAddress(t, testAuthority)
	acct := testCampaignAccount(
		t,
		campaign.NewRecord(testAuthority, "Test Campaign", "", 5),
	)
	acct.Owner = testDonor
	ic := newTestContext(
		testAuthority,
		[]solana.PublicKey{campaignAddr, testAuthority},
		map[solana.PublicKey]*database.Account{campaignAddr: acct},
	)
	_, _, err := ic.loadCampaign(campaignAddr)
	require.ErrorIs(t, err, campaign.ErrInvalidOwner)
}

func TestCheckAccounts(t *testing.T) {
	h := instructionHandlers[campaign.InstructionKindDonate]
	signer := TrustedSigner(testDonor)
	require.NoError(
		t,
		h.checkAccounts(
			[]solana.PublicKey{testAuthority, testAuthority, testDonor},
			signer,
		),
	)
	require.ErrorIs(
		t,
		h.checkAccounts([]solana.PublicKey{testAuthority}, signer),
		campaign.ErrMissingAccount,
	)
	require.ErrorIs(
		t,
		h.checkAccounts(
			[]solana.PublicKey{testAuthority, testDonor, testAuthority},
			signer,
		),
		campaign.ErrUnauthorized,
	)
}
