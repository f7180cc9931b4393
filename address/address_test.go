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

package address_test

import (
	"testing"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	addr1, bump1, err := address.Derive(address.DefaultProgramID, authority)
	require.NoError(t, err)
	addr2, bump2, err := address.Derive(address.DefaultProgramID, authority)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	// The bump reproduces the address
	created, err := solana.CreateProgramAddress(
		append(address.Seeds(authority), []byte{bump1}),
		address.DefaultProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, addr1, created)
}

func TestDeriveDistinctAuthorities(t *testing.T) {
	seen := make(map[solana.PublicKey]struct{})
	for range 16 {
		addr, _, err := address.Derive(
			address.DefaultProgramID,
			solana.NewWallet().PublicKey(),
		)
		require.NoError(t, err)
		_, dup := seen[addr]
		require.False(t, dup)
		seen[addr] = struct{}{}
	}
}

func TestDeriveDependsOnProgram(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	addr1, _, err := address.Derive(address.DefaultProgramID, authority)
	require.NoError(t, err)
	addr2, _, err := address.Derive(solana.NewWallet().PublicKey(), authority)
	require.NoError(t, err)
	assert.NotEqual(t, addr1, addr2)
}

func TestVerify(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	addr, _, err := address.Derive(address.DefaultProgramID, authority)
	require.NoError(t, err)
	require.NoError(t, address.Verify(address.DefaultProgramID, authority, addr))
	err = address.Verify(
		address.DefaultProgramID,
		solana.NewWallet().PublicKey(),
		addr,
	)
	require.ErrorIs(t, err, campaign.ErrInvalidOwner)
}
