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

// Package address derives the deterministic campaign account address of an
// authority.
package address

import (
	"fmt"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/gagliardetto/solana-go"
)

// CampaignSeed is the fixed seed that prefixes the authority in the
// derivation
const CampaignSeed = "campaign"

// DefaultProgramID is the program id that owns campaign accounts unless
// configured otherwise
var DefaultProgramID = solana.MustPublicKeyFromBase58(
	"3Por2Tkg1cv11vBYz58Kxq56H6RAuAX6HJznscZrp2ih",
)

// Seeds returns the derivation seeds for an authority
func Seeds(authority solana.PublicKey) [][]byte {
	return [][]byte{
		[]byte(CampaignSeed),
		authority[:],
	}
}

// Derive returns the campaign address and bump for an authority. The result
// is off the ed25519 curve, so no private key exists for it.
func Derive(
	programID solana.PublicKey,
	authority solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(Seeds(authority), programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf(
			"derive campaign address for %s: %w",
			authority,
			err,
		)
	}
	return addr, bump, nil
}

// Verify checks that addr is the campaign address of authority
func Verify(
	programID solana.PublicKey,
	authority solana.PublicKey,
	addr solana.PublicKey,
) error {
	expected, _, err := Derive(programID, authority)
	if err != nil {
		return err
	}
	if !expected.Equals(addr) {
		return campaign.ErrInvalidOwner
	}
	return nil
}
