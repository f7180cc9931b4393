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

const (
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2

	// AccountStorageOverhead is charged on top of the data length of every
	// account
	AccountStorageOverhead = 128
)

// RentConfig describes the minimum custodial balance an account must hold
// for its data to stay allocated
type RentConfig struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

func DefaultRentConfig() RentConfig {
	return RentConfig{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the reserve for an account holding dataLen bytes
func (r RentConfig) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * //nolint:gosec // data length is never negative
		r.LamportsPerByteYear *
		r.ExemptionThreshold
}
