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

package types

import (
	"slices"
)

const (
	AccountBlobKeyPrefix   = "a"
	SignatureBlobKeyPrefix = "s"
	SequenceBlobKey        = "seq"
	// CommitTimestampBlobKey holds the unix millisecond time of the last
	// commit spanning both stores
	CommitTimestampBlobKey = "commit_ts"
)

// AccountBlobKey returns the blob key holding the account at address
func AccountBlobKey(address []byte) []byte {
	return slices.Concat([]byte(AccountBlobKeyPrefix), address)
}

// SignatureBlobKey returns the blob key recording a processed transaction
// signature
func SignatureBlobKey(signature []byte) []byte {
	return slices.Concat([]byte(SignatureBlobKeyPrefix), signature)
}
