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
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const DiscriminatorLength = 8

// Space is the fixed size of campaign account data: discriminator,
// authority, two length-prefixed strings at their maximum length and three
// u64 counters
const Space = DiscriminatorLength +
	32 +
	4 + MaxNameLength +
	4 + MaxDescriptionLength +
	8*3

// AccountDiscriminator prefixes every campaign account
var AccountDiscriminator = discriminator("account", "Campaign")

func discriminator(namespace string, name string) [DiscriminatorLength]byte {
	var ret [DiscriminatorLength]byte
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	copy(ret[:], sum[:DiscriminatorLength])
	return ret
}

func (r *Record) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(r.Authority[:], false); err != nil {
		return err
	}
	if err := encoder.Encode(r.Name); err != nil {
		return err
	}
	if err := encoder.Encode(r.Description); err != nil {
		return err
	}
	if err := encoder.Encode(r.TargetAmount); err != nil {
		return err
	}
	if err := encoder.Encode(r.AmountDonated); err != nil {
		return err
	}
	return encoder.Encode(r.AmountWithdrawn)
}

func (r *Record) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	authority, err := decoder.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(r.Authority[:], authority)
	if err := decoder.Decode(&r.Name); err != nil {
		return err
	}
	if err := decoder.Decode(&r.Description); err != nil {
		return err
	}
	if err := decoder.Decode(&r.TargetAmount); err != nil {
		return err
	}
	if err := decoder.Decode(&r.AmountDonated); err != nil {
		return err
	}
	return decoder.Decode(&r.AmountWithdrawn)
}

// MarshalAccountData returns the full account data for the record, padded
// to Space
func (r *Record) MarshalAccountData() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	buf.Grow(Space)
	buf.Write(AccountDiscriminator[:])
	if err := r.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode campaign record: %w", err)
	}
	if buf.Len() > Space {
		return nil, fmt.Errorf(
			"encoded campaign record is %d bytes, exceeds space of %d",
			buf.Len(),
			Space,
		)
	}
	ret := make([]byte, Space)
	copy(ret, buf.Bytes())
	return ret, nil
}

// UnmarshalAccountData decodes campaign account data produced by
// MarshalAccountData
func UnmarshalAccountData(data []byte) (*Record, error) {
	if len(data) < DiscriminatorLength ||
		!bytes.Equal(data[:DiscriminatorLength], AccountDiscriminator[:]) {
		return nil, ErrInvalidAccountData
	}
	ret := &Record{}
	decoder := bin.NewBorshDecoder(data[DiscriminatorLength:])
	if err := ret.UnmarshalWithDecoder(decoder); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return ret, nil
}
