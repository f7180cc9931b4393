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

package types_test

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"math"
	"testing"

	"github.com/blinklabs-io/crowdfund/database/types"
)

func TestUint64ScanValue(t *testing.T) {
	testDefs := []struct {
		value         types.Uint64
		expectedValue string
	}{
		{value: 0, expectedValue: "0"},
		{value: 123, expectedValue: "123"},
		{value: math.MaxUint64, expectedValue: "18446744073709551615"},
	}
	for _, testDef := range testDefs {
		var tmpValuer driver.Valuer = testDef.value
		valueOut, err := tmpValuer.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if valueOut != testDef.expectedValue {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		var tmpUint types.Uint64
		var tmpScanner sql.Scanner = &tmpUint
		if err := tmpScanner.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if tmpUint != testDef.value {
			t.Fatalf(
				"did not get expected value after Scan(): got %d, expected %d",
				tmpUint,
				testDef.value,
			)
		}
		// Raw bytes as returned by some drivers
		if err := tmpScanner.Scan([]byte(testDef.expectedValue)); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if tmpUint != testDef.value {
			t.Fatalf("did not get expected value after Scan() of bytes")
		}
	}
	var tmpUint types.Uint64
	if err := tmpUint.Scan(12); err == nil {
		t.Fatalf("did not get expected error scanning int")
	}
}

func TestBlobKeys(t *testing.T) {
	addr := bytes.Repeat([]byte{0xab}, 32)
	key := types.AccountBlobKey(addr)
	if len(key) != 33 || key[0] != 'a' || !bytes.Equal(key[1:], addr) {
		t.Fatalf("unexpected account key: %x", key)
	}
	// Backing array of the input must not be shared
	key[1] = 0
	if addr[0] != 0xab {
		t.Fatalf("account key aliases input")
	}
	sigKey := types.SignatureBlobKey(addr)
	if sigKey[0] != 's' {
		t.Fatalf("unexpected signature key prefix: %q", sigKey[0])
	}
}
