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
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// accountLocks serializes writers per account address
type accountLocks struct {
	mu    sync.Mutex
	locks map[solana.PublicKey]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		locks: make(map[solana.PublicKey]*accountLock),
	}
}

// lock acquires the lock of every address in ascending byte order and returns
// the function releasing them
func (l *accountLocks) lock(addresses []solana.PublicKey) func() {
	sorted := slices.Clone(addresses)
	slices.SortFunc(sorted, func(a, b solana.PublicKey) int {
		return bytes.Compare(a[:], b[:])
	})
	sorted = slices.Compact(sorted)
	held := make([]*accountLock, 0, len(sorted))
	for _, addr := range sorted {
		l.mu.Lock()
		entry, ok := l.locks[addr]
		if !ok {
			entry = &accountLock{}
			l.locks[addr] = entry
		}
		entry.refs++
		l.mu.Unlock()
		entry.mu.Lock()
		held = append(held, entry)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, sorted[i])
			}
			l.mu.Unlock()
		}
	}
}

// size returns the number of addresses currently locked or waited on
func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
