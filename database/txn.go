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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/database/types"
)

// ErrPartialCommit is returned when the blob store committed but the
// metadata store did not. Account state is applied; the campaign mirror
// and instruction journal are behind until the next commit.
var ErrPartialCommit = errors.New("partial commit")

type txnScope uint8

const (
	scopeBoth txnScope = iota
	scopeBlob
	scopeMetadata
)

// Txn spans one blob transaction and one metadata transaction. Account
// state lives in the blob store, which is committed first and treated as
// authoritative.
type Txn struct {
	db          *Database
	blobTxn     types.Txn
	metadataTxn types.Txn
	onCommit    []func()
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func newTxn(db *Database, readWrite bool, scope txnScope) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if scope != scopeMetadata {
		if bs := db.Blob(); bs != nil {
			t.blobTxn = bs.NewTransaction(readWrite)
		}
	}
	if scope != scopeBlob {
		if ms := db.Metadata(); ms != nil {
			t.metadataTxn = ms.Transaction()
		}
	}
	return t
}

// NewTxn opens a transaction on both stores
func NewTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, scopeBoth)
}

// NewBlobOnlyTxn opens a transaction on the account store only
func NewBlobOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, scopeBlob)
}

// NewMetadataOnlyTxn opens a transaction on the metadata store only. With
// sqlite this holds the single connection until the txn finishes.
func NewMetadataOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, scopeMetadata)
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the metadata transaction handle, nil for blob-only txns
func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

// Blob returns the blob transaction handle, nil for metadata-only txns
func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// OnCommit registers fn to run once account state is durable. Hooks run in
// registration order after the blob store commits, including when the
// metadata commit then fails. They never run after a rollback.
func (t *Txn) OnCommit(fn func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.onCommit = append(t.onCommit, fn)
}

// Do runs fn inside the transaction, committing when fn returns nil and
// rolling back otherwise
func (t *Txn) Do(fn func(*Txn) error) error {
	err := fn(t)
	if err == nil {
		return t.Commit()
	}
	if rbErr := t.Rollback(); rbErr != nil {
		return fmt.Errorf("%w (rollback: %w)", err, rbErr)
	}
	return err
}

func (t *Txn) Commit() error {
	t.lock.Lock()
	hooks, err := t.commit()
	t.lock.Unlock()
	// Hooks run unlocked so they may start new transactions
	for _, fn := range hooks {
		fn()
	}
	return err
}

func (t *Txn) commit() ([]func(), error) {
	if t.finished {
		return nil, nil
	}
	if !t.readWrite {
		return nil, t.rollback()
	}
	if t.blobTxn == nil && t.metadataTxn == nil {
		t.finished = true
		return nil, types.ErrNoStoreAvailable
	}
	if t.blobTxn != nil && t.metadataTxn != nil {
		if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
			return nil, errors.Join(
				fmt.Errorf("update commit timestamp: %w", err),
				t.rollback(),
			)
		}
	}
	t.finished = true
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			if t.metadataTxn != nil {
				_ = t.metadataTxn.Rollback()
			}
			return nil, fmt.Errorf("commit accounts: %w", err)
		}
	}
	hooks := t.onCommit
	t.onCommit = nil
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Commit(); err != nil {
			_ = t.metadataTxn.Rollback()
			if t.blobTxn == nil {
				return nil, fmt.Errorf("commit metadata: %w", err)
			}
			t.db.logger.Error(
				"accounts committed without metadata",
				"component", "database",
				"error", err,
			)
			return hooks, fmt.Errorf("%w: %w", ErrPartialCommit, err)
		}
	}
	return hooks, nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.onCommit = nil
	var errs []error
	if t.blobTxn != nil {
		if err := t.blobTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("blob rollback: %w", err))
		}
	}
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("metadata rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Release discards a read transaction. Errors are logged, so it is safe to
// defer.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
