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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/crowdfund/database/plugin"
	"github.com/blinklabs-io/crowdfund/database/plugin/blob/badger"
	"github.com/blinklabs-io/crowdfund/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGetSetDelete(t *testing.T) {
	store, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	defer store.Close()

	key := []byte("atestkey")
	txn := store.NewTransaction(true)
	_, err = store.Get(txn, key)
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	require.NoError(t, txn.Commit())

	// Finished transactions cannot be reused
	_, err = store.Get(txn, key)
	require.ErrorIs(t, err, types.ErrTxnFinished)

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	// Rolled back delete leaves the key in place
	require.NoError(t, txn.Rollback())
	txn = store.NewTransaction(false)
	_, err = store.Get(txn, key)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())
}

func TestForeignTxnRejected(t *testing.T) {
	store1, err := badger.New()
	require.NoError(t, err)
	defer store1.Close()
	store2, err := badger.New()
	require.NoError(t, err)
	defer store2.Close()

	txn := store2.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store1.Get(txn, []byte("x"))
	require.Error(t, err)
	_, err = store1.Get(nil, []byte("x"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestSequencePersistsAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	var last uint64
	for range 5 {
		next, err := store.NextSequence()
		require.NoError(t, err)
		assert.Greater(t, next, last)
		last = next
	}
	assert.Equal(t, uint64(5), last)
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close()
	next, err := store.NextSequence()
	require.NoError(t, err)
	assert.Greater(t, next, last)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	store, err := badger.New(badger.WithPromRegistry(registry))
	require.NoError(t, err)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	_, err = store.Get(txn, []byte("k"))
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	count, err := testutil.GatherAndCount(registry, "database_blob_ops_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second store on the same registry collides while the first is open
	_, err = badger.New(badger.WithPromRegistry(registry))
	require.Error(t, err)

	require.NoError(t, store.Close())
	store, err = badger.New(badger.WithPromRegistry(registry))
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestCmdlinePlugin(t *testing.T) {
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "data-dir", ""))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "gc-interval", "soon"))
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, "badger")
	require.Error(t, err)

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "gc-interval", "1m"))
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, "badger")
	require.NoError(t, err)
	assert.IsType(t, &badger.BlobStoreBadger{}, p)
	require.NoError(t, p.Stop())
}
