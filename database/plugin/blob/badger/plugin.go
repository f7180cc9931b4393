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

package badger

import (
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/database/plugin"
)

// Account records are a few hundred bytes, so the caches stay small
const (
	DefaultBlockCacheSize = 64 << 20
	DefaultIndexCacheSize = 16 << 20
	DefaultGcInterval     = 5 * time.Minute
	DefaultDataDir        = ".crowdfund"
)

var (
	cmdlineOptions struct {
		dataDir        string
		gcInterval     string
		blockCacheSize uint64
		indexCacheSize uint64
		gcEnabled      bool
		syncWrites     bool
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	o := &cmdlineOptions
	o.dataDir = DefaultDataDir
	o.blockCacheSize, o.indexCacheSize = DefaultBlockCacheSize, DefaultIndexCacheSize
	o.gcEnabled, o.gcInterval = true, DefaultGcInterval.String()
	o.syncWrites = true
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB account store (default)",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				plugin.StringOption("data-dir", "Data directory for badger storage, empty for in-memory", DefaultDataDir, &o.dataDir),
				plugin.UintOption("block-cache-size", "Badger block cache size in bytes", DefaultBlockCacheSize, &o.blockCacheSize),
				plugin.UintOption("index-cache-size", "Badger index cache size in bytes", DefaultIndexCacheSize, &o.indexCacheSize),
				plugin.BoolOption("gc", "Enable value log garbage collection", true, &o.gcEnabled),
				plugin.StringOption("gc-interval", "Period between value log GC runs", DefaultGcInterval.String(), &o.gcInterval),
				plugin.BoolOption("sync-writes", "Fsync every committed instruction", true, &o.syncWrites),
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	o := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	gcInterval, err := time.ParseDuration(o.gcInterval)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	p, err := New(
		WithDataDir(o.dataDir),
		WithBlockCacheSize(o.blockCacheSize),
		WithIndexCacheSize(o.indexCacheSize),
		WithGc(o.gcEnabled),
		WithGcInterval(gcInterval),
		WithSyncWrites(o.syncWrites),
		WithLogger(plugin.Logger()),
		WithPromRegistry(plugin.PromRegistry()),
	)
	if err != nil {
		// Surfaced by Start
		return plugin.NewErrorPlugin(err)
	}
	return p
}
