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

// Package database coordinates the blob store holding account state with the
// metadata store holding the SQL campaign mirror and instruction journal.
package database

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/crowdfund/database/plugin"
	"github.com/blinklabs-io/crowdfund/database/plugin/blob"
	"github.com/blinklabs-io/crowdfund/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"

	// Register plugins
	_ "github.com/blinklabs-io/crowdfund/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/crowdfund/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/crowdfund/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/crowdfund/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the database configuration. An empty DataDir keeps the
// default stores in memory.
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
}

type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	config   *Config
}

// plugin options and globals are process wide, so store construction is
// serialized
var newMutex sync.Mutex

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Config returns the config object used for the database
func (d *Database) Config() *Config {
	return d.config
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New creates a new database instance using the configured plugins
func New(
	config *Config,
) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		config.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if config.BlobPlugin == "" {
		config.BlobPlugin = DefaultBlobPlugin
	}
	if config.MetadataPlugin == "" {
		config.MetadataPlugin = DefaultMetadataPlugin
	}
	blobDb, metadataDb, err := startPlugins(config)
	if err != nil {
		return nil, err
	}
	db := &Database{
		logger:   config.Logger,
		blob:     blobDb,
		metadata: metadataDb,
		config:   config,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}

func startPlugins(
	config *Config,
) (blob.BlobStore, metadata.MetadataStore, error) {
	newMutex.Lock()
	defer newMutex.Unlock()
	plugin.SetLogger(config.Logger)
	plugin.SetPromRegistry(config.PromRegistry)
	// Point both plugins at the data directory. Plugins without a data-dir
	// option ignore this
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		config.BlobPlugin,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, nil, err
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		config.MetadataPlugin,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, nil, err
	}
	metadataDb, err := metadata.New(config.MetadataPlugin)
	if err != nil {
		return nil, nil, err
	}
	blobDb, err := blob.New(config.BlobPlugin)
	if err != nil {
		return nil, nil, errors.Join(err, metadataDb.Close())
	}
	return blobDb, metadataDb, nil
}
