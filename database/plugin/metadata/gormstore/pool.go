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

package gormstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// PoolConfig bounds the connection pool of a metadata store. Instructions
// on disjoint accounts commit in parallel, each holding one connection.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
}

// ApplyPool sets the pool limits on db. Zero values keep the driver
// defaults.
func ApplyPool(db *gorm.DB, cfg PoolConfig) error {
	sqlDb, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return nil
}

// RegisterStats registers the database/sql pool collector for db under
// dbName. It returns nil when no registry is configured.
func RegisterStats(
	db *gorm.DB,
	promRegistry prometheus.Registerer,
	dbName string,
) (prometheus.Collector, error) {
	if promRegistry == nil {
		return nil, nil
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	collector := collectors.NewDBStatsCollector(sqlDb, dbName)
	if err := promRegistry.Register(collector); err != nil {
		return nil, err
	}
	return collector, nil
}

// closeOnError closes the pool of a connection that failed setup
func closeOnError(db *gorm.DB) {
	if sqlDb, err := db.DB(); err == nil {
		_ = sqlDb.Close()
	}
}

// Open wraps a freshly opened connection: it applies pool limits, migrates
// the schema and registers pool stats. The connection is closed on error.
func Open(
	db *gorm.DB,
	pool PoolConfig,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	statsName string,
) (*Store, prometheus.Collector, error) {
	if err := ApplyPool(db, pool); err != nil {
		closeOnError(db)
		return nil, nil, err
	}
	store, err := New(db, logger)
	if err != nil {
		closeOnError(db)
		return nil, nil, err
	}
	stats, err := RegisterStats(db, promRegistry, statsName)
	if err != nil {
		closeOnError(db)
		return nil, nil, err
	}
	return store, stats, nil
}
