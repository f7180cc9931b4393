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

package mysql

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/crowdfund/database/plugin/metadata/gormstore"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mysqlErrUnknownDatabase is the server error number for a missing schema
const mysqlErrUnknownDatabase = 1049

// MetadataStoreMysql stores metadata in MySQL. The connection is opened in
// Start()
type MetadataStoreMysql struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	dbStats      prometheus.Collector
	logger       *slog.Logger

	host     string
	port     uint
	user     string
	password string
	database string
	tlsMode  string
	timeZone string
	dsn      string
	pool     gormstore.PoolConfig
}

// NewWithOptions creates a new, unconnected store
func NewWithOptions(opts ...MysqlOptionFunc) *MetadataStoreMysql {
	db := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(db)
	}
	if db.host == "" {
		db.host = defaultHost
	}
	if db.port == 0 {
		db.port = defaultPort
	}
	if db.user == "" {
		db.user = defaultUser
	}
	if db.database == "" {
		db.database = defaultDatabase
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db
}

// Config returns the driver config used by Start()
func (d *MetadataStoreMysql) Config() (*mysql.Config, error) {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return mysql.ParseDSN(dsn)
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.host, strconv.FormatUint(uint64(d.port), 10))
	cfg.DBName = d.database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	if d.timeZone != "" {
		loc, err := time.LoadLocation(d.timeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone %q: %w", d.timeZone, err)
		}
		cfg.Loc = loc
	}
	if d.tlsMode != "" {
		cfg.TLSConfig = d.tlsMode
	}
	return cfg, nil
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	cfg, err := d.Config()
	if err != nil {
		return err
	}
	metadataDb, err := d.open(cfg)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) ||
			mysqlErr.Number != mysqlErrUnknownDatabase {
			return err
		}
		if err := d.createDatabase(cfg); err != nil {
			return err
		}
		if metadataDb, err = d.open(cfg); err != nil {
			return err
		}
	}
	store, stats, err := gormstore.Open(
		metadataDb,
		d.pool,
		d.logger,
		d.promRegistry,
		"metadata_mysql",
	)
	if err != nil {
		return err
	}
	d.Store, d.dbStats = store, stats
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"addr", cfg.Addr,
		"database", cfg.DBName,
	)
	return nil
}

func (d *MetadataStoreMysql) open(cfg *mysql.Config) (*gorm.DB, error) {
	return gorm.Open(
		gormmysql.Open(cfg.FormatDSN()),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
}

// createDatabase connects without a schema and creates the configured one
func (d *MetadataStoreMysql) createDatabase(cfg *mysql.Config) error {
	if cfg.DBName == "" || strings.Contains(cfg.DBName, "`") {
		return fmt.Errorf("invalid database name %q", cfg.DBName)
	}
	adminCfg := cfg.Clone()
	adminCfg.DBName = ""
	adminDb, err := d.open(adminCfg)
	if err != nil {
		return err
	}
	sqlDb, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlDb.Close()
	d.logger.Info(
		"creating mysql database",
		"component", "database",
		"database", cfg.DBName,
	)
	return adminDb.Exec(
		"CREATE DATABASE IF NOT EXISTS `" + cfg.DBName + "`",
	).Error
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the connection if one was opened
func (d *MetadataStoreMysql) Close() error {
	if d.dbStats != nil {
		d.promRegistry.Unregister(d.dbStats)
		d.dbStats = nil
	}
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
