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

package postgres

import (
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/database/plugin"
)

const (
	defaultHost         = "localhost"
	defaultPort         = 5432
	defaultUser         = "postgres"
	defaultDatabase     = "crowdfund"
	defaultSSLMode      = "disable"
	defaultTimeZone     = "UTC"
	defaultMaxOpenConns = 16
)

var (
	cmdlineOptions struct {
		host            string
		user            string
		password        string
		database        string
		sslMode         string
		timeZone        string
		dsn             string
		connMaxIdleTime string
		port            uint64
		maxOpenConns    uint64
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	o := &cmdlineOptions
	o.host, o.port, o.user = defaultHost, defaultPort, defaultUser
	o.database, o.sslMode, o.timeZone = defaultDatabase, defaultSSLMode, defaultTimeZone
	o.maxOpenConns, o.connMaxIdleTime = defaultMaxOpenConns, "0s"
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "postgres",
			Description:        "Postgres campaign mirror and instruction journal",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				plugin.StringOption("host", "Postgres host", defaultHost, &o.host),
				plugin.UintOption("port", "Postgres port", defaultPort, &o.port),
				plugin.StringOption("user", "Postgres user", defaultUser, &o.user),
				// No default password, operators supply their own
				plugin.StringOption("password", "Postgres password (required)", "", &o.password),
				plugin.StringOption("database", "Postgres database name", defaultDatabase, &o.database),
				plugin.StringOption("ssl-mode", "Postgres sslmode", defaultSSLMode, &o.sslMode),
				plugin.StringOption("timezone", "Postgres TimeZone", defaultTimeZone, &o.timeZone),
				plugin.StringOption("dsn", "Full Postgres DSN (overrides other options when set)", "", &o.dsn),
				plugin.UintOption("max-open-conns", "Maximum pooled connections", defaultMaxOpenConns, &o.maxOpenConns),
				plugin.StringOption("conn-max-idle-time", "Close pooled connections idle this long, 0 to keep", "0s", &o.connMaxIdleTime),
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	o := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	idle, err := time.ParseDuration(o.connMaxIdleTime)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return NewWithOptions(
		WithHost(o.host),
		WithPort(uint(o.port)),
		WithUser(o.user),
		WithPassword(o.password),
		WithDatabase(o.database),
		WithSSLMode(o.sslMode),
		WithTimeZone(o.timeZone),
		WithDSN(o.dsn),
		WithMaxOpenConns(int(o.maxOpenConns)), //nolint:gosec // small flag value
		WithConnMaxIdleTime(idle),
		WithLogger(plugin.Logger()),
		WithPromRegistry(plugin.PromRegistry()),
	)
}
