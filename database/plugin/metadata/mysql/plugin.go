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
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/database/plugin"
)

const (
	defaultHost            = "localhost"
	defaultPort            = 3306
	defaultUser            = "root"
	defaultDatabase        = "crowdfund"
	defaultTimeZone        = "UTC"
	defaultMaxOpenConns    = 16
	defaultConnMaxIdleTime = "5m"
)

var (
	cmdlineOptions struct {
		host            string
		user            string
		password        string
		database        string
		tlsMode         string
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
	o.database, o.timeZone = defaultDatabase, defaultTimeZone
	o.maxOpenConns, o.connMaxIdleTime = defaultMaxOpenConns, defaultConnMaxIdleTime
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL campaign mirror and instruction journal",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				plugin.StringOption("host", "MySQL host", defaultHost, &o.host),
				plugin.UintOption("port", "MySQL port", defaultPort, &o.port),
				plugin.StringOption("user", "MySQL user", defaultUser, &o.user),
				plugin.StringOption("password", "MySQL password (required)", "", &o.password),
				plugin.StringOption("database", "MySQL database name, created on first start", defaultDatabase, &o.database),
				plugin.StringOption("tls", "MySQL tls parameter (true, false, skip-verify, preferred)", "", &o.tlsMode),
				plugin.StringOption("timezone", "MySQL connection time zone", defaultTimeZone, &o.timeZone),
				plugin.StringOption("dsn", "Full MySQL DSN (overrides other options when set)", "", &o.dsn),
				plugin.UintOption("max-open-conns", "Maximum pooled connections", defaultMaxOpenConns, &o.maxOpenConns),
				plugin.StringOption("conn-max-idle-time", "Close pooled connections idle this long, 0 to keep", defaultConnMaxIdleTime, &o.connMaxIdleTime),
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
		WithTLSMode(o.tlsMode),
		WithTimeZone(o.timeZone),
		WithDSN(o.dsn),
		WithMaxOpenConns(int(o.maxOpenConns)), //nolint:gosec // small flag value
		WithConnMaxIdleTime(idle),
		WithLogger(plugin.Logger()),
		WithPromRegistry(plugin.PromRegistry()),
	)
}
