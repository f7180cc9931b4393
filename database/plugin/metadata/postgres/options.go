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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PostgresOptionFunc func(*MetadataStorePostgres)

func WithLogger(logger *slog.Logger) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.logger = logger
	}
}

// WithPromRegistry enables the connection pool stats collector
func WithPromRegistry(registry prometheus.Registerer) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.promRegistry = registry
	}
}

func WithHost(host string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.host = host }
}

func WithPort(port uint) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.port = port }
}

func WithUser(user string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.user = user }
}

func WithPassword(password string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.password = password }
}

func WithDatabase(database string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.database = database }
}

func WithSSLMode(sslMode string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.sslMode = sslMode }
}

func WithTimeZone(timeZone string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.timeZone = timeZone }
}

// WithDSN sets a full connection string. It takes precedence over the
// individual connection options.
func WithDSN(dsn string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.dsn = dsn }
}

// WithMaxOpenConns caps the number of pooled connections
func WithMaxOpenConns(maxOpenConns int) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.pool.MaxOpenConns = maxOpenConns }
}

// WithConnMaxIdleTime closes pooled connections idle for longer than d
func WithConnMaxIdleTime(d time.Duration) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) { m.pool.ConnMaxIdleTime = d }
}
