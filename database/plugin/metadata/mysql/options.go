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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MysqlOptionFunc func(*MetadataStoreMysql)

func WithLogger(logger *slog.Logger) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.logger = logger }
}

// WithPromRegistry enables the connection pool stats collector
func WithPromRegistry(registry prometheus.Registerer) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.promRegistry = registry }
}

func WithHost(host string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.host = host }
}

func WithPort(port uint) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.port = port }
}

func WithUser(user string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.user = user }
}

func WithPassword(password string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.password = password }
}

func WithDatabase(database string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.database = database }
}

// WithTLSMode sets the driver tls parameter
func WithTLSMode(tlsMode string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.tlsMode = tlsMode }
}

// WithTimeZone sets the location used to parse DATETIME columns
func WithTimeZone(timeZone string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.timeZone = timeZone }
}

// WithDSN sets a full connection string. It takes precedence over the
// individual connection options.
func WithDSN(dsn string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.dsn = dsn }
}

// WithMaxOpenConns caps the number of pooled connections
func WithMaxOpenConns(maxOpenConns int) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.pool.MaxOpenConns = maxOpenConns }
}

// WithConnMaxIdleTime closes pooled connections idle for longer than d.
// Keep it below the server wait_timeout.
func WithConnMaxIdleTime(d time.Duration) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) { m.pool.ConnMaxIdleTime = d }
}
