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

package sqlite

import (
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/database/plugin"
)

const DefaultDataDir = ".crowdfund"

var (
	cmdlineOptions struct {
		dataDir        string
		busyTimeoutMs  uint64
		vacuumInterval string
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	cmdlineOptions.dataDir = DefaultDataDir
	cmdlineOptions.busyTimeoutMs = uint64(DefaultBusyTimeout.Milliseconds())
	cmdlineOptions.vacuumInterval = DefaultVacuumInterval.String()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite campaign mirror and instruction journal (default)",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for sqlite storage, empty for in-memory",
					DefaultValue: DefaultDataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "busy-timeout",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Milliseconds to wait on a locked database file",
					DefaultValue: uint64(DefaultBusyTimeout.Milliseconds()),
					Dest:         &(cmdlineOptions.busyTimeoutMs),
				},
				{
					Name:         "vacuum-interval",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Period between VACUUM runs, 0 to disable",
					DefaultValue: DefaultVacuumInterval.String(),
					Dest:         &(cmdlineOptions.vacuumInterval),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	dataDir := cmdlineOptions.dataDir
	busyTimeout := time.Duration(cmdlineOptions.busyTimeoutMs) * time.Millisecond //nolint:gosec // bounded by flag parsing
	vacuumInterval := cmdlineOptions.vacuumInterval
	cmdlineOptionsMutex.RUnlock()

	interval, err := time.ParseDuration(vacuumInterval)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	p, err := NewWithOptions(
		WithDataDir(dataDir),
		WithBusyTimeout(busyTimeout),
		WithVacuumInterval(interval),
		WithLogger(plugin.Logger()),
		WithPromRegistry(plugin.PromRegistry()),
	)
	if err != nil {
		// Surfaced by Start
		return plugin.NewErrorPlugin(err)
	}
	return p
}
