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

package plugin

import (
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Plugins are constructed by name from the registry, so the logger and
// metrics registry they should use are held here and read at construction
var (
	pluginLogger       *slog.Logger
	pluginPromRegistry prometheus.Registerer
	pluginGlobalsMutex sync.RWMutex
)

// SetLogger sets the logger handed to plugins created after this call
func SetLogger(logger *slog.Logger) {
	pluginGlobalsMutex.Lock()
	defer pluginGlobalsMutex.Unlock()
	pluginLogger = logger
}

// Logger returns the logger for plugins, which discards output if none was set
func Logger() *slog.Logger {
	pluginGlobalsMutex.RLock()
	defer pluginGlobalsMutex.RUnlock()
	if pluginLogger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return pluginLogger
}

// SetPromRegistry sets the metrics registry handed to plugins created after
// this call. A nil registry disables plugin metrics.
func SetPromRegistry(registry prometheus.Registerer) {
	pluginGlobalsMutex.Lock()
	defer pluginGlobalsMutex.Unlock()
	pluginPromRegistry = registry
}

func PromRegistry() prometheus.Registerer {
	pluginGlobalsMutex.RLock()
	defer pluginGlobalsMutex.RUnlock()
	return pluginPromRegistry
}
