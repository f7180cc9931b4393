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
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return ""
	}
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var (
	pluginEntries []PluginEntry
	registryMutex sync.RWMutex
)

// Register adds a plugin to the registry. Registering a name twice for the
// same type replaces the earlier entry.
func Register(pluginEntry PluginEntry) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	pluginEntries = slices.DeleteFunc(
		pluginEntries,
		func(p PluginEntry) bool {
			return p.Type == pluginEntry.Type && p.Name == pluginEntry.Name
		},
	)
	pluginEntries = append(pluginEntries, pluginEntry)
}

// PopulateCmdlineOptions adds a flag for every registered plugin option
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	for _, entry := range pluginEntries {
		for _, option := range entry.Options {
			if err := option.AddToFlagSet(fs, PluginTypeName(entry.Type), entry.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from the environment
func ProcessEnvVars() error {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	for _, entry := range pluginEntries {
		envVarPrefix := strings.ToUpper(
			fmt.Sprintf(
				"%s_%s_%s_",
				EnvPrefix,
				PluginTypeName(entry.Type),
				entry.Name,
			),
		)
		for _, option := range entry.Options {
			if err := option.ProcessEnvVars(envVarPrefix); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	for _, entry := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(entry.Type)]
		if !ok {
			continue
		}
		entryConfig, ok := typeConfig[entry.Name]
		if !ok {
			continue
		}
		for _, option := range entry.Options {
			if err := option.ProcessConfig(entryConfig); err != nil {
				return fmt.Errorf(
					"%s plugin '%s': %w",
					PluginTypeName(entry.Type),
					entry.Name,
					err,
				)
			}
		}
	}
	return nil
}

// GetPlugins returns the registered plugins of a type, sorted by name
func GetPlugins(pluginType PluginType) []PluginEntry {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	ret := []PluginEntry{}
	for _, entry := range pluginEntries {
		if entry.Type == pluginType {
			ret = append(ret, entry)
		}
	}
	slices.SortFunc(ret, func(a, b PluginEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if it is not
// registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	var newFunc func() Plugin
	registryMutex.RLock()
	if entry, err := lookup(pluginType, pluginName); err == nil {
		newFunc = entry.NewFromOptionsFunc
	}
	registryMutex.RUnlock()
	if newFunc == nil {
		return nil
	}
	// Constructors read their own option state, so call them unlocked
	return newFunc()
}
