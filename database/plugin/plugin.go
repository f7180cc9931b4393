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
	"errors"
	"fmt"
)

// ErrPluginNotFound is returned when no plugin is registered under a name
var ErrPluginNotFound = errors.New("plugin not found")

// Plugin is a storage backend managed by the registry. Stores are opened by
// their constructor and released by Stop.
type Plugin interface {
	Start() error
	Stop() error
}

// ErrorPlugin carries a constructor failure until Start is called, since
// registry constructors cannot return errors
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error { return e.Err }

func (e *ErrorPlugin) Stop() error { return nil }

func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// lookup returns the registry entry for a plugin. Callers must hold
// registryMutex.
func lookup(pluginType PluginType, pluginName string) (*PluginEntry, error) {
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginType && pluginEntries[i].Name == pluginName {
			return &pluginEntries[i], nil
		}
	}
	return nil, fmt.Errorf(
		"%w: %s plugin '%s'",
		ErrPluginNotFound,
		PluginTypeName(pluginType),
		pluginName,
	)
}

// StartPlugin creates the named plugin from its current options and starts it
func StartPlugin(pluginType PluginType, pluginName string) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		registryMutex.RLock()
		_, err := lookup(pluginType, pluginName)
		registryMutex.RUnlock()
		if err == nil {
			err = fmt.Errorf("%s plugin '%s' returned no instance", PluginTypeName(pluginType), pluginName)
		}
		return nil, err
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption overrides one option of a plugin before it is created, for
// example the data dir chosen by the node config. Options the plugin does
// not define are ignored.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	entry, err := lookup(pluginType, pluginName)
	if err != nil {
		return err
	}
	for _, opt := range entry.Options {
		if opt.Name == optionName {
			return opt.setValue(value)
		}
	}
	return nil
}
