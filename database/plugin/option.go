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
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables of plugin options, followed
// by the plugin type, plugin name and option name
const EnvPrefix = "CROWDFUND_DATABASE"

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	CustomEnvVar string
	CustomFlag   string
	Type         PluginOptionType
}

// StringOption describes a string option stored in dest
func StringOption(name, description, def string, dest *string) PluginOption {
	return PluginOption{
		Name:         name,
		Type:         PluginOptionTypeString,
		Description:  description,
		DefaultValue: def,
		Dest:         dest,
	}
}

// UintOption describes an unsigned option stored in dest
func UintOption(name, description string, def uint64, dest *uint64) PluginOption {
	return PluginOption{
		Name:         name,
		Type:         PluginOptionTypeUint,
		Description:  description,
		DefaultValue: def,
		Dest:         dest,
	}
}

// BoolOption describes a boolean option stored in dest
func BoolOption(name, description string, def bool, dest *bool) PluginOption {
	return PluginOption{
		Name:         name,
		Type:         PluginOptionTypeBool,
		Description:  description,
		DefaultValue: def,
		Dest:         dest,
	}
}

func (p *PluginOption) flagName(pluginType string, pluginName string) string {
	if p.CustomFlag != "" {
		return p.CustomFlag
	}
	return fmt.Sprintf("%s-%s-%s", pluginType, pluginName, p.Name)
}

// AddToFlagSet adds a flag for the option, bound directly to its destination
func (p *PluginOption) AddToFlagSet(
	fs *pflag.FlagSet,
	pluginType string,
	pluginName string,
) error {
	flagName := p.flagName(pluginType, pluginName)
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		if !ok {
			return fmt.Errorf("option %s: destination is not *string", flagName)
		}
		def, _ := p.DefaultValue.(string)
		fs.StringVar(dest, flagName, def, p.Description)
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		if !ok {
			return fmt.Errorf("option %s: destination is not *bool", flagName)
		}
		def, _ := p.DefaultValue.(bool)
		fs.BoolVar(dest, flagName, def, p.Description)
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		if !ok {
			return fmt.Errorf("option %s: destination is not *int", flagName)
		}
		def, _ := p.DefaultValue.(int)
		fs.IntVar(dest, flagName, def, p.Description)
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("option %s: destination is not *uint64", flagName)
		}
		def, _ := p.DefaultValue.(uint64)
		fs.Uint64Var(dest, flagName, def, p.Description)
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, flagName)
	}
	return nil
}

// ProcessEnvVars sets the option from the environment, if present
func (p *PluginOption) ProcessEnvVars(envPrefix string) error {
	envVar := p.CustomEnvVar
	if envVar == "" {
		envVar = envPrefix + strings.ToUpper(
			strings.ReplaceAll(p.Name, "-", "_"),
		)
	}
	value, ok := os.LookupEnv(envVar)
	if !ok {
		return nil
	}
	if err := p.setFromString(value); err != nil {
		return fmt.Errorf("environment variable %s: %w", envVar, err)
	}
	return nil
}

// ProcessConfig sets the option from a parsed config section, if present
func (p *PluginOption) ProcessConfig(pluginData map[string]any) error {
	value, ok := pluginData[p.Name]
	if !ok {
		return nil
	}
	if strValue, ok := value.(string); ok && p.Type != PluginOptionTypeString {
		return p.setFromString(strValue)
	}
	return p.setValue(value)
}

func (p *PluginOption) setFromString(value string) error {
	switch p.Type {
	case PluginOptionTypeString:
		return p.setValue(value)
	case PluginOptionTypeBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	case PluginOptionTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	case PluginOptionTypeUint:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
}

// setValue performs a type-checked assignment into the destination pointer
func (p *PluginOption) setValue(value any) error {
	switch p.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected string", p.Name)
		}
		return assign(p, v)
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected bool", p.Name)
		}
		return assign(p, v)
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected int", p.Name)
		}
		return assign(p, v)
	case PluginOptionTypeUint:
		switch tv := value.(type) {
		case uint64:
			return assign(p, tv)
		case int:
			if tv < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", p.Name)
			}
			return assign(p, uint64(tv))
		default:
			return fmt.Errorf("invalid type for option %s: expected uint64 or int", p.Name)
		}
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
}

func assign[T any](p *PluginOption, value T) error {
	if p.Dest == nil {
		return fmt.Errorf("nil destination for option %s", p.Name)
	}
	dest, ok := p.Dest.(*T)
	if !ok {
		return fmt.Errorf(
			"invalid destination type for option %s: expected *%T",
			p.Name,
			value,
		)
	}
	if dest == nil {
		return fmt.Errorf("nil destination pointer for option %s", p.Name)
	}
	*dest = value
	return nil
}
