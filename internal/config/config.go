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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/database/plugin"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "crowdfund.config"

const (
	DefaultBlobPlugin      = "badger"
	DefaultMetadataPlugin  = "sqlite"
	DefaultShutdownTimeout = "30s"

	envPrefix = "crowdfund"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   *yaml.Node      `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath        string `yaml:"databasePath"        split_words:"true"`
	BlobPlugin          string `yaml:"blobPlugin"          envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin      string `yaml:"metadataPlugin"      envconfig:"DATABASE_METADATA_PLUGIN"`
	BindAddr            string `yaml:"bindAddr"            split_words:"true"`
	ProgramId           string `yaml:"programId"           split_words:"true"`
	KeyFile             string `yaml:"keyFile"             split_words:"true"`
	ShutdownTimeout     string `yaml:"shutdownTimeout"     split_words:"true"`
	ApiPort             uint   `yaml:"apiPort"             split_words:"true"`
	MetricsPort         uint   `yaml:"metricsPort"         split_words:"true"`
	LamportsPerByteYear uint64 `yaml:"lamportsPerByteYear" split_words:"true"`
	ExemptionThreshold  uint64 `yaml:"exemptionThreshold"  split_words:"true"`
	FaucetEnabled       bool   `yaml:"faucetEnabled"       split_words:"true"`
	Tracing             bool   `yaml:"tracing"`
	TracingStdout       bool   `yaml:"tracingStdout"       split_words:"true"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:        ".crowdfund",
		BlobPlugin:          DefaultBlobPlugin,
		MetadataPlugin:      DefaultMetadataPlugin,
		BindAddr:            "0.0.0.0",
		ProgramId:           address.DefaultProgramID.String(),
		KeyFile:             DefaultKeyFile(),
		ShutdownTimeout:     DefaultShutdownTimeout,
		ApiPort:             8080,
		MetricsPort:         12799,
		LamportsPerByteYear: ledger.DefaultLamportsPerByteYear,
		ExemptionThreshold:  ledger.DefaultExemptionThreshold,
	}
}

// DefaultKeyFile is the keypair location used by the solana CLI
func DefaultKeyFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return filepath.Join(homeDir, ".config", "solana", "id.json")
}

// ProgramID parses the configured program id
func (c *Config) ProgramID() (solana.PublicKey, error) {
	ret, err := solana.PublicKeyFromBase58(c.ProgramId)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid programId %q: %w", c.ProgramId, err)
	}
	return ret, nil
}

func (c *Config) Rent() ledger.RentConfig {
	return ledger.RentConfig{
		LamportsPerByteYear: c.LamportsPerByteYear,
		ExemptionThreshold:  c.ExemptionThreshold,
	}
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
	}
	return ret, nil
}

func (c *Config) validate() error {
	if _, err := c.ProgramID(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if c.LamportsPerByteYear == 0 || c.ExemptionThreshold == 0 {
		return errors.New("lamportsPerByteYear and exemptionThreshold must be non-zero")
	}
	return nil
}

// findConfigFile returns the first of ~/.crowdfund/crowdfund.yaml and
// /etc/crowdfund/crowdfund.yaml that exists
func findConfigFile() string {
	var candidates []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(
			candidates,
			filepath.Join(homeDir, ".crowdfund", "crowdfund.yaml"),
		)
	}
	candidates = append(candidates, "/etc/crowdfund/crowdfund.yaml")
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig builds the configuration from defaults, the YAML config file
// and then the environment. An empty configFile searches the default
// locations
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := cfg.loadYAML(buf); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(buf []byte) error {
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config != nil {
		// Decoding the node only touches the keys present in the section
		if err := tempCfg.Config.Decode(c); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, c); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Database == nil {
		return nil
	}
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Database.Blob != nil {
		name, sections := splitPluginSection(tempCfg.Database.Blob)
		if name != "" {
			c.BlobPlugin = name
		}
		pluginConfig[plugin.PluginTypeName(plugin.PluginTypeBlob)] = sections
	}
	if tempCfg.Database.Metadata != nil {
		name, sections := splitPluginSection(tempCfg.Database.Metadata)
		if name != "" {
			c.MetadataPlugin = name
		}
		pluginConfig[plugin.PluginTypeName(plugin.PluginTypeMetadata)] = sections
	}
	if err := plugin.ProcessConfig(pluginConfig); err != nil {
		return fmt.Errorf("error processing plugin config: %w", err)
	}
	return nil
}

// splitPluginSection separates the "plugin" selector of a database section
// from the per-plugin option maps
func splitPluginSection(
	section map[string]any,
) (string, map[string]map[string]any) {
	section = maps.Clone(section)
	var name string
	if pluginVal, ok := section["plugin"].(string); ok {
		name = pluginVal
		delete(section, "plugin")
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			converted := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					converted[keyStr] = vv
				}
			}
			ret[k] = converted
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping database config entry %q: expected map, got %T\n",
				k,
				v,
			)
		}
	}
	return name, ret
}
