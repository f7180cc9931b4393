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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crowdfund.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	// Point the search path at an empty home so no user config is picked up
	t.Setenv("HOME", t.TempDir())
	if _, err := os.Stat("/etc/crowdfund/crowdfund.yaml"); err == nil {
		t.Skip("system config file present")
	}
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	programID, err := cfg.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, address.DefaultProgramID, programID)
	assert.Equal(t, uint64(3_480_000), cfg.Rent().MinimumBalance(372))
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
databasePath: "/var/lib/crowdfund"
apiPort: 9000
faucetEnabled: true
shutdownTimeout: "5s"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := DefaultConfig()
	expected.DatabasePath = "/var/lib/crowdfund"
	expected.ApiPort = 9000
	expected.FaucetEnabled = true
	expected.ShutdownTimeout = "5s"
	assert.Equal(t, expected, cfg)
}

func TestLoadConfigSection(t *testing.T) {
	path := writeConfigFile(t, `
config:
  metricsPort: 9100
  tracing: true
database:
  blob:
    plugin: badger
  metadata:
    plugin: postgres
    postgres:
      host: db.example.com
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9100), cfg.MetricsPort)
	assert.True(t, cfg.Tracing)
	assert.Equal(t, "badger", cfg.BlobPlugin)
	assert.Equal(t, "postgres", cfg.MetadataPlugin)
	// Keys missing from the section keep their defaults
	defaults := DefaultConfig()
	assert.Equal(t, defaults.ProgramId, cfg.ProgramId)
	assert.Equal(t, defaults.DatabasePath, cfg.DatabasePath)
	assert.Equal(t, defaults.ApiPort, cfg.ApiPort)
	assert.Equal(t, defaults.LamportsPerByteYear, cfg.LamportsPerByteYear)
	assert.Equal(t, defaults.ExemptionThreshold, cfg.ExemptionThreshold)
}

func TestLoadYAMLSectionKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.loadYAML([]byte("config:\n  apiPort: 9000\n")))
	expected := DefaultConfig()
	expected.ApiPort = 9000
	assert.Equal(t, expected, cfg)
	require.NoError(t, cfg.validate())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "apiPort: 9000\n")
	t.Setenv("CROWDFUND_API_PORT", "9500")
	t.Setenv("CROWDFUND_DATABASE_METADATA_PLUGIN", "mysql")
	t.Setenv("CROWDFUND_FAUCET_ENABLED", "true")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9500), cfg.ApiPort)
	assert.Equal(t, "mysql", cfg.MetadataPlugin)
	assert.True(t, cfg.FaucetEnabled)
}

func TestLoadConfigValidation(t *testing.T) {
	testDefs := map[string]string{
		"program id":   "programId: not-base58!\n",
		"timeout":      "shutdownTimeout: soon\n",
		"rent":         "exemptionThreshold: 0\n",
		"invalid yaml": "apiPort: [\n",
	}
	for name, content := range testDefs {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, content))
			require.Error(t, err)
		})
	}
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
