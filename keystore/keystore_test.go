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

package keystore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/keystore"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoad(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "keys", "id.json")
	ks := keystore.NewKeyStore(keystore.KeyStoreConfig{KeyPath: keyPath})
	assert.False(t, ks.IsLoaded())
	assert.True(t, ks.PublicKey().IsZero())

	require.NoError(t, ks.Generate(false))
	require.True(t, ks.IsLoaded())
	if runtime.GOOS != "windows" {
		fi, err := os.Stat(keyPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	loaded := keystore.NewKeyStore(keystore.KeyStoreConfig{KeyPath: keyPath})
	require.NoError(t, loaded.Load())
	assert.Equal(t, ks.PublicKey(), loaded.PublicKey())

	// Generating again must not clobber the existing key
	require.ErrorIs(t, ks.Generate(false), keystore.ErrKeyFileExists)
	require.NoError(t, ks.Generate(true))
	assert.NotEqual(t, loaded.PublicKey(), ks.PublicKey())
}

func TestReadSolanaKeygenFile(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, keystore.WriteKeyFile(keyPath, key, false))

	// Files written here must also be readable by solana-go's own loader
	fromLib, err := solana.PrivateKeyFromSolanaKeygenFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, key, fromLib)

	readBack, err := keystore.ReadKeyFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, key, readBack)
}

func TestReadKeyFileRejectsMalformed(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mismatched := make([]byte, len(key))
	copy(mismatched, key)
	mismatched[40] ^= 0xff

	testDefs := map[string]string{
		"not json":     "hello",
		"short":        "[1,2,3]",
		"out of range": "[" + repeatJSON("256", 64) + "]",
		"mismatch":     string(mustJSON(t, mismatched)),
	}
	dir := t.TempDir()
	for name, content := range testDefs {
		t.Run(name, func(t *testing.T) {
			keyPath := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(keyPath, []byte(content), 0o600))
			_, err := keystore.ReadKeyFile(keyPath)
			require.ErrorIs(t, err, keystore.ErrInvalidKeyFile)
		})
	}
}

func TestReadKeyFileInsecureMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix file modes")
	}
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, keystore.WriteKeyFile(keyPath, key, false))
	require.NoError(t, os.Chmod(keyPath, 0o644))
	_, err = keystore.ReadKeyFile(keyPath)
	require.ErrorIs(t, err, keystore.ErrInsecureFileMode)
}

func TestSign(t *testing.T) {
	ks := keystore.NewKeyStore(keystore.KeyStoreConfig{
		KeyPath: filepath.Join(t.TempDir(), "id.json"),
	})
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	msg, err := ledger.NewMessage(
		address.DefaultProgramID,
		other.PublicKey(),
		nil,
		campaign.CloseArgs{},
		1,
	)
	require.NoError(t, err)
	_, err = ks.Sign(msg)
	require.ErrorIs(t, err, keystore.ErrKeyNotLoaded)

	require.NoError(t, ks.Generate(false))
	_, err = ks.Sign(msg)
	require.ErrorIs(t, err, ledger.ErrSignerKeyMismatch)

	msg.Signer = ks.PublicKey()
	tx, err := ks.Sign(msg)
	require.NoError(t, err)
	signer, err := ledger.Authenticate(tx)
	require.NoError(t, err)
	assert.True(t, signer.Is(ks.PublicKey()))
}
