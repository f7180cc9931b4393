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

// Package keystore loads and stores the ed25519 signing key used to submit
// crowdfunding instructions.
package keystore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrInsecureFileMode is returned when a key file is readable by
	// anyone other than its owner
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrInvalidKeyFile   = errors.New("invalid key file")
	ErrKeyFileExists    = errors.New("key file already exists")
	ErrKeyNotLoaded     = errors.New("signing key not loaded")
)

type KeyStoreConfig struct {
	Logger  *slog.Logger
	KeyPath string
}

// KeyStore holds a single signing key loaded from disk
type KeyStore struct {
	config KeyStoreConfig
	key    solana.PrivateKey
	mu     sync.RWMutex
}

func NewKeyStore(cfg KeyStoreConfig) *KeyStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &KeyStore{config: cfg}
}

// Load reads the key file from the configured path
func (k *KeyStore) Load() error {
	key, err := ReadKeyFile(k.config.KeyPath)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	k.config.Logger.Debug(
		"loaded signing key",
		"component", "keystore",
		"path", k.config.KeyPath,
		"public_key", key.PublicKey().String(),
	)
	return nil
}

// Generate creates a new key and writes it to the configured path. An
// existing file is only replaced when overwrite is set
func (k *KeyStore) Generate(overwrite bool) error {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	if err := WriteKeyFile(k.config.KeyPath, key, overwrite); err != nil {
		return err
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	k.config.Logger.Info(
		"generated signing key",
		"component", "keystore",
		"path", k.config.KeyPath,
		"public_key", key.PublicKey().String(),
	)
	return nil
}

func (k *KeyStore) IsLoaded() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.key) > 0
}

// PublicKey returns the public half of the loaded key, or the zero key
func (k *KeyStore) PublicKey() solana.PublicKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.key) == 0 {
		return solana.PublicKey{}
	}
	return k.key.PublicKey()
}

// Sign signs an instruction message whose signer is the loaded key
func (k *KeyStore) Sign(msg *ledger.Message) (*ledger.Transaction, error) {
	k.mu.RLock()
	key := k.key
	k.mu.RUnlock()
	if len(key) == 0 {
		return nil, ErrKeyNotLoaded
	}
	return ledger.SignTransaction(msg, key)
}
