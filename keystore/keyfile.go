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

package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

// maxKeyFileSize bounds how much of a key file is read. A keypair file
// written by solana-keygen is well under 1KiB
const maxKeyFileSize = 1 << 20

// ReadKeyFile loads a keypair stored as a JSON array of 64 bytes, the
// format written by solana-keygen. Permissions are checked on the open
// file before its contents are read
func ReadKeyFile(path string) (solana.PrivateKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()
	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("read key file %q: %w", path, err)
	}
	return parseKeyFile(path, data)
}

func parseKeyFile(path string, data []byte) (solana.PrivateKey, error) {
	// Decoding into []byte would expect base64, so go through ints
	var raw []int
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidKeyFile, path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf(
			"%w: %q: expected %d bytes, found %d",
			ErrInvalidKeyFile,
			path,
			ed25519.PrivateKeySize,
			len(raw),
		)
	}
	key := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf(
				"%w: %q: byte %d out of range",
				ErrInvalidKeyFile,
				path,
				i,
			)
		}
		key[i] = byte(v)
	}
	// The second half must be the public key of the seed in the first half
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived, key) {
		return nil, fmt.Errorf(
			"%w: %q: public key does not match seed",
			ErrInvalidKeyFile,
			path,
		)
	}
	return solana.PrivateKey(key), nil
}

// WriteKeyFile stores key in the solana-keygen JSON format with owner-only
// permissions
func WriteKeyFile(path string, key solana.PrivateKey, overwrite bool) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: key has %d bytes", ErrInvalidKeyFile, len(key))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %q", ErrKeyFileExists, path)
		}
		return fmt.Errorf("create key file: %w", err)
	}
	// Truncating an existing file keeps its old mode
	if err := f.Chmod(0o600); err != nil {
		return errors.Join(fmt.Errorf("restrict key file: %w", err), f.Close())
	}
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write key file: %w", err), f.Close())
	}
	return f.Close()
}
