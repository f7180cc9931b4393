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

package main

import (
	"fmt"

	"github.com/blinklabs-io/crowdfund/keystore"
	"github.com/spf13/cobra"
)

// addKeyFileFlag registers --keyfile on cmd. An empty value falls back to
// the keyFile config setting
func addKeyFileFlag(cmd *cobra.Command, keyFile *string) {
	cmd.Flags().StringVarP(
		keyFile,
		"keyfile",
		"k",
		"",
		"path to the signing keypair (solana-keygen JSON format)",
	)
}

func loadKeyStore(cmd *cobra.Command, keyFile string) (*keystore.KeyStore, error) {
	if keyFile == "" {
		keyFile = mustConfig(cmd).KeyFile
	}
	ks := keystore.NewKeyStore(keystore.KeyStoreConfig{
		KeyPath: keyFile,
		Logger:  stderrLogger(),
	})
	if err := ks.Load(); err != nil {
		return nil, err
	}
	return ks, nil
}

func keygenCommand() *cobra.Command {
	var keyFile string
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signing keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyFile == "" {
				keyFile = mustConfig(cmd).KeyFile
			}
			ks := keystore.NewKeyStore(keystore.KeyStoreConfig{
				KeyPath: keyFile,
				Logger:  stderrLogger(),
			})
			if err := ks.Generate(force); err != nil {
				return err
			}
			fmt.Println(ks.PublicKey().String())
			return nil
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keyfile")
	return cmd
}
