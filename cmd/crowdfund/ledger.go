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
	"encoding/json"
	"os"

	"github.com/blinklabs-io/crowdfund/api"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// openLedger opens the local ledger database described by the config. The
// serve command must not be running against the same database
func openLedger(cmd *cobra.Command) (*ledger.LedgerState, error) {
	cfg := mustConfig(cmd)
	programID, err := cfg.ProgramID()
	if err != nil {
		return nil, err
	}
	return ledger.NewLedgerState(ledger.LedgerStateConfig{
		Logger:         stderrLogger(),
		DataDir:        cfg.DatabasePath,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
		ProgramID:      programID,
		Rent:           cfg.Rent(),
		FaucetEnabled:  cfg.FaucetEnabled,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePublicKey(value string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(value)
}

func transactionOutput(result *ledger.Result) api.TransactionResponse {
	ret := api.TransactionResponse{
		Kind:     result.Kind.String(),
		Campaign: result.Campaign.String(),
		Sequence: result.Sequence,
		Lamports: result.Lamports,
		Closed:   result.Record == nil,
	}
	if !result.Signature.IsZero() {
		ret.Signature = result.Signature.String()
	}
	return ret
}
