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
	"errors"
	"time"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// accountsFunc returns the instruction accounts given the signer and the
// campaign address of authority
type accountsFunc func(signer, campaignAddr solana.PublicKey) []solana.PublicKey

// submitInstruction signs ix with the keyfile and applies it to the local
// ledger. A zero authority means the signer owns the campaign
func submitInstruction(
	cmd *cobra.Command,
	keyFile string,
	authority solana.PublicKey,
	accounts accountsFunc,
	ix campaign.Instruction,
) (retErr error) {
	ks, err := loadKeyStore(cmd, keyFile)
	if err != nil {
		return err
	}
	ls, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, ls.Close())
	}()
	signer := ks.PublicKey()
	if authority.IsZero() {
		authority = signer
	}
	campaignAddr, _, err := ls.DeriveCampaignAddress(authority)
	if err != nil {
		return err
	}
	msg, err := ledger.NewMessage(
		ls.ProgramID(),
		signer,
		accounts(signer, campaignAddr),
		ix,
		uint64(time.Now().UnixNano()), //nolint:gosec // wall clock is positive
	)
	if err != nil {
		return err
	}
	tx, err := ks.Sign(msg)
	if err != nil {
		return err
	}
	result, err := ls.Process(cmd.Context(), tx)
	if err != nil {
		return err
	}
	return printJSON(transactionOutput(result))
}

func signerAccounts(signer, campaignAddr solana.PublicKey) []solana.PublicKey {
	return []solana.PublicKey{campaignAddr, signer}
}

func createCommand() *cobra.Command {
	var keyFile string
	var args campaign.CreateArgs
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign owned by the keyfile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return submitInstruction(
				cmd,
				keyFile,
				solana.PublicKey{},
				signerAccounts,
				args,
			)
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().StringVar(&args.Name, "name", "", "campaign name")
	cmd.Flags().StringVar(&args.Description, "description", "", "campaign description")
	cmd.Flags().Uint64Var(&args.TargetAmount, "target", 0, "target amount in lamports")
	return cmd
}

func donateCommand() *cobra.Command {
	var keyFile, authority string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "donate",
		Short: "Donate lamports from the keyfile to a campaign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			authorityKey, err := parsePublicKey(authority)
			if err != nil {
				return err
			}
			return submitInstruction(
				cmd,
				keyFile,
				authorityKey,
				func(signer, campaignAddr solana.PublicKey) []solana.PublicKey {
					return []solana.PublicKey{campaignAddr, authorityKey, signer}
				},
				campaign.DonateArgs{Amount: amount},
			)
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().StringVar(&authority, "authority", "", "authority of the campaign")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "lamports to donate")
	_ = cmd.MarkFlagRequired("authority")
	return cmd
}

func withdrawCommand() *cobra.Command {
	var keyFile string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw donated lamports from the keyfile's campaign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return submitInstruction(
				cmd,
				keyFile,
				solana.PublicKey{},
				signerAccounts,
				campaign.WithdrawArgs{Amount: amount},
			)
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "lamports to withdraw")
	return cmd
}

func closeCommand() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the keyfile's campaign and reclaim its lamports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return submitInstruction(
				cmd,
				keyFile,
				solana.PublicKey{},
				signerAccounts,
				campaign.CloseArgs{},
			)
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	return cmd
}
