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
	"fmt"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/api"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// authorityArg returns the authority named by args, or the keyfile's public
// key when none is given
func authorityArg(
	cmd *cobra.Command,
	args []string,
	keyFile string,
) (solana.PublicKey, error) {
	if len(args) > 0 {
		return parsePublicKey(args[0])
	}
	ks, err := loadKeyStore(cmd, keyFile)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return ks.PublicKey(), nil
}

// withLedger opens the local ledger for the duration of fn
func withLedger(
	cmd *cobra.Command,
	fn func(ls *ledger.LedgerState) error,
) error {
	ls, err := openLedger(cmd)
	if err != nil {
		return err
	}
	return errors.Join(fn(ls), ls.Close())
}

func deriveCommand() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "derive [authority]",
		Short: "Print the campaign address of an authority",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := authorityArg(cmd, args, keyFile)
			if err != nil {
				return err
			}
			programID, err := mustConfig(cmd).ProgramID()
			if err != nil {
				return err
			}
			addr, bump, err := address.Derive(programID, authority)
			if err != nil {
				return err
			}
			return printJSON(api.DeriveResponse{
				Authority: authority.String(),
				ProgramID: programID.String(),
				Address:   addr.String(),
				Bump:      bump,
			})
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	return cmd
}

func showCommand() *cobra.Command {
	var keyFile, addrFlag string
	cmd := &cobra.Command{
		Use:   "show [authority]",
		Short: "Show the active campaign of an authority",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var campaignAddr solana.PublicKey
			if addrFlag != "" {
				addr, err := parsePublicKey(addrFlag)
				if err != nil {
					return err
				}
				campaignAddr = addr
			}
			var authority solana.PublicKey
			if campaignAddr.IsZero() {
				var err error
				authority, err = authorityArg(cmd, args, keyFile)
				if err != nil {
					return err
				}
			}
			return withLedger(cmd, func(ls *ledger.LedgerState) error {
				if campaignAddr.IsZero() {
					addr, _, err := ls.DeriveCampaignAddress(authority)
					if err != nil {
						return err
					}
					campaignAddr = addr
				}
				record, lamports, err := ls.Campaign(campaignAddr)
				if err != nil {
					return err
				}
				return printJSON(api.CampaignResponse{
					Address:         campaignAddr.String(),
					Authority:       record.Authority.String(),
					Name:            record.Name,
					Description:     record.Description,
					TargetAmount:    record.TargetAmount,
					AmountDonated:   record.AmountDonated,
					AmountWithdrawn: record.AmountWithdrawn,
					Available:       record.Available(),
					Lamports:        lamports,
					Reserve:         ls.Reserve(),
				})
			})
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().StringVar(&addrFlag, "address", "", "campaign address instead of an authority")
	return cmd
}

func balanceCommand() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Print the lamports held by an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := authorityArg(cmd, args, keyFile)
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ls *ledger.LedgerState) error {
				balance, err := ls.Balance(addr)
				if err != nil {
					return err
				}
				fmt.Println(balance)
				return nil
			})
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	return cmd
}

func airdropCommand() *cobra.Command {
	var keyFile string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "airdrop [address]",
		Short: "Credit lamports to a wallet when the faucet is enabled",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := authorityArg(cmd, args, keyFile)
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ls *ledger.LedgerState) error {
				balance, err := ls.Airdrop(cmd.Context(), recipient, amount)
				if err != nil {
					return err
				}
				return printJSON(api.AirdropResponse{
					Recipient: recipient.String(),
					Balance:   balance,
				})
			})
		},
	}
	addKeyFileFlag(cmd, &keyFile)
	cmd.Flags().Uint64Var(&amount, "amount", 1_000_000_000, "lamports to credit")
	return cmd
}
