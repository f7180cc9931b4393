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

// Package ledger applies campaign instructions to the account state held in
// the database.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/crowdfund/address"
	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/crowdfund/ledger"

type LedgerStateConfig struct {
	Logger         *slog.Logger
	EventBus       *event.EventBus
	PromRegistry   prometheus.Registerer
	DataDir        string
	BlobPlugin     string
	MetadataPlugin string
	ProgramID      solana.PublicKey
	Rent           RentConfig
	FaucetEnabled  bool
}

type LedgerState struct {
	config  LedgerStateConfig
	db      *database.Database
	locks   *accountLocks
	tracer  trace.Tracer
	metrics stateMetrics
	reserve uint64
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = address.DefaultProgramID
	}
	if cfg.Rent.LamportsPerByteYear == 0 && cfg.Rent.ExemptionThreshold == 0 {
		cfg.Rent = DefaultRentConfig()
	}
	ls := &LedgerState{
		config:  cfg,
		locks:   newAccountLocks(),
		tracer:  otel.Tracer(tracerName),
		reserve: cfg.Rent.MinimumBalance(campaign.Space),
	}
	// Init metrics
	ls.metrics.init(ls.config.PromRegistry)
	// Load database
	needsRecovery := false
	db, err := database.New(&database.Config{
		Logger:         cfg.Logger,
		PromRegistry:   cfg.PromRegistry,
		DataDir:        cfg.DataDir,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		ls.config.Logger.Error(
			"failed to create database",
			"error", err,
			"component", "ledger",
		)
		return nil, err
	}
	ls.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			_ = db.Close()
			return nil, err
		}
		ls.config.Logger.Warn(
			"commit timestamps differ, realigning stores",
			"error", err,
			"blob_ahead", dbErr.BlobAhead(),
			"component", "ledger",
		)
		needsRecovery = true
	}
	if needsRecovery {
		if err := ls.recoverCommitTimestampConflict(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	count, err := ls.db.CountCampaigns(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("count campaigns: %w", err)
	}
	ls.metrics.activeCampaigns.Set(float64(count))
	ls.config.Logger.Info(
		"ledger state ready",
		"component", "ledger",
		"program_id", cfg.ProgramID.String(),
		"reserve", ls.reserve,
		"active_campaigns", count,
	)
	return ls, nil
}

// recoverCommitTimestampConflict realigns the commit timestamps after a
// partial commit. Account state in the blob store is authoritative and the
// campaign mirror is refreshed by the next instruction touching a campaign.
func (ls *LedgerState) recoverCommitTimestampConflict() error {
	txn := ls.db.Transaction(true)
	return txn.Do(func(*database.Txn) error { return nil })
}

func (ls *LedgerState) Close() error {
	return ls.db.Close()
}

func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

func (ls *LedgerState) ProgramID() solana.PublicKey {
	return ls.config.ProgramID
}

// Reserve returns the minimum custodial balance of a campaign account
func (ls *LedgerState) Reserve() uint64 {
	return ls.reserve
}

func (ls *LedgerState) FaucetEnabled() bool {
	return ls.config.FaucetEnabled
}

// DeriveCampaignAddress returns the campaign address of an authority
func (ls *LedgerState) DeriveCampaignAddress(
	authority solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	return address.Derive(ls.config.ProgramID, authority)
}

// Campaign returns the active campaign record at addr and its custodial
// lamports
func (ls *LedgerState) Campaign(
	addr solana.PublicKey,
) (*campaign.Record, uint64, error) {
	account, err := ls.db.GetAccount(addr, nil)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, 0, campaign.ErrCampaignNotFound
		}
		return nil, 0, err
	}
	if !account.IsOwnedBy(ls.config.ProgramID) {
		return nil, 0, campaign.ErrCampaignNotFound
	}
	record, err := campaign.UnmarshalAccountData(account.Data)
	if err != nil {
		return nil, 0, err
	}
	return record, account.Lamports, nil
}

// Account returns the raw account at addr
func (ls *LedgerState) Account(addr solana.PublicKey) (*database.Account, error) {
	return ls.db.GetAccount(addr, nil)
}

// Balance returns the lamports held at addr
func (ls *LedgerState) Balance(addr solana.PublicKey) (uint64, error) {
	return ls.db.GetBalance(addr, nil)
}

// Instructions returns the newest journal entries of a campaign. Anyone can
// submit a failing instruction against any campaign, so rejected entries
// are only returned when asked for.
func (ls *LedgerState) Instructions(
	addr solana.PublicKey,
	limit int,
	includeRejected bool,
) ([]models.Instruction, error) {
	return ls.db.GetInstructions(addr, limit, includeRejected, nil)
}

// InstructionBySignature returns the committed journal entry of a
// transaction
func (ls *LedgerState) InstructionBySignature(
	sig solana.Signature,
) (*models.Instruction, error) {
	return ls.db.GetInstructionBySignature(sig, nil)
}
