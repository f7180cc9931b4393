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

// Package crowdfund wires the campaign ledger, its event bus and the HTTP
// API into a runnable node.
package crowdfund

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/crowdfund/api"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/blinklabs-io/crowdfund/ledger"
)

const defaultShutdownTimeout = 30 * time.Second

type Node struct {
	eventBus      *event.EventBus
	ledgerState   *ledger.LedgerState
	api           *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	started       chan struct{}
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		started:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		n.eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the node and blocks until ctx is cancelled or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.start(ctx); err != nil {
		return errors.Join(err, n.Stop())
	}
	n.startOnce.Do(func() { close(n.started) })
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	state, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Logger:         n.config.logger,
		EventBus:       n.eventBus,
		PromRegistry:   n.config.promRegistry,
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		ProgramID:      n.config.programID,
		Rent:           n.config.rent,
		FaucetEnabled:  n.config.faucetEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	n.subscribeActivityLog()
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
				FaucetEnabled: n.config.faucetEnabled,
			},
			n.ledgerState,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
	}
	return nil
}

// Started is closed once every component is running
func (n *Node) Started() <-chan struct{} {
	return n.started
}

// LedgerState returns the ledger, or nil before Run
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// ApiServer returns the HTTP API server, or nil when it is disabled
func (n *Node) ApiServer() *api.Server {
	return n.api
}

// subscribeActivityLog logs every committed campaign instruction
func (n *Node) subscribeActivityLog() {
	for _, eventType := range []event.EventType{
		event.CampaignCreatedEventType,
		event.CampaignDonatedEventType,
		event.CampaignWithdrawnEventType,
		event.CampaignClosedEventType,
	} {
		n.eventBus.SubscribeFunc(eventType, func(evt event.Event) {
			n.config.logger.Info(
				"campaign activity",
				"component", "node",
				"event", string(evt.Type),
				"data", fmt.Sprintf("%+v", evt.Data),
			)
		})
	}
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := defaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Close database
	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.eventBus.Stop()

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
