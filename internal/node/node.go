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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/crowdfund"
	"github.com/blinklabs-io/crowdfund/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewNode builds a node from the loaded configuration
func NewNode(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*crowdfund.Node, error) {
	programID, err := cfg.ProgramID()
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := []crowdfund.ConfigOptionFunc{
		crowdfund.WithDatabasePath(cfg.DatabasePath),
		crowdfund.WithBlobPlugin(cfg.BlobPlugin),
		crowdfund.WithMetadataPlugin(cfg.MetadataPlugin),
		crowdfund.WithProgramID(programID),
		crowdfund.WithRent(cfg.Rent()),
		crowdfund.WithFaucet(cfg.FaucetEnabled),
		crowdfund.WithTracing(cfg.Tracing),
		crowdfund.WithTracingStdout(cfg.TracingStdout),
		crowdfund.WithShutdownTimeout(shutdownTimeout),
		crowdfund.WithPrometheusRegistry(promRegistry),
	}
	if logger != nil {
		opts = append(opts, crowdfund.WithLogger(logger))
	}
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			crowdfund.WithApiListenAddress(hostPort(cfg.BindAddr, cfg.ApiPort)),
		)
	}
	return crowdfund.New(crowdfund.NewConfig(opts...))
}

func hostPort(host string, port uint) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// Run serves the node and its metrics listener until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	n, err := NewNode(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              hostPort(cfg.BindAddr, cfg.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("failed to start metrics listener: %s", err),
					"component", "node",
				)
			}
		}()
	}

	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	runErr := n.Run(signalCtx)
	if signalCtx.Err() != nil {
		logger.Info("signal received, shut down", "component", "node")
	}
	if metricsServer != nil {
		shutdownTimeout, _ := cfg.ShutdownTimeoutDuration()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(
				"metrics server shutdown error",
				"component", "node",
				"error", err,
			)
		}
	}
	if runErr != nil {
		logger.Error("node error", "component", "node", "error", runErr)
		return runErr
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}
