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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	instructionsTotal   *prometheus.CounterVec
	instructionDuration *prometheus.HistogramVec
	lamportsDonated     prometheus.Counter
	lamportsWithdrawn   prometheus.Counter
	lamportsAirdropped  prometheus.Counter
	activeCampaigns     prometheus.Gauge
	lastSequence        prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.instructionsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdfund_instructions_total",
			Help: "instructions processed by kind and result",
		},
		[]string{"kind", "result"},
	)
	m.instructionDuration = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crowdfund_instruction_duration_seconds",
			Help:    "time spent processing an instruction",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"kind"},
	)
	m.lamportsDonated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "crowdfund_lamports_donated_total",
		Help: "lamports moved from donors into campaigns",
	})
	m.lamportsWithdrawn = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "crowdfund_lamports_withdrawn_total",
		Help: "lamports withdrawn from campaigns by their authority",
	})
	m.lamportsAirdropped = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "crowdfund_lamports_airdropped_total",
		Help: "lamports credited by the faucet",
	})
	m.activeCampaigns = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "crowdfund_active_campaigns",
		Help: "number of active campaigns",
	})
	m.lastSequence = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "crowdfund_last_sequence",
		Help: "sequence number of the last committed instruction",
	})
}
