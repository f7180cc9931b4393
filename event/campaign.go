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

package event

import (
	"github.com/gagliardetto/solana-go"
)

const (
	CampaignCreatedEventType   EventType = "campaign.created"
	CampaignDonatedEventType   EventType = "campaign.donated"
	CampaignWithdrawnEventType EventType = "campaign.withdrawn"
	CampaignClosedEventType    EventType = "campaign.closed"
)

type CampaignCreatedEvent struct {
	Name         string
	Signature    solana.Signature
	Address      solana.PublicKey
	Authority    solana.PublicKey
	TargetAmount uint64
	Reserve      uint64
	Sequence     uint64
}

type CampaignDonatedEvent struct {
	Signature     solana.Signature
	Address       solana.PublicKey
	Donor         solana.PublicKey
	Amount        uint64
	AmountDonated uint64
	Sequence      uint64
}

type CampaignWithdrawnEvent struct {
	Signature       solana.Signature
	Address         solana.PublicKey
	Authority       solana.PublicKey
	Amount          uint64
	AmountWithdrawn uint64
	Sequence        uint64
}

// CampaignClosedEvent carries the lamports returned to the authority,
// reserve included
type CampaignClosedEvent struct {
	Signature solana.Signature
	Address   solana.PublicKey
	Authority solana.PublicKey
	Lamports  uint64
	Sequence  uint64
}
