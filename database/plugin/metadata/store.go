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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/database/plugin"
	"github.com/blinklabs-io/crowdfund/database/types"
	"gorm.io/gorm"
)

type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Campaign mirror
	GetCampaign(
		[]byte, // address
		types.Txn,
	) (*models.Campaign, error)
	GetCampaignByAuthority(
		[]byte, // authority
		types.Txn,
	) (*models.Campaign, error)
	SetCampaign(*models.Campaign, types.Txn) error
	DeleteCampaign(
		[]byte, // address
		types.Txn,
	) error
	CountCampaigns(types.Txn) (int64, error)

	// Instruction journal
	AddInstruction(*models.Instruction, types.Txn) error
	GetInstructionBySignature(
		[]byte, // signature
		types.Txn,
	) (*models.Instruction, error)
	GetInstructions(
		[]byte, // campaign address
		int, // limit
		bool, // include rejected entries
		types.Txn,
	) ([]models.Instruction, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
