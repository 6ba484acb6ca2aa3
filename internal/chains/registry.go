package chains

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"farmScope/internal/farm"
	"farmScope/internal/model"
)

// ErrChainUnsupported is returned for chains without a registry entry.
var ErrChainUnsupported = errors.New("chain unsupported")

// RewardToken is the reward token priced on BSC for every chain, so all
// chains share one price source for it.
var RewardToken = model.TokenRef{
	Chain:   "bsc",
	Address: common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"),
}

// ChainConfig describes the reward contract deployed on one chain.
type ChainConfig struct {
	Name        string
	ID          uint64
	MasterChef  common.Address
	ABI         abi.ABI
	RewardToken model.TokenRef
}

// Registry is an immutable chain-name keyed set of ChainConfig.
type Registry struct {
	chains map[string]ChainConfig
}

// NewRegistry builds a registry; names are matched case-insensitively.
func NewRegistry(configs ...ChainConfig) *Registry {
	chains := make(map[string]ChainConfig, len(configs))
	for _, cfg := range configs {
		chains[strings.ToLower(cfg.Name)] = cfg
	}
	return &Registry{chains: chains}
}

// Default returns the registry of supported deployments.
func Default() (*Registry, error) {
	contract, err := farm.MasterChefV3ABI()
	if err != nil {
		return nil, fmt.Errorf("parse masterchef abi: %w", err)
	}
	return NewRegistry(
		ChainConfig{
			Name:        "base",
			ID:          8453,
			MasterChef:  common.HexToAddress("0x52eaecac2402633d98b95213d0b473e069d86590"),
			ABI:         contract,
			RewardToken: RewardToken,
		},
	), nil
}

// Lookup returns the config for a chain or ErrChainUnsupported.
func (r *Registry) Lookup(name string) (ChainConfig, error) {
	if r != nil {
		if cfg, ok := r.chains[strings.ToLower(strings.TrimSpace(name))]; ok {
			return cfg, nil
		}
	}
	return ChainConfig{}, fmt.Errorf("%w: %q", ErrChainUnsupported, name)
}

// Names returns the registered chain names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
