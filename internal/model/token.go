package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenRef identifies a token on a named chain, as used by the price service.
type TokenRef struct {
	Chain   string
	Address common.Address
}

// Key returns the lowercase "<chain>:<address>" price key.
func (t TokenRef) Key() string {
	return PriceKey(t.Chain, t.Address)
}

// TokenPrice is a USD spot price as returned by the price service.
type TokenPrice struct {
	Price float64 `json:"price"`
}

// PriceKey builds the lowercase "<chain>:<address>" key.
func PriceKey(chain string, address common.Address) string {
	return strings.ToLower(chain) + ":" + AddressKey(address)
}

// AddressKey lowercases an address for case-insensitive joins.
func AddressKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}
