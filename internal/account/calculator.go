// Package account maps signer keys to deterministic contract addresses and
// resolves addresses back to their key hierarchy position.
package account

import (
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Default class hashes for the two supported account contract generations.
var (
	// ClassHashCurrent is the upgraded account contract class.
	ClassHashCurrent = types.MustFelt("0x29927c8af6bccf3f6fda035981e765a7bdbf18a2dc0d630494f8758aa908e2b")

	// ClassHashLegacy is the implementation class behind the legacy proxy.
	ClassHashLegacy = types.MustFelt("0x033434ad846cdd5f23eb73ff09fe6fddd568284a0fb7d1be20ee482f044dabe2")

	// ProxyClassHash is the legacy proxy contract class the address is
	// computed against.
	ProxyClassHash = types.MustFelt("0x25ec026985a3bf9d0cc1fe17326b245dfdc3ff89b8fde106542a3ea56c5a918")
)

var selInitialize = types.Selector("initialize")

// Calculator computes deterministic account contract addresses for a
// network. The current class hash follows the network configuration; the
// legacy proxy scheme is fixed.
type Calculator struct {
	classHash       types.Felt
	legacyClassHash types.Felt
	proxyClassHash  types.Felt
}

// NewCalculator creates a calculator for the given network. A network
// without a configured account class hash falls back to the default.
func NewCalculator(network state.Network) *Calculator {
	classHash := network.AccountClassHash
	if classHash.IsZero() {
		classHash = ClassHashCurrent
	}
	return &Calculator{
		classHash:       classHash,
		legacyClassHash: ClassHashLegacy,
		proxyClassHash:  ProxyClassHash,
	}
}

// ClassHash returns the current account contract class hash.
func (c *Calculator) ClassHash() types.Felt {
	return c.classHash
}

// ComputeAddress returns the deterministic contract address and the
// constructor calldata for the given signer key and contract generation.
// The public key doubles as the address salt, so one key maps to exactly
// one address per generation.
func (c *Calculator) ComputeAddress(publicKey types.Felt, version state.ContractVersion) (types.Felt, []types.Felt) {
	if version == state.VersionLegacy {
		// The legacy account is a proxy: the constructor receives the
		// implementation class, the initializer selector and the
		// initializer arguments (signer, no guardian).
		calldata := []types.Felt{
			c.legacyClassHash,
			selInitialize,
			types.NewFelt(2),
			publicKey,
			types.NewFelt(0),
		}
		return types.ComputeContractAddress(publicKey, c.proxyClassHash, calldata), calldata
	}

	calldata := []types.Felt{publicKey, types.NewFelt(0)}
	return types.ComputeContractAddress(publicKey, c.classHash, calldata), calldata
}

// DeploymentData is everything a caller needs to deploy the current-class
// account contract for a signer key.
type DeploymentData struct {
	Address             types.Felt
	ClassHash           types.Felt
	Salt                types.Felt
	ConstructorCalldata []types.Felt
}

// Deployment returns the deployment payload for the current generation.
func (c *Calculator) Deployment(publicKey types.Felt) DeploymentData {
	address, calldata := c.ComputeAddress(publicKey, state.VersionCurrent)
	return DeploymentData{
		Address:             address,
		ClassHash:           c.classHash,
		Salt:                publicKey,
		ConstructorCalldata: calldata,
	}
}
