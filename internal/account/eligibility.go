package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// minContractVersion is the lowest legacy contract version that can still
// be used without an upgrade.
var minContractVersion = [3]int{0, 3, 0}

// Eligibility evaluates whether an account needs deployment or an upgrade
// before it may sign. Results are computed fresh from chain state on every
// call, never cached.
type Eligibility struct {
	client chain.Client
}

// NewEligibility creates an eligibility checker over the given node client.
func NewEligibility(client chain.Client) *Eligibility {
	return &Eligibility{client: client}
}

// RequiresDeploy reports whether the signer key needs its legacy-address
// balance rescued by a deployment: neither contract generation is deployed,
// yet the legacy address holds funds.
func (e *Eligibility) RequiresDeploy(ctx context.Context, network state.Network, feeToken types.Felt, publicKey types.Felt) (bool, error) {
	calc := NewCalculator(network)
	currentAddr, _ := calc.ComputeAddress(publicKey, state.VersionCurrent)
	legacyAddr, _ := calc.ComputeAddress(publicKey, state.VersionLegacy)

	deployed, err := e.isDeployed(ctx, currentAddr)
	if err != nil {
		return false, err
	}
	if deployed {
		return false, nil
	}
	deployed, err = e.isDeployed(ctx, legacyAddr)
	if err != nil {
		return false, err
	}
	if deployed {
		return false, nil
	}

	balance, err := e.client.BalanceOf(ctx, feeToken, legacyAddr)
	if err != nil {
		if errors.Is(err, chain.ErrContractNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check legacy balance: %w", err)
	}
	return !balance.IsZero(), nil
}

// RequiresUpgrade reports whether the signer key has a deployed legacy
// contract whose version is below the minimum supported one.
func (e *Eligibility) RequiresUpgrade(ctx context.Context, network state.Network, publicKey types.Felt) (bool, error) {
	calc := NewCalculator(network)
	legacyAddr, _ := calc.ComputeAddress(publicKey, state.VersionLegacy)

	version, err := e.client.ClassVersionAt(ctx, legacyAddr)
	if err != nil {
		if errors.Is(err, chain.ErrContractNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read legacy contract version: %w", err)
	}
	below, err := versionBelow(version, minContractVersion)
	if err != nil {
		return false, fmt.Errorf("contract %s: %w", legacyAddr, err)
	}
	return below, nil
}

// versionBelow compares a dotted version string against a minimum triple.
func versionBelow(version string, min [3]int) (bool, error) {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	for i := 0; i < 3; i++ {
		have := 0
		if i < len(parts) && parts[i] != "" {
			n, err := strconv.Atoi(parts[i])
			if err != nil {
				return false, fmt.Errorf("malformed contract version %q", version)
			}
			have = n
		}
		if have < min[i] {
			return true, nil
		}
		if have > min[i] {
			return false, nil
		}
	}
	return false, nil
}

func (e *Eligibility) isDeployed(ctx context.Context, address types.Felt) (bool, error) {
	_, err := e.client.ClassVersionAt(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrContractNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check deployment at %s: %w", address, err)
	}
	return true, nil
}
