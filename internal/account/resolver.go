package account

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// ErrAddressNotFound is returned when an address matches no persisted
// account and no derivable candidate within the scan bound.
var ErrAddressNotFound = errors.New("address not found")

// DefaultMaxScan bounds the derivation scan when resolving an address that
// is not in the store.
const DefaultMaxScan = 20

// Resolver maps contract addresses back to derived key pairs. Persisted
// accounts are checked first; unknown addresses fall back to a bounded
// derivation scan over both contract generations.
type Resolver struct {
	accounts *state.AccountStore
	deriver  keyring.Deriver
	maxScan  uint32
	logger   zerolog.Logger
}

// NewResolver creates a resolver. maxScan of 0 selects DefaultMaxScan.
func NewResolver(accounts *state.AccountStore, deriver keyring.Deriver, maxScan uint32) *Resolver {
	if maxScan == 0 {
		maxScan = DefaultMaxScan
	}
	return &Resolver{
		accounts: accounts,
		deriver:  deriver,
		maxScan:  maxScan,
		logger:   klog.Wallet,
	}
}

// Resolve finds the account and key pair behind an address on the given
// network. The returned account is not persisted by the scan path; callers
// decide whether a discovered account should be stored.
func (r *Resolver) Resolve(ctx context.Context, network state.Network, address types.Felt) (state.Account, keyring.KeyPair, error) {
	stored, ok, err := r.accounts.Get(network.ChainID, address)
	if err != nil {
		return state.Account{}, keyring.KeyPair{}, fmt.Errorf("account lookup: %w", err)
	}
	if ok {
		kp, err := r.deriver.Derive(stored.Index)
		if err != nil {
			return state.Account{}, keyring.KeyPair{}, fmt.Errorf("derive index %d: %w", stored.Index, err)
		}
		return stored, kp, nil
	}

	calc := NewCalculator(network)
	for index := uint32(0); index < r.maxScan; index++ {
		if err := ctx.Err(); err != nil {
			return state.Account{}, keyring.KeyPair{}, err
		}
		kp, err := r.deriver.Derive(index)
		if err != nil {
			return state.Account{}, keyring.KeyPair{}, fmt.Errorf("derive index %d: %w", index, err)
		}
		for _, version := range []state.ContractVersion{state.VersionCurrent, state.VersionLegacy} {
			candidate, _ := calc.ComputeAddress(kp.PublicKey, version)
			if !candidate.Equal(address) {
				continue
			}
			r.logger.Debug().Uint32("index", index).Str("version", string(version)).
				Str("address", address.String()).Msg("Address resolved by derivation scan")
			return state.Account{
				Address:         candidate,
				PublicKey:       kp.PublicKey,
				Index:           index,
				DerivationPath:  kp.DerivationPath,
				ChainID:         network.ChainID,
				ContractVersion: version,
				Visible:         true,
			}, kp, nil
		}
	}
	return state.Account{}, keyring.KeyPair{},
		fmt.Errorf("%w: %s after scanning %d indices", ErrAddressNotFound, address, r.maxScan)
}

// NextIndex returns the derivation index the next account should use: the
// lowest persisted account on this deriver's path whose public key was
// never materialized, else the count of persisted accounts on the path.
func (r *Resolver) NextIndex(chainID types.Felt) (uint32, error) {
	all, err := r.accounts.ListWhere(
		state.AccountChainID(chainID),
		state.AccountDerivationPath(r.deriver.Path()),
	)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	for _, acct := range all {
		if acct.PublicKey.IsZero() {
			return acct.Index, nil
		}
	}
	return uint32(len(all)), nil
}
