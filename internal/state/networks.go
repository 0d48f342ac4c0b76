package state

import (
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// NetworkStore manages the persisted network collection and the current
// network pointer.
type NetworkStore struct {
	store *Store
	// fallback is returned by GetCurrent when the persisted pointer is
	// stale (not in the known set) or was never written.
	fallback Network
}

// NewNetworkStore creates a network store. The fallback network is used
// whenever the current-network pointer does not resolve.
func NewNetworkStore(store *Store, fallback Network) *NetworkStore {
	return &NetworkStore{store: store, fallback: fallback}
}

// Find returns the first network matching all filters.
func (s *NetworkStore) Find(filters ...Filter[Network]) (Network, bool, error) {
	var n Network
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		n, ok = findFirst(snap.Networks, filters...)
		return nil
	})
	return n, ok, err
}

// Get returns the network with the given chain id.
func (s *NetworkStore) Get(chainID types.Felt) (Network, bool, error) {
	return s.Find(NetworkChainID(chainID))
}

// List returns all known networks.
func (s *NetworkStore) List() ([]Network, error) {
	var out []Network
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Networks)
		return nil
	})
	return out, err
}

// AddDefaults inserts each network or applies a narrow update (name,
// node URL) to an existing entry with the same chain id. The chain id
// itself is immutable.
func (s *NetworkStore) AddDefaults(networks []Network) error {
	return s.store.Update(func(snap *Snapshot) error {
		for _, network := range networks {
			updated := false
			for i := range snap.Networks {
				n := &snap.Networks[i]
				if n.ChainID.Equal(network.ChainID) {
					n.Name = network.Name
					n.NodeURL = network.NodeURL
					updated = true
					break
				}
			}
			if !updated {
				snap.Networks = append(snap.Networks, network)
			}
		}
		return nil
	})
}

// GetCurrent returns the current network. A stale or unset pointer falls
// back to the configured default.
func (s *NetworkStore) GetCurrent() (Network, error) {
	var current Network
	err := s.store.View(func(snap *Snapshot) error {
		if snap.CurrentChainID.IsZero() {
			current = s.fallback
			return nil
		}
		n, ok := findFirst(snap.Networks, NetworkChainID(snap.CurrentChainID))
		if !ok {
			current = s.fallback
			return nil
		}
		current = n
		return nil
	})
	return current, err
}

// SetCurrent points the current-network pointer at the given chain id.
// The chain must already be in the known set.
func (s *NetworkStore) SetCurrent(chainID types.Felt) error {
	return s.store.Update(func(snap *Snapshot) error {
		if _, ok := findFirst(snap.Networks, NetworkChainID(chainID)); !ok {
			return fmt.Errorf("network %s does not exist", chainID)
		}
		snap.CurrentChainID = chainID
		return nil
	})
}

// WithTransaction runs fn against one snapshot and commits the result
// atomically. Used when a read-decide-write sequence must not race, e.g.
// switch-network.
func (s *NetworkStore) WithTransaction(fn func(*Snapshot) error) error {
	return s.store.Update(fn)
}
