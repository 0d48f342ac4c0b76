package state

import (
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// AccountStore manages the persisted account collection.
type AccountStore struct {
	store *Store
}

// NewAccountStore creates an account store over the shared state store.
func NewAccountStore(store *Store) *AccountStore {
	return &AccountStore{store: store}
}

// Find returns the first account matching all filters, or false.
func (s *AccountStore) Find(filters ...Filter[Account]) (Account, bool, error) {
	var acc Account
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		acc, ok = findFirst(snap.Accounts, filters...)
		return nil
	})
	return acc, ok, err
}

// FindIn is Find against an already-loaded snapshot, for use inside a
// surrounding Update.
func (s *AccountStore) FindIn(snap *Snapshot, filters ...Filter[Account]) (Account, bool) {
	return findFirst(snap.Accounts, filters...)
}

// Get returns the account with the given address on the given chain.
func (s *AccountStore) Get(chainID, address types.Felt) (Account, bool, error) {
	return s.Find(AccountChainID(chainID), AccountAddress(address))
}

// List returns every account on the given chain.
func (s *AccountStore) List(chainID types.Felt) ([]Account, error) {
	var out []Account
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Accounts, AccountChainID(chainID))
		return nil
	})
	return out, err
}

// ListWhere returns every account matching all filters.
func (s *AccountStore) ListWhere(filters ...Filter[Account]) ([]Account, error) {
	var out []Account
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Accounts, filters...)
		return nil
	})
	return out, err
}

// Upsert inserts the account or applies a narrow field-level update to the
// existing entry with the same (chainId, address) natural key. Identity
// fields (address, index, public key, derivation path) are never rewritten
// on update.
func (s *AccountStore) Upsert(account Account) error {
	return s.store.Update(func(snap *Snapshot) error {
		for i := range snap.Accounts {
			a := &snap.Accounts[i]
			if a.ChainID.Equal(account.ChainID) && a.Address.Equal(account.Address) {
				a.Name = account.Name
				a.Deployed = account.Deployed
				a.UpgradeRequired = account.UpgradeRequired
				a.Visible = account.Visible
				// A placeholder entry materializes when its key arrives.
				if a.PublicKey.IsZero() {
					a.PublicKey = account.PublicKey
					a.ContractVersion = account.ContractVersion
				}
				return nil
			}
		}
		snap.Accounts = append(snap.Accounts, account)
		return nil
	})
}

// GetCurrent returns the chain's current account. A stale or unset
// pointer falls back to the first visible account on the chain.
func (s *AccountStore) GetCurrent(chainID types.Felt) (Account, bool, error) {
	var acc Account
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		if raw, set := snap.CurrentAccounts[chainID.PaddedHex()]; set {
			if address, err := types.ParseFelt(raw); err == nil {
				if acc, ok = findFirst(snap.Accounts, AccountChainID(chainID), AccountAddress(address)); ok {
					return nil
				}
			}
		}
		acc, ok = findFirst(snap.Accounts, AccountChainID(chainID), AccountVisible())
		return nil
	})
	return acc, ok, err
}

// SetCurrent points the chain's current-account pointer at the given
// address. The account must already exist on the chain.
func (s *AccountStore) SetCurrent(chainID, address types.Felt) error {
	return s.store.Update(func(snap *Snapshot) error {
		if _, ok := findFirst(snap.Accounts, AccountChainID(chainID), AccountAddress(address)); !ok {
			return fmt.Errorf("account %s does not exist on chain %s", address, chainID)
		}
		snap.CurrentAccounts[chainID.PaddedHex()] = address.PaddedHex()
		return nil
	})
}

// SetName updates an account's display name.
func (s *AccountStore) SetName(chainID, address types.Felt, name string) error {
	return s.mutate(chainID, address, func(a *Account) {
		a.Name = name
	})
}

// SetVisibility toggles an account's visibility flag.
func (s *AccountStore) SetVisibility(chainID, address types.Felt, visible bool) error {
	return s.mutate(chainID, address, func(a *Account) {
		a.Visible = visible
	})
}

// MarkDeployed records a successful deploy-account submission.
func (s *AccountStore) MarkDeployed(chainID, address, txnHash types.Felt) error {
	return s.mutate(chainID, address, func(a *Account) {
		a.Deployed = true
		a.UpgradeRequired = false
		a.DeployTxnHash = txnHash
	})
}

func (s *AccountStore) mutate(chainID, address types.Felt, fn func(*Account)) error {
	return s.store.Update(func(snap *Snapshot) error {
		for i := range snap.Accounts {
			a := &snap.Accounts[i]
			if a.ChainID.Equal(chainID) && a.Address.Equal(address) {
				fn(a)
				return nil
			}
		}
		return fmt.Errorf("account %s does not exist on chain %s", address, chainID)
	})
}
