package state

import (
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// TokenStore manages the persisted ERC-20 token collection.
type TokenStore struct {
	store *Store
	// preloaded is the built-in token set; entries here cannot be
	// re-added or shadowed by the user.
	preloaded []Erc20Token
}

// NewTokenStore creates a token store with the given preloaded set.
func NewTokenStore(store *Store, preloaded []Erc20Token) *TokenStore {
	return &TokenStore{store: store, preloaded: preloaded}
}

// Find returns the first token matching all filters.
func (s *TokenStore) Find(filters ...Filter[Erc20Token]) (Erc20Token, bool, error) {
	var t Erc20Token
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		t, ok = findFirst(snap.Tokens, filters...)
		return nil
	})
	return t, ok, err
}

// Get returns the token with the given address on the given chain.
func (s *TokenStore) Get(chainID, address types.Felt) (Erc20Token, bool, error) {
	return s.Find(TokenChainID(chainID), TokenAddress(address))
}

// List returns every token on the given chain.
func (s *TokenStore) List(chainID types.Felt) ([]Erc20Token, error) {
	var out []Erc20Token
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Tokens, TokenChainID(chainID))
		return nil
	})
	return out, err
}

// IsPreloaded reports whether the (chainId, address) pair belongs to the
// built-in token set.
func (s *TokenStore) IsPreloaded(chainID, address types.Felt) bool {
	for _, t := range s.preloaded {
		if t.ChainID.Equal(chainID) && t.Address.Equal(address) {
			return true
		}
	}
	return false
}

// AddDefaults inserts the preloaded tokens that are not yet persisted.
func (s *TokenStore) AddDefaults() error {
	return s.store.Update(func(snap *Snapshot) error {
		for _, token := range s.preloaded {
			if _, ok := findFirst(snap.Tokens, TokenChainID(token.ChainID), TokenAddress(token.Address)); !ok {
				snap.Tokens = append(snap.Tokens, token)
			}
		}
		return nil
	})
}

// Upsert inserts the token or applies a narrow update (name, symbol,
// decimals) to the existing entry with the same (chainId, address) key.
// Preloaded tokens are protected: attempts to shadow them fail.
func (s *TokenStore) Upsert(token Erc20Token) error {
	if s.IsPreloaded(token.ChainID, token.Address) {
		return fmt.Errorf("token %s is preloaded and cannot be modified", token.Address)
	}
	return s.store.Update(func(snap *Snapshot) error {
		for i := range snap.Tokens {
			t := &snap.Tokens[i]
			if t.ChainID.Equal(token.ChainID) && t.Address.Equal(token.Address) {
				t.Name = token.Name
				t.Symbol = token.Symbol
				t.Decimals = token.Decimals
				return nil
			}
		}
		snap.Tokens = append(snap.Tokens, token)
		return nil
	})
}

// FeeToken returns the native gas token (ETH) for the given chain.
func (s *TokenStore) FeeToken(chainID types.Felt) (Erc20Token, bool, error) {
	return s.Find(TokenChainID(chainID), TokenSymbol(string(types.FeeTokenETH)))
}

// SecondaryFeeToken returns the chain's secondary fee token (STRK).
func (s *TokenStore) SecondaryFeeToken(chainID types.Felt) (Erc20Token, bool, error) {
	return s.Find(TokenChainID(chainID), TokenSymbol(string(types.FeeTokenSTRK)))
}
