package state

import (
	"strings"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Filter is a composable predicate over an entity. Lookups apply the
// conjunction of all supplied filters.
type Filter[E any] func(E) bool

// findFirst returns the first entity satisfying every filter.
func findFirst[E any](entities []E, filters ...Filter[E]) (E, bool) {
	for i := range entities {
		if matchAll(entities[i], filters) {
			return entities[i], true
		}
	}
	var zero E
	return zero, false
}

// listAll returns every entity satisfying every filter.
func listAll[E any](entities []E, filters ...Filter[E]) []E {
	out := []E{}
	for i := range entities {
		if matchAll(entities[i], filters) {
			out = append(out, entities[i])
		}
	}
	return out
}

func matchAll[E any](e E, filters []Filter[E]) bool {
	for _, f := range filters {
		if !f(e) {
			return false
		}
	}
	return true
}

// Account filters.

// AccountChainID matches accounts on the given chain.
func AccountChainID(chainID types.Felt) Filter[Account] {
	return func(a Account) bool { return a.ChainID.Equal(chainID) }
}

// AccountAddress matches accounts by numeric address equality, so callers
// may pass any hex formatting of the same value.
func AccountAddress(address types.Felt) Filter[Account] {
	return func(a Account) bool { return a.Address.Equal(address) }
}

// AccountVisible matches accounts the user has not hidden.
func AccountVisible() Filter[Account] {
	return func(a Account) bool { return a.Visible }
}

// AccountDerivationPath matches accounts sharing a derivation path prefix.
func AccountDerivationPath(path string) Filter[Account] {
	return func(a Account) bool { return strings.HasPrefix(a.DerivationPath, path) }
}

// Network filters.

// NetworkChainID matches networks by chain id.
func NetworkChainID(chainID types.Felt) Filter[Network] {
	return func(n Network) bool { return n.ChainID.Equal(chainID) }
}

// Token filters.

// TokenChainID matches tokens on the given chain.
func TokenChainID(chainID types.Felt) Filter[Erc20Token] {
	return func(t Erc20Token) bool { return t.ChainID.Equal(chainID) }
}

// TokenAddress matches tokens by numeric address equality.
func TokenAddress(address types.Felt) Filter[Erc20Token] {
	return func(t Erc20Token) bool { return t.Address.Equal(address) }
}

// TokenSymbol matches tokens by case-insensitive symbol.
func TokenSymbol(symbol string) Filter[Erc20Token] {
	return func(t Erc20Token) bool { return strings.EqualFold(t.Symbol, symbol) }
}

// Transaction record filters.

// TxnChainID matches records on the given chain.
func TxnChainID(chainID types.Felt) Filter[TransactionRecord] {
	return func(r TransactionRecord) bool { return r.ChainID.Equal(chainID) }
}

// TxnSender matches records by sender address.
func TxnSender(address types.Felt) Filter[TransactionRecord] {
	return func(r TransactionRecord) bool { return r.SenderAddress.Equal(address) }
}

// TxnHash matches a record by transaction hash.
func TxnHash(hash types.Felt) Filter[TransactionRecord] {
	return func(r TransactionRecord) bool { return r.TxnHash.Equal(hash) }
}

// Request filters.

// RequestID matches a transaction request by id.
func RequestID(id string) Filter[TransactionRequest] {
	return func(r TransactionRequest) bool { return r.ID == id }
}

// RequestInterfaceID matches a transaction request by its dialog handle.
func RequestInterfaceID(interfaceID string) Filter[TransactionRequest] {
	return func(r TransactionRequest) bool { return r.InterfaceID == interfaceID }
}
