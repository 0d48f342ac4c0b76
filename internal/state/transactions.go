package state

import (
	"sort"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// TransactionStore manages the append-only transaction record collection.
type TransactionStore struct {
	store *Store
}

// NewTransactionStore creates a transaction record store.
func NewTransactionStore(store *Store) *TransactionStore {
	return &TransactionStore{store: store}
}

// Add appends a record. Records are immutable once written.
func (s *TransactionStore) Add(record TransactionRecord) error {
	return s.store.Update(func(snap *Snapshot) error {
		snap.Transactions = append(snap.Transactions, record)
		return nil
	})
}

// Find returns the first record matching all filters.
func (s *TransactionStore) Find(filters ...Filter[TransactionRecord]) (TransactionRecord, bool, error) {
	var r TransactionRecord
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		r, ok = findFirst(snap.Transactions, filters...)
		return nil
	})
	return r, ok, err
}

// List returns the records for a sender on a chain, newest first. A zero
// sender selects every record on the chain.
func (s *TransactionStore) List(chainID, sender types.Felt) ([]TransactionRecord, error) {
	filters := []Filter[TransactionRecord]{TxnChainID(chainID)}
	if !sender.IsZero() {
		filters = append(filters, TxnSender(sender))
	}
	var out []TransactionRecord
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Transactions, filters...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}
