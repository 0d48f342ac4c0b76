package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/storage"
)

// stateKey is the single key the whole wallet snapshot is persisted under.
var stateKey = []byte("wallet/state")

// ManagerError wraps an underlying persistence failure. The original
// message is preserved; callers must not assume partial writes occurred.
type ManagerError struct {
	msg string
}

func (e *ManagerError) Error() string {
	return e.msg
}

// NewManagerError wraps err in a ManagerError.
func NewManagerError(err error) *ManagerError {
	return &ManagerError{msg: err.Error()}
}

// Store owns the durable wallet snapshot. Update applies a mutator to the
// latest committed snapshot and persists the result as one atomic operation;
// the writer mutex serializes concurrent updates so the second mutator
// always observes the first one's committed result.
type Store struct {
	mu     sync.Mutex
	db     storage.DB
	logger zerolog.Logger
}

// NewStore creates a state store over the given persistence backend.
func NewStore(db storage.DB) *Store {
	return &Store{
		db:     db,
		logger: klog.WithComponent("state"),
	}
}

// load reads and decodes the latest committed snapshot. A never-written
// state decodes to the empty snapshot.
func (s *Store) load() (*Snapshot, error) {
	data, err := s.db.Get(stateKey)
	if err != nil {
		if err == storage.ErrNotFound {
			snap := &Snapshot{}
			snap.normalize()
			return snap, nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	snap.normalize()
	return &snap, nil
}

// persist encodes and writes the snapshot.
func (s *Store) persist(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.db.Put(stateKey, data); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// View runs fn against the latest committed snapshot. fn must not retain
// the snapshot past its return.
func (s *Store) View(fn func(*Snapshot) error) error {
	s.mu.Lock()
	snap, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return NewManagerError(err)
	}
	return fn(snap)
}

// Update applies fn to the latest committed snapshot and persists the
// result atomically. If fn returns an error nothing is persisted. Any
// persistence failure surfaces as a ManagerError with the original message.
func (s *Store) Update(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return NewManagerError(err)
	}
	if err := fn(snap); err != nil {
		return err
	}
	if err := s.persist(snap); err != nil {
		return NewManagerError(err)
	}
	return nil
}
