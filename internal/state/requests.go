package state

// RequestStore manages in-flight transaction requests: the short-lived,
// mutable drafts a user reviews before a transaction is submitted.
type RequestStore struct {
	store *Store
}

// NewRequestStore creates a transaction request store.
func NewRequestStore(store *Store) *RequestStore {
	return &RequestStore{store: store}
}

// Get returns the request with the given id.
func (s *RequestStore) Get(id string) (TransactionRequest, bool, error) {
	var r TransactionRequest
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		r, ok = findFirst(snap.Requests, RequestID(id))
		return nil
	})
	return r, ok, err
}

// GetByInterface returns the request owning the given dialog handle.
func (s *RequestStore) GetByInterface(interfaceID string) (TransactionRequest, bool, error) {
	var r TransactionRequest
	var ok bool
	err := s.store.View(func(snap *Snapshot) error {
		r, ok = findFirst(snap.Requests, RequestInterfaceID(interfaceID))
		return nil
	})
	return r, ok, err
}

// List returns every pending request.
func (s *RequestStore) List() ([]TransactionRequest, error) {
	var out []TransactionRequest
	err := s.store.View(func(snap *Snapshot) error {
		out = listAll(snap.Requests)
		return nil
	})
	return out, err
}

// Upsert inserts the request or updates the user-editable fields (max fee,
// selected fee token, resource bounds, interface id) of the existing entry
// with the same id.
func (s *RequestStore) Upsert(request TransactionRequest) error {
	return s.store.Update(func(snap *Snapshot) error {
		for i := range snap.Requests {
			r := &snap.Requests[i]
			if r.ID == request.ID {
				r.InterfaceID = request.InterfaceID
				r.MaxFee = request.MaxFee
				r.SelectedFeeToken = request.SelectedFeeToken
				r.ResourceBounds = append(r.ResourceBounds[:0:0], request.ResourceBounds...)
				return nil
			}
		}
		snap.Requests = append(snap.Requests, request)
		return nil
	})
}

// Remove deletes the request with the given id. Removing an absent id is
// not an error; a warning is logged and the call succeeds.
func (s *RequestStore) Remove(id string) error {
	return s.store.Update(func(snap *Snapshot) error {
		kept := snap.Requests[:0]
		removed := false
		for _, r := range snap.Requests {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		snap.Requests = kept
		if !removed {
			s.store.logger.Warn().Str("id", id).Msg("Transaction request does not exist")
		}
		return nil
	})
}
