// AngelaMos | 2026
// store.go

package account

import (
	"sync"
)

// Store is the in-memory working set the query pipeline reads from. It is
// loaded from the repository at startup and kept in step by the mutation
// handlers; the pipeline never writes back a presentation order.
type Store struct {
	mu       sync.RWMutex
	accounts []Account
	index    map[string]int
}

func NewStore(initial []Account) *Store {
	s := &Store{
		accounts: make([]Account, 0, len(initial)),
		index:    make(map[string]int, len(initial)),
	}
	for _, a := range initial {
		if _, exists := s.index[a.ID]; exists {
			continue
		}
		s.index[a.ID] = len(s.accounts)
		s.accounts = append(s.accounts, a.Clone())
	}
	return s
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Store) Get(id string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Account{}, false
	}
	return s.accounts[i].Clone(), true
}

// Snapshot returns a deep copy of the collection in insertion order.
func (s *Store) Snapshot() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	return out
}

func (s *Store) Add(a Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[a.ID]; exists {
		return false
	}
	s.index[a.ID] = len(s.accounts)
	s.accounts = append(s.accounts, a.Clone())
	return true
}

// Replace swaps the stored record for id wholesale. Returns false when the
// id is unknown.
func (s *Store) Replace(a Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[a.ID]
	if !ok {
		return false
	}
	s.accounts[i] = a.Clone()
	return true
}

// Remove physically deletes the record. There is no tombstone.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}

	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.accounts); j++ {
		s.index[s.accounts[j].ID] = j
	}
	return true
}
