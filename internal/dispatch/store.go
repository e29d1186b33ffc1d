package dispatch

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Slot is the latest dispatch of one function.
type Slot struct {
	State  State
	Result *InvocationResult
	Err    error
	seq    uint64
}

// Ticket identifies one dispatch in the Store.
type Ticket struct {
	Key string
	seq uint64
}

// Store holds the latest result per function and the last error. A
// dispatch only writes its slot while it is the newest one begun for that
// function, so the last requested dispatch wins.
type Store struct {
	mu      sync.RWMutex
	slots   map[string]*Slot
	lastErr error
	next    uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{slots: make(map[string]*Slot)}
}

// Begin starts a dispatch for key and clears the last error.
func (s *Store) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	slot, ok := s.slots[key]
	if !ok {
		slot = &Slot{}
		s.slots[key] = slot
	}
	slot.seq = s.next
	slot.State = Idle
	s.lastErr = nil
	return Ticket{Key: key, seq: s.next}
}

// current returns the slot of t, or nil when a newer dispatch took it over.
// Callers hold mu.
func (s *Store) current(t Ticket) *Slot {
	slot, ok := s.slots[t.Key]
	if !ok || slot.seq != t.seq {
		return nil
	}
	return slot
}

// Transition records a state change. It reports false for a stale ticket.
func (s *Store) Transition(t Ticket, st State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.current(t)
	if slot == nil {
		return false
	}
	slot.State = st
	return true
}

// Complete overwrites the slot with res.
func (s *Store) Complete(t Ticket, res *InvocationResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.current(t)
	if slot == nil {
		return false
	}
	slot.State, slot.Result, slot.Err = Completed, res, nil
	return true
}

// Fail records err in the slot and as the last error.
func (s *Store) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.current(t)
	if slot == nil {
		return false
	}
	slot.State, slot.Result, slot.Err = Failed, nil, err
	s.lastErr = err
	return true
}

// Get returns a copy of the slot for key.
func (s *Store) Get(key string) (Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[key]
	if !ok {
		return Slot{}, false
	}
	return *slot, true
}

// Result returns the latest completed result for key, or nil.
func (s *Store) Result(key string) *InvocationResult {
	slot, _ := s.Get(key)
	return slot.Result
}

// LastError returns the error of the most recent failed dispatch, cleared
// whenever a new dispatch begins.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Keys returns the functions that have a slot, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := lo.Keys(s.slots)
	sort.Strings(keys)
	return keys
}

// Reset drops every slot, e.g. after a new ABI was loaded.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]*Slot)
	s.lastErr = nil
}
