package contract

import (
	"fmt"
	"sync"
)

// Session owns the catalog and input table of the ABI currently loaded.
// It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	catalog *Catalog
	inputs  InputTable
}

// NewSession returns an empty session.
func NewSession() *Session { return &Session{} }

// Load parses raw and replaces the session's catalog and inputs. On failure
// both are cleared, never partially applied.
func (s *Session) Load(raw string) error {
	cat, table, err := Parse(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.catalog, s.inputs = nil, nil
		return err
	}
	s.catalog, s.inputs = cat, table
	return nil
}

// Catalog returns the loaded catalog, or nil.
func (s *Session) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// SetInput records the raw text for one input of the function at key.
func (s *Session) SetInput(key, input, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.inputs[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, key)
	}
	if _, ok := row[input]; !ok {
		return fmt.Errorf("%w: %s has no input %q", ErrUnknownInput, key, input)
	}
	row[input] = value
	return nil
}

// Row returns a copy of the inputs recorded for the function at key.
func (s *Session) Row(key string) InputRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(InputRow, len(s.inputs[key]))
	for k, v := range s.inputs[key] {
		out[k] = v
	}
	return out
}
