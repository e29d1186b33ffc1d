package rpc

import (
	"errors"
	"time"

	"github.com/samber/lo"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	// AlgorithmFastest picks the lowest-latency endpoint that is not behind.
	AlgorithmFastest Algorithm = "fastest"
	// AlgorithmFailover picks the first usable endpoint in list order. It
	// is used when the user configured their own RPCs.
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	ChainID     int64
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool // true when the endpoint has been probed
	Err         error
}

// Picker selects an RPC endpoint according to the configured algorithm.
type Picker struct {
	algo Algorithm
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	if p.algo == AlgorithmFailover {
		return pickFailover(endpoints)
	}
	return pickFastest(endpoints)
}

// pickFastest selects the fastest healthy endpoint among those close to the
// best block.
func pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	candidates := usable(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}
	best := lo.MaxBy(candidates, func(a, b *Endpoint) bool { return a.BlockNumber > b.BlockNumber }).BlockNumber

	var winner *Endpoint
	for _, e := range candidates {
		if best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || faster(e, winner) {
			winner = e
		}
	}
	return winner, nil
}

// faster orders endpoints by latency; an unmeasured latency loses.
func faster(a, b *Endpoint) bool {
	switch {
	case a.Latency <= 0:
		return false
	case b.Latency <= 0:
		return true
	}
	return a.Latency < b.Latency
}

// pickFailover returns the first usable endpoint in order.
func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	candidates := usable(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}
	return candidates[0], nil
}

// usable returns endpoints eligible for selection: unprobed endpoints and
// probed ones that came back healthy.
func usable(endpoints []Endpoint) []*Endpoint {
	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
