// Package rpc chooses a JSON-RPC endpoint for a chain.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// ErrWrongChain is returned for an endpoint serving another chain.
var ErrWrongChain = errors.New("endpoint serves a different chain")

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// maxParallelProbes caps concurrent dials.
const maxParallelProbes = 8

// Probe asks every URL for its chain ID and head block in parallel. An
// endpoint whose chain ID differs from wantChainID is unhealthy; pass 0 to
// accept any chain.
func Probe(ctx context.Context, urls []string, wantChainID int64, timeout time.Duration) []Endpoint {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	out := make([]Endpoint, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelProbes)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = probe(ctx, u, wantChainID, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func probe(ctx context.Context, url string, wantChainID int64, timeout time.Duration) Endpoint {
	ep := Endpoint{URL: url, Checked: true}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	c, err := chain.Dial(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	id, err := c.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.Latency = time.Since(start)
	ep.ChainID = id.Int64()
	if wantChainID > 0 && ep.ChainID != wantChainID {
		ep.Err = fmt.Errorf("%w: %s reports %d, want %d", ErrWrongChain, url, ep.ChainID, wantChainID)
		return ep
	}

	block, err := c.BlockNumber(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.BlockNumber = block
	ep.Healthy = true
	return ep
}

// Pick probes urls and returns the endpoint algo prefers among those
// serving wantChainID. A single URL is still probed so a mistyped --rpc is
// caught before any call is made.
func Pick(ctx context.Context, urls []string, wantChainID int64, algo Algorithm, timeout time.Duration) (*Endpoint, error) {
	if len(urls) == 0 {
		return nil, ErrNoHealthyRPC
	}
	endpoints := Probe(ctx, urls, wantChainID, timeout)
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return nil, errors.Join(append([]error{err}, probeErrors(endpoints)...)...)
	}
	return winner, nil
}

func probeErrors(endpoints []Endpoint) []error {
	var errs []error
	for _, e := range endpoints {
		if e.Err != nil {
			errs = append(errs, e.Err)
		}
	}
	return errs
}
