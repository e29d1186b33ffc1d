package rpc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/rpc"
)

// checked builds an endpoint that has been probed.
func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://slow.rpc", 200*time.Millisecond, 100, true),
		checked("http://fast.rpc", 30*time.Millisecond, 100, true),
		checked("http://medium.rpc", 80*time.Millisecond, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickerSkipsUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://dead.rpc", 5*time.Millisecond, 0, false),
		checked("http://ok.rpc", 90*time.Millisecond, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://ok.rpc", winner.URL)
}

func TestPickerUnprobedEndpointsAreCandidates(t *testing.T) {
	endpoints := []rpc.Endpoint{{URL: "http://a.rpc"}, {URL: "http://b.rpc"}}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://a.rpc", winner.URL)
}

func TestPickerFailover(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary", 0, 100, false),
		checked("http://secondary", 90*time.Millisecond, 100, true),
		checked("http://tertiary", 10*time.Millisecond, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary", winner.URL)
}

func TestPickerNoHealthy(t *testing.T) {
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmFailover} {
		_, err := rpc.NewPicker(algo).Pick([]rpc.Endpoint{checked("http://dead", 0, 0, false)})
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)

		_, err = rpc.NewPicker(algo).Pick(nil)
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
	}
}
