package contract_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func explorerServer(t *testing.T, status, message, result string) (*httptest.Server, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"status":  status,
			"message": message,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestFetchFromExplorer(t *testing.T) {
	srv, got := explorerServer(t, "1", "OK", tokenABI)

	raw, err := contract.NewFetcher("KEY").FetchFromExplorer(context.Background(), srv.URL+"/api", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, tokenABI, raw)

	q := got.URL.Query()
	assert.Equal(t, "/api", got.URL.Path)
	assert.Equal(t, "contract", q.Get("module"))
	assert.Equal(t, "getabi", q.Get("action"))
	assert.Equal(t, "0xabc", q.Get("address"))
	assert.Equal(t, "KEY", q.Get("apikey"))
}

func TestFetchFromExplorerNoKey(t *testing.T) {
	srv, got := explorerServer(t, "1", "OK", tokenABI)

	_, err := contract.NewFetcher("").FetchFromExplorer(context.Background(), srv.URL, "0xabc")
	require.NoError(t, err)
	assert.False(t, got.URL.Query().Has("apikey"))
}

func TestFetchFromExplorerNotVerified(t *testing.T) {
	srv, _ := explorerServer(t, "0", "NOTOK", "Contract source code not verified")

	_, err := contract.NewFetcher("").FetchFromExplorer(context.Background(), srv.URL, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not verified")
}

func TestFetchFromExplorerHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := contract.NewFetcher("").FetchFromExplorer(context.Background(), srv.URL, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

func TestFetchFromURLArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contractName":"Token","abi":` + tokenABI + `,"bytecode":"0x00"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	raw, err := contract.NewFetcher("").FetchFromURL(context.Background(), srv.URL)
	require.NoError(t, err)

	cat, _, err := contract.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestLoadABIFile(t *testing.T) {
	dir := t.TempDir()

	rawPath := filepath.Join(dir, "Token.abi.json")
	require.NoError(t, os.WriteFile(rawPath, []byte(tokenABI), 0o600))

	artifactPath := filepath.Join(dir, "Token.json")
	artifact := `{"abi":` + tokenABI + `,"bytecode":{"object":"0x6080"}}`
	require.NoError(t, os.WriteFile(artifactPath, []byte(artifact), 0o600))

	for _, p := range []string{rawPath, artifactPath} {
		raw, err := contract.LoadABIFile(p)
		require.NoError(t, err)
		cat, _, err := contract.Parse(raw)
		require.NoError(t, err, p)
		assert.Equal(t, 2, cat.Len())
	}

	_, err := contract.LoadABIFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestExtractABINonArtifactObject(t *testing.T) {
	raw := contract.ExtractABI([]byte(`{"name":"not an artifact"}`))
	_, _, err := contract.Parse(raw)
	assert.ErrorIs(t, err, contract.ErrNotArray)
}
