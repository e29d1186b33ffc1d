package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Fetcher retrieves ABI text from block explorers or URLs.
type Fetcher struct {
	client *http.Client
	apiKey string
}

// NewFetcher creates a new ABI fetcher. apiKey may be empty for explorers
// that do not require one (Blockscout).
func NewFetcher(apiKey string) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		apiKey: apiKey,
	}
}

// FetchFromExplorer asks an Etherscan-compatible API (module=contract,
// action=getabi) for the verified ABI of address. apiURL is the full API
// endpoint, e.g. "https://eth.blockscout.com/api".
func (f *Fetcher) FetchFromExplorer(ctx context.Context, apiURL, address string) (string, error) {
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getabi")
	q.Set("address", address)
	if f.apiKey != "" {
		q.Set("apikey", f.apiKey)
	}

	body, err := f.get(ctx, apiURL+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("fetching ABI: %w", err)
	}

	var result struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Result  string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing explorer response: %w", err)
	}
	if result.Status != "1" {
		msg := result.Message
		if result.Result != "" {
			msg += ": " + result.Result
		}
		return "", fmt.Errorf("explorer error: %s", msg)
	}
	return result.Result, nil
}

// FetchFromURL downloads an ABI array or build artifact from any URL.
func (f *Fetcher) FetchFromURL(ctx context.Context, rawURL string) (string, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetching ABI from URL: %w", err)
	}
	return ExtractABI(body), nil
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// LoadABIFile reads a local ABI file: either a raw ABI array or a
// Hardhat/Foundry artifact with an "abi" key.
func LoadABIFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading ABI file: %w", err)
	}
	return ExtractABI(data), nil
}

// ExtractABI returns the "abi" array of a build artifact, or data unchanged
// when it is not one. Validation is left to Parse.
func ExtractABI(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if json.Unmarshal(trimmed, &artifact) == nil && len(artifact.ABI) > 1 && artifact.ABI[0] == '[' {
			return string(artifact.ABI)
		}
	}
	return string(data)
}
