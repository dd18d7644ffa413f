package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"puzzleETL/internal/model"
	"puzzleETL/internal/registry"
)

// AssetDetails is the node's asset description payload.
type AssetDetails struct {
	AssetID     string `json:"assetId"`
	Name        string `json:"name"`
	Decimals    int32  `json:"decimals"`
	Description string `json:"description"`
	Issuer      string `json:"issuer,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
	Reissuable  bool   `json:"reissuable,omitempty"`
}

// DataEntry is a key/value pair from an account data storage query.
type DataEntry struct {
	Key   string          `json:"key"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Client fetches transaction and asset data from Waves REST nodes.
// Endpoints are tried in order; the next one is used when a request
// fails. All endpoints failing is fatal for the request.
type Client struct {
	endpoints    []string
	http         *http.Client
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// NewClient builds a Client over the given node base URLs.
func NewClient(endpoints []string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cleaned := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
		if endpoint == "" {
			continue
		}
		cleaned = append(cleaned, endpoint)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one node endpoint is required")
	}

	return &Client{
		endpoints:    cleaned,
		http:         &http.Client{Timeout: timeout},
		logger:       logger,
		maxRetries:   2,
		retryBackoff: 250 * time.Millisecond,
	}, nil
}

// Transactions returns up to limit transactions for an address, newest
// first, starting after the given transaction id when set.
func (c *Client) Transactions(ctx context.Context, address string, limit int, after string) ([]model.RawTransaction, error) {
	path := fmt.Sprintf("/transactions/address/%s/limit/%d", address, limit)
	if after != "" {
		path += "?after=" + url.QueryEscape(after)
	}

	// The node wraps the list in a single-element outer array.
	var pages [][]model.RawTransaction
	if err := c.getJSON(ctx, path, &pages); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0], nil
}

// AssetInfo returns asset details. The native chain asset is answered
// locally without a network call.
func (c *Client) AssetInfo(ctx context.Context, assetID string) (AssetDetails, error) {
	if assetID == registry.WavesID {
		return AssetDetails{
			AssetID:     registry.WavesID,
			Name:        "Waves",
			Decimals:    8,
			Description: "Waves native token",
		}, nil
	}

	var details AssetDetails
	if err := c.getJSON(ctx, "/assets/details/"+url.PathEscape(assetID), &details); err != nil {
		return AssetDetails{}, err
	}
	return details, nil
}

// AddressData returns account data storage entries, optionally
// filtered by a key regex.
func (c *Client) AddressData(ctx context.Context, address, matches string) ([]DataEntry, error) {
	path := "/addresses/data/" + url.PathEscape(address)
	if matches != "" {
		path += "?matches=" + url.QueryEscape(matches)
	}

	var entries []DataEntry
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// getJSON requests path from each endpoint in turn, retrying each with
// backoff, and decodes the first successful response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	var lastErr error
	for _, endpoint := range c.endpoints {
		fullURL := endpoint + path
		err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
			return c.getJSONFrom(ctx, fullURL, out)
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		c.logger.Warn("node request failed, trying next",
			zap.String("endpoint", endpoint),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return fmt.Errorf("all node endpoints failed: %w", lastErr)
}

func (c *Client) getJSONFrom(ctx context.Context, fullURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
