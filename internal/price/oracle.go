package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source identifies the oracle in persisted price rows.
const Source = "aggregator_api"

// Oracle reads USD quotes from the Puzzle aggregator API.
type Oracle struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewOracle builds an Oracle for the aggregator base URL.
func NewOracle(baseURL string, timeout time.Duration, logger *zap.Logger) (*Oracle, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("aggregator url is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Prices fetches current USD quotes keyed by asset id. Entries whose
// price is null or unparsable are logged and skipped, not errored.
func (o *Oracle) Prices(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/aggregator/getPrices", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(payload))
	for assetID, raw := range payload {
		value, ok := parsePrice(raw)
		if !ok {
			o.logger.Warn("unparsable price entry skipped",
				zap.String("asset_id", assetID),
				zap.String("raw", string(raw)),
			)
			continue
		}
		prices[assetID] = value
	}
	return prices, nil
}

// parsePrice accepts the aggregator's mixed price encodings: a bare
// number, a numeric string, or an object with a "price" field.
func parsePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return decimal.Decimal{}, false
	}

	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Price json.RawMessage `json:"price"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Price) == 0 {
			return decimal.Decimal{}, false
		}
		return parsePrice(wrapped.Price)
	}

	trimmed = strings.Trim(trimmed, `"`)
	if trimmed == "" || trimmed == "null" || trimmed == "None" {
		return decimal.Decimal{}, false
	}

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}
