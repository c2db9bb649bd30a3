package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solana-strategy-engine/internal/domain"
)

// Market index errors.
var (
	// ErrNotFound means the index has no pair for the mint.
	ErrNotFound = errors.New("marketdata: pair not found")

	// ErrUnavailable means the index could not be reached or answered
	// with a server error.
	ErrUnavailable = errors.New("marketdata: index unavailable")
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.dexscreener.com"
	DefaultTimeout = 10 * time.Second
)

// Client fetches token market state from the pair index.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a market index client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pair mirrors the index's pair object. Numeric fields arrive as
// strings or numbers depending on the endpoint, so they are decoded
// loosely and normalized in toSnapshot.
type pair struct {
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	MarketCap     float64 `json:"marketCap"`
	FDV           float64 `json:"fdv"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

type pairsResponse struct {
	Pairs []pair `json:"pairs"`
}

// Snapshot returns the current market state for a mint. Among multiple
// pairs the one with the deepest liquidity wins.
func (c *Client) Snapshot(ctx context.Context, mint string) (*domain.MarketSnapshot, error) {
	pairs, err := c.fetchPairs(ctx, "/latest/dex/tokens/"+url.PathEscape(mint))
	if err != nil {
		return nil, err
	}
	best := deepest(pairs)
	if best == nil {
		return nil, ErrNotFound
	}
	return c.toSnapshot(best), nil
}

// Search looks up pairs whose base token matches the query, typically a
// symbol. Results are ordered deepest liquidity first.
func (c *Client) Search(ctx context.Context, query string) ([]*domain.MarketSnapshot, error) {
	pairs, err := c.fetchPairs(ctx, "/latest/dex/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var out []*domain.MarketSnapshot
	for i := range pairs {
		out = append(out, c.toSnapshot(&pairs[i]))
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].LiquidityUSD > out[j-1].LiquidityUSD; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (c *Client) fetchPairs(ctx context.Context, path string) ([]pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	var pr pairsResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}
	return pr.Pairs, nil
}

func (c *Client) toSnapshot(p *pair) *domain.MarketSnapshot {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)
	mcap := p.MarketCap
	if mcap == 0 {
		mcap = p.FDV
	}
	return &domain.MarketSnapshot{
		Mint:          p.BaseToken.Address,
		TokenName:     p.BaseToken.Name,
		TokenSymbol:   p.BaseToken.Symbol,
		PriceUSD:      price,
		LiquidityUSD:  p.Liquidity.USD,
		Volume24hUSD:  p.Volume.H24,
		MarketCapUSD:  mcap,
		PairCreatedAt: p.PairCreatedAt,
		ObservedAt:    time.Now().UnixMilli(),
	}
}

func deepest(pairs []pair) *pair {
	var best *pair
	for i := range pairs {
		if best == nil || pairs[i].Liquidity.USD > best.Liquidity.USD {
			best = &pairs[i]
		}
	}
	return best
}
