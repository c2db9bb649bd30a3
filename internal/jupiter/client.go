package jupiter

import (
	"bytes"
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

	"solana-strategy-engine/internal/amount"
	"solana-strategy-engine/internal/domain"
)

// Aggregator errors.
var (
	// ErrNoRoute means the aggregator found no path between the mints
	// for the requested amount. Not retryable with the same inputs.
	ErrNoRoute = errors.New("jupiter: no route")

	// ErrInvalidAmount means the aggregator rejected the amount.
	ErrInvalidAmount = errors.New("jupiter: invalid amount")

	// ErrUnavailable means the aggregator could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("jupiter: aggregator unavailable")
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://lite-api.jup.ag/swap/v1"
	DefaultTimeout     = 15 * time.Second
	DefaultSlippageBps = 50
)

// Client talks to the Jupiter swap aggregator.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
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

// WithAPIKey sets the upstream API key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient creates an aggregator client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QuoteRequest asks for an executable route between two mints.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	AmountBase  string // smallest-unit integer, decimal string
	InDecimals  int
	OutDecimals int
	SlippageBps int // 0 means DefaultSlippageBps
}

type quoteResponse struct {
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	RoutePlan      []struct {
		SwapInfo struct {
			Label string `json:"label"`
		} `json:"swapInfo"`
	} `json:"routePlan"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// Quote fetches a route for the requested swap. The returned quote
// carries the raw upstream payload, which BuildSwap needs verbatim.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*domain.Quote, error) {
	if req.InputMint == "" || req.OutputMint == "" || req.AmountBase == "" {
		return nil, ErrInvalidAmount
	}
	slippage := req.SlippageBps
	if slippage <= 0 {
		slippage = DefaultSlippageBps
	}

	vals := url.Values{}
	vals.Set("inputMint", req.InputMint)
	vals.Set("outputMint", req.OutputMint)
	vals.Set("amount", req.AmountBase)
	vals.Set("slippageBps", strconv.Itoa(slippage))

	body, err := c.get(ctx, "/quote?"+vals.Encode())
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if strings.TrimSpace(resp.OutAmount) == "" {
		return nil, ErrNoRoute
	}

	q := &domain.Quote{
		InputMint:      req.InputMint,
		OutputMint:     req.OutputMint,
		InAmountBase:   req.AmountBase,
		OutAmountBase:  resp.OutAmount,
		SlippageBps:    slippage,
		PriceImpactPct: parsePct(resp.PriceImpactPct),
		RouteLabel:     routeLabel(resp.RoutePlan),
		RoutePayload:   json.RawMessage(body),
		FetchedAt:      c.now().UnixMilli(),
	}
	if in, err := amount.BaseUnitsToFloat(req.AmountBase, req.InDecimals); err == nil {
		q.InAmount = in
	}
	if out, err := amount.BaseUnitsToFloat(resp.OutAmount, req.OutDecimals); err == nil {
		q.OutAmount = out
	}
	if q.InAmount > 0 {
		q.ExchangeRate = q.OutAmount / q.InAmount
	}
	return q, nil
}

// BuildSwap exchanges a quote's route payload for an unsigned,
// base64-encoded transaction built for the given wallet.
func (c *Client) BuildSwap(ctx context.Context, quote *domain.Quote, userPublicKey string) (string, error) {
	if quote == nil || len(quote.RoutePayload) == 0 {
		return "", fmt.Errorf("jupiter: quote has no route payload")
	}
	if userPublicKey == "" {
		return "", fmt.Errorf("jupiter: missing user public key")
	}

	payload := struct {
		QuoteResponse    json.RawMessage `json:"quoteResponse"`
		UserPublicKey    string          `json:"userPublicKey"`
		WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
	}{
		QuoteResponse:    quote.RoutePayload,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode swap request: %w", err)
	}

	body, err := c.post(ctx, "/swap", reqBody)
	if err != nil {
		return "", err
	}

	var resp struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("%w: swap response missing transaction", ErrUnavailable)
	}
	return resp.SwapTransaction, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, classifyClientError(body, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

// classifyClientError maps upstream 4xx bodies onto typed errors. The
// aggregator reports missing routes and bad amounts as 400s with an
// error string.
func classifyClientError(body []byte, status int) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	msg := strings.ToUpper(er.Error + " " + er.ErrorCode)
	switch {
	case strings.Contains(msg, "NO_ROUTE") || strings.Contains(msg, "COULD NOT FIND ANY ROUTE"):
		return ErrNoRoute
	case strings.Contains(msg, "AMOUNT"):
		return ErrInvalidAmount
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, strings.TrimSpace(er.Error))
	}
}

func parsePct(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// routeLabel joins hop labels, collapsing consecutive duplicates.
func routeLabel(plan []struct {
	SwapInfo struct {
		Label string `json:"label"`
	} `json:"swapInfo"`
}) string {
	parts := make([]string, 0, len(plan))
	for _, hop := range plan {
		label := strings.TrimSpace(hop.SwapInfo.Label)
		if label == "" {
			continue
		}
		if len(parts) == 0 || parts[len(parts)-1] != label {
			parts = append(parts, label)
		}
	}
	if len(parts) == 0 {
		return "jupiter"
	}
	return strings.Join(parts, " > ")
}
