package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-strategy-engine/internal/domain"
)

const quoteBody = `{
	"inputMint": "` + domain.USDCMint + `",
	"outputMint": "` + domain.WSOLMint + `",
	"inAmount": "250000000",
	"outAmount": "1700000000",
	"priceImpactPct": "0.0012",
	"routePlan": [
		{"swapInfo": {"label": "Whirlpool"}},
		{"swapInfo": {"label": "Whirlpool"}},
		{"swapInfo": {"label": "Raydium CLMM"}}
	]
}`

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, domain.USDCMint, q.Get("inputMint"))
		assert.Equal(t, domain.WSOLMint, q.Get("outputMint"))
		assert.Equal(t, "250000000", q.Get("amount"))
		assert.Equal(t, "75", q.Get("slippageBps"))
		w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	quote, err := c.Quote(context.Background(), QuoteRequest{
		InputMint:   domain.USDCMint,
		OutputMint:  domain.WSOLMint,
		AmountBase:  "250000000",
		InDecimals:  6,
		OutDecimals: 9,
		SlippageBps: 75,
	})
	require.NoError(t, err)

	assert.Equal(t, "250000000", quote.InAmountBase)
	assert.Equal(t, "1700000000", quote.OutAmountBase)
	assert.Equal(t, 250.0, quote.InAmount)
	assert.Equal(t, 1.7, quote.OutAmount)
	assert.InDelta(t, 0.0068, quote.ExchangeRate, 1e-9)
	assert.Equal(t, 0.0012, quote.PriceImpactPct)
	assert.Equal(t, "Whirlpool > Raydium CLMM", quote.RouteLabel)
	assert.Equal(t, 75, quote.SlippageBps)
	assert.JSONEq(t, quoteBody, string(quote.RoutePayload))
	assert.Positive(t, quote.FetchedAt)
}

func TestQuoteDefaultSlippage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("slippageBps"))
		w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Quote(context.Background(), QuoteRequest{
		InputMint:  "a",
		OutputMint: "b",
		AmountBase: "1",
	})
	require.NoError(t, err)
}

func TestQuoteNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Could not find any route", "errorCode": "COULD_NOT_FIND_ANY_ROUTE"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Quote(context.Background(), QuoteRequest{
		InputMint: "a", OutputMint: "b", AmountBase: "1",
	})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestQuoteInvalidAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid amount"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Quote(context.Background(), QuoteRequest{
		InputMint: "a", OutputMint: "b", AmountBase: "0",
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewClient(srv.URL).Quote(context.Background(), QuoteRequest{})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestQuoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Quote(context.Background(), QuoteRequest{
		InputMint: "a", OutputMint: "b", AmountBase: "1",
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBuildSwap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			QuoteResponse    json.RawMessage `json:"quoteResponse"`
			UserPublicKey    string          `json:"userPublicKey"`
			WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.JSONEq(t, quoteBody, string(req.QuoteResponse))
		assert.Equal(t, "wallet-pubkey", req.UserPublicKey)
		assert.True(t, req.WrapAndUnwrapSol)

		w.Write([]byte(`{"swapTransaction": "AQID"}`))
	}))
	defer srv.Close()

	quote := &domain.Quote{RoutePayload: json.RawMessage(quoteBody)}
	tx, err := NewClient(srv.URL).BuildSwap(context.Background(), quote, "wallet-pubkey")
	require.NoError(t, err)
	assert.Equal(t, "AQID", tx)
}

func TestBuildSwapMissingPayload(t *testing.T) {
	c := NewClient("http://unused")

	_, err := c.BuildSwap(context.Background(), &domain.Quote{}, "wallet")
	assert.Error(t, err)

	_, err = c.BuildSwap(context.Background(), nil, "wallet")
	assert.Error(t, err)
}
