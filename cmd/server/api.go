package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"solana-strategy-engine/internal/amount"
	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/executor"
	"solana-strategy-engine/internal/idhash"
	"solana-strategy-engine/internal/jupiter"
	"solana-strategy-engine/internal/marketdata"
	"solana-strategy-engine/internal/metrics"
	"solana-strategy-engine/internal/observability"
	"solana-strategy-engine/internal/storage"
	"solana-strategy-engine/internal/token"
)

const defaultActivityLimit = 50

// startHTTPServer serves the JSON API, health and metrics endpoints.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("POST /strategies", s.handleCreateStrategy)
	mux.HandleFunc("POST /strategies/{id}/activate", s.handleSetActive(true))
	mux.HandleFunc("POST /strategies/{id}/deactivate", s.handleSetActive(false))
	mux.HandleFunc("GET /strategies/{id}/activity", s.handleActivity)
	mux.HandleFunc("GET /strategies/{id}/stats", s.handleStats)

	mux.HandleFunc("POST /swap", s.handleSwap)
	mux.HandleFunc("GET /quote", s.handleQuote)
	mux.HandleFunc("GET /tokens/resolve", s.handleResolve)
	mux.HandleFunc("GET /wallet", s.handleWallet)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// Request/response shapes. The domain types carry no serialization
// concerns, so the API layer owns its own JSON mapping.

type spotConfigDTO struct {
	Side        string  `json:"side"`
	Token       string  `json:"token"`
	Amount      float64 `json:"amount"`
	SlippageBps int     `json:"slippageBps"`
}

type sniperConfigDTO struct {
	Token           string   `json:"token,omitempty"`
	MaxAgeMinutes   *float64 `json:"maxAgeMinutes,omitempty"`
	MinLiquidityUSD *float64 `json:"minLiquidityUsd,omitempty"`
	MinVolumeUSD    *float64 `json:"minVolumeUsd,omitempty"`
	MinMarketCapUSD *float64 `json:"minMarketCapUsd,omitempty"`
	MaxMarketCapUSD *float64 `json:"maxMarketCapUsd,omitempty"`
	NameContains    string   `json:"nameContains,omitempty"`
	BuyAmount       float64  `json:"buyAmount"`
	SlippageBps     int      `json:"slippageBps"`
}

type conditionDTO struct {
	Indicator string   `json:"indicator"`
	Period    int      `json:"period,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"`
	Trigger   string   `json:"trigger"`
	Value     *float64 `json:"value"`
}

type conditionalConfigDTO struct {
	Token       string       `json:"token"`
	Side        string       `json:"side"`
	Amount      float64      `json:"amount"`
	SlippageBps int          `json:"slippageBps"`
	Condition   conditionDTO `json:"condition"`
}

type strategyRequest struct {
	OwnerID     string                `json:"ownerId"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Type        string                `json:"type"`
	Spot        *spotConfigDTO        `json:"spot,omitempty"`
	Sniper      *sniperConfigDTO      `json:"sniper,omitempty"`
	Conditional *conditionalConfigDTO `json:"conditional,omitempty"`
	IsActive    *bool                 `json:"isActive,omitempty"`
}

type strategyResponse struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"ownerId"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Type        string                `json:"type"`
	Spot        *spotConfigDTO        `json:"spot,omitempty"`
	Sniper      *sniperConfigDTO      `json:"sniper,omitempty"`
	Conditional *conditionalConfigDTO `json:"conditional,omitempty"`
	IsActive    bool                  `json:"isActive"`
	CreatedAt   int64                 `json:"createdAt"`
}

type activityResponse struct {
	ID         int64  `json:"id"`
	StrategyID string `json:"strategyId"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	CreatedAt  int64  `json:"createdAt"`
}

type statsResponse struct {
	TotalTrades    int     `json:"totalTrades"`
	Confirmed      int     `json:"confirmed"`
	Failed         int     `json:"failed"`
	Pending        int     `json:"pending"`
	Sells          int     `json:"sells"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"winRate"`
	RealizedPnLUSD float64 `json:"realizedPnlUsd"`
	VolumeUSD      float64 `json:"volumeUsd"`
	LastTradeAt    int64   `json:"lastTradeAt,omitempty"`
}

type tradeResponse struct {
	ID           string   `json:"id"`
	OwnerID      string   `json:"ownerId"`
	StrategyID   string   `json:"strategyId,omitempty"`
	Side         string   `json:"side"`
	InputMint    string   `json:"inputMint"`
	OutputMint   string   `json:"outputMint"`
	InputAmount  float64  `json:"inputAmount"`
	OutputAmount float64  `json:"outputAmount"`
	PriceUSD     float64  `json:"priceUsd"`
	TxSignature  string   `json:"txSignature,omitempty"`
	Status       string   `json:"status"`
	FailReason   string   `json:"failReason,omitempty"`
	PnLUSD       *float64 `json:"pnlUsd,omitempty"`
	CreatedAt    int64    `json:"createdAt"`
}

type swapRequest struct {
	OwnerID     string  `json:"ownerId"`
	Token       string  `json:"token"`
	Side        string  `json:"side"`
	Amount      float64 `json:"amount"`
	SlippageBps int     `json:"slippageBps,omitempty"`
}

type quoteResponse struct {
	InputMint      string  `json:"inputMint"`
	OutputMint     string  `json:"outputMint"`
	InAmount       float64 `json:"inAmount"`
	OutAmount      float64 `json:"outAmount"`
	ExchangeRate   float64 `json:"exchangeRate"`
	PriceImpactPct float64 `json:"priceImpactPct"`
	SlippageBps    int     `json:"slippageBps"`
	RouteLabel     string  `json:"routeLabel"`
}

type assetResponse struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
	Decimals int    `json:"decimals"`
}

type walletResponse struct {
	Address         string  `json:"address"`
	BalanceLamports uint64  `json:"balanceLamports"`
	BalanceSol      float64 `json:"balanceSol"`
}

type errorResponse struct {
	Error string         `json:"error"`
	Trade *tradeResponse `json:"trade,omitempty"`
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}

	st := &domain.Strategy{
		ID:          newID(),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Type:        domain.StrategyType(req.Type),
		Spot:        toSpotConfig(req.Spot),
		Sniper:      toSniperConfig(req.Sniper),
		Conditional: toConditionalConfig(req.Conditional),
		IsActive:    true,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.stores.strategies.Insert(r.Context(), st); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toStrategyResponse(st))
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.stores.strategies.SetActive(r.Context(), id, active); err != nil {
			writeError(w, httpStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":       id,
			"isActive": active,
		})
	}
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.stores.strategies.GetByID(r.Context(), id); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.stores.activities.GetByStrategy(r.Context(), id, limit)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	out := make([]activityResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, activityResponse{
			ID:         a.ID,
			StrategyID: a.StrategyID,
			Kind:       a.Kind,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.stores.strategies.GetByID(r.Context(), id); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	trades, err := s.stores.trades.GetByStrategy(r.Context(), id)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	st := metrics.ComputeStats(trades)
	writeJSON(w, http.StatusOK, statsResponse{
		TotalTrades:    st.TotalTrades,
		Confirmed:      st.Confirmed,
		Failed:         st.Failed,
		Pending:        st.Pending,
		Sells:          st.Sells,
		Wins:           st.Wins,
		Losses:         st.Losses,
		WinRate:        st.WinRate,
		RealizedPnLUSD: st.RealizedPnLUSD,
		VolumeUSD:      st.VolumeUSD,
		LastTradeAt:    st.LastTradeAt,
	})
}

// handleSwap executes a one-off swap outside of any strategy. Execution
// attempts are recorded as trades, successful or not; a quote-stage
// failure records nothing. The HTTP status reflects the outcome.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	asset, err := s.resolver.Resolve(r.Context(), req.Token)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	trade, execErr := s.executeDirect(r.Context(), req, asset)
	if trade == nil {
		// Quote stage failed: no execution attempt was made, so the
		// ledger records nothing.
		writeError(w, httpStatus(execErr), execErr.Error())
		return
	}
	if insErr := s.stores.trades.Insert(r.Context(), trade); insErr != nil && !errors.Is(insErr, storage.ErrDuplicateKey) {
		s.logger.Printf("record trade %s: %v", trade.ID, insErr)
	}
	s.engMx.TradesTotal.WithLabelValues(trade.Status).Inc()

	if execErr != nil {
		writeJSON(w, httpStatus(execErr), errorResponse{
			Error: execErr.Error(),
			Trade: toTradeResponse(trade),
		})
		return
	}
	writeJSON(w, http.StatusOK, toTradeResponse(trade))
}

// executeDirect quotes and settles one order, mirroring the scheduler's
// settlement path: a quote-stage failure returns no trade, a stale quote
// is refreshed and retried once, and the ledger records what actually
// settled.
func (s *Server) executeDirect(ctx context.Context, req swapRequest, asset *domain.Asset) (*domain.Trade, error) {
	firedAt := time.Now().UnixMilli()

	inputMint, outputMint := domain.WSOLMint, asset.Mint
	inDecimals := domain.DefaultDecimals
	outDecimals := asset.Decimals
	if req.Side == domain.SideSell {
		inputMint, outputMint = asset.Mint, domain.WSOLMint
		inDecimals, outDecimals = asset.Decimals, domain.DefaultDecimals
	}

	baseAmount, err := amount.FloatToBaseUnits(req.Amount, inDecimals)
	if err != nil {
		return nil, fmt.Errorf("amount conversion: %w", err)
	}

	quoteReq := jupiter.QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		AmountBase:  baseAmount,
		InDecimals:  inDecimals,
		OutDecimals: outDecimals,
		SlippageBps: req.SlippageBps,
	}

	quote, err := s.quoteTimed(ctx, quoteReq)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	trade := &domain.Trade{
		ID:          idhash.ComputeTradeID("", asset.Mint, req.Side, firedAt),
		OwnerID:     req.OwnerID,
		Side:        req.Side,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		InputAmount: req.Amount,
		Status:      domain.TradeStatusFailed,
		CreatedAt:   firedAt,
	}
	if snap, err := s.market.Snapshot(ctx, asset.Mint); err == nil {
		trade.PriceUSD = snap.PriceUSD
	}

	execStart := time.Now()
	res, err := s.exec.Execute(ctx, quote)
	if errors.Is(err, executor.ErrQuoteExpired) {
		s.engMx.SwapRetries.Inc()
		if quote, err = s.quoteTimed(ctx, quoteReq); err == nil {
			res, err = s.exec.Execute(ctx, quote)
		}
	}
	s.engMx.ExecutionLatency.Observe(time.Since(execStart).Seconds())
	if err != nil {
		trade.FailReason = err.Error()
		return trade, err
	}

	trade.ID = res.Signature
	trade.TxSignature = res.Signature
	trade.Status = domain.TradeStatusConfirmed
	trade.OutputAmount = res.SettledOutputAmount
	return trade, nil
}

// quoteTimed times the aggregator call.
func (s *Server) quoteTimed(ctx context.Context, req jupiter.QuoteRequest) (*domain.Quote, error) {
	start := time.Now()
	quote, err := s.jup.Quote(ctx, req)
	s.engMx.QuoteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.engMx.UpstreamErrors.WithLabelValues("jupiter").Inc()
	}
	return quote, err
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inputRef := q.Get("inputToken")
	outputRef := q.Get("outputToken")
	rawAmount := q.Get("amount")
	if inputRef == "" || outputRef == "" || rawAmount == "" {
		writeError(w, http.StatusBadRequest, "inputToken, outputToken and amount are required")
		return
	}

	amt, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil || amt <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}

	slippage := 0
	if raw := q.Get("slippageBps"); raw != "" {
		slippage, err = strconv.Atoi(raw)
		if err != nil || slippage < 0 {
			writeError(w, http.StatusBadRequest, "slippageBps must be a non-negative integer")
			return
		}
	}

	in, err := s.resolver.Resolve(r.Context(), inputRef)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	out, err := s.resolver.Resolve(r.Context(), outputRef)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	baseAmount, err := amount.FloatToBaseUnits(amt, in.Decimals)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := s.quoteTimed(r.Context(), jupiter.QuoteRequest{
		InputMint:   in.Mint,
		OutputMint:  out.Mint,
		AmountBase:  baseAmount,
		InDecimals:  in.Decimals,
		OutDecimals: out.Decimals,
		SlippageBps: slippage,
	})
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		InputMint:      quote.InputMint,
		OutputMint:     quote.OutputMint,
		InAmount:       quote.InAmount,
		OutAmount:      quote.OutAmount,
		ExchangeRate:   quote.ExchangeRate,
		PriceImpactPct: quote.PriceImpactPct,
		SlippageBps:    quote.SlippageBps,
		RouteLabel:     quote.RouteLabel,
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("q")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	asset, err := s.resolver.Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, assetResponse{
		Mint:     asset.Mint,
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Decimals: asset.Decimals,
	})
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	address := s.walletMgr.Address()
	lamports, err := s.rpc.GetBalance(r.Context(), address)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("fetch balance: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{
		Address:         address,
		BalanceLamports: lamports,
		BalanceSol:      float64(lamports) / 1e9,
	})
}

// httpStatus maps the engine's error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, token.ErrUnresolvable),
		errors.Is(err, marketdata.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, jupiter.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, jupiter.ErrNoRoute),
		errors.Is(err, executor.ErrSlippageExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, jupiter.ErrUnavailable),
		errors.Is(err, marketdata.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, executor.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, executor.ErrSimulationFailed),
		errors.Is(err, executor.ErrSubmissionFailed),
		errors.Is(err, executor.ErrQuoteExpired):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toSpotConfig(d *spotConfigDTO) *domain.SpotConfig {
	if d == nil {
		return nil
	}
	return &domain.SpotConfig{
		Side:        d.Side,
		Token:       d.Token,
		Amount:      d.Amount,
		SlippageBps: d.SlippageBps,
	}
}

func toSniperConfig(d *sniperConfigDTO) *domain.SniperConfig {
	if d == nil {
		return nil
	}
	return &domain.SniperConfig{
		Token:           d.Token,
		MaxAgeMinutes:   d.MaxAgeMinutes,
		MinLiquidityUSD: d.MinLiquidityUSD,
		MinVolumeUSD:    d.MinVolumeUSD,
		MinMarketCapUSD: d.MinMarketCapUSD,
		MaxMarketCapUSD: d.MaxMarketCapUSD,
		NameContains:    d.NameContains,
		BuyAmount:       d.BuyAmount,
		SlippageBps:     d.SlippageBps,
	}
}

func toConditionalConfig(d *conditionalConfigDTO) *domain.ConditionalConfig {
	if d == nil {
		return nil
	}
	return &domain.ConditionalConfig{
		Token:       d.Token,
		Side:        d.Side,
		Amount:      d.Amount,
		SlippageBps: d.SlippageBps,
		Condition: domain.Condition{
			Indicator: domain.Indicator(d.Condition.Indicator),
			Period:    d.Condition.Period,
			Timeframe: d.Condition.Timeframe,
			Trigger:   domain.Trigger(d.Condition.Trigger),
			Value:     d.Condition.Value,
		},
	}
}

func toStrategyResponse(st *domain.Strategy) strategyResponse {
	resp := strategyResponse{
		ID:          st.ID,
		OwnerID:     st.OwnerID,
		Name:        st.Name,
		Description: st.Description,
		Type:        string(st.Type),
		IsActive:    st.IsActive,
		CreatedAt:   st.CreatedAt,
	}
	if st.Spot != nil {
		resp.Spot = &spotConfigDTO{
			Side:        st.Spot.Side,
			Token:       st.Spot.Token,
			Amount:      st.Spot.Amount,
			SlippageBps: st.Spot.SlippageBps,
		}
	}
	if st.Sniper != nil {
		resp.Sniper = &sniperConfigDTO{
			Token:           st.Sniper.Token,
			MaxAgeMinutes:   st.Sniper.MaxAgeMinutes,
			MinLiquidityUSD: st.Sniper.MinLiquidityUSD,
			MinVolumeUSD:    st.Sniper.MinVolumeUSD,
			MinMarketCapUSD: st.Sniper.MinMarketCapUSD,
			MaxMarketCapUSD: st.Sniper.MaxMarketCapUSD,
			NameContains:    st.Sniper.NameContains,
			BuyAmount:       st.Sniper.BuyAmount,
			SlippageBps:     st.Sniper.SlippageBps,
		}
	}
	if st.Conditional != nil {
		resp.Conditional = &conditionalConfigDTO{
			Token:       st.Conditional.Token,
			Side:        st.Conditional.Side,
			Amount:      st.Conditional.Amount,
			SlippageBps: st.Conditional.SlippageBps,
			Condition: conditionDTO{
				Indicator: string(st.Conditional.Condition.Indicator),
				Period:    st.Conditional.Condition.Period,
				Timeframe: st.Conditional.Condition.Timeframe,
				Trigger:   string(st.Conditional.Condition.Trigger),
				Value:     st.Conditional.Condition.Value,
			},
		}
	}
	return resp
}

func toTradeResponse(t *domain.Trade) *tradeResponse {
	return &tradeResponse{
		ID:           t.ID,
		OwnerID:      t.OwnerID,
		StrategyID:   t.StrategyID,
		Side:         t.Side,
		InputMint:    t.InputMint,
		OutputMint:   t.OutputMint,
		InputAmount:  t.InputAmount,
		OutputAmount: t.OutputAmount,
		PriceUSD:     t.PriceUSD,
		TxSignature:  t.TxSignature,
		Status:       t.Status,
		FailReason:   t.FailReason,
		PnLUSD:       t.PnLUSD,
		CreatedAt:    t.CreatedAt,
	}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("read random: %v", err))
	}
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
