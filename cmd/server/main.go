// Package main runs the strategy engine as a single process:
// - Scheduler (continuous): strategy evaluation, swap settlement
// - Discovery (continuous): WebSocket pool-init feed for snipers
// - HTTP API: strategy CRUD, direct swaps, quotes, wallet, metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-strategy-engine/internal/discovery"
	"solana-strategy-engine/internal/evaluator"
	"solana-strategy-engine/internal/executor"
	"solana-strategy-engine/internal/jupiter"
	"solana-strategy-engine/internal/marketdata"
	"solana-strategy-engine/internal/observability"
	"solana-strategy-engine/internal/scheduler"
	"solana-strategy-engine/internal/solana"
	"solana-strategy-engine/internal/storage"
	chstore "solana-strategy-engine/internal/storage/clickhouse"
	"solana-strategy-engine/internal/storage/memory"
	pgstore "solana-strategy-engine/internal/storage/postgres"
	"solana-strategy-engine/internal/token"
	"solana-strategy-engine/internal/wallet"
)

// DEX program aliases mapped to program IDs.
var dexAliases = map[string]string{
	"raydium": discovery.RaydiumAMMV4,
	"pumpfun": discovery.PumpFun,
}

// Server holds all components of the engine.
type Server struct {
	// Configuration
	rpcEndpoint string
	wsEndpoint  string
	programs    []string
	httpAddr    string

	// Stores
	stores *allStores

	// Components
	rpc       *solana.HTTPClient
	market    *marketdata.Client
	jup       *jupiter.Client
	resolver  *token.Resolver
	walletMgr *wallet.Manager
	exec      *executor.Executor
	sched     *scheduler.Scheduler
	engMx     *observability.Metrics
	logger    *log.Logger

	startedAt time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	strategies storage.StrategyStore
	trades     storage.TradeStore
	activities storage.ActivityStore
	ticks      storage.TickStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, enables sniper discovery)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	jupiterURL := flag.String("jupiter-url", envOr("JUPITER_BASE_URL", jupiter.DefaultBaseURL), "Jupiter aggregator base URL")
	jupiterKey := flag.String("jupiter-api-key", os.Getenv("JUPITER_API_KEY"), "Jupiter API key (optional)")
	marketURL := flag.String("market-url", envOr("MARKET_BASE_URL", marketdata.DefaultBaseURL), "Market index base URL")
	walletPath := flag.String("wallet-path", os.Getenv("WALLET_PATH"), "Wallet file path (default: user-scoped location)")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to monitor")
	dex := flag.String("dex", "raydium,pumpfun", "Comma-separated DEX aliases (raydium, pumpfun)")
	scanInterval := flag.Duration("scan-interval", 15*time.Second, "Strategy evaluation interval")
	concurrency := flag.Int("concurrency", 8, "Max concurrent strategy evaluations")
	fireCooldown := flag.Duration("fire-cooldown", 2*time.Minute, "Minimum delay between fires of one strategy")
	httpAddr := flag.String("http-addr", ":8080", "HTTP API listen address")
	verbose := flag.Bool("verbose", false, "Verbose component logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Resolve DEX programs for the discovery feed
	programList := resolvePrograms(*programs, *dex)
	if *wsEndpoint != "" && len(programList) == 0 {
		logger.Fatal("No DEX programs specified. Use --programs or --dex")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Wallet: load or generate. A corrupt wallet file is fatal because
	// regenerating would orphan funds held by the old address.
	wPath := *walletPath
	if wPath == "" {
		wPath, err = wallet.DefaultPath()
		if err != nil {
			logger.Fatalf("Failed to resolve wallet path: %v", err)
		}
	}
	walletMgr := wallet.NewManager(wPath)
	info, created, err := walletMgr.GetOrCreate()
	if err != nil {
		logger.Fatalf("Failed to load wallet: %v", err)
	}
	if created {
		logger.Printf("Generated new wallet %s at %s", info.Address, wPath)
	} else {
		logger.Printf("Loaded wallet %s", info.Address)
	}

	// Components
	engMx := observability.NewMetrics("")
	rpc := solana.NewHTTPClient(*rpcEndpoint, solana.WithCallObserver(func(method string, seconds float64) {
		engMx.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	}))
	market := marketdata.NewClient(*marketURL)
	resolver := token.NewResolver(market, rpc)

	jupOpts := []jupiter.ClientOption{}
	if *jupiterKey != "" {
		jupOpts = append(jupOpts, jupiter.WithAPIKey(*jupiterKey))
	}
	jup := jupiter.NewClient(*jupiterURL, jupOpts...)

	exec := executor.New(jup, rpc, walletMgr, executor.Options{Verbose: *verbose})
	sched := scheduler.New(
		stores.strategies,
		stores.trades,
		stores.activities,
		stores.ticks,
		evaluator.New(),
		jup,
		exec,
		market,
		resolver,
		engMx,
		scheduler.Options{
			Interval:     *scanInterval,
			Concurrency:  *concurrency,
			FireCooldown: *fireCooldown,
			Verbose:      *verbose,
		},
	)

	server := &Server{
		rpcEndpoint: *rpcEndpoint,
		wsEndpoint:  *wsEndpoint,
		programs:    programList,
		httpAddr:    *httpAddr,
		stores:      stores,
		rpc:         rpc,
		market:      market,
		jup:         jup,
		resolver:    resolver,
		walletMgr:   walletMgr,
		exec:        exec,
		sched:       sched,
		engMx:       engMx,
		logger:      logger,
		startedAt:   time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP API
	go server.startHTTPServer(*httpAddr)

	// Run the engine
	err = server.Run(ctx, *verbose)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// Run starts the scheduler, the discovery feed and the wallet balance
// monitor, and blocks until the context is cancelled or a background
// component fails.
func (s *Server) Run(ctx context.Context, verbose bool) error {
	s.logger.Println("Starting strategy engine...")

	errCh := make(chan error, 2)

	// Discovery feed (optional): pool-init candidates for snipers.
	if s.wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, s.wsEndpoint, s.programs, nil)
		if err != nil {
			return fmt.Errorf("connect websocket: %w", err)
		}
		defer ws.Close()

		watcher := discovery.NewWatcher(ws.Events(), verbose)
		go watcher.Run(ctx)
		go s.sched.ConsumeCandidates(ctx, watcher.Candidates())
		s.logger.Printf("Discovery feed active, monitoring programs: %v", s.programs)
	}

	// Scheduler loop
	go func() {
		s.sched.Run(ctx)
		errCh <- nil
	}()
	s.logger.Println("Scheduler started")

	// Wallet balance gauge, refreshed every minute
	go s.pollWalletBalance(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollWalletBalance keeps the wallet balance gauge current.
func (s *Server) pollWalletBalance(ctx context.Context) {
	update := func() {
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		lamports, err := s.rpc.GetBalance(reqCtx, s.walletMgr.Address())
		if err != nil {
			return
		}
		s.engMx.WalletBalanceLamports.Set(float64(lamports))
	}

	update()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// resolvePrograms resolves program IDs from flags.
func resolvePrograms(programs, dex string) []string {
	result := make(map[string]bool)

	// Add explicit programs
	if programs != "" {
		for _, p := range strings.Split(programs, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				result[p] = true
			}
		}
	}

	// Add programs from DEX aliases
	if dex != "" {
		for _, alias := range strings.Split(dex, ",") {
			alias = strings.TrimSpace(strings.ToLower(alias))
			if programID, ok := dexAliases[alias]; ok {
				result[programID] = true
			}
		}
	}

	// Convert to slice
	list := make([]string, 0, len(result))
	for p := range result {
		list = append(list, p)
	}
	return list
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			strategies: memory.NewStrategyStore(),
			trades:     memory.NewTradeStore(),
			activities: memory.NewActivityStore(),
			ticks:      memory.NewTickStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		strategies: pgstore.NewStrategyStore(pool),
		trades:     pgstore.NewTradeStore(pool),
		activities: pgstore.NewActivityStore(pool),
		ticks:      chstore.NewTickStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// envOr returns the environment value for key, or fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
