package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mr-tron/base58"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/solana"
)

// Resolver errors.
var (
	// ErrUnresolvable means neither the built-in table nor the market
	// index could map the input to a mint.
	ErrUnresolvable = errors.New("token: unresolvable symbol")
)

// wellKnown maps common uppercase symbols to their canonical mints.
// Checked before any network call.
var wellKnown = map[string]domain.Asset{
	"SOL":  {Mint: domain.WSOLMint, Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9},
	"WSOL": {Mint: domain.WSOLMint, Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9},
	"USDC": {Mint: domain.USDCMint, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	"USDT": {Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Name: "USDT", Decimals: 6},
	"BONK": {Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "BONK", Name: "Bonk", Decimals: 5},
	"JUP":  {Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP", Name: "Jupiter", Decimals: 6},
	"RAY":  {Mint: "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", Symbol: "RAY", Name: "Raydium", Decimals: 6},
}

// index is the market index surface the resolver needs for symbol
// search.
type index interface {
	Search(ctx context.Context, query string) ([]*domain.MarketSnapshot, error)
}

// Resolver maps free-form token references, either a base58 mint
// address or a symbol, to a canonical Asset. Resolution is read-only
// and repeatable: the same input yields the same mint while the market
// state is stable.
type Resolver struct {
	market index
	rpc    solana.RPCClient

	mu       sync.RWMutex
	decimals map[string]int
}

// NewResolver creates a Resolver. rpc may be nil, in which case mint
// decimals fall back to the chain default when the index does not know
// the token.
func NewResolver(market index, rpc solana.RPCClient) *Resolver {
	return &Resolver{
		market:   market,
		rpc:      rpc,
		decimals: make(map[string]int),
	}
}

// Resolve maps a mint address or symbol to an Asset.
//
// A syntactically valid mint address is accepted as-is without any
// network round-trip. Anything else is treated as a symbol: first
// against the built-in table, then via market index search where an
// exact symbol match with the deepest liquidity wins.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*domain.Asset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrUnresolvable
	}

	if IsMintAddress(ref) {
		asset := &domain.Asset{Mint: ref, Decimals: domain.DefaultDecimals}
		if known := lookupByMint(ref); known != nil {
			return known, nil
		}
		asset.Decimals = r.resolveDecimals(ctx, ref)
		return asset, nil
	}

	symbol := strings.ToUpper(ref)
	if asset, ok := wellKnown[symbol]; ok {
		return &asset, nil
	}

	if r.market == nil {
		return nil, ErrUnresolvable
	}

	snaps, err := r.market.Search(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", ref, err)
	}
	// Exact symbol matches first; Search already orders by liquidity.
	for _, s := range snaps {
		if strings.EqualFold(s.TokenSymbol, ref) {
			return r.assetFromSnapshot(ctx, s), nil
		}
	}
	if len(snaps) > 0 {
		return r.assetFromSnapshot(ctx, snaps[0]), nil
	}
	return nil, ErrUnresolvable
}

// Decimals returns the decimal count for a mint, reading the mint
// account on first use and caching the result.
func (r *Resolver) Decimals(ctx context.Context, mint string) int {
	if known := lookupByMint(mint); known != nil {
		return known.Decimals
	}
	return r.resolveDecimals(ctx, mint)
}

func (r *Resolver) assetFromSnapshot(ctx context.Context, s *domain.MarketSnapshot) *domain.Asset {
	return &domain.Asset{
		Mint:     s.Mint,
		Symbol:   s.TokenSymbol,
		Name:     s.TokenName,
		Decimals: r.resolveDecimals(ctx, s.Mint),
	}
}

func (r *Resolver) resolveDecimals(ctx context.Context, mint string) int {
	r.mu.RLock()
	d, ok := r.decimals[mint]
	r.mu.RUnlock()
	if ok {
		return d
	}

	d = domain.DefaultDecimals
	if r.rpc != nil {
		if info, err := r.rpc.GetAccountInfo(ctx, mint); err == nil && info != nil {
			if _, decimals, err := solana.ParseMintAccount(info.Data); err == nil {
				d = decimals
			}
		}
	}

	r.mu.Lock()
	r.decimals[mint] = d
	r.mu.Unlock()
	return d
}

// IsMintAddress reports whether s decodes as a 32-byte base58 public
// key.
func IsMintAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == 32
}

func lookupByMint(mint string) *domain.Asset {
	for _, a := range wellKnown {
		if a.Mint == mint {
			asset := a
			return &asset
		}
	}
	return nil
}
