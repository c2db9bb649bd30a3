package token

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/solana"
)

type stubIndex struct {
	snaps []*domain.MarketSnapshot
	err   error
	calls int
}

func (s *stubIndex) Search(_ context.Context, _ string) ([]*domain.MarketSnapshot, error) {
	s.calls++
	return s.snaps, s.err
}

type stubRPC struct {
	solana.RPCClient
	accounts map[string]*solana.AccountInfo
	calls    int
}

func (s *stubRPC) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	s.calls++
	return s.accounts[pubkey], nil
}

func mintAccountData(decimals byte) string {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:44], 1_000_000)
	data[44] = decimals
	return base64.StdEncoding.EncodeToString(data)
}

func TestResolveMintAddressFastPath(t *testing.T) {
	idx := &stubIndex{}
	r := NewResolver(idx, nil)

	// A well-known mint resolves without touching the index.
	asset, err := r.Resolve(context.Background(), domain.USDCMint)
	require.NoError(t, err)
	assert.Equal(t, domain.USDCMint, asset.Mint)
	assert.Equal(t, "USDC", asset.Symbol)
	assert.Equal(t, 6, asset.Decimals)
	assert.Zero(t, idx.calls)
}

func TestResolveUnknownMintUsesChainDecimals(t *testing.T) {
	mint := "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB264"
	rpc := &stubRPC{accounts: map[string]*solana.AccountInfo{
		mint: {Data: mintAccountData(4)},
	}}
	r := NewResolver(&stubIndex{}, rpc)

	asset, err := r.Resolve(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, mint, asset.Mint)
	assert.Equal(t, 4, asset.Decimals)

	// Decimals served from cache on repeat.
	assert.Equal(t, 4, r.Decimals(context.Background(), mint))
	assert.Equal(t, 1, rpc.calls)
}

func TestResolveSymbolBuiltin(t *testing.T) {
	idx := &stubIndex{}
	r := NewResolver(idx, nil)

	for _, ref := range []string{"SOL", "sol", " Sol "} {
		asset, err := r.Resolve(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, domain.WSOLMint, asset.Mint)
	}
	assert.Zero(t, idx.calls)
}

func TestResolveSymbolSearchExactMatchWins(t *testing.T) {
	idx := &stubIndex{snaps: []*domain.MarketSnapshot{
		{Mint: "m-partial", TokenSymbol: "WIFX", LiquidityUSD: 9000},
		{Mint: "m-exact", TokenSymbol: "WIF", TokenName: "dogwifhat", LiquidityUSD: 500},
	}}
	r := NewResolver(idx, nil)

	asset, err := r.Resolve(context.Background(), "WIF")
	require.NoError(t, err)
	assert.Equal(t, "m-exact", asset.Mint)
	assert.Equal(t, "dogwifhat", asset.Name)
	assert.Equal(t, domain.DefaultDecimals, asset.Decimals)
}

func TestResolveIdempotent(t *testing.T) {
	idx := &stubIndex{snaps: []*domain.MarketSnapshot{
		{Mint: "m-1", TokenSymbol: "ABC", LiquidityUSD: 100},
	}}
	r := NewResolver(idx, nil)

	first, err := r.Resolve(context.Background(), "ABC")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, first.Mint, second.Mint)
}

func TestResolveUnresolvable(t *testing.T) {
	r := NewResolver(&stubIndex{}, nil)

	_, err := r.Resolve(context.Background(), "NOSUCHTOKEN")
	assert.ErrorIs(t, err, ErrUnresolvable)

	_, err = r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestResolveSearchError(t *testing.T) {
	idx := &stubIndex{err: errors.New("index down")}
	r := NewResolver(idx, nil)

	_, err := r.Resolve(context.Background(), "XYZ")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnresolvable)
}

func TestIsMintAddress(t *testing.T) {
	assert.True(t, IsMintAddress(domain.WSOLMint))
	assert.True(t, IsMintAddress(domain.USDCMint))
	assert.False(t, IsMintAddress("SOL"))
	assert.False(t, IsMintAddress("not-base58-0OIl!"))
	assert.False(t, IsMintAddress(""))
}
