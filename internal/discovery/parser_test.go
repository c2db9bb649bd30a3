package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
const testPool = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"

func TestPumpFunParserCreate(t *testing.T) {
	p := NewPumpFunParser()
	logs := []string{
		"Program " + PumpFun + " invoke [1]",
		"Program log: Instruction: Create",
		"Program log: mint: " + testMint,
		"Program " + PumpFun + " success",
	}

	got := p.ParsePoolInit(logs, "sig-1", 100)
	require.Len(t, got, 1)
	assert.Equal(t, testMint, got[0].Mint)
	assert.Equal(t, PumpFun, got[0].Program)
	assert.Equal(t, "sig-1", got[0].TxSignature)
	assert.Equal(t, int64(100), got[0].Slot)
	assert.Positive(t, got[0].DiscoveredAt)
}

func TestPumpFunParserIgnoresBuys(t *testing.T) {
	p := NewPumpFunParser()
	logs := []string{
		"Program " + PumpFun + " invoke [1]",
		"Program log: Instruction: Buy",
		"Program log: mint: " + testMint,
		"Program " + PumpFun + " success",
	}

	assert.Empty(t, p.ParsePoolInit(logs, "sig-2", 101))
}

func TestPumpFunParserMintOutsideFrame(t *testing.T) {
	p := NewPumpFunParser()
	logs := []string{
		"Program log: Instruction: Create",
		"Program log: mint: " + testMint,
	}

	// No program invocation frame, nothing to attribute.
	assert.Empty(t, p.ParsePoolInit(logs, "sig-3", 102))
}

func TestRaydiumParserInitialize(t *testing.T) {
	p := NewRaydiumParser()
	logs := []string{
		"Program " + RaydiumAMMV4 + " invoke [1]",
		"Program log: initialize2: InitializeInstruction2",
		"Program log: mint: " + testMint,
		"Program log: pool: " + testPool,
		"Program " + RaydiumAMMV4 + " success",
	}

	got := p.ParsePoolInit(logs, "sig-4", 103)
	require.Len(t, got, 1)
	assert.Equal(t, testMint, got[0].Mint)
	assert.Equal(t, testPool, got[0].Pool)
	assert.Equal(t, RaydiumAMMV4, got[0].Program)
}

func TestRaydiumParserNoInit(t *testing.T) {
	p := NewRaydiumParser()
	logs := []string{
		"Program " + RaydiumAMMV4 + " invoke [1]",
		"Program log: ray_log: CQAAAAAA",
		"Program " + RaydiumAMMV4 + " success",
	}

	assert.Empty(t, p.ParsePoolInit(logs, "sig-5", 104))
}
