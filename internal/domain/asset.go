package domain

// Asset represents a resolved token identity on the settlement network.
// Immutable once resolved; cached by mint for the process lifetime.
type Asset struct {
	Mint     string // canonical mint address (base58)
	Symbol   string // ticker symbol, may be empty for unknown tokens
	Name     string // human name, may be empty
	Decimals int    // smallest-unit precision
}

// DefaultDecimals is the fallback precision for assets whose mint account
// has not been inspected yet. Most SPL tokens use 9; a wrong guess is
// recoverable because amount normalization re-reads decimals before quoting.
const DefaultDecimals = 9

// Well-known mint addresses.
const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)
