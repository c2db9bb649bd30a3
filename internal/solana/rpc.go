package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the engine needs:
// transaction submission, simulation, confirmation polling, and account
// inspection for mint metadata.
type RPCClient interface {
	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, txBase64 string) (string, error)

	// SimulateTransaction simulates a signed transaction without
	// submitting it. A non-nil SimulationResult.Err means the transaction
	// would fail on-chain.
	SimulateTransaction(ctx context.Context, txBase64 string) (*SimulationResult, error)

	// GetSignatureStatuses retrieves confirmation status for signatures.
	// Entries are nil for signatures the cluster has not seen.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetBalance retrieves an account's lamport balance.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// SimulationResult holds the outcome of simulateTransaction.
type SimulationResult struct {
	Err  interface{} // nil on success; on-chain error object otherwise
	Logs []string
}

// SignatureStatus holds the confirmation state of a submitted signature.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int64
	Err                interface{} // non-nil when the transaction failed
	ConfirmationStatus string      // processed | confirmed | finalized
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
}
