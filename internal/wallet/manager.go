// Package wallet owns the process-local signing key. The key is
// generated once, persisted to a private user-scoped file, and loaded on
// every subsequent start. No call path exposes the secret material; the
// manager only exposes the public address and a signing capability.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Errors surfaced by the manager. ErrCorrupt is fatal: regenerating a key
// over a corrupt file would orphan funds sent to the old address.
var (
	ErrCorrupt = errors.New("wallet file corrupt")
)

// walletFile is the on-disk format.
type walletFile struct {
	PublicAddress  string `json:"publicAddress"`
	SecretMaterial string `json:"secretMaterial"` // base58 ed25519 private key
	CreatedAt      int64  `json:"createdAt"`      // Unix timestamp in milliseconds
}

// Info is the exportable wallet identity: no secret material.
type Info struct {
	Address   string
	CreatedAt int64
}

// Manager is the wallet lifecycle manager. Signing is single-flighted:
// concurrent executions against the wallet serialize on signMu so
// submissions cannot interleave.
type Manager struct {
	path string

	mu      sync.Mutex
	signMu  sync.Mutex
	loaded  bool
	priv    ed25519.PrivateKey
	address string
	created int64
}

// NewManager creates a manager for the wallet file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// DefaultPath returns the per-user wallet location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".solana-strategy-engine", "wallet.json"), nil
}

// GetOrCreate loads the persisted wallet, generating and persisting a new
// one if the file is absent. A corrupt or partially written file is a
// fatal configuration error, never silently regenerated.
func (m *Manager) GetOrCreate() (Info, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return Info{Address: m.address, CreatedAt: m.created}, false, nil
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		info, err := m.generate()
		if err != nil {
			return Info{}, false, err
		}
		return info, true, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("read wallet file: %w", err)
	}

	info, err := m.load(data)
	if err != nil {
		return Info{}, false, err
	}
	return info, false, nil
}

// generate creates a new keypair and persists it with restrictive
// permissions. Write is atomic: temp file + rename.
func (m *Manager) generate() (Info, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Info{}, fmt.Errorf("generate keypair: %w", err)
	}

	address := base58.Encode(pub)
	created := time.Now().UnixMilli()

	payload, err := json.MarshalIndent(walletFile{
		PublicAddress:  address,
		SecretMaterial: base58.Encode(priv),
		CreatedAt:      created,
	}, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("marshal wallet file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return Info{}, fmt.Errorf("create wallet dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return Info{}, fmt.Errorf("write wallet file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return Info{}, fmt.Errorf("persist wallet file: %w", err)
	}

	m.priv = priv
	m.address = address
	m.created = created
	m.loaded = true
	return Info{Address: address, CreatedAt: created}, nil
}

// load validates persisted key material. The stored address must match
// the key and the public key must be a valid curve point.
func (m *Manager) load(data []byte) (Info, error) {
	var f walletFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.PublicAddress == "" || f.SecretMaterial == "" {
		return Info{}, fmt.Errorf("%w: missing fields", ErrCorrupt)
	}

	priv, err := base58.Decode(f.SecretMaterial)
	if err != nil {
		return Info{}, fmt.Errorf("%w: decode secret: %v", ErrCorrupt, err)
	}
	if len(priv) != ed25519.PrivateKeySize {
		return Info{}, fmt.Errorf("%w: secret length %d", ErrCorrupt, len(priv))
	}

	pub := ed25519.PrivateKey(priv).Public().(ed25519.PublicKey)
	if base58.Encode(pub) != f.PublicAddress {
		return Info{}, fmt.Errorf("%w: address does not match key", ErrCorrupt)
	}
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return Info{}, fmt.Errorf("%w: public key not on curve", ErrCorrupt)
	}

	m.priv = ed25519.PrivateKey(priv)
	m.address = f.PublicAddress
	m.created = f.CreatedAt
	m.loaded = true
	return Info{Address: m.address, CreatedAt: m.created}, nil
}

// Address returns the wallet's public address. Empty until GetOrCreate.
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// SignTransaction signs a serialized Solana transaction, filling the fee
// payer signature slot. Calls serialize on an internal mutex so
// concurrent strategy executions cannot interleave sign+submit.
func (m *Manager) SignTransaction(tx []byte) ([]byte, error) {
	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return nil, errors.New("wallet not initialized")
	}
	priv := m.priv
	m.mu.Unlock()

	m.signMu.Lock()
	defer m.signMu.Unlock()

	sigCount, offset, err := decodeShortVecLen(tx)
	if err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}
	if sigCount < 1 {
		return nil, errors.New("transaction has no signature slots")
	}
	msgStart := offset + sigCount*ed25519.SignatureSize
	if len(tx) <= msgStart {
		return nil, errors.New("transaction truncated")
	}

	signed := make([]byte, len(tx))
	copy(signed, tx)
	sig := ed25519.Sign(priv, tx[msgStart:])
	copy(signed[offset:offset+ed25519.SignatureSize], sig)
	return signed, nil
}

// decodeShortVecLen decodes the compact-u16 length prefix used by Solana
// transaction serialization. Returns the value and the prefix width.
func decodeShortVecLen(data []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, errors.New("short vec truncated")
		}
		b := data[i]
		value |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, errors.New("short vec too long")
}
