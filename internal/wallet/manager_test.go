package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_FreshEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	m := NewManager(path)

	info, created, err := m.GetOrCreate()
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, info.Address)

	// Address must be a base58-encoded 32-byte public key.
	pub, err := base58.Decode(info.Address)
	require.NoError(t, err)
	assert.Len(t, pub, ed25519.PublicKeySize)

	// File exists with restrictive permissions.
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestGetOrCreate_SecondCallLoadsSameAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")

	first, created, err := NewManager(path).GetOrCreate()
	require.NoError(t, err)
	require.True(t, created)

	// A fresh manager against the same file must load, not regenerate.
	second, created, err := NewManager(path).GetOrCreate()
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Address, second.Address)
}

func TestGetOrCreate_CorruptFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewManager(path).GetOrCreate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))

	// Corrupt file must survive: no silent regeneration.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestGetOrCreate_MismatchedAddressIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	m := NewManager(path)
	_, _, err := m.GetOrCreate()
	require.NoError(t, err)

	// Tamper with the stored address.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := []byte(`{"publicAddress":"11111111111111111111111111111111","secretMaterial":` +
		extractField(t, data, "secretMaterial") + `,"createdAt":1}`)
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, _, err = NewManager(path).GetOrCreate()
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func extractField(t *testing.T, data []byte, field string) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	v, ok := m[field].(string)
	require.True(t, ok)
	return `"` + v + `"`
}

func TestSignTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	m := NewManager(path)
	info, _, err := m.GetOrCreate()
	require.NoError(t, err)

	// One empty signature slot followed by a message.
	message := []byte("transaction message bytes")
	tx := make([]byte, 1+ed25519.SignatureSize+len(message))
	tx[0] = 1
	copy(tx[1+ed25519.SignatureSize:], message)

	signed, err := m.SignTransaction(tx)
	require.NoError(t, err)
	require.Len(t, signed, len(tx))

	pub, err := base58.Decode(info.Address)
	require.NoError(t, err)
	sig := signed[1 : 1+ed25519.SignatureSize]
	assert.True(t, ed25519.Verify(ed25519.PublicKey(pub), message, sig))
}

func TestSignTransaction_NoSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	m := NewManager(path)
	_, _, err := m.GetOrCreate()
	require.NoError(t, err)

	_, err = m.SignTransaction([]byte{0})
	assert.Error(t, err)
}

func TestDecodeShortVecLen(t *testing.T) {
	tests := []struct {
		data  []byte
		value int
		width int
	}{
		{[]byte{0x01}, 1, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xff, 0x01}, 255, 2},
	}
	for _, tt := range tests {
		value, width, err := decodeShortVecLen(tt.data)
		require.NoError(t, err)
		assert.Equal(t, tt.value, value)
		assert.Equal(t, tt.width, width)
	}

	_, _, err := decodeShortVecLen(nil)
	assert.Error(t, err)
}
