package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// SPL token mint account layout offsets.
// mint_authority_option(4) | mint_authority(32) | supply(8) | decimals(1) | ...
const (
	mintSupplyOffset   = 36
	mintDecimalsOffset = 44
	mintAccountMinLen  = 45
)

// ParseMintAccount extracts supply and decimals from base64-encoded SPL
// mint account data.
func ParseMintAccount(data string) (supply uint64, decimals int, err error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, 0, fmt.Errorf("decode mint account data: %w", err)
	}
	if len(decoded) < mintAccountMinLen {
		return 0, 0, fmt.Errorf("mint account data too short: %d", len(decoded))
	}
	supply = binary.LittleEndian.Uint64(decoded[mintSupplyOffset : mintSupplyOffset+8])
	decimals = int(decoded[mintDecimalsOffset])
	return supply, decimals, nil
}
