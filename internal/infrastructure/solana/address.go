package solana

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

const (
	minAddressLen  = 32
	maxAddressLen  = 44
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// IsValidAddress checks length and base58 charset without decoding
func IsValidAddress(addr string) bool {
	if len(addr) < minAddressLen || len(addr) > maxAddressLen {
		return false
	}
	for _, r := range addr {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return true
}

// ParseAddress decodes a wallet address into a public key.
// Failures wrap entities.ErrInvalidAddress.
func ParseAddress(addr string) (solana.PublicKey, error) {
	addr = strings.TrimSpace(addr)
	if !IsValidAddress(addr) {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", entities.ErrInvalidAddress, addr)
	}

	pk, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", entities.ErrInvalidAddress, err)
	}
	return pk, nil
}
