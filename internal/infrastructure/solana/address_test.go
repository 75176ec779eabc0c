package solana

import (
	"errors"
	"testing"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"wallet address", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", true},
		{"system program", "11111111111111111111111111111111", true},
		{"too short", "9WzDXwBbmkg8ZTbN", false},
		{"too long", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWMxxxx", false},
		{"zero is not base58", "0WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", false},
		{"ethereum address", "0x1234567890123456789012345678901234567890", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAddress(tt.addr); got != tt.want {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	t.Run("parses valid address", func(t *testing.T) {
		pk, err := ParseAddress(" 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pk.String() != "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM" {
			t.Errorf("unexpected key: %s", pk.String())
		}
	})

	t.Run("wraps ErrInvalidAddress", func(t *testing.T) {
		_, err := ParseAddress("not-a-wallet")
		if !errors.Is(err, entities.ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})
}
