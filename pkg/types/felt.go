// Package types defines core primitive types for the wallet backend.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// FeltHexDigits is the canonical width of a zero-padded felt in hex digits.
const FeltHexDigits = 64

// feltModulus is the field prime 2^251 + 17*2^192 + 1. All Felt values are
// reduced into [0, feltModulus).
var feltModulus = func() *uint256.Int {
	m := new(uint256.Int).Lsh(uint256.NewInt(1), 251)
	m.Add(m, new(uint256.Int).Lsh(uint256.NewInt(17), 192))
	return m.Add(m, uint256.NewInt(1))
}()

// Felt represents a 251-bit field element. Addresses, class hashes, public
// keys, calldata words, and fee amounts are all felts. The zero value is the
// field element zero.
type Felt struct {
	v uint256.Int
}

// NewFelt creates a felt from a uint64.
func NewFelt(n uint64) Felt {
	var f Felt
	f.v.SetUint64(n)
	return f
}

// FeltFromBytes interprets b as a big-endian integer reduced into the field.
func FeltFromBytes(b []byte) Felt {
	var f Felt
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	f.v.SetBytes(b)
	f.v.Mod(&f.v, feltModulus)
	return f
}

// FeltFromUint256 reduces n into the field.
func FeltFromUint256(n *uint256.Int) Felt {
	var f Felt
	f.v.Mod(n, feltModulus)
	return f
}

// ParseFelt parses a hex ("0x...") or decimal string into a felt.
// Hex parsing is case-insensitive and accepts leading zeros.
func ParseFelt(s string) (Felt, error) {
	var f Felt
	if s == "" {
		return f, fmt.Errorf("empty felt string")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			return f, nil
		}
		if len(digits) > 64 {
			return f, fmt.Errorf("felt %q exceeds 256 bits", s)
		}
		if err := f.v.SetFromHex("0x" + strings.ToLower(digits)); err != nil {
			return f, fmt.Errorf("parse felt %q: %w", s, err)
		}
	} else {
		if err := f.v.SetFromDecimal(s); err != nil {
			return f, fmt.Errorf("parse felt %q: %w", s, err)
		}
	}
	if f.v.Cmp(feltModulus) >= 0 {
		return Felt{}, fmt.Errorf("felt %q exceeds field modulus", s)
	}
	return f, nil
}

// MustFelt parses s and panics on error. For constants only.
func MustFelt(s string) Felt {
	f, err := ParseFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// IsZero returns true if the felt is the field element zero.
func (f Felt) IsZero() bool {
	return f.v.IsZero()
}

// Equal reports numeric equality, independent of source formatting.
func (f Felt) Equal(other Felt) bool {
	return f.v.Eq(&other.v)
}

// Cmp compares two felts numerically.
func (f Felt) Cmp(other Felt) int {
	return f.v.Cmp(&other.v)
}

// String returns the minimal 0x-prefixed lowercase hex form.
func (f Felt) String() string {
	return f.v.Hex()
}

// PaddedHex returns the 0x-prefixed hex form zero-padded to the canonical
// address width (64 hex digits).
func (f Felt) PaddedHex() string {
	h := f.v.Hex()[2:]
	if len(h) < FeltHexDigits {
		h = strings.Repeat("0", FeltHexDigits-len(h)) + h
	}
	return "0x" + h
}

// Decimal returns the base-10 form.
func (f Felt) Decimal() string {
	return f.v.Dec()
}

// Bytes32 returns the big-endian 32-byte form.
func (f Felt) Bytes32() [32]byte {
	return f.v.Bytes32()
}

// Uint256 returns a copy of the underlying integer.
func (f Felt) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&f.v)
}

// Uint64 returns the low 64 bits. Callers must know the value fits.
func (f Felt) Uint64() uint64 {
	return f.v.Uint64()
}

// Add returns f + other mod p.
func (f Felt) Add(other Felt) Felt {
	var out Felt
	out.v.AddMod(&f.v, &other.v, feltModulus)
	return out
}

// MarshalJSON encodes the felt as a minimal hex string.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a hex or decimal string.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFelt(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
