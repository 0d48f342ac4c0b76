// Package keyring implements deterministic account key derivation from a
// single master seed.
package keyring

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip32"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// BIP-44 derivation path constants.
// Full path: m/44'/9004'/0'/0/index
const (
	// PurposeBIP44 is the BIP-44 purpose field (hardened).
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinTypeStarknet is the registered Starknet coin type (hardened).
	CoinTypeStarknet = bip32.FirstHardenedChild + 9004

	// AccountDefault is the single account field used by the wallet (hardened).
	AccountDefault = bip32.FirstHardenedChild

	// ChangeExternal is the external chain field.
	ChangeExternal = 0
)

// KeyPair is a derived signing key pair together with its position in the
// key hierarchy. The private scalar stays unexported so it cannot leak
// through serialization.
type KeyPair struct {
	PublicKey      types.Felt
	Index          uint32
	DerivationPath string

	priv *secp256k1.PrivateKey
}

// PrivateKeyHex returns the 32-byte private scalar as 0x-prefixed hex.
func (k KeyPair) PrivateKeyHex() string {
	return fmt.Sprintf("0x%064x", k.priv.Serialize())
}

// PublicKeyBytes returns the x-only 32-byte public key used for signature
// verification. The point behind it always has an even y coordinate.
func (k KeyPair) PublicKeyBytes() [32]byte {
	var out [32]byte
	copy(out[:], k.priv.PubKey().SerializeCompressed()[1:])
	return out
}

// Zero wipes the private scalar.
func (k KeyPair) Zero() {
	if k.priv != nil {
		k.priv.Zero()
	}
}

// Deriver produces deterministic key pairs from sequential indices.
// Implementations must return identical pairs for identical indices across
// invocations and process restarts.
type Deriver interface {
	// Derive returns the key pair at the given index.
	Derive(index uint32) (KeyPair, error)
	// Path returns the derivation path root shared by all keys this
	// deriver produces (the index is appended as the final segment).
	Path() string
}

// BIP44Deriver derives key pairs along m/44'/9004'/0'/0/index from a master
// seed. The curve scalar and point are reduced into the felt range to obtain
// the wallet-facing key representation.
type BIP44Deriver struct {
	root *bip32.Key
}

// NewBIP44Deriver creates a deriver from a 64-byte master seed. The shared
// path prefix m/44'/9004'/0'/0 is derived once up front.
func NewBIP44Deriver(seed []byte) (*BIP44Deriver, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	root := master
	for _, idx := range []uint32{PurposeBIP44, CoinTypeStarknet, AccountDefault, ChangeExternal} {
		root, err = root.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive path segment %d: %w", idx, err)
		}
	}
	return &BIP44Deriver{root: root}, nil
}

// Path returns the shared derivation path prefix.
func (d *BIP44Deriver) Path() string {
	return "m/44'/9004'/0'/0"
}

// Derive returns the key pair at the given index.
func (d *BIP44Deriver) Derive(index uint32) (KeyPair, error) {
	child, err := d.root.NewChildKey(index)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive child %d: %w", index, err)
	}

	// bip32 Key.Key is 33 bytes with a leading 0x00 for private keys.
	raw := child.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	priv := secp256k1.PrivKeyFromBytes(raw)

	// The wallet identifies keys by the 32-byte x coordinate alone and
	// verification reconstructs the point with an even parity prefix, so
	// the signing scalar must land on the even-Y point.
	compressed := priv.PubKey().SerializeCompressed()
	if compressed[0] == 0x03 {
		priv.Key.Negate()
		compressed = priv.PubKey().SerializeCompressed()
	}

	// The wallet-facing public key is the x coordinate, reduced into the
	// felt range. Address derivation and account identity use this felt;
	// signature verification uses the full 32 bytes.
	xOnly := compressed[1:]
	return KeyPair{
		PublicKey:      types.FeltFromBytes(xOnly),
		Index:          index,
		DerivationPath: fmt.Sprintf("%s/%d", d.Path(), index),
		priv:           priv,
	}, nil
}
