package keyring

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// Signature is a 64-byte Schnorr signature split into its point and scalar
// halves, each as 0x-prefixed 32-byte hex.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
}

// Bytes reassembles the 64-byte wire form.
func (s Signature) Bytes() ([]byte, error) {
	r, err := hex.DecodeString(strings.TrimPrefix(s.R, "0x"))
	if err != nil || len(r) != 32 {
		return nil, fmt.Errorf("invalid signature r component")
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s.S, "0x"))
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("invalid signature s component")
	}
	return append(r, b...), nil
}

// Sign produces a signature over a 32-byte hash with the pair's private
// scalar.
func (k KeyPair) Sign(hash []byte) (Signature, error) {
	if len(hash) != 32 {
		return Signature{}, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	sig, err := schnorr.Sign(k.priv, hash)
	if err != nil {
		return Signature{}, fmt.Errorf("sign: %w", err)
	}
	raw := sig.Serialize()
	return Signature{
		R: "0x" + hex.EncodeToString(raw[:32]),
		S: "0x" + hex.EncodeToString(raw[32:]),
	}, nil
}

// VerifySignature checks a signature against a 32-byte hash and an x-only
// public key. Returns false on any malformed input.
func VerifySignature(publicKey [32]byte, hash []byte, signature Signature) bool {
	if len(hash) != 32 {
		return false
	}
	// Derived keys sit on even-Y points, so the x coordinate plus the
	// even parity prefix reconstructs the full key.
	compressed := make([]byte, 0, 33)
	compressed = append(compressed, 0x02)
	compressed = append(compressed, publicKey[:]...)
	pub, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return false
	}
	raw, err := signature.Bytes()
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(raw)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pub)
}
