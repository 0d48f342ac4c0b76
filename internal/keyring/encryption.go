package keyring

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// saltSize is the length of the Argon2id salt in bytes.
const saltSize = 32

// EncryptionParams are the Argon2id work factors for stretching the
// keystore password. They are persisted next to the sealed seed so a
// keystore written under older defaults stays readable.
type EncryptionParams struct {
	Memory      uint32 `json:"memory"` // KiB
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

// DefaultParams returns the work factors for newly created keystores.
func DefaultParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
	}
}

// cipherKey stretches the password into an XChaCha20-Poly1305 key.
func (p EncryptionParams) cipherKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

// sealedSeed is the ciphertext bundle a keystore file carries. Salt and
// nonce are generated fresh on every seal.
type sealedSeed struct {
	salt       []byte
	nonce      []byte
	ciphertext []byte
}

// sealSeed encrypts the seed under the password with Argon2id and
// XChaCha20-Poly1305.
func sealSeed(seed, password []byte, params EncryptionParams) (sealedSeed, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return sealedSeed{}, fmt.Errorf("generate salt: %w", err)
	}

	key := params.cipherKey(password, salt)
	defer ZeroBytes(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return sealedSeed{}, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return sealedSeed{}, fmt.Errorf("generate nonce: %w", err)
	}

	return sealedSeed{
		salt:       salt,
		nonce:      nonce,
		ciphertext: aead.Seal(nil, nonce, seed, nil),
	}, nil
}

// openSeed decrypts a sealed seed. A wrong password surfaces as an
// authentication failure from the AEAD open.
func openSeed(bundle sealedSeed, password []byte, params EncryptionParams) ([]byte, error) {
	if len(bundle.salt) != saltSize {
		return nil, fmt.Errorf("salt is %d bytes, want %d", len(bundle.salt), saltSize)
	}
	if len(bundle.nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(bundle.nonce), chacha20poly1305.NonceSizeX)
	}

	key := params.cipherKey(password, bundle.salt)
	defer ZeroBytes(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	seed, err := aead.Open(nil, bundle.nonce, bundle.ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed seed: %w", err)
	}
	return seed, nil
}
