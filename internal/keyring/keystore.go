package keyring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// keystoreFile is the on-disk JSON format for the encrypted master seed.
// The KDF work factors ride along so Load never depends on the current
// defaults.
type keystoreFile struct {
	Version    int              `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	KDF        EncryptionParams `json:"kdf"`
	Salt       []byte           `json:"salt"`
	Nonce      []byte           `json:"nonce"`
	SealedSeed []byte           `json:"sealed_seed"`
}

// Keystore manages the encrypted master seed on disk. The wallet has a
// single seed; every account derives from it.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) seedPath() string {
	return filepath.Join(ks.path, "seed.wallet")
}

// Exists reports whether a seed has already been created.
func (ks *Keystore) Exists() bool {
	_, err := os.Stat(ks.seedPath())
	return err == nil
}

// Create encrypts and stores the master seed. Fails if a seed already exists.
func (ks *Keystore) Create(seed, password []byte, params EncryptionParams) error {
	if ks.Exists() {
		return fmt.Errorf("seed already exists at %s", ks.seedPath())
	}

	bundle, err := sealSeed(seed, password, params)
	if err != nil {
		return fmt.Errorf("seal seed: %w", err)
	}

	kf := keystoreFile{
		Version:    1,
		CreatedAt:  time.Now().UTC(),
		KDF:        params,
		Salt:       bundle.salt,
		Nonce:      bundle.nonce,
		SealedSeed: bundle.ciphertext,
	}

	data, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keystore: %w", err)
	}

	tmp := ks.seedPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return os.Rename(tmp, ks.seedPath())
}

// Load decrypts and returns the master seed. The caller owns the returned
// bytes and must zero them when done.
func (ks *Keystore) Load(password []byte) ([]byte, error) {
	data, err := os.ReadFile(ks.seedPath())
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}

	bundle := sealedSeed{salt: kf.Salt, nonce: kf.Nonce, ciphertext: kf.SealedSeed}
	seed, err := openSeed(bundle, password, kf.KDF)
	if err != nil {
		return nil, fmt.Errorf("decrypt seed: %w", err)
	}
	return seed, nil
}
