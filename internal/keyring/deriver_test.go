package keyring

import (
	"testing"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(
		"legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title",
		"",
	)
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	return seed
}

func TestBIP44Deriver_Deterministic(t *testing.T) {
	d1, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	d2, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}

	for idx := uint32(0); idx < 5; idx++ {
		a, err := d1.Derive(idx)
		if err != nil {
			t.Fatalf("Derive(%d): %v", idx, err)
		}
		b, err := d2.Derive(idx)
		if err != nil {
			t.Fatalf("Derive(%d): %v", idx, err)
		}
		if a.PrivateKeyHex() != b.PrivateKeyHex() || !a.PublicKey.Equal(b.PublicKey) {
			t.Errorf("index %d: derivation not deterministic across instances", idx)
		}
		if a.Index != idx {
			t.Errorf("index %d: KeyPair.Index = %d", idx, a.Index)
		}
	}
}

func TestBIP44Deriver_DistinctIndices(t *testing.T) {
	d, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	a, _ := d.Derive(0)
	b, _ := d.Derive(1)
	if a.PublicKey.Equal(b.PublicKey) {
		t.Error("distinct indices yielded the same public key")
	}
	if a.DerivationPath == b.DerivationPath {
		t.Error("distinct indices yielded the same derivation path")
	}
}

func TestBIP44Deriver_PathFormat(t *testing.T) {
	d, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	kp, err := d.Derive(3)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want := "m/44'/9004'/0'/0/3"
	if kp.DerivationPath != want {
		t.Errorf("DerivationPath = %q, want %q", kp.DerivationPath, want)
	}
}

func TestNewBIP44Deriver_RejectsShortSeed(t *testing.T) {
	if _, err := NewBIP44Deriver(make([]byte, 32)); err == nil {
		t.Fatal("expected error for 32-byte seed")
	}
}

func TestKeyPair_SignVerify(t *testing.T) {
	d, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	kp, err := d.Derive(0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	hash := make([]byte, 32)
	hash[31] = 7
	sig, err := kp.Sign(hash)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !VerifySignature(kp.PublicKeyBytes(), hash, sig) {
		t.Error("signature failed to verify against its own key")
	}

	other := make([]byte, 32)
	other[31] = 8
	if VerifySignature(kp.PublicKeyBytes(), other, sig) {
		t.Error("signature verified against a different hash")
	}

	kp2, _ := d.Derive(1)
	if VerifySignature(kp2.PublicKeyBytes(), hash, sig) {
		t.Error("signature verified against a different key")
	}

	if _, err := kp.Sign(hash[:16]); err == nil {
		t.Error("expected error for short hash")
	}
}

func TestKeyPair_SignVerifyAcrossIndices(t *testing.T) {
	// Roughly half of all derived points have an odd y coordinate before
	// normalization, so a run of indices exercises both parities.
	d, err := NewBIP44Deriver(testSeed(t))
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	hash := make([]byte, 32)
	hash[0] = 0xa5

	for idx := uint32(0); idx < 16; idx++ {
		kp, err := d.Derive(idx)
		if err != nil {
			t.Fatalf("Derive(%d): %v", idx, err)
		}
		sig, err := kp.Sign(hash)
		if err != nil {
			t.Fatalf("Sign(%d): %v", idx, err)
		}
		if !VerifySignature(kp.PublicKeyBytes(), hash, sig) {
			t.Errorf("index %d: signature failed to verify against its own key", idx)
		}
	}
}
