package identity

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerate(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(kp.PublicKey) != ed25519.PublicKeySize {
		t.Errorf("public key size: got %d, want %d", len(kp.PublicKey), ed25519.PublicKeySize)
	}
	if len(kp.PrivateKey) != ed25519.PrivateKeySize {
		t.Errorf("private key size: got %d, want %d", len(kp.PrivateKey), ed25519.PrivateKeySize)
	}
}

func TestSeedRoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	seed := kp.Seed()
	if seed[0] != 'S' {
		t.Errorf("seed prefix: got %q, want S", seed[0])
	}

	restored, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("from seed: %v", err)
	}
	if !kp.PublicKey.Equal(restored.PublicKey) {
		t.Error("public keys don't match")
	}
	if restored.Address() != kp.Address() {
		t.Errorf("address: got %s, want %s", restored.Address(), kp.Address())
	}
}

func TestFromSeedRejectsAddress(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := FromSeed(kp.Address()); err == nil {
		t.Error("expected error for account address used as seed")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.key")

	original, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := original.SaveToFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !original.PublicKey.Equal(loaded.PublicKey) {
		t.Error("public keys don't match")
	}
	if !original.PrivateKey.Equal(loaded.PrivateKey) {
		t.Error("private keys don't match")
	}
}

func TestLoadOrGenerate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys", "test.key")

	// Первый вызов — генерирует
	kp1, err := LoadOrGenerate(path)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Второй вызов — загружает
	kp2, err := LoadOrGenerate(path)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if !kp1.PublicKey.Equal(kp2.PublicKey) {
		t.Error("should return same keys")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.key")

	if err := os.WriteFile(path, []byte("not a seed"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Error("expected error for invalid file")
	}
}

func TestHint(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	hint := kp.Hint()
	for i := range 4 {
		if hint[i] != kp.PublicKey[28+i] {
			t.Fatalf("hint byte %d: got %d, want %d", i, hint[i], kp.PublicKey[28+i])
		}
	}
}

func TestSignVerify(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data := []byte("test message")
	sig := kp.Sign(data)

	if len(sig) != ed25519.SignatureSize {
		t.Errorf("signature size: got %d, want %d", len(sig), ed25519.SignatureSize)
	}
	if !Verify(kp.PublicKey, data, sig) {
		t.Error("signature verification failed")
	}
	if !VerifyAddress(kp.Address(), data, sig) {
		t.Error("address verification failed")
	}
	if Verify(other.PublicKey, data, sig) {
		t.Error("signature verified with wrong key")
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	data := []byte("test message")
	sig := kp.Sign(data)

	if Verify(kp.PublicKey[:31], data, sig) {
		t.Error("short public key accepted")
	}
	if Verify(kp.PublicKey, data, sig[:63]) {
		t.Error("short signature accepted")
	}
	if Verify(kp.PublicKey, data, nil) {
		t.Error("nil signature accepted")
	}
	if VerifyAddress("GBROKEN", data, sig) {
		t.Error("malformed address accepted")
	}
}
