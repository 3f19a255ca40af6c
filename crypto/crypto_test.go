package crypto

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	lorem "github.com/drhodes/golorem"
)

func TestSignature(t *testing.T) {
	privKey, address := GenKey()
	message := []byte(lorem.Sentence(5, 10))
	signature := SignED(privKey, message)
	if !VerifyED(address, message, signature) {
		t.Errorf("Valid signature rejected")
	}
	if VerifyED(address, append(message, '!'), signature) {
		t.Errorf("Signature accepted for a different message")
	}
	_, other := GenKey()
	if VerifyED(other, message, signature) {
		t.Errorf("Signature accepted for a different key")
	}
}

func TestKeyFromSecret(t *testing.T) {
	secret := []byte(lorem.Word(8, 16))
	_, first := KeyFromSecret(secret)
	_, second := KeyFromSecret(secret)
	if first != second {
		t.Errorf("Same secret produced different keys")
	}
	if err := CheckEDPubKey(first); err != nil {
		t.Errorf("Generated key is not on the curve: %v", err)
	}
}

func TestLoadKey(t *testing.T) {
	dir, err := ioutil.TempDir("", "keys")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "key.hex")
	privKey, address := GenKey()
	if err := SaveKey(file, privKey); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadKey(file)
	if err != nil {
		t.Fatalf("Failed loading key: %v", err)
	}
	if AddressOf(loaded) != address {
		t.Errorf("Loaded key has a different address")
	}
	_ = ioutil.WriteFile(file, []byte("abcd"), 0600)
	if _, err := LoadKey(file); err != ErrPrivKeyLength {
		t.Errorf("Expected key length error, got %v", err)
	}
}
