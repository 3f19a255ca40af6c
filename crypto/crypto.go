package crypto

import (
	"encoding/hex"
	"errors"
	"io/ioutil"
	"strings"

	"github.com/tendermint/tendermint/crypto/ed25519"
)

const privKeySize = 64

var ErrPrivKeyLength = errors.New("invalid private key length")

func GenKey() (privKey ed25519.PrivKeyEd25519, address Address) {
	privKey = ed25519.GenPrivKey()
	return privKey, AddressOf(privKey)
}

// KeyFromSecret derives a deterministic key, useful for fixtures and tests.
func KeyFromSecret(secret []byte) (privKey ed25519.PrivKeyEd25519, address Address) {
	privKey = ed25519.GenPrivKeyFromSecret(secret)
	return privKey, AddressOf(privKey)
}

func AddressOf(privKey ed25519.PrivKeyEd25519) Address {
	var address Address
	copy(address[:], privKey[32:])
	return address
}

// LoadKey reads a hex encoded 64 byte ed25519 private key.
func LoadKey(privKeyFile string) (privKey ed25519.PrivKeyEd25519, err error) {
	data, err := ioutil.ReadFile(privKeyFile)
	if err != nil {
		return privKey, err
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return privKey, err
	}
	if len(raw) != privKeySize {
		return privKey, ErrPrivKeyLength
	}
	copy(privKey[:], raw)
	return privKey, nil
}

func SaveKey(privKeyFile string, privKey ed25519.PrivKeyEd25519) error {
	return ioutil.WriteFile(privKeyFile, []byte(hex.EncodeToString(privKey[:])+"\n"), 0600)
}

func SignED(privKey ed25519.PrivKeyEd25519, message []byte) (signature []byte) {
	signature, _ = privKey.Sign(message)
	return
}

func VerifyED(address Address, message []byte, signature []byte) bool {
	return ed25519.PubKeyEd25519(address).VerifyBytes(message, signature)
}

// CheckEDPubKey fails for addresses that cannot be ed25519 public keys, e.g. derived addresses.
func CheckEDPubKey(address Address) error {
	if !IsOnCurve(address) {
		return errors.New("not an ed25519 public key")
	}
	return nil
}
