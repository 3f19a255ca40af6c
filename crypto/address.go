package crypto

/*
Addresses are 32 bytes. A keyed address is an ed25519 public key, a derived address is the
hash of an ordered seed tuple, a discriminant byte (bump) and the owning program address.
A derived address must not be a valid curve point, otherwise somebody could hold its private key.
*/

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

const (
	AddressSize   = 32
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var derivationMarker = []byte("ProgramDerivedAddress")

var (
	ErrMaxSeedLength   = errors.New("seed too long")
	ErrTooManySeeds    = errors.New("too many seeds")
	ErrInvalidSeeds    = errors.New("derived address lies on the curve")
	ErrNoBump          = errors.New("no viable bump found")
	ErrAddressMismatch = errors.New("derived address mismatch")
	ErrAddressLength   = errors.New("invalid address length")
)

type Address [AddressSize]byte

// LabelAddress returns the well-known address for a label, used for built-in programs.
func LabelAddress(label string) Address {
	var address Address
	copy(address[:], tmhash.Sum([]byte(label)))
	return address
}

func AddressFromBytes(b []byte) (Address, error) {
	var address Address
	if len(b) != AddressSize {
		return address, ErrAddressLength
	}
	copy(address[:], b)
	return address, nil
}

func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, err
	}
	return AddressFromBytes(b)
}

func (address Address) Bytes() []byte {
	return address[:]
}

func (address Address) String() string {
	return base58.Encode(address[:])
}

func (address Address) IsZero() bool {
	return address == Address{}
}

func (address Address) Equal(other Address) bool {
	return bytes.Equal(address[:], other[:])
}

func (address Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(address.String())
}

func (address *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return fmt.Errorf("address %q: %w", s, err)
	}
	*address = parsed
	return nil
}

// IsOnCurve reports whether the bytes decode to an ed25519 point.
func IsOnCurve(address Address) bool {
	_, err := new(edwards25519.Point).SetBytes(address[:])
	return err == nil
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ErrMaxSeedLength
		}
	}
	return nil
}

// CreateProgramAddress derives the address for seeds and bump under program.
func CreateProgramAddress(program Address, bump byte, seeds ...[]byte) (Address, error) {
	if err := checkSeeds(seeds); err != nil {
		return Address{}, err
	}
	hasher := tmhash.New()
	for _, seed := range seeds {
		hasher.Write(seed)
	}
	hasher.Write([]byte{bump})
	hasher.Write(program[:])
	hasher.Write(derivationMarker)
	var address Address
	copy(address[:], hasher.Sum(nil))
	if IsOnCurve(address) {
		return Address{}, ErrInvalidSeeds
	}
	return address, nil
}

func VerifyProgramAddress(program, supplied Address, bump byte, seeds ...[]byte) error {
	derived, err := CreateProgramAddress(program, bump, seeds...)
	if err != nil {
		return err
	}
	if derived != supplied {
		return ErrAddressMismatch
	}
	return nil
}

// FindProgramAddress searches bumps from 255 down and returns the first off-curve address.
func FindProgramAddress(program Address, seeds ...[]byte) (Address, byte, error) {
	if err := checkSeeds(seeds); err != nil {
		return Address{}, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		address, err := CreateProgramAddress(program, byte(bump), seeds...)
		if err == nil {
			return address, byte(bump), nil
		}
	}
	return Address{}, 0, ErrNoBump
}

// DerivedAuthority lets a program act as one of its derived addresses.
// It only holds the inputs; the address is recomputed every time it is presented.
type DerivedAuthority struct {
	seeds [][]byte
	bump  byte
}

func NewDerivedAuthority(bump byte, seeds ...[]byte) DerivedAuthority {
	copied := make([][]byte, len(seeds))
	for i, seed := range seeds {
		copied[i] = append([]byte(nil), seed...)
	}
	return DerivedAuthority{seeds: copied, bump: bump}
}

func (authority DerivedAuthority) Address(program Address) (Address, error) {
	return CreateProgramAddress(program, authority.bump, authority.seeds...)
}
