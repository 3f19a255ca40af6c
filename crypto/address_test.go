package crypto

import (
	"bytes"
	"encoding/json"
	"testing"

	lorem "github.com/drhodes/golorem"
)

var testProgram = LabelAddress("test-program")

func mockSeeds() [][]byte {
	_, admin := KeyFromSecret([]byte(lorem.Word(5, 10)))
	return [][]byte{[]byte("protocol"), admin.Bytes()}
}

func TestDeriveAndVerify(t *testing.T) {
	for i := 0; i < 10; i++ {
		seeds := mockSeeds()
		address, bump, err := FindProgramAddress(testProgram, seeds...)
		if err != nil {
			t.Fatalf("Failed finding address: %v", err)
		}
		if IsOnCurve(address) {
			t.Errorf("Derived address lies on the curve")
		}
		created, err := CreateProgramAddress(testProgram, bump, seeds...)
		if err != nil || created != address {
			t.Errorf("Create disagrees with find")
		}
		if err := VerifyProgramAddress(testProgram, address, bump, seeds...); err != nil {
			t.Errorf("Verify rejected derived address: %v", err)
		}
		for other := 0; other < 256; other++ {
			if byte(other) == bump {
				continue
			}
			if err := VerifyProgramAddress(testProgram, address, byte(other), seeds...); err == nil {
				t.Errorf("Verify accepted bump %d, derived with %d", other, bump)
			}
		}
	}
}

func TestVerifyOtherProgram(t *testing.T) {
	seeds := mockSeeds()
	address, bump, _ := FindProgramAddress(testProgram, seeds...)
	err := VerifyProgramAddress(LabelAddress("other-program"), address, bump, seeds...)
	if err == nil {
		t.Errorf("Address verified under another program")
	}
}

func TestFindIsCanonical(t *testing.T) {
	seeds := mockSeeds()
	_, bump, _ := FindProgramAddress(testProgram, seeds...)
	for higher := int(bump) + 1; higher < 256; higher++ {
		if _, err := CreateProgramAddress(testProgram, byte(higher), seeds...); err != ErrInvalidSeeds {
			t.Errorf("Bump %d above canonical %d should be on the curve", higher, bump)
		}
	}
}

func TestSeedLimits(t *testing.T) {
	long := bytes.Repeat([]byte{1}, MaxSeedLength+1)
	if _, err := CreateProgramAddress(testProgram, 0, long); err != ErrMaxSeedLength {
		t.Errorf("Expected seed length error, got %v", err)
	}
	many := make([][]byte, MaxSeeds+1)
	if _, _, err := FindProgramAddress(testProgram, many...); err != ErrTooManySeeds {
		t.Errorf("Expected too many seeds error, got %v", err)
	}
}

func TestDerivedAuthority(t *testing.T) {
	seeds := mockSeeds()
	address, bump, _ := FindProgramAddress(testProgram, seeds...)
	authority := NewDerivedAuthority(bump, seeds...)
	seeds[0][0] = 'x'
	resolved, err := authority.Address(testProgram)
	if err != nil || resolved != address {
		t.Errorf("Authority resolved to a different address")
	}
}

func TestAddressJSON(t *testing.T) {
	_, address := GenKey()
	data, err := json.Marshal(address)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"`+address.String()+`"` {
		t.Errorf("Unexpected address encoding %s", data)
	}
	var decoded Address
	if err := json.Unmarshal(data, &decoded); err != nil || decoded != address {
		t.Errorf("Failed decoding address: %v", err)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &decoded); err == nil {
		t.Errorf("Short address accepted")
	}
}
