package messages

import (
	"errors"
	"testing"

	lorem "github.com/drhodes/golorem"

	"tuition-node/crypto"
	"tuition-node/modules"
)

func mockTransaction() (*Transaction, crypto.Address, crypto.Address) {
	adminKey, admin := crypto.KeyFromSecret([]byte(lorem.Word(8, 16)))
	treasuryKey, treasury := crypto.GenKey()
	protocol, bump, _ := modules.FindAddress(modules.ProtocolSeeds(admin))
	args := modules.ProtocolArgs{FeeFromInstitutionPct: 5, FeeFromStudentPct: 3, Bump: bump}
	tx := NewTransaction(InitializeProtocol(admin, crypto.LabelAddress("fee-mint"), protocol, treasury, args), 1)
	tx.Sign(adminKey, treasuryKey)
	return tx, admin, treasury
}

func TestVerify(t *testing.T) {
	tx, _, _ := mockTransaction()
	if err := tx.Verify(); err != nil {
		t.Errorf("Signed transaction rejected: %v", err)
	}

	tx.Instruction.Data[0]++
	if err := tx.Verify(); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Tampered transaction accepted: %v", err)
	}

	tx, _, _ = mockTransaction()
	tx.Signatures = tx.Signatures[:1]
	if err := tx.Verify(); !errors.Is(err, ErrMissingSignature) {
		t.Errorf("Transaction with a missing signer accepted: %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	tx, admin, treasury := mockTransaction()
	encoded, err := Encode(tx)
	if err != nil {
		t.Fatalf("Failed encoding transaction: %v", err)
	}
	decoded, err := DecodeTx(encoded)
	if err != nil {
		t.Fatalf("Failed decoding transaction: %v", err)
	}
	if err := decoded.Verify(); err != nil {
		t.Errorf("Decoded transaction rejected: %v", err)
	}
	handles := decoded.Handles()
	if len(handles) != 4 || handles[0].Key != admin || !handles[0].Signer || handles[2].Signer || handles[3].Key != treasury {
		t.Errorf("Wrong handles %+v", handles)
	}
	if _, err := DecodeTx([]byte(lorem.Sentence(3, 6))); err == nil {
		t.Errorf("Garbage decoded as a transaction")
	}
}

func TestInstructionArguments(t *testing.T) {
	tx, _, _ := mockTransaction()
	if modules.Opcode(tx.Instruction.Opcode) != modules.OpInitializeProtocol {
		t.Errorf("Wrong opcode %d", tx.Instruction.Opcode)
	}
	args, err := modules.DecodeProtocolArgs(tx.Instruction.Data)
	if err != nil || args.FeeFromInstitutionPct != 5 || args.FeeFromStudentPct != 3 {
		t.Errorf("Arguments decoded as %+v (%v)", args, err)
	}
	payment := PaySemesterFee(PaymentAccounts{})
	if len(payment.Data) != 0 || len(payment.Accounts) != 10 || !payment.Accounts[0].Signer {
		t.Errorf("Wrong payment instruction %+v", payment)
	}
}
