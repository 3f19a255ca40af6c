package modules

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"tuition-node/crypto"
)

const (
	initialLamports = 1000000000
	initialFees     = 1000000
	feeDecimals     = 6
	// 2020-06-01T00:00:00Z
	startTime = 1590969600
)

var (
	admin                 = crypto.LabelAddress("admin")
	student               = crypto.LabelAddress("student")
	feeMint               = crypto.LabelAddress("fee-mint")
	feeMintAuthority      = crypto.LabelAddress("fee-mint-authority")
	treasury              = crypto.LabelAddress("treasury")
	institutionFeeAccount = crypto.LabelAddress("institution-fees")
	studentFeeAccount     = crypto.LabelAddress("student-fees")
)

type mockClock struct {
	now int64
}

func (clock *mockClock) Now() int64 {
	return clock.now
}

// testChain runs instructions the way DeliverTx does, one cache per instruction.
type testChain struct {
	ledger *Ledger
	clock  *mockClock
	rent   Rent

	protocol        crypto.Address
	protocolBump    byte
	institution     crypto.Address
	institutionBump byte
}

func mockGenesis() *Genesis {
	return &Genesis{
		Balances: []GenesisBalance{
			{Address: admin, Lamports: initialLamports},
			{Address: student, Lamports: initialLamports},
		},
		Mints: []GenesisMint{
			{Address: feeMint, Decimals: feeDecimals, Authority: feeMintAuthority},
		},
		TokenAccounts: []GenesisTokenAccount{
			{Address: institutionFeeAccount, Mint: feeMint, Owner: admin, Amount: initialFees},
			{Address: studentFeeAccount, Mint: feeMint, Owner: student, Amount: initialFees},
		},
	}
}

func initChain(t *testing.T) *testChain {
	ledger, err := NewLedger(dbm.NewMemDB())
	if err != nil {
		t.Fatalf("Failed creating ledger: %v", err)
	}
	chain := &testChain{ledger: ledger, clock: &mockClock{now: startTime}, rent: DefaultRent()}
	cache := ledger.Begin()
	if err := mockGenesis().Apply(cache, chain.rent); err != nil {
		t.Fatalf("Failed applying genesis: %v", err)
	}
	cache.Write()
	return chain
}

func signer(key crypto.Address) Handle {
	return Handle{Key: key, Signer: true}
}

func ref(key crypto.Address) Handle {
	return Handle{Key: key}
}

func (chain *testChain) run(opcode Opcode, data []byte, handles ...Handle) error {
	cache := chain.ledger.Begin()
	program := NewProgram(cache, chain.rent, chain.clock, log.TestingLogger(), handles)
	if err := program.Process(byte(opcode), data); err != nil {
		cache.Discard()
		return err
	}
	cache.Write()
	return nil
}

func (chain *testChain) initProtocol(t *testing.T, institutionPct, studentPct uint64) {
	protocol, bump, err := FindAddress(ProtocolSeeds(admin))
	if err != nil {
		t.Fatalf("Failed deriving protocol address: %v", err)
	}
	args := ProtocolArgs{FeeFromInstitutionPct: institutionPct, FeeFromStudentPct: studentPct, Bump: bump}
	err = chain.run(OpInitializeProtocol, args.Encode(), signer(admin), ref(feeMint), ref(protocol), signer(treasury))
	if err != nil {
		t.Fatalf("Failed initializing protocol: %v", err)
	}
	chain.protocol, chain.protocolBump = protocol, bump
}

func (chain *testChain) initInstitution(t *testing.T) {
	institution, bump, err := FindAddress(InstitutionSeeds(admin, chain.protocol))
	if err != nil {
		t.Fatalf("Failed deriving institution address: %v", err)
	}
	args := BumpArgs{Bump: bump}
	if err := chain.run(OpInitializeInstitution, args.Encode(), signer(admin), ref(institution), ref(chain.protocol)); err != nil {
		t.Fatalf("Failed initializing institution: %v", err)
	}
	chain.institution, chain.institutionBump = institution, bump
}

func collection(seq uint64) (mint, account crypto.Address) {
	return crypto.LabelAddress(fmt.Sprintf("collection-mint-%d", seq)), crypto.LabelAddress(fmt.Sprintf("collection-account-%d", seq))
}

func (chain *testChain) addSubjectAs(authority crypto.Address, seq uint64, args SubjectArgs) (crypto.Address, error) {
	subject, bump, err := FindAddress(SubjectSeeds(chain.institution, seq))
	if err != nil {
		return subject, err
	}
	args.Bump = bump
	mint, account := collection(seq)
	err = chain.run(OpAddSubject, args.Encode(),
		signer(authority), ref(feeMint), ref(subject), ref(chain.institution), ref(institutionFeeAccount),
		ref(chain.protocol), ref(treasury), signer(mint), signer(account))
	return subject, err
}

func (chain *testChain) addSubject(t *testing.T, seq uint64, args SubjectArgs) crypto.Address {
	subject, err := chain.addSubjectAs(admin, seq, args)
	if err != nil {
		t.Fatalf("Failed adding subject %d: %v", seq, err)
	}
	return subject
}

func credential(subject crypto.Address) (mint, account crypto.Address) {
	return crypto.LabelAddress("credential-mint/" + subject.String()), crypto.LabelAddress("credential-account/" + subject.String())
}

func (chain *testChain) enroll(t *testing.T, subject crypto.Address) crypto.Address {
	enrollment, bump, err := FindAddress(EnrollmentSeeds(student, subject))
	if err != nil {
		t.Fatalf("Failed deriving enrollment address: %v", err)
	}
	mint, account := credential(subject)
	args := BumpArgs{Bump: bump}
	err = chain.run(OpEnrollStudent, args.Encode(),
		signer(student), ref(enrollment), ref(subject), ref(chain.institution), ref(chain.protocol), signer(mint), signer(account))
	if err != nil {
		t.Fatalf("Failed enrolling student: %v", err)
	}
	return enrollment
}

func (chain *testChain) pay(enrollment, subject crypto.Address) error {
	return chain.run(OpPaySemesterFee, nil,
		signer(student), ref(feeMint), ref(admin), ref(enrollment), ref(studentFeeAccount), ref(subject),
		ref(chain.institution), ref(chain.protocol), ref(institutionFeeAccount), ref(treasury))
}

func (chain *testChain) unstake(enrollment, subject crypto.Address) error {
	mint, account := credential(subject)
	return chain.run(OpUnstake, nil, signer(student), ref(enrollment), ref(subject), ref(mint), ref(account))
}

func (chain *testChain) record(t *testing.T, address crypto.Address, record Record) {
	if err := chain.ledger.Begin().ReadRecord(ProgramID, address, record); err != nil {
		t.Fatalf("Failed reading record %s: %v", address, err)
	}
}

func (chain *testChain) tokenAccount(t *testing.T, address crypto.Address) *TokenAccount {
	tokens := &Tokens{Cache: chain.ledger.Begin()}
	account, err := tokens.TokenAccount(address)
	if err != nil {
		t.Fatalf("Failed reading token account %s: %v", address, err)
	}
	return account
}

func (chain *testChain) lamports(t *testing.T, address crypto.Address) uint64 {
	account, err := chain.ledger.Begin().Account(address)
	if err != nil {
		t.Fatalf("Failed reading account %s: %v", address, err)
	}
	return account.Lamports
}

func checkError(t *testing.T, err error, want *Error) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected %q, got no error", want.Desc)
		return
	}
	if !errors.Is(err, want) {
		t.Errorf("Expected %q, got %v", want.Desc, err)
	}
}
