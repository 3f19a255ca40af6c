package modules

import (
	"bytes"
	"testing"

	lorem "github.com/drhodes/golorem"
	dbm "github.com/tendermint/tm-db"

	"tuition-node/crypto"
)

func mockAccount() *Account {
	return &Account{Owner: ProgramID, Lamports: 42, Data: []byte(lorem.Sentence(3, 8))}
}

func TestCacheWriteAndDiscard(t *testing.T) {
	ledger, _ := NewLedger(dbm.NewMemDB())
	address := crypto.LabelAddress(lorem.Word(4, 10))
	account := mockAccount()

	cache := ledger.Begin()
	cache.Store(address, account)
	cache.Discard()
	if stored, _ := ledger.Begin().Account(address); !stored.IsEmpty() {
		t.Errorf("Discarded write reached the ledger")
	}

	data := append([]byte(nil), account.Data...)
	cache = ledger.Begin()
	cache.Store(address, account)
	account.Lamports = 0
	cache.Write()
	stored, _ := ledger.Begin().Account(address)
	if stored.Lamports != 42 || !bytes.Equal(stored.Data, data) {
		t.Errorf("Written account not visible to the next transaction: %+v", stored)
	}
	if committed, _ := ledger.Get(address); committed != nil {
		t.Errorf("Uncommitted account returned by Get")
	}
}

func TestCommit(t *testing.T) {
	db := dbm.NewMemDB()
	ledger, _ := NewLedger(db)
	address := crypto.LabelAddress(lorem.Word(4, 10))

	emptyHash, err := ledger.Commit()
	if err != nil {
		t.Fatalf("Failed committing empty block: %v", err)
	}
	cache := ledger.Begin()
	cache.Store(address, mockAccount())
	cache.Write()
	hash, err := ledger.Commit()
	if err != nil {
		t.Fatalf("Failed committing block: %v", err)
	}
	if bytes.Equal(hash, emptyHash) {
		t.Errorf("App hash unchanged after a write")
	}
	if ledger.Height != 2 {
		t.Errorf("Height %d after two commits", ledger.Height)
	}
	committed, err := ledger.Get(address)
	if err != nil || committed == nil || committed.Lamports != 42 || committed.Owner != ProgramID {
		t.Errorf("Committed account read as %+v (%v)", committed, err)
	}

	reopened, err := NewLedger(db)
	if err != nil {
		t.Fatalf("Failed reopening ledger: %v", err)
	}
	if reopened.Height != 2 || !bytes.Equal(reopened.AppHash, hash) {
		t.Errorf("Reopened ledger at height %d hash %X, want 2 %X", reopened.Height, reopened.AppHash, hash)
	}
}

func TestRecords(t *testing.T) {
	ledger, _ := NewLedger(dbm.NewMemDB())
	address := crypto.LabelAddress(lorem.Word(4, 10))
	cache := ledger.Begin()
	cache.Store(address, &Account{Owner: TokenProgramID, Lamports: 1, Data: make([]byte, ProtocolStateLen)})

	checkError(t, cache.ReadRecord(ProgramID, address, &ProtocolState{}), ErrWrongOwner)
	checkError(t, cache.WriteRecord(address, &SubjectState{}), ErrMalformedRecord)
	if err := cache.WriteRecord(address, &ProtocolState{NextInstitutionSeq: 9}); err != nil {
		t.Fatalf("Failed writing record: %v", err)
	}
	state := &ProtocolState{}
	if err := cache.ReadRecord(TokenProgramID, address, state); err != nil || state.NextInstitutionSeq != 9 {
		t.Errorf("Record read as %+v (%v)", state, err)
	}
}

func TestCreateAccount(t *testing.T) {
	ledger, _ := NewLedger(dbm.NewMemDB())
	payer, target := crypto.LabelAddress("payer"), crypto.LabelAddress("target")
	system := &System{Cache: ledger.Begin(), Rent: DefaultRent()}
	required := system.Rent.MinimumBalance(SubjectStateLen)
	if err := system.Fund(payer, required+1); err != nil {
		t.Fatalf("Failed funding payer: %v", err)
	}

	err := system.CreateAccount(Signers{payer: true}, payer, target, SubjectStateLen, ProgramID)
	checkError(t, err, ErrMissingSignature)

	signers := Signers{payer: true, target: true}
	if err := system.CreateAccount(signers, payer, target, SubjectStateLen, ProgramID); err != nil {
		t.Fatalf("Failed creating account: %v", err)
	}
	account, _ := system.Cache.Account(target)
	if account.Owner != ProgramID || account.Lamports != required || len(account.Data) != SubjectStateLen {
		t.Errorf("Wrong created account %+v", account)
	}
	checkError(t, system.CreateAccount(signers, payer, target, SubjectStateLen, ProgramID), ErrAccountInUse)

	other := crypto.LabelAddress("other")
	signers[other] = true
	checkError(t, system.CreateAccount(signers, payer, other, SubjectStateLen, ProgramID), ErrInsufficientLamports)
}

func TestSignersWithAuthority(t *testing.T) {
	seeds := ProtocolSeeds(admin)
	address, bump, _ := FindAddress(seeds)
	signers := Signers{admin: true}
	extended, err := signers.With(ProgramID, crypto.NewDerivedAuthority(bump, seeds...))
	if err != nil {
		t.Fatalf("Failed extending signers: %v", err)
	}
	if !extended.Has(address) || !extended.Has(admin) {
		t.Errorf("Derived authority not among signers")
	}
	if signers.Has(address) {
		t.Errorf("Receiver signers modified")
	}
}

func TestGetAt(t *testing.T) {
	ledger, _ := NewLedger(dbm.NewMemDB())
	address := crypto.LabelAddress(lorem.Word(4, 10))

	cache := ledger.Begin()
	cache.Store(address, mockAccount())
	cache.Write()
	if _, err := ledger.Commit(); err != nil {
		t.Fatalf("Failed committing block: %v", err)
	}
	cache = ledger.Begin()
	account, _ := cache.Account(address)
	account.Lamports = 7
	cache.Store(address, account)
	cache.Write()
	if _, err := ledger.Commit(); err != nil {
		t.Fatalf("Failed committing block: %v", err)
	}
	// untouched blocks keep the last written version
	if _, err := ledger.Commit(); err != nil {
		t.Fatalf("Failed committing block: %v", err)
	}

	for height, lamports := range map[int64]uint64{0: 7, 1: 42, 2: 7, 3: 7} {
		account, err := ledger.GetAt(address, height)
		if err != nil || account == nil || account.Lamports != lamports {
			t.Errorf("Account at height %d read as %+v (%v), want %d lamports", height, account, err, lamports)
		}
	}
	if _, err := ledger.GetAt(address, 4); err == nil {
		t.Errorf("Uncommitted height answered")
	}
	if account, err := ledger.GetAt(crypto.LabelAddress("never-written"), 1); err != nil || account != nil {
		t.Errorf("Unknown address read as %+v (%v)", account, err)
	}
}

func TestSeen(t *testing.T) {
	db := dbm.NewMemDB()
	ledger, _ := NewLedger(db)
	hash := []byte(lorem.Word(8, 16))

	if seen, err := ledger.Seen(hash); err != nil || seen {
		t.Fatalf("Fresh ledger reports a delivered transaction (%v)", err)
	}
	ledger.MarkSeen(hash)
	if seen, _ := ledger.Seen(hash); !seen {
		t.Errorf("Transaction of the pending block not seen")
	}
	if _, err := ledger.Commit(); err != nil {
		t.Fatalf("Failed committing block: %v", err)
	}
	reopened, _ := NewLedger(db)
	if seen, err := reopened.Seen(hash); err != nil || !seen {
		t.Errorf("Committed transaction not seen after reopening (%v)", err)
	}
	if seen, _ := reopened.Seen(append(hash, 0)); seen {
		t.Errorf("Unrelated hash reported as seen")
	}
}
