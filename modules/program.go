package modules

import (
	"encoding/binary"

	"github.com/tendermint/tendermint/libs/log"

	"tuition-node/crypto"
)

var ProtocolSeedTag = []byte("protocol")

type Clock interface {
	Now() int64
}

// Handle is one record handle passed along with an instruction.
type Handle struct {
	Key    crypto.Address
	Signer bool
}

// Program executes one instruction against a transaction cache.
type Program struct {
	Cache   *Cache
	System  *System
	Tokens  *Tokens
	Clock   Clock
	Logger  log.Logger
	Handles []Handle
	signers Signers
}

func NewProgram(cache *Cache, rent Rent, clock Clock, logger log.Logger, handles []Handle) *Program {
	system := &System{Cache: cache, Rent: rent}
	signers := make(Signers)
	for _, handle := range handles {
		if handle.Signer {
			signers[handle.Key] = true
		}
	}
	return &Program{
		Cache:   cache,
		System:  system,
		Tokens:  &Tokens{Cache: cache, System: system},
		Clock:   clock,
		Logger:  logger,
		Handles: handles,
		signers: signers,
	}
}

// ------------------------------------------------------------------------------------------------------------------- //
// SEEDS

func ProtocolSeeds(admin crypto.Address) [][]byte {
	return [][]byte{ProtocolSeedTag, admin.Bytes()}
}

func InstitutionSeeds(admin, protocol crypto.Address) [][]byte {
	return [][]byte{admin.Bytes(), protocol.Bytes()}
}

func SubjectSeeds(institution crypto.Address, subjectSeq uint64) [][]byte {
	seq := make([]byte, 8)
	binary.LittleEndian.PutUint64(seq, subjectSeq)
	return [][]byte{institution.Bytes(), seq}
}

func EnrollmentSeeds(student, subject crypto.Address) [][]byte {
	return [][]byte{student.Bytes(), subject.Bytes()}
}

// FindAddress returns the canonical derived address and bump of seeds under ProgramID.
func FindAddress(seeds [][]byte) (crypto.Address, byte, error) {
	return crypto.FindProgramAddress(ProgramID, seeds...)
}

// ------------------------------------------------------------------------------------------------------------------- //
// HELPERS

func (program *Program) accounts(count int) ([]Handle, error) {
	if len(program.Handles) < count {
		return nil, wrap(ErrMissingHandle, "got %d, want %d", len(program.Handles), count)
	}
	return program.Handles[:count], nil
}

func requireSigner(handle Handle) error {
	if !handle.Signer {
		return wrap(ErrMissingAuthorization, "%s", handle.Key)
	}
	return nil
}

func verify(supplied crypto.Address, bump byte, seeds [][]byte) error {
	if err := crypto.VerifyProgramAddress(ProgramID, supplied, bump, seeds...); err != nil {
		return wrap(ErrAddressMismatch, "%s: %v", supplied, err)
	}
	return nil
}

func (program *Program) signedAs(authority crypto.DerivedAuthority) (Signers, error) {
	return program.signers.With(ProgramID, authority)
}

// protocol loads a protocol record and proves it was derived from its stored administrator.
func (program *Program) protocol(address crypto.Address) (*ProtocolState, error) {
	state := &ProtocolState{}
	if err := program.Cache.ReadRecord(ProgramID, address, state); err != nil {
		return nil, err
	}
	if err := checkProtocol(address, state); err != nil {
		return nil, err
	}
	return state, nil
}

func checkProtocol(address crypto.Address, state *ProtocolState) error {
	return verify(address, state.Bump, ProtocolSeeds(state.Admin))
}

// institution loads an institution record. Its seeds hold the administrator, who is not stored,
// so the record is matched against the address it was created at.
func (program *Program) institution(address crypto.Address) (*InstitutionState, error) {
	state := &InstitutionState{}
	if err := program.Cache.ReadRecord(ProgramID, address, state); err != nil {
		return nil, err
	}
	if state.InstitutionKey != address {
		return nil, wrap(ErrAddressMismatch, "institution record %s claims %s", address, state.InstitutionKey)
	}
	return state, nil
}

func (program *Program) subject(address crypto.Address) (*SubjectState, error) {
	state := &SubjectState{}
	return state, program.Cache.ReadRecord(ProgramID, address, state)
}

func (program *Program) enrollment(address crypto.Address) (*EnrollmentState, error) {
	state := &EnrollmentState{}
	return state, program.Cache.ReadRecord(ProgramID, address, state)
}

func (program *Program) isEmpty(address crypto.Address) (bool, error) {
	account, err := program.Cache.Account(address)
	if err != nil {
		return false, err
	}
	return account.IsEmpty(), nil
}

// ownedTokenAccount loads a token account and checks who holds it.
func (program *Program) ownedTokenAccount(address, owner crypto.Address) error {
	account, err := program.Tokens.TokenAccount(address)
	if err != nil {
		return err
	}
	if account.Owner != owner {
		return wrap(ErrAccountMismatch, "token account %s held by %s, want %s", address, account.Owner, owner)
	}
	return nil
}

func (program *Program) create(signers Signers, payer, target crypto.Address, record Record, space uint64) error {
	if err := program.System.CreateAccount(signers, payer, target, space, ProgramID); err != nil {
		return err
	}
	return program.Cache.WriteRecord(target, record)
}
