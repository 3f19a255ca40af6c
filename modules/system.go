package modules

import (
	"github.com/ethereum/go-ethereum/common/math"

	"tuition-node/crypto"
)

var (
	SystemProgramID = crypto.LabelAddress("tuition-node/system")
	TokenProgramID  = crypto.LabelAddress("tuition-node/token")
	ProgramID       = crypto.LabelAddress("tuition-node/tuition")
)

const accountStorageOverhead = 128

// Rent sets the balance an account needs to stay allocated.
type Rent struct {
	LamportsPerByteYear uint64 `mapstructure:"lamports_per_byte_year"`
	ExemptionYears      uint64 `mapstructure:"exemption_years"`
}

func DefaultRent() Rent {
	return Rent{LamportsPerByteYear: 3480, ExemptionYears: 2}
}

func (rent Rent) MinimumBalance(space uint64) uint64 {
	return (space + accountStorageOverhead) * rent.LamportsPerByteYear * rent.ExemptionYears
}

// Signers holds the addresses that authorised one external call.
type Signers map[crypto.Address]bool

func (signers Signers) Has(address crypto.Address) bool {
	return signers[address]
}

// With returns a copy of signers extended with the addresses of the derived authorities of program.
func (signers Signers) With(program crypto.Address, authorities ...crypto.DerivedAuthority) (Signers, error) {
	extended := make(Signers, len(signers)+len(authorities))
	for address := range signers {
		extended[address] = true
	}
	for _, authority := range authorities {
		address, err := authority.Address(program)
		if err != nil {
			return nil, wrap(ErrAddressMismatch, "derived authority: %v", err)
		}
		extended[address] = true
	}
	return extended, nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// SYSTEM

// System allocates storage and moves lamports.
type System struct {
	Cache *Cache
	Rent  Rent
}

// CreateAccount allocates space at target owned by owner, funded by payer with the rent exempt minimum.
func (system *System) CreateAccount(signers Signers, payer, target crypto.Address, space uint64, owner crypto.Address) error {
	if !signers.Has(payer) {
		return wrap(ErrMissingSignature, "payer %s", payer)
	}
	if !signers.Has(target) {
		return wrap(ErrMissingSignature, "target %s", target)
	}
	targetAccount, err := system.Cache.Account(target)
	if err != nil {
		return err
	}
	if !targetAccount.IsEmpty() {
		return wrap(ErrAccountInUse, "%s", target)
	}
	payerAccount, err := system.Cache.Account(payer)
	if err != nil {
		return err
	}
	lamports := system.Rent.MinimumBalance(space)
	remaining, underflow := math.SafeSub(payerAccount.Lamports, lamports)
	if underflow {
		return wrap(ErrInsufficientLamports, "%s has %d, needs %d", payer, payerAccount.Lamports, lamports)
	}
	payerAccount.Lamports = remaining
	system.Cache.Store(payer, payerAccount)
	system.Cache.Store(target, &Account{Owner: owner, Lamports: lamports, Data: make([]byte, space)})
	return nil
}

func (system *System) Fund(address crypto.Address, lamports uint64) error {
	account, err := system.Cache.Account(address)
	if err != nil {
		return err
	}
	balance, overflow := math.SafeAdd(account.Lamports, lamports)
	if overflow {
		return wrap(ErrArithmeticOverflow, "funding %s", address)
	}
	if account.IsEmpty() {
		account.Owner = SystemProgramID
	}
	account.Lamports = balance
	system.Cache.Store(address, account)
	return nil
}
