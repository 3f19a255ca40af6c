package modules

/*
Tokens is the token service the program calls into: mints, token accounts, transfers and freezing.
Mints and token accounts are ledger accounts owned by TokenProgramID.
Every authority check is done against the Signers of the call, so a derived authority works the same as a key.
*/

import (
	"github.com/ethereum/go-ethereum/common/math"

	"tuition-node/crypto"
)

const (
	MintLen         = 32 + 8 + 1 + 1 + 1 + 32
	TokenAccountLen = 32 + 32 + 8 + 1 + 32
)

type AccountState byte

const (
	AccountUninitialized AccountState = iota
	AccountInitialized
	AccountFrozen
)

// ------------------------------------------------------------------------------------------------------------------- //
// MINT

type Mint struct {
	MintAuthority      crypto.Address
	Supply             uint64
	Decimals           byte
	IsInitialized      bool
	HasFreezeAuthority bool
	FreezeAuthority    crypto.Address
}

func (mint *Mint) MarshalBinary() ([]byte, error) {
	data := make([]byte, MintLen)
	copy(data[0:32], mint.MintAuthority[:])
	le.PutUint64(data[32:40], mint.Supply)
	data[40] = mint.Decimals
	data[41] = boolByte(mint.IsInitialized)
	data[42] = boolByte(mint.HasFreezeAuthority)
	copy(data[43:75], mint.FreezeAuthority[:])
	return data, nil
}

func (mint *Mint) UnmarshalBinary(data []byte) error {
	if len(data) != MintLen {
		return wrap(ErrInvalidTokenAccount, "mint is %d bytes", len(data))
	}
	mint.MintAuthority = readAddress(data, 0)
	mint.Supply = le.Uint64(data[32:40])
	mint.Decimals = data[40]
	mint.IsInitialized = data[41] == 1
	mint.HasFreezeAuthority = data[42] == 1
	mint.FreezeAuthority = readAddress(data, 43)
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// TOKEN ACCOUNT

// TokenAccount holds a balance of one mint. FreezeAuthority may lock and unlock it.
type TokenAccount struct {
	Mint            crypto.Address
	Owner           crypto.Address
	Amount          uint64
	State           AccountState
	FreezeAuthority crypto.Address
}

func (account *TokenAccount) MarshalBinary() ([]byte, error) {
	data := make([]byte, TokenAccountLen)
	copy(data[0:32], account.Mint[:])
	copy(data[32:64], account.Owner[:])
	le.PutUint64(data[64:72], account.Amount)
	data[72] = byte(account.State)
	copy(data[73:105], account.FreezeAuthority[:])
	return data, nil
}

func (account *TokenAccount) UnmarshalBinary(data []byte) error {
	if len(data) != TokenAccountLen {
		return wrap(ErrInvalidTokenAccount, "token account is %d bytes", len(data))
	}
	account.Mint = readAddress(data, 0)
	account.Owner = readAddress(data, 32)
	account.Amount = le.Uint64(data[64:72])
	account.State = AccountState(data[72])
	account.FreezeAuthority = readAddress(data, 73)
	return nil
}

func (account *TokenAccount) IsFrozen() bool {
	return account.State == AccountFrozen
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ------------------------------------------------------------------------------------------------------------------- //
// TOKENS

type Tokens struct {
	Cache  *Cache
	System *System
}

func (tokens *Tokens) Mint(address crypto.Address) (*Mint, error) {
	mint := &Mint{}
	if err := tokens.read(address, mint); err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, wrap(ErrUninitialized, "mint %s", address)
	}
	return mint, nil
}

func (tokens *Tokens) TokenAccount(address crypto.Address) (*TokenAccount, error) {
	account := &TokenAccount{}
	if err := tokens.read(address, account); err != nil {
		return nil, err
	}
	if account.State == AccountUninitialized {
		return nil, wrap(ErrUninitialized, "token account %s", address)
	}
	return account, nil
}

func (tokens *Tokens) read(address crypto.Address, record Record) error {
	account, err := tokens.Cache.Account(address)
	if err != nil {
		return err
	}
	if account.IsEmpty() {
		return wrap(ErrUninitialized, "%s", address)
	}
	if !account.OwnedBy(TokenProgramID) {
		return wrap(ErrInvalidTokenAccount, "%s not owned by token program", address)
	}
	return record.UnmarshalBinary(account.Data)
}

func (tokens *Tokens) InitializeMint(signers Signers, payer, address crypto.Address, decimals byte, mintAuthority crypto.Address, freezeAuthority *crypto.Address) error {
	if err := tokens.System.CreateAccount(signers, payer, address, MintLen, TokenProgramID); err != nil {
		return err
	}
	mint := &Mint{MintAuthority: mintAuthority, Decimals: decimals, IsInitialized: true}
	if freezeAuthority != nil {
		mint.HasFreezeAuthority = true
		mint.FreezeAuthority = *freezeAuthority
	}
	return tokens.Cache.WriteRecord(address, mint)
}

// InitializeAccount creates a token account of mint held by owner, who is also its freeze authority.
func (tokens *Tokens) InitializeAccount(signers Signers, payer, address, mintAddress, owner crypto.Address) error {
	if _, err := tokens.Mint(mintAddress); err != nil {
		return err
	}
	if err := tokens.System.CreateAccount(signers, payer, address, TokenAccountLen, TokenProgramID); err != nil {
		return err
	}
	account := &TokenAccount{Mint: mintAddress, Owner: owner, State: AccountInitialized, FreezeAuthority: owner}
	return tokens.Cache.WriteRecord(address, account)
}

func (tokens *Tokens) MintTo(signers Signers, mintAddress, accountAddress crypto.Address, amount uint64, decimals byte) error {
	mint, err := tokens.Mint(mintAddress)
	if err != nil {
		return err
	}
	if mint.Decimals != decimals {
		return wrap(ErrDecimalsMismatch, "mint %s has %d decimals", mintAddress, mint.Decimals)
	}
	if !signers.Has(mint.MintAuthority) {
		return wrap(ErrUnauthorized, "mint authority %s did not sign", mint.MintAuthority)
	}
	account, err := tokens.TokenAccount(accountAddress)
	if err != nil {
		return err
	}
	if account.Mint != mintAddress {
		return wrap(ErrMintMismatch, "%s holds %s", accountAddress, account.Mint)
	}
	if account.IsFrozen() {
		return wrap(ErrAccountFrozen, "%s", accountAddress)
	}
	supply, overflow := math.SafeAdd(mint.Supply, amount)
	if overflow {
		return wrap(ErrArithmeticOverflow, "supply of %s", mintAddress)
	}
	balance, overflow := math.SafeAdd(account.Amount, amount)
	if overflow {
		return wrap(ErrArithmeticOverflow, "balance of %s", accountAddress)
	}
	mint.Supply = supply
	account.Amount = balance
	if err := tokens.Cache.WriteRecord(mintAddress, mint); err != nil {
		return err
	}
	return tokens.Cache.WriteRecord(accountAddress, account)
}

func (tokens *Tokens) TransferChecked(signers Signers, from, to, mintAddress crypto.Address, amount uint64, authority crypto.Address, decimals byte) error {
	mint, err := tokens.Mint(mintAddress)
	if err != nil {
		return err
	}
	if mint.Decimals != decimals {
		return wrap(ErrDecimalsMismatch, "mint %s has %d decimals", mintAddress, mint.Decimals)
	}
	source, err := tokens.TokenAccount(from)
	if err != nil {
		return err
	}
	if source.Owner != authority || !signers.Has(authority) {
		return wrap(ErrUnauthorized, "%s cannot move funds of %s", authority, from)
	}
	if source.Mint != mintAddress {
		return wrap(ErrMintMismatch, "%s holds %s", from, source.Mint)
	}
	if source.IsFrozen() {
		return wrap(ErrAccountFrozen, "%s", from)
	}
	if source.Amount < amount {
		return wrap(ErrInsufficientFunds, "%s has %d, needs %d", from, source.Amount, amount)
	}
	if from == to {
		return nil
	}
	destination, err := tokens.TokenAccount(to)
	if err != nil {
		return err
	}
	if destination.Mint != mintAddress {
		return wrap(ErrMintMismatch, "%s holds %s", to, destination.Mint)
	}
	if destination.IsFrozen() {
		return wrap(ErrAccountFrozen, "%s", to)
	}
	balance, overflow := math.SafeAdd(destination.Amount, amount)
	if overflow {
		return wrap(ErrArithmeticOverflow, "balance of %s", to)
	}
	source.Amount -= amount
	destination.Amount = balance
	if err := tokens.Cache.WriteRecord(from, source); err != nil {
		return err
	}
	return tokens.Cache.WriteRecord(to, destination)
}

func (tokens *Tokens) freezable(signers Signers, accountAddress, mintAddress, authority crypto.Address) (*TokenAccount, error) {
	account, err := tokens.TokenAccount(accountAddress)
	if err != nil {
		return nil, err
	}
	if account.Mint != mintAddress {
		return nil, wrap(ErrMintMismatch, "%s holds %s", accountAddress, account.Mint)
	}
	if account.FreezeAuthority != authority || !signers.Has(authority) {
		return nil, wrap(ErrFreezeFailed, "%s is not the freeze authority of %s", authority, accountAddress)
	}
	return account, nil
}

func (tokens *Tokens) FreezeAccount(signers Signers, accountAddress, mintAddress, authority crypto.Address) error {
	account, err := tokens.freezable(signers, accountAddress, mintAddress, authority)
	if err != nil {
		return err
	}
	if account.IsFrozen() {
		return wrap(ErrFreezeFailed, "%s already frozen", accountAddress)
	}
	account.State = AccountFrozen
	return tokens.Cache.WriteRecord(accountAddress, account)
}

func (tokens *Tokens) ThawAccount(signers Signers, accountAddress, mintAddress, authority crypto.Address) error {
	account, err := tokens.freezable(signers, accountAddress, mintAddress, authority)
	if err != nil {
		return err
	}
	if !account.IsFrozen() {
		return wrap(ErrFreezeFailed, "%s is not frozen", accountAddress)
	}
	account.State = AccountInitialized
	return tokens.Cache.WriteRecord(accountAddress, account)
}

// SetFreezeAuthority hands the freeze authority of a token account from current to next.
func (tokens *Tokens) SetFreezeAuthority(signers Signers, accountAddress, current, next crypto.Address) error {
	account, err := tokens.TokenAccount(accountAddress)
	if err != nil {
		return err
	}
	if account.FreezeAuthority != current || !signers.Has(current) {
		return wrap(ErrUnauthorized, "%s is not the freeze authority of %s", current, accountAddress)
	}
	account.FreezeAuthority = next
	return tokens.Cache.WriteRecord(accountAddress, account)
}
