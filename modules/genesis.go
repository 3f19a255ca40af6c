package modules

import (
	"encoding/json"

	"tuition-node/crypto"
)

// GenesisReserve pays the storage of the mints and token accounts created at genesis.
var GenesisReserve = crypto.LabelAddress("tuition-node/genesis")

type GenesisBalance struct {
	Address  crypto.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

type GenesisMint struct {
	Address   crypto.Address `json:"address"`
	Decimals  byte           `json:"decimals"`
	Authority crypto.Address `json:"authority"`
}

type GenesisTokenAccount struct {
	Address crypto.Address `json:"address"`
	Mint    crypto.Address `json:"mint"`
	Owner   crypto.Address `json:"owner"`
	Amount  uint64         `json:"amount"`
}

// Genesis is the app state of the genesis file.
type Genesis struct {
	Balances      []GenesisBalance      `json:"balances"`
	Mints         []GenesisMint         `json:"mints"`
	TokenAccounts []GenesisTokenAccount `json:"token_accounts"`
}

func ParseGenesis(data []byte) (*Genesis, error) {
	genesis := &Genesis{}
	if len(data) == 0 {
		return genesis, nil
	}
	if err := json.Unmarshal(data, genesis); err != nil {
		return nil, err
	}
	return genesis, nil
}

func (genesis *Genesis) Apply(cache *Cache, rent Rent) error {
	system := &System{Cache: cache, Rent: rent}
	tokens := &Tokens{Cache: cache, System: system}
	for _, balance := range genesis.Balances {
		if err := system.Fund(balance.Address, balance.Lamports); err != nil {
			return err
		}
	}
	reserve := uint64(len(genesis.Mints))*rent.MinimumBalance(MintLen) +
		uint64(len(genesis.TokenAccounts))*rent.MinimumBalance(TokenAccountLen)
	if err := system.Fund(GenesisReserve, reserve); err != nil {
		return err
	}
	signers := Signers{GenesisReserve: true}
	for _, mint := range genesis.Mints {
		signers[mint.Address] = true
		signers[mint.Authority] = true
	}
	for _, account := range genesis.TokenAccounts {
		signers[account.Address] = true
	}
	for _, mint := range genesis.Mints {
		if err := tokens.InitializeMint(signers, GenesisReserve, mint.Address, mint.Decimals, mint.Authority, nil); err != nil {
			return err
		}
	}
	decimals := make(map[crypto.Address]byte, len(genesis.Mints))
	for _, mint := range genesis.Mints {
		decimals[mint.Address] = mint.Decimals
	}
	for _, account := range genesis.TokenAccounts {
		if err := tokens.InitializeAccount(signers, GenesisReserve, account.Address, account.Mint, account.Owner); err != nil {
			return err
		}
		if account.Amount == 0 {
			continue
		}
		if err := tokens.MintTo(signers, account.Mint, account.Address, account.Amount, decimals[account.Mint]); err != nil {
			return err
		}
	}
	return nil
}
