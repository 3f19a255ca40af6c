package cmd

import (
	"encoding/json"

	"tuition-node/crypto"
	"tuition-node/modules"
)

const (
	operatorLamports = 1000000000000
	operatorFees     = 1000000000000
	feeDecimals      = 6
	validatorPower   = 10
)

// FeeMint is the fungible token tuition and listing fees are paid in.
var FeeMint = crypto.LabelAddress("tuition-node/fee-mint")

// FeeAccount is the fee token account created at genesis for holder.
func FeeAccount(holder crypto.Address) crypto.Address {
	return crypto.LabelAddress("tuition-node/fee-account/" + holder.String())
}

// genesisAppState funds the operator and makes it the authority of the fee mint.
func genesisAppState(operator crypto.Address) (json.RawMessage, error) {
	genesis := modules.Genesis{
		Balances: []modules.GenesisBalance{
			{Address: operator, Lamports: operatorLamports},
		},
		Mints: []modules.GenesisMint{
			{Address: FeeMint, Decimals: feeDecimals, Authority: operator},
		},
		TokenAccounts: []modules.GenesisTokenAccount{
			{Address: FeeAccount(operator), Mint: FeeMint, Owner: operator, Amount: operatorFees},
		},
	}
	return json.Marshal(genesis)
}
