package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/types"

	"tuition-node/app"
	"tuition-node/crypto"
)

const operatorKeyFile = "config/operator_key.hex"

var chainID string

func init() {
	InitCmd.Flags().StringVar(&chainID, "chain-id", "tuition-chain", "Chain id written to the genesis file")
}

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config files, keys and genesis",
	RunE:  initialize,
}

func initialize(cmd *cobra.Command, args []string) error {
	configuration := config.DefaultConfig()
	configuration.SetRoot(rootDir)
	config.EnsureRoot(configuration.RootDir)

	configuration.LogLevel = "consensus:error,*:info"
	configuration.RPC.CORSAllowedOrigins = []string{"*"}
	configuration.P2P.AllowDuplicateIP = true
	configuration.Consensus.CreateEmptyBlocksInterval = time.Duration(10) * time.Second
	if err := configuration.ValidateBasic(); err != nil {
		return err
	}
	configFile := filepath.Join(rootDir, "config", "config.toml")
	config.WriteConfigFile(configFile, configuration)
	if err := appendTuitionConfig(configFile, app.DefaultConfig()); err != nil {
		return err
	}

	privValKeyFile := configuration.PrivValidatorKeyFile()
	privValStateFile := configuration.PrivValidatorStateFile()
	privVal := privval.GenFilePV(privValKeyFile, privValStateFile)
	privVal.Save()

	nodeKeyFile := configuration.NodeKeyFile()
	if _, err := p2p.LoadOrGenNodeKey(nodeKeyFile); err != nil {
		return err
	}

	operatorKey, operator := crypto.GenKey()
	if err := crypto.SaveKey(filepath.Join(rootDir, operatorKeyFile), operatorKey); err != nil {
		return err
	}
	appState, err := genesisAppState(operator)
	if err != nil {
		return err
	}

	pubKey, err := privVal.GetPubKey()
	if err != nil {
		return err
	}
	genDoc := types.GenesisDoc{
		ChainID:         chainID,
		GenesisTime:     time.Now(),
		ConsensusParams: types.DefaultConsensusParams(),
		Validators: []types.GenesisValidator{{
			Address: pubKey.Address(),
			PubKey:  pubKey,
			Power:   validatorPower,
		}},
		AppState: appState,
	}
	if err := genDoc.SaveAs(configuration.GenesisFile()); err != nil {
		return err
	}
	fmt.Printf("Operator %s\nFee mint %s\nFee account %s\n", operator, FeeMint, FeeAccount(operator))
	return nil
}

// appendTuitionConfig adds the [tuition] table after the tendermint settings.
func appendTuitionConfig(configFile string, tuition app.Config) error {
	file, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintf(file, "\n[tuition.rent]\nlamports_per_byte_year = %d\nexemption_years = %d\n",
		tuition.Rent.LamportsPerByteYear, tuition.Rent.ExemptionYears)
	return err
}
