package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/node"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/proxy"
	dbm "github.com/tendermint/tm-db"

	"tuition-node/app"
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run node",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	configuration := config.DefaultConfig()
	viper.SetConfigFile(rootDir + "/config/config.toml")
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	if err := viper.Unmarshal(configuration); err != nil {
		return err
	}
	configuration.SetRoot(rootDir)
	if err := configuration.ValidateBasic(); err != nil {
		return err
	}
	tuitionConfig, err := app.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	logger, err = flags.ParseLogLevel(configuration.LogLevel, logger, config.DefaultLogLevel())
	if err != nil {
		return err
	}

	db, err := dbm.NewGoLevelDB("tuition", configuration.DBDir())
	if err != nil {
		return err
	}
	defer db.Close()
	tuitionChain, err := app.NewTuitionChain(db, tuitionConfig, logger)
	if err != nil {
		return err
	}
	logger.Info("Loaded ledger", "height", tuitionChain.Ledger.Height, "rent", tuitionConfig.Rent.LamportsPerByteYear)

	pv := privval.LoadFilePV(
		configuration.PrivValidatorKeyFile(),
		configuration.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(configuration.NodeKeyFile())
	if err != nil {
		return err
	}

	node, err := node.NewNode(
		configuration,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(tuitionChain),
		node.DefaultGenesisDocProviderFunc(configuration),
		node.DefaultDBProvider,
		node.DefaultMetricsProvider(configuration.Instrumentation),
		logger)
	if err != nil {
		return err
	}

	if err := node.Start(); err != nil {
		return err
	}
	defer func() {
		node.Stop()
		node.Wait()
	}()

	sign := make(chan os.Signal, 1)
	signal.Notify(sign, syscall.SIGINT, syscall.SIGTERM)
	<-sign
	return nil
}
