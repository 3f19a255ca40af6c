package cmd

import (
	"github.com/spf13/cobra"
)

var rootDir string

func init() {
	RootCmd.AddCommand(InitCmd)
	RootCmd.AddCommand(RunCmd)
	RootCmd.AddCommand(KeysCmd)
	RootCmd.AddCommand(DeriveCmd)
	RootCmd.AddCommand(QueryCmd)
	RootCmd.PersistentFlags().StringVar(&rootDir, "home", "./tmhome", "Home directory of the tuition node")
}

var RootCmd = cobra.Command{
	Use:   "tuition-node",
	Short: "Tuition management node",
}
