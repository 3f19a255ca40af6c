package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tuition-node/crypto"
)

var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing keys",
}

var keysNewCmd = &cobra.Command{
	Use:   "new [key file]",
	Short: "Generate a key and print its address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, address := crypto.GenKey()
		if err := crypto.SaveKey(args[0], privKey); err != nil {
			return err
		}
		fmt.Println(address)
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show [key file]",
	Short: "Print the address of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, err := crypto.LoadKey(args[0])
		if err != nil {
			return err
		}
		fmt.Println(crypto.AddressOf(privKey))
		return nil
	},
}

func init() {
	KeysCmd.AddCommand(keysNewCmd)
	KeysCmd.AddCommand(keysShowCmd)
}
