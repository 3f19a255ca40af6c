package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	rpchttp "github.com/tendermint/tendermint/rpc/client/http"

	"tuition-node/crypto"
	"tuition-node/messages"
)

var (
	remote      string
	queryHeight int64
)

var queryTypes = map[string]messages.QueryType{
	"account":       messages.QueryAccount,
	"protocol":      messages.QueryProtocol,
	"institution":   messages.QueryInstitution,
	"subject":       messages.QuerySubject,
	"enrollment":    messages.QueryEnrollment,
	"mint":          messages.QueryMint,
	"token-account": messages.QueryTokenAccount,
}

var QueryCmd = &cobra.Command{
	Use:   "query [account|protocol|institution|subject|enrollment|mint|token-account] [address]",
	Short: "Query a record from a running node",
	Args:  cobra.ExactArgs(2),
	RunE:  query,
}

func init() {
	QueryCmd.Flags().StringVar(&remote, "node", "tcp://127.0.0.1:26657", "RPC address of the node")
	QueryCmd.Flags().Int64Var(&queryHeight, "height", 0, "committed height to read, 0 for the latest")
}

func query(cmd *cobra.Command, args []string) error {
	qrType, ok := queryTypes[args[0]]
	if !ok {
		return fmt.Errorf("unknown record type %q", args[0])
	}
	address, err := crypto.ParseAddress(args[1])
	if err != nil {
		return err
	}
	data, err := messages.Encode(messages.Query{QrType: qrType, Address: address})
	if err != nil {
		return err
	}
	client, err := rpchttp.New(remote, "/websocket")
	if err != nil {
		return err
	}
	result, err := client.ABCIQueryWithOptions("", data, rpcclient.ABCIQueryOptions{Height: queryHeight})
	if err != nil {
		return err
	}
	if result.Response.Code != 0 {
		return fmt.Errorf("query failed: %s", result.Response.Log)
	}
	fmt.Println(string(result.Response.Value))
	return nil
}
