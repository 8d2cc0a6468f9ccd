package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/bounty-app/app"
	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type queryArguments struct {
	Url string
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query committed chain state",
}

func abciQuery(cli *http.HTTP, path string, data []byte, out any) error {
	res, err := cli.ABCIQuery(context.Background(), path, data)
	if err != nil {
		return err
	}
	if res.Response.Code != 0 {
		return fmt.Errorf("query %s code %d: %s", path, res.Response.Code, res.Response.Log)
	}
	return json.Unmarshal(res.Response.Value, out)
}

// runQuery prints the JSON value stored under path.
func runQuery(path string, data []byte) error {
	cli, err := http.New(queryArgs.Url, "/websocket")
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	var v json.RawMessage
	if err := abciQuery(cli, path, data, &v); err != nil {
		return err
	}
	fmt.Println(string(v))
	return nil
}

func addressArg(s string) ([]byte, error) {
	id, ok := types.IdentityFromHex(s)
	if !ok {
		return nil, fmt.Errorf("invalid address %q", s)
	}
	return id.Bytes(), nil
}

func idArg(s string) ([]byte, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return app.EncodeId(id), nil
}

func noArgQuery(use, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(path, nil)
		},
	}
}

func addressQuery(use, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dat, err := addressArg(args[0])
			if err != nil {
				return err
			}
			return runQuery(path, dat)
		},
	}
}

var queryReportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Show a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dat, err := idArg(args[0])
		if err != nil {
			return err
		}
		return runQuery("/reports/", dat)
	},
}

var queryReviewCmd = &cobra.Command{
	Use:   "review <researcher> <report>",
	Short: "Show the review a researcher left on a report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := addressArg(args[0])
		if err != nil {
			return err
		}
		id, err := idArg(args[1])
		if err != nil {
			return err
		}
		return runQuery("/reviews/", append(addr, id...))
	},
}

func init() {
	queryCmd.PersistentFlags().StringVarP(&queryArgs.Url, "url", "u", "http://127.0.0.1:26657", "bountyd rpc url")
	queryCmd.AddCommand(
		noArgQuery("epoch", "/epoch/", "Show the current epoch and last advancer"),
		noArgQuery("params", "/params/", "Show the chain parameters"),
		noArgQuery("pool", "/pool/", "Show the staking pool"),
		addressQuery("researcher", "/researchers/", "Show a researcher"),
		addressQuery("balance", "/balances/", "Show a balance"),
		addressQuery("nonce", "/nonces/", "Show the next nonce of an identity"),
		queryReportCmd,
		queryReviewCmd,
	)
}
