package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/bounty-app/crypto"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type txArguments struct {
	Url   string
	Skey  string
	Nonce int64
}

func txFlags(cmd *cobra.Command, args *txArguments) {
	urlFlag(cmd, &args.Url)
	skeyFlag(cmd, &args.Skey)
	cmd.Flags().Int64VarP(&args.Nonce, "nonce", "n", -1, "account nonce, queried from the node when negative")
}

// sendTx signs payload with the key at args.Skey and broadcasts it.
func sendTx(args *txArguments, tp tx.BountyTxType, payload any) error {
	cli, err := http.New(args.Url, "/websocket")
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis: %w", err)
	}
	chainId := gres.Genesis.ChainID

	pv, err := crypto.LoadFilePV(args.Skey)
	if err != nil {
		return err
	}
	var nonce uint64
	if args.Nonce >= 0 {
		nonce = uint64(args.Nonce)
	} else {
		var info types.NonceInfo
		if err := abciQuery(cli, "/nonces/", pv.Identity().Bytes(), &info); err != nil {
			return fmt.Errorf("query nonce: %w", err)
		}
		nonce = info.Nonce
	}

	btx := tx.New(tp, nonce, payload)
	if err := btx.Sign(chainId, pv); err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	dat, err := tx.MarshalBountyTx(btx)
	if err != nil {
		return fmt.Errorf("encode tx: %w", err)
	}
	fmt.Printf("signer:%s type:%s nonce:%d\n", pv.Identity().Hex(), tp, nonce)
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}
	out, _ := json.Marshal(res)
	fmt.Printf("%v\n", string(out))
	if res.Code != 0 {
		return fmt.Errorf("tx rejected with code %d: %s", res.Code, res.Log)
	}
	return nil
}

var advanceEpochArgs txArguments

var advanceEpochCmd = &cobra.Command{
	Use:   "advance-epoch",
	Short: "Advance the epoch clock by one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTx(&advanceEpochArgs, tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{})
	},
}

var registerArgs txArguments

var registerCmd = &cobra.Command{
	Use:   "register <amount>",
	Short: "Stake amount and register as a researcher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		return sendTx(&registerArgs, tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: amount})
	},
}

var fileReportArgs txArguments

var fileReportCmd = &cobra.Command{
	Use:   "file-report <reporter> <bounty>",
	Short: "File a vulnerability report crediting reporter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reporter, ok := types.IdentityFromHex(args[0])
		if !ok {
			return fmt.Errorf("invalid reporter address %q", args[0])
		}
		bounty, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bounty: %w", err)
		}
		return sendTx(&fileReportArgs, tx.BountyTxTypeFileReport, &tx.FileReportTx{Reporter: reporter, Bounty: bounty})
	},
}

type reviewArguments struct {
	txArguments
	Reject bool
}

var reviewArgs reviewArguments

var reviewCmd = &cobra.Command{
	Use:   "review <report>",
	Short: "Approve or reject a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report id: %w", err)
		}
		return sendTx(&reviewArgs.txArguments, tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: report, Approve: !reviewArgs.Reject})
	},
}

var transferArgs txArguments

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Move balance to another identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, ok := types.IdentityFromHex(args[0])
		if !ok {
			return fmt.Errorf("invalid recipient address %q", args[0])
		}
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		return sendTx(&transferArgs, tx.BountyTxTypeTransfer, &tx.TransferTx{To: to, Amount: amount})
	},
}

func init() {
	txFlags(advanceEpochCmd, &advanceEpochArgs)
	txFlags(registerCmd, &registerArgs)
	txFlags(fileReportCmd, &fileReportArgs)
	txFlags(reviewCmd, &reviewArgs.txArguments)
	reviewCmd.Flags().BoolVar(&reviewArgs.Reject, "reject", false, "reject the report instead of approving it")
	txFlags(transferCmd, &transferArgs)
}
