package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/bounty-app/crypto"
	"github.com/spf13/cobra"
)

type pubkeyArguments struct {
	Skey string
}

var pubkeyArgs pubkeyArguments

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the public key and bounty identity of a key file",
	Args:  cobra.NoArgs,
	RunE:  pubkeyRun,
}

func init() {
	skeyFlag(pubkeyCmd, &pubkeyArgs.Skey)
}

func pubkeyRun(cmd *cobra.Command, args []string) error {
	pv, err := crypto.LoadFilePV(pubkeyArgs.Skey)
	if err != nil {
		return err
	}
	fmt.Println("pubkey:", hex.EncodeToString(pv.PubKey()))
	fmt.Println("identity:", pv.Identity().Hex())
	return nil
}
