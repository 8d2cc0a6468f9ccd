package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	app_config "github.com/calehh/bounty-app/config"
	"github.com/calehh/bounty-app/types"
	cmtos "github.com/cometbft/cometbft/libs/os"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func newPrintInfo(moniker, chainID, nodeID string, appMessage json.RawMessage) printInfo {
	return printInfo{
		Moniker:    moniker,
		ChainID:    chainID,
		NodeID:     nodeID,
		AppMessage: appMessage,
	}
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long: `Initialize validator's and node's configuration files. The local validator
becomes the deployer and receives the genesis allocation.`,
	Args: cobra.ExactArgs(0),
	RunE: initRun,
}

func init() {
	initCmd.Flags().BoolP(types.FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(types.FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(types.FlagHome, "", "node home directory")
	initCmd.Flags().String(types.FlagCustodian, "", "custodian address holding staked funds")
	initCmd.Flags().Uint64(types.FlagAlloc, 0, "genesis balance credited to the local validator")
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(types.FlagHome)
	chainID, _ := cmd.Flags().GetString(types.FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(types.FlagOverwrite)
	custodianHex, _ := cmd.Flags().GetString(types.FlagCustodian)
	alloc, _ := cmd.Flags().GetUint64(types.FlagAlloc)

	if chainID == "" {
		chainID = fmt.Sprintf("bounty-chain-%v", rand.Uint64())
	}
	custodian := types.DefaultCustodian
	if custodianHex != "" {
		id, ok := types.IdentityFromHex(custodianHex)
		if !ok {
			return fmt.Errorf("invalid custodian address %q", custodianHex)
		}
		custodian = id
	}

	appConfig := app_config.DefaultConfig(home)
	genFile := appConfig.GenesisFile()
	if !overwrite && cmtos.FileExists(genFile) {
		return fmt.Errorf("genesis file %s already exists, use --%s to replace it", genFile, types.FlagOverwrite)
	}

	nodeID, pk, err := app_config.InitializeNodeValidatorFiles(appConfig, nil)
	if err != nil {
		return err
	}
	vals := []types.GenesisValidator{{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower}}

	deployer := types.IdentityFromPubKey(pk.Bytes())
	appState := types.DefaultAppState(deployer, custodian)
	if alloc > 0 {
		appState.Alloc = append(appState.Alloc, types.GenesisAlloc{Address: deployer, Balance: alloc})
	}
	appStateBytes, err := json.Marshal(appState)
	if err != nil {
		return err
	}

	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators:      vals,
		AppState:        appStateBytes,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	if err = app_config.WriteConfigFiles(appConfig); err != nil {
		return fmt.Errorf("failed to write config files: %w", err)
	}
	toPrint := newPrintInfo(appConfig.Moniker, chainID, nodeID, appGenesis.AppState)
	return displayInfo(toPrint)
}
