package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a CometBFT blockchain, in particular its validator set.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	if len(ag.AppState) != 0 {
		if _, err := ParseAppState(ag.AppState); err != nil {
			return fmt.Errorf("invalid app_state: %w", err)
		}
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

// AppState is the bounty section of the genesis document.
//
// Deployer seeds the epoch clock's last advancer, so the deployer cannot be
// the first identity to advance the epoch.
type AppState struct {
	Deployer  Identity       `json:"deployer"`
	Custodian Identity       `json:"custodian"`
	Params    Params         `json:"params"`
	Alloc     []GenesisAlloc `json:"alloc"`
}

type GenesisAlloc struct {
	Address Identity `json:"address"`
	Balance uint64   `json:"balance"`
}

var (
	ErrGenesisCustodian = errors.New("custodian must not be the burn identity")
	ErrGenesisParams    = errors.New("maximum_bounty and max_stake must be positive")
	ErrGenesisAlloc     = errors.New("duplicate alloc address")
	ErrGenesisWindow    = errors.New("review_window too large")
)

func DefaultAppState(deployer, custodian Identity) *AppState {
	return &AppState{
		Deployer:  deployer,
		Custodian: custodian,
		Params:    DefaultParams(),
		Alloc:     []GenesisAlloc{},
	}
}

func ParseAppState(raw []byte) (st *AppState, err error) {
	st = new(AppState)
	if len(raw) == 0 {
		return nil, errors.New("empty app_state")
	}
	err = json.Unmarshal(raw, st)
	if err != nil {
		return nil, err
	}
	err = st.Validate()
	if err != nil {
		return nil, err
	}
	return
}

func (st *AppState) Validate() error {
	if st.Custodian == BurnIdentity {
		return ErrGenesisCustodian
	}
	if st.Params.MaximumBounty == 0 || st.Params.MaxStake == 0 {
		return ErrGenesisParams
	}
	if st.Params.ReviewWindow > MaxReviewWindow {
		return ErrGenesisWindow
	}
	seen := make(map[Identity]bool, len(st.Alloc))
	for _, a := range st.Alloc {
		if seen[a.Address] {
			return fmt.Errorf("%w: %s", ErrGenesisAlloc, a.Address.Hex())
		}
		seen[a.Address] = true
	}
	return nil
}

const BountyModuleName = "bounty"
const DefaultPower = 1000

const (
	FlagOverwrite = "overwrite"
	FlagChainID   = "chain-id"
	FlagHome      = "home"
	FlagCustodian = "custodian"
	FlagAlloc     = "alloc"
)
