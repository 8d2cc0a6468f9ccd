package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/joho/godotenv"
)

const (
	EnvIndexerDSN = "BOUNTY_INDEXER_DSN"

	DefaultIndexerDSN       = "indexer.db"
	DefaultAPIListenAddress = "127.0.0.1:8080"
	DefaultIndexerInterval  = 2 * time.Second
)

var (
	ErrEmptyIndexerDSN  = errors.New("indexer enabled without dsn")
	ErrEmptyAPIAddress  = errors.New("indexer enabled without api listen address")
	ErrBadIndexInterval = errors.New("indexer poll interval must be positive")
)

// AppConfig is the [app] section of app.toml.
type AppConfig struct {
	Home string `mapstructure:"-"`

	LogLevel         string        `mapstructure:"log_level"`
	IndexerEnabled   bool          `mapstructure:"indexer_enabled"`
	IndexerDSN       string        `mapstructure:"indexer_dsn"`
	IndexerInterval  time.Duration `mapstructure:"indexer_interval"`
	APIListenAddress string        `mapstructure:"api_listen_address"`
}

func DefaultAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home:             home,
		LogLevel:         "",
		IndexerEnabled:   false,
		IndexerDSN:       DefaultIndexerDSN,
		IndexerInterval:  DefaultIndexerInterval,
		APIListenAddress: DefaultAPIListenAddress,
	}
}

func (c *AppConfig) ValidateBasic() error {
	if !c.IndexerEnabled {
		return nil
	}
	if c.IndexerDSN == "" {
		return ErrEmptyIndexerDSN
	}
	if c.APIListenAddress == "" {
		return ErrEmptyAPIAddress
	}
	if c.IndexerInterval <= 0 {
		return ErrBadIndexInterval
	}
	return nil
}

// IndexerDSNPath resolves a relative sqlite DSN against the data directory.
// Postgres URLs and absolute paths are returned unchanged.
func (c *AppConfig) IndexerDSNPath() string {
	dsn := c.IndexerDSN
	if strings.Contains(dsn, "://") || strings.Contains(dsn, "=") || filepath.IsAbs(dsn) || dsn == ":memory:" {
		return dsn
	}
	return filepath.Join(c.Home, "data", dsn)
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.bounty")
	}
	config := &Config{
		DefaultBountyCometConfig(),
		DefaultAppConfig(home),
	}
	config.SetRoot(home)
	_ = os.MkdirAll(filepath.Join(home, "config"), DefaultDirPerm)
	return config
}

func (cfg *Config) ValidateBasic() error {
	if err := cfg.Config.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.App.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [app] section: %w", err)
	}
	return nil
}

// LoadEnv reads <home>/.env when present and lets BOUNTY_INDEXER_DSN
// override the configured indexer DSN.
func (cfg *Config) LoadEnv() error {
	envFile := filepath.Join(cfg.RootDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if dsn := os.Getenv(EnvIndexerDSN); dsn != "" {
		cfg.App.IndexerDSN = dsn
	}
	return nil
}

func (cfg *Config) AppConfigFile() string {
	return filepath.Join(cfg.RootDir, "config", "app.toml")
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func DefaultBountyCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
