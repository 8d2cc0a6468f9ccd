package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/calehh/bounty-app/app"
	app_config "github.com/calehh/bounty-app/config"
	"github.com/calehh/bounty-app/indexer"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var homeDir string

var rootCmd = &cobra.Command{
	Use:   "bountyd",
	Short: "bountyd runs the bug bounty chain",
	Long: `A CometBFT chain where staked researchers file vulnerability
reports and review them within an epoch-based window.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func loadConfig(home string) (*app_config.Config, error) {
	appConfig := app_config.DefaultConfig(home)

	v := viper.New()
	v.SetConfigFile(filepath.Join(appConfig.RootDir, "config", "config.toml"))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if _, err := os.Stat(appConfig.AppConfigFile()); err == nil {
		v.SetConfigFile(appConfig.AppConfigFile())
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading app config: %w", err)
		}
	}
	if err := v.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	appConfig.SetRoot(appConfig.RootDir)
	appConfig.App.Home = appConfig.RootDir
	if err := appConfig.LoadEnv(); err != nil {
		return nil, err
	}
	if err := appConfig.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return appConfig, nil
}

func run(cmd *cobra.Command, args []string) {
	appConfig, err := loadConfig(homeDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pv := privval.LoadFilePV(
		appConfig.PrivValidatorKeyFile(),
		appConfig.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(appConfig.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logLevel := appConfig.LogLevel
	if appConfig.App.LogLevel != "" {
		logLevel = appConfig.App.LogLevel
	}
	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(logLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	bountyApp, err := app.NewBountyApp(appConfig.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		appConfig.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(bountyApp),
		nm.DefaultGenesisDocProviderFunc(appConfig.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(appConfig.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	bountyApp.Start(node.BlockStore())
	err = node.Start()
	if err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	if appConfig.App.IndexerEnabled {
		if err := startIndexer(ctx, appConfig, logger); err != nil {
			log.Fatalf("start indexer err %s", err.Error())
		}
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			err = node.Stop()
			if err != nil {
				log.Printf("stop comet node err %s", err.Error())
			}
			node.Wait()
			bountyApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// startIndexer follows the node over its own RPC endpoint and serves the
// indexed records over HTTP.
func startIndexer(ctx context.Context, appConfig *app_config.Config, logger cmtlog.Logger) error {
	rpcUrl, err := url.Parse(appConfig.Config.RPC.ListenAddress)
	if err != nil {
		return fmt.Errorf("parse rpc url: %w", err)
	}
	rpcUrl.Scheme = "http"
	db, err := indexer.OpenDB(appConfig.App.IndexerDSNPath())
	if err != nil {
		return fmt.Errorf("open indexer db: %w", err)
	}
	cli, err := indexer.NewNodeClient(rpcUrl.String())
	if err != nil {
		return fmt.Errorf("new node client: %w", err)
	}
	idx, err := indexer.NewChainIndexer(logger, db, cli, appConfig.App.IndexerInterval)
	if err != nil {
		return err
	}
	go idx.Start(ctx)

	svc := indexer.NewService(appConfig.App.APIListenAddress, idx, logger)
	go func() {
		if err := svc.Start(); err != nil {
			logger.Error("api service stopped", "err", err)
		}
	}()
	return nil
}
