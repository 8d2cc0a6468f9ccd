package app

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/calehh/bounty-app/config"
	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/tx/handler"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

const AppVersion uint64 = 1

var (
	ErrEmptyAppState = errors.New("genesis app_state is empty")
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &BountyApp{}

type BountyApp struct {
	cfg    *config.AppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.BountyTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewBountyApp(cfg *config.AppConfig, logger cmtlog.Logger) (app *BountyApp, err error) {
	dir := filepath.Join(cfg.Home, "data")
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}
	return NewBountyAppWithDB(cfg, db, logger), nil
}

func NewBountyAppWithDB(cfg *config.AppConfig, db *state.StateDB, logger cmtlog.Logger) (app *BountyApp) {
	logger = logger.With("module", "app")
	app = &BountyApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.BountyTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *BountyApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *BountyApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("bounty app stopped")
}

func (app *BountyApp) StateDB() *state.StateDB {
	return app.db
}

func (app *BountyApp) registerTxHandler() {
	app.txHdlrs = map[tx.BountyTxType]handler.TxHandler{
		tx.BountyTxTypeAdvanceEpoch: handler.NewAdvanceEpochTxHandler(app.logger),
		tx.BountyTxTypeRegister:     handler.NewRegisterTxHandler(app.logger),
		tx.BountyTxTypeFileReport:   handler.NewFileReportTxHandler(app.logger),
		tx.BountyTxTypeSubmitReview: handler.NewSubmitReviewTxHandler(app.logger),
		tx.BountyTxTypeTransfer:     handler.NewTransferTxHandler(app.logger),
	}
}

func (app *BountyApp) registerQuerier() {
	app.queriers["/epoch/"] = QuerierFunc(app.queryEpoch)
	app.queriers["/params/"] = QuerierFunc(app.queryParams)
	app.queriers["/pool/"] = QuerierFunc(app.queryPool)
	app.queriers["/researchers/"] = QuerierFunc(app.queryResearcher)
	app.queriers["/reports/"] = QuerierFunc(app.queryReport)
	app.queriers["/reviews/"] = QuerierFunc(app.queryReview)
	app.queriers["/balances/"] = QuerierFunc(app.queryBalance)
	app.queriers["/nonces/"] = QuerierFunc(app.queryNonce)
}

func (app *BountyApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	if len(chain.AppStateBytes) == 0 {
		app.logger.Error("InitChain without app state")
		return nil, ErrEmptyAppState
	}
	appState, err := types.ParseAppState(chain.AppStateBytes)
	if err != nil {
		app.logger.Error("InitChain parse app state fail", "err", err)
		return nil, err
	}
	st := app.db.NewState()
	err = st.InitGenesis(chain.ChainId, appState)
	if err != nil {
		app.logger.Error("InitChain apply genesis fail", "err", err)
		return nil, err
	}
	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *BountyApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Data:             types.BountyModuleName,
		AppVersion:       AppVersion,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *BountyApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *BountyApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *BountyApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *BountyApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *BountyApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *BountyApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}
