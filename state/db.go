package state

import (
	"sync"

	"github.com/calehh/bounty-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
)

const treeCacheSize = 128

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	ldb, err := dbm.NewDB("bounty", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	return openStateDB(ldb, dir, logger)
}

// NewMemStateDB opens a state db backed by memory only.
func NewMemStateDB(logger cmtlog.Logger) (db *StateDB, err error) {
	return openStateDB(dbm.NewMemDB(), "", logger)
}

func openStateDB(ldb dbm.DB, dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "bountydb")
	tdb := iavl.NewMutableTree(ldb, treeCacheSize, true, newIAVLLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	st.dbVer = version
	err = st.load()
	if err != nil {
		logger.Error("from bountydb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header().Clone()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetResearcher(id types.Identity) (r *types.Researcher, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	r, err = db.state.GetResearcher(id)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetReport(id uint64) (r *types.Report, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	r, err = db.state.GetReport(id)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetReview(researcher types.Identity, report uint64) (r *types.Review, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	r, err = db.state.GetReview(researcher, report)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetBalance(id types.Identity) (bal uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	bal, err = db.state.GetBalance(id)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetNonce(id types.Identity) (nonce uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	nonce, err = db.state.GetNonce(id)
	height = db.state.header.Height
	return
}
