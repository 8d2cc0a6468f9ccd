package state

import (
	"fmt"
	"sort"

	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	StartReportId uint64 = 1
)

var (
	KeyState      = "s"
	KeyResearcher = "a%x"
	KeyReport     = "r%016x"
	KeyReview     = "v%x/%d"
	KeyBalance    = "b%x"
	KeyNonce      = "n%x"
)

// State is a working view of the bounty store. Writes are buffered in memory
// until Update flushes them into the tree, so a Clone or Branch can be
// discarded without touching the tree.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header *StateHeader
	ledger Ledger
	writes map[string][]byte
	parent *State
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger: logger,
		db:     db,
		dbVer:  0,
		header: new(StateHeader),
		writes: make(map[string][]byte),
	}
	s.header.NextReportId = StartReportId
	return s
}

func (s *State) nextState() *State {
	n := s.Clone()
	if s.header.GetHash() != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone returns an independent copy sharing the underlying tree. Changes made
// to the copy are invisible to s.
func (s *State) Clone() *State {
	n := &State{
		logger: s.logger,
		db:     s.db,
		dbVer:  s.dbVer,
		header: s.header.Clone(),
		ledger: s.ledger,
		writes: make(map[string][]byte, len(s.writes)),
		parent: s.parent,
	}
	for k, v := range s.writes {
		n.writes[k] = v
	}
	return n
}

// Branch returns a view that reads through to s and keeps its own writes
// apart until Merge. Dropping the branch discards them.
func (s *State) Branch() *State {
	return &State{
		logger: s.logger,
		db:     s.db,
		dbVer:  s.dbVer,
		header: s.header.Clone(),
		ledger: s.ledger,
		writes: make(map[string][]byte),
		parent: s,
	}
}

// Merge folds the branch's writes and header into the state it was branched
// from and returns that state.
func (s *State) Merge() *State {
	p := s.parent
	for k, v := range s.writes {
		p.writes[k] = v
	}
	p.header = s.header
	s.writes = make(map[string][]byte)
	return p
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = rlp.DecodeBytes(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = make([]byte, len(rootHash))
		copy(s.header.RootHash, rootHash)
		s.header.Hash = make([]byte, len(h))
		copy(s.header.Hash, h[:])
	}
	return
}

// Update flushes the buffered writes and the header into the working tree in
// key order and returns the resulting app hash. The writes stay buffered
// until save, so s keeps reading its own block.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = rlp.EncodeToBytes(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(s.writes))
	for k := range s.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, err = s.db.Set([]byte(k), s.writes[k])
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	s.writes = make(map[string][]byte)
	h = s.calcHash(hash, true)

	return
}

func (s *State) get(key string) (val []byte, err error) {
	if v, ok := s.writes[key]; ok {
		return v, nil
	}
	if s.parent != nil {
		return s.parent.get(key)
	}
	// Reads stop at the last saved version. Records an uncommitted block
	// flushed into the working tree stay invisible.
	val, err = s.db.GetVersioned([]byte(key), s.dbVer)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return
}

// getRecord decodes the record stored at key into out. found is false when
// nothing is stored there.
func (s *State) getRecord(key string, out any) (found bool, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return false, err
	}
	err = rlp.DecodeBytes(val, out)
	if err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *State) putRecord(key string, rec any) error {
	val, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	s.writes[key] = val
	return nil
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) Params() types.Params {
	return s.header.Params
}

func (s *State) PoolTotal() uint64 {
	return s.header.PoolTotal
}

func (s *State) Custodian() types.Identity {
	return s.header.Custodian
}

// InitGenesis seeds the epoch clock, the parameters and the balance book.
func (s *State) InitGenesis(chainId string, app *types.AppState) (err error) {
	err = app.Validate()
	if err != nil {
		return
	}
	s.header.ChainId = chainId
	s.header.Epoch = 0
	s.header.LastAdvancer = app.Deployer
	s.header.Custodian = app.Custodian
	s.header.Params = app.Params
	s.header.NextReportId = StartReportId
	s.header.PoolTotal = 0
	for _, a := range app.Alloc {
		err = s.setBalance(a.Address, a.Balance)
		if err != nil {
			return
		}
	}
	s.logger.Info("genesis applied", "chainId", chainId, "deployer", app.Deployer.Hex(),
		"custodian", app.Custodian.Hex(), "alloc", len(app.Alloc))
	return
}

func (s *State) GetNonce(id types.Identity) (nonce uint64, err error) {
	_, err = s.getRecord(fmt.Sprintf(KeyNonce, id.Bytes()), &nonce)
	return
}

func (s *State) IncrNonce(id types.Identity) (err error) {
	nonce, err := s.GetNonce(id)
	if err != nil {
		return
	}
	return s.putRecord(fmt.Sprintf(KeyNonce, id.Bytes()), nonce+1)
}

// Verify checks the envelope signature against the chain id and the signer's
// nonce. With allowNonceGap a nonce ahead of the stored one is accepted.
func (s *State) Verify(btx *tx.BountyTx, allowNonceGap bool) (caller types.Identity, err error) {
	caller, err = btx.Caller()
	if err != nil {
		return
	}
	nonce, err := s.GetNonce(caller)
	if err != nil {
		return
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		err = fmt.Errorf("%w: expect %d, got %d", ErrTxNonceInvalid, nonce, btx.Nonce)
		return
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return
	}
	if len(btx.Sig) != 1 || !ed25519.PubKey(btx.PubKey).VerifySignature(dat, btx.Sig[0]) {
		err = ErrTxSigInvalid
	}
	return
}

func (s *State) GetResearcher(id types.Identity) (r *types.Researcher, err error) {
	r = new(types.Researcher)
	found, err := s.getRecord(fmt.Sprintf(KeyResearcher, id.Bytes()), r)
	if !found {
		r = nil
	}
	return
}

func (s *State) GetReport(id uint64) (r *types.Report, err error) {
	r = new(types.Report)
	found, err := s.getRecord(fmt.Sprintf(KeyReport, id), r)
	if !found {
		r = nil
	}
	return
}

func (s *State) GetReview(researcher types.Identity, report uint64) (r *types.Review, err error) {
	r = new(types.Review)
	found, err := s.getRecord(fmt.Sprintf(KeyReview, researcher.Bytes(), report), r)
	if !found {
		r = nil
	}
	return
}

func (s *State) putResearcher(r *types.Researcher) error {
	return s.putRecord(fmt.Sprintf(KeyResearcher, r.Identity.Bytes()), r)
}

func (s *State) putReport(r *types.Report) error {
	return s.putRecord(fmt.Sprintf(KeyReport, r.Id), r)
}

func (s *State) putReview(r *types.Review) error {
	return s.putRecord(fmt.Sprintf(KeyReview, r.Researcher.Bytes(), r.Report), r)
}

// NextReportId is the id the next filed report will receive.
func (s *State) NextReportId() uint64 {
	return s.header.NextReportId
}
