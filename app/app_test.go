package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/calehh/bounty-app/config"
	"github.com/calehh/bounty-app/crypto"
	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const testChainId = "bounty-test"

var custodian = common.HexToAddress("0x00000000000000000000000000000000000000c0")

type testChain struct {
	t      *testing.T
	app    *BountyApp
	height int64
	deploy *crypto.PV
	keys   map[string]*crypto.PV
	nonces map[common.Address]uint64
}

func newTestChain(t *testing.T, params types.Params) *testChain {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	c := &testChain{
		t:      t,
		app:    NewBountyAppWithDB(config.DefaultAppConfig(t.TempDir()), db, cmtlog.NewNopLogger()),
		deploy: crypto.GenPV(),
		keys:   make(map[string]*crypto.PV),
		nonces: make(map[common.Address]uint64),
	}
	appState := types.DefaultAppState(c.deploy.Identity(), custodian)
	appState.Params = params
	for _, name := range []string{"alice", "bob", "carol"} {
		pv := crypto.GenPV()
		c.keys[name] = pv
		appState.Alloc = append(appState.Alloc, types.GenesisAlloc{Address: pv.Identity(), Balance: 1000})
	}
	c.keys["mallory"] = crypto.GenPV()
	raw, err := json.Marshal(appState)
	require.NoError(t, err)

	res, err := c.app.InitChain(context.Background(), &abcitypes.RequestInitChain{ChainId: testChainId, AppStateBytes: raw})
	require.NoError(t, err)
	require.Len(t, res.AppHash, 32)
	return c
}

func (c *testChain) signedTx(name string, tp tx.BountyTxType, payload any) []byte {
	pv := c.keys[name]
	if name == "deployer" {
		pv = c.deploy
	}
	id := pv.Identity()
	btx := tx.New(tp, c.nonces[id], payload)
	require.NoError(c.t, btx.Sign(testChainId, pv))
	c.nonces[id]++
	dat, err := tx.MarshalBountyTx(btx)
	require.NoError(c.t, err)
	return dat
}

func (c *testChain) block(txs ...[]byte) []*abcitypes.ExecTxResult {
	ctx := context.Background()
	c.height++
	pres, err := c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Txs: txs, Height: c.height})
	require.NoError(c.t, err)
	require.Equal(c.t, abcitypes.ResponseProcessProposal_ACCEPT, pres.Status)
	res, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Txs: txs, Height: c.height})
	require.NoError(c.t, err)
	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(c.t, err)
	return res.TxResults
}

func (c *testChain) query(path string, data []byte, out any) uint32 {
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: data})
	require.NoError(c.t, err)
	if res.Code == 0 && out != nil {
		require.NoError(c.t, json.Unmarshal(res.Value, out))
	}
	return res.Code
}

func (c *testChain) id(name string) common.Address {
	if name == "deployer" {
		return c.deploy.Identity()
	}
	return c.keys[name].Identity()
}

func TestInitChainRequiresAppState(t *testing.T) {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	app := NewBountyAppWithDB(config.DefaultAppConfig(""), db, cmtlog.NewNopLogger())
	_, err = app.InitChain(context.Background(), &abcitypes.RequestInitChain{ChainId: testChainId})
	require.ErrorIs(t, err, ErrEmptyAppState)

	_, err = app.Commit(context.Background(), &abcitypes.RequestCommit{})
	require.ErrorIs(t, err, ErrNoBlockState)
}

func TestBountyFlow(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())

	res := c.block(
		c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 100}),
		c.signedTx("bob", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 100}),
		c.signedTx("deployer", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{}),
		c.signedTx("alice", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{}),
		c.signedTx("bob", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{}),
	)
	require.Equal(t, []uint32{state.CodeOK, state.CodeOK, state.CodeCooldownActive, state.CodeOK, state.CodeOK},
		codes(res))

	var epoch types.EpochInfo
	require.Equal(t, uint32(0), c.query("/epoch", nil, &epoch))
	require.Equal(t, uint64(2), epoch.Epoch)
	require.Equal(t, c.id("bob"), epoch.LastAdvancer)

	res = c.block(
		c.signedTx("alice", tx.BountyTxTypeFileReport, &tx.FileReportTx{Reporter: c.id("carol"), Bounty: 50}),
		c.signedTx("alice", tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: 1, Approve: true}),
		c.signedTx("bob", tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: 1, Approve: true}),
		c.signedTx("alice", tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: 1, Approve: false}),
	)
	require.Equal(t, []uint32{state.CodeOK, state.CodeOK, state.CodeOK, state.CodeDuplicateReview}, codes(res))
	require.Empty(t, res[3].Events)

	var report types.Report
	require.Equal(t, uint32(0), c.query("/reports/", EncodeId(1), &report))
	require.Equal(t, uint64(1), report.Id)
	require.Equal(t, uint64(2), report.ReviewCount)
	require.Equal(t, uint64(2), report.ApprovalCount)
	require.Equal(t, uint64(2+types.DefaultReviewWindow), report.ReviewDeadlineEpoch)

	var review types.Review
	require.Equal(t, uint32(0), c.query("/reviews/", append(c.id("bob").Bytes(), EncodeId(1)...), &review))
	require.True(t, review.Submitted)
	require.Equal(t, CodeQueryNotFound, c.query("/reviews/", append(c.id("carol").Bytes(), EncodeId(1)...), nil))

	var pool types.PoolInfo
	require.Equal(t, uint32(0), c.query("/pool/", nil, &pool))
	require.Equal(t, uint64(200), pool.Total)
	require.Equal(t, uint64(2), pool.NextReportId)
	require.Equal(t, custodian, pool.Custodian)

	var bal types.BalanceInfo
	require.Equal(t, uint32(0), c.query("/balances/", custodian.Bytes(), &bal))
	require.Equal(t, uint64(200), bal.Balance)

	var nonce types.NonceInfo
	require.Equal(t, uint32(0), c.query("/nonces/", c.id("alice").Bytes(), &nonce))
	require.Equal(t, c.nonces[c.id("alice")], nonce.Nonce)

	info, err := c.app.Info(context.Background(), &abcitypes.RequestInfo{})
	require.NoError(t, err)
	require.Equal(t, int64(2), info.LastBlockHeight)
	require.Len(t, info.LastBlockAppHash, 32)
}

func TestFailedTxLeavesStateButConsumesNonce(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	res := c.block(
		c.signedTx("mallory", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 100}),
		c.signedTx("mallory", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 0}),
	)
	require.Equal(t, []uint32{state.CodeInsufficientBalance, state.CodeInput}, codes(res))

	require.Equal(t, CodeQueryNotFound, c.query("/researchers/", c.id("mallory").Bytes(), nil))
	var pool types.PoolInfo
	c.query("/pool/", nil, &pool)
	require.Equal(t, uint64(0), pool.Total)
	var nonce types.NonceInfo
	c.query("/nonces/", c.id("mallory").Bytes(), &nonce)
	require.Equal(t, uint64(2), nonce.Nonce)
}

func TestReplayRejected(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	stx := c.signedTx("alice", tx.BountyTxTypeTransfer, &tx.TransferTx{To: c.id("bob"), Amount: 10})
	res := c.block(stx)
	require.Equal(t, state.CodeOK, res[0].Code)

	ctx := context.Background()
	check, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: stx})
	require.NoError(t, err)
	require.Equal(t, state.CodeTxInvalid, check.Code)

	fres, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Txs: [][]byte{stx}, Height: 2})
	require.NoError(t, err)
	require.Equal(t, state.CodeTxInvalid, fres.TxResults[0].Code)
}

func TestCheckTx(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	ctx := context.Background()

	res, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 100})})
	require.NoError(t, err)
	require.Equal(t, state.CodeOK, res.Code)

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signedTx("deployer", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{})})
	require.NoError(t, err)
	require.Equal(t, state.CodeCooldownActive, res.Code)

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: []byte(`{"type":42}`)})
	require.NoError(t, err)
	require.Equal(t, state.CodeTxInvalid, res.Code)

	// CheckTx never changes committed state
	require.Equal(t, CodeQueryNotFound, c.query("/researchers/", c.id("alice").Bytes(), nil))
}

func TestReadsBetweenFinalizeAndCommit(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	ctx := context.Background()
	c.height++
	reg := c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 100})
	fres, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Txs: [][]byte{reg}, Height: c.height})
	require.NoError(t, err)
	require.Equal(t, []uint32{state.CodeOK}, codes(fres.TxResults))

	require.Equal(t, CodeQueryNotFound, c.query("/researchers/", c.id("alice").Bytes(), nil))
	var pool types.PoolInfo
	require.Equal(t, uint32(0), c.query("/pool/", nil, &pool))
	require.Equal(t, uint64(0), pool.Total)
	var bal types.BalanceInfo
	require.Equal(t, uint32(0), c.query("/balances/", c.id("alice").Bytes(), &bal))
	require.Equal(t, uint64(1000), bal.Balance)

	// checked against the committed balance, not the finalized one
	check, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 950})})
	require.NoError(t, err)
	require.Equal(t, state.CodeOK, check.Code)

	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(t, err)
	var r types.Researcher
	require.Equal(t, uint32(0), c.query("/researchers/", c.id("alice").Bytes(), &r))
	require.Equal(t, uint64(100), r.Staked)
	require.Equal(t, uint32(0), c.query("/pool/", nil, &pool))
	require.Equal(t, uint64(100), pool.Total)
	require.Equal(t, uint32(0), c.query("/balances/", c.id("alice").Bytes(), &bal))
	require.Equal(t, uint64(900), bal.Balance)
}

func TestProposalFiltering(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	ctx := context.Background()
	good := c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 1})
	bad := []byte(`{"type":2,"tx":{"amount":1}}`)

	pres, err := c.app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{Txs: [][]byte{bad, good}, MaxTxBytes: 1 << 20})
	require.NoError(t, err)
	require.Equal(t, [][]byte{good}, pres.Txs)

	pres, err = c.app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{Txs: [][]byte{good}, MaxTxBytes: int64(len(good) - 1)})
	require.NoError(t, err)
	require.Empty(t, pres.Txs)

	proc, err := c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Txs: [][]byte{good, bad}})
	require.NoError(t, err)
	require.Equal(t, abcitypes.ResponseProcessProposal_REJECT, proc.Status)
}

func TestReviewDeadlineAcrossBlocks(t *testing.T) {
	params := types.DefaultParams()
	params.ReviewWindow = 2
	c := newTestChain(t, params)
	c.block(
		c.signedTx("alice", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 10}),
		c.signedTx("bob", tx.BountyTxTypeRegister, &tx.RegisterTx{Amount: 10}),
		c.signedTx("alice", tx.BountyTxTypeFileReport, &tx.FileReportTx{Reporter: c.id("carol"), Bounty: 5}),
	)
	res := c.block(
		c.signedTx("carol", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{}),
		c.signedTx("alice", tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: 1, Approve: true}),
		c.signedTx("bob", tx.BountyTxTypeAdvanceEpoch, &tx.AdvanceEpochTx{}),
		c.signedTx("bob", tx.BountyTxTypeSubmitReview, &tx.SubmitReviewTx{Report: 1, Approve: true}),
	)
	require.Equal(t, []uint32{state.CodeOK, state.CodeOK, state.CodeOK, state.CodeReviewExpired}, codes(res))
}

func TestQueryErrors(t *testing.T) {
	c := newTestChain(t, types.DefaultParams())
	require.Equal(t, CodeQueryNoRoute, c.query("/accounts/", nil, nil))
	require.Equal(t, CodeQueryBadData, c.query("/researchers/", []byte{1, 2}, nil))
	require.Equal(t, CodeQueryBadData, c.query("/reports/", nil, nil))
	require.Equal(t, CodeQueryBadData, c.query("/reviews/", c.id("alice").Bytes(), nil))
	require.Equal(t, CodeQueryNotFound, c.query("/reports/", EncodeId(1), nil))

	var params types.Params
	require.Equal(t, uint32(0), c.query("/params", nil, &params))
	require.Equal(t, types.DefaultParams(), params)
}

func TestEncodeId(t *testing.T) {
	for _, id := range []uint64{0, 1, 255, 1 << 40, ^uint64(0)} {
		got, ok := DecodeId(EncodeId(id))
		require.True(t, ok)
		require.Equal(t, id, got)
	}
	got, ok := DecodeId([]byte{1, 0})
	require.True(t, ok)
	require.Equal(t, uint64(256), got)
	_, ok = DecodeId(make([]byte, 9))
	require.False(t, ok)
}

func codes(res []*abcitypes.ExecTxResult) []uint32 {
	out := make([]uint32, len(res))
	for i, r := range res {
		out[i] = r.Code
	}
	return out
}
