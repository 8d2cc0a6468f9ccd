package app

import (
	"context"
	"errors"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrNoBlockState        = errors.New("commit without finalized block")
)

func (app *BountyApp) getState() (st *state.State) {
	st = app.db.NewState()
	app.st = st
	return
}

// parseTx decodes an envelope and authenticates it against st.
func (app *BountyApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.BountyTx, caller types.Identity, err error) {
	btx, err = tx.UnmarshalBountyTx(txDat)
	if err != nil {
		return
	}
	caller, err = st.Verify(btx, allowNonceGap)
	return
}

func (app *BountyApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	st := app.db.State()
	btx, caller, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("parse tx fail", "err", err)
		res.Code = state.ErrorCode(err)
		res.Log = err.Error()
		err = nil
		return
	}
	app.logger.Debug("check tx", "type", btx.Type.String(), "caller", caller.Hex(), "nonce", btx.Nonce)
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		app.logger.Error("unsupported tx", "type", btx.Type)
		res.Code = state.CodeTxInvalid
		res.Log = tx.ErrUnsupportedTxType.Error()
		return
	}
	res, err = h.Check(ctx, st, btx, caller)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{Code: state.CodeTxInvalid, Log: err.Error()}
		err = nil
	}
	return
}

// PrepareProposal keeps the mempool order and drops envelopes that cannot be
// decoded or authenticated.
func (app *BountyApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	app.logger.Debug("PrepareProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	st := app.db.State()
	var size int64
	txs := make([][]byte, 0, len(proposal.Txs))
	for _, stx := range proposal.Txs {
		if proposal.MaxTxBytes > 0 && size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		_, _, err := app.parseTx(st, stx, true)
		if err != nil {
			app.logger.Info("drop tx from proposal", "err", err)
			continue
		}
		size += int64(len(stx))
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

func (app *BountyApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	app.logger.Debug("ProcessProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st := app.db.State()
	for _, stx := range proposal.Txs {
		_, _, err := app.parseTx(st, stx, true)
		if err != nil {
			app.logger.Info("proposal rejected", "height", proposal.Height, "err", err)
			return res, nil
		}
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

// deliverTx applies one transaction to st. The signer's nonce is consumed
// on st whenever the envelope authenticates; the operation itself runs on a
// branch of st that is merged back only when it succeeds.
func (app *BountyApp) deliverTx(ctx context.Context, st *state.State, stx []byte) (next *state.State, res *abcitypes.ExecTxResult) {
	btx, caller, err := app.parseTx(st, stx, false)
	if err != nil {
		app.logger.Info("deliver tx, parse fail", "err", err)
		return st, &abcitypes.ExecTxResult{Code: state.ErrorCode(err), Log: err.Error()}
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		app.logger.Error("deliver tx, no handler", "type", btx.Type)
		return st, &abcitypes.ExecTxResult{Code: state.CodeTxInvalid, Log: tx.ErrUnsupportedTxType.Error()}
	}
	err = st.IncrNonce(caller)
	if err != nil {
		app.logger.Error("deliver tx, nonce update fail", "err", err)
		return st, &abcitypes.ExecTxResult{Code: state.CodeTxInvalid, Log: err.Error()}
	}
	next = st.Branch()
	res, err = h.Process(ctx, next, btx, caller)
	if err != nil {
		app.logger.Error("deliver tx, process fail", "type", btx.Type.String(), "err", err)
		return st, &abcitypes.ExecTxResult{Code: state.CodeTxInvalid, Log: err.Error()}
	}
	if res == nil {
		app.logger.Error("deliver tx, nil result", "type", btx.Type.String())
		return st, &abcitypes.ExecTxResult{Code: state.CodeTxInvalid, Log: ErrUnexpectedTxProcess.Error()}
	}
	if res.Code != state.CodeOK {
		return st, res
	}
	return next.Merge(), res
}

func (app *BountyApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	app.lastBlk.Set(req)
	st := app.getState()
	res := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		st, res[i] = app.deliverTx(ctx, st, stx)
	}
	app.st = st
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *BountyApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrNoBlockState
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.logger.Info("Commit", "height", app.st.Header().Height, "epoch", app.st.CurrentEpoch())
	app.st = nil
	return &abcitypes.ResponseCommit{}, nil
}
