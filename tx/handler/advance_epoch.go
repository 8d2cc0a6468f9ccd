package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type AdvanceEpochTxHandler struct {
	logger cmtlog.Logger
}

func NewAdvanceEpochTxHandler(logger cmtlog.Logger) (h *AdvanceEpochTxHandler) {
	logger = logger.With("module", "advanceEpochTx")
	h = &AdvanceEpochTxHandler{
		logger: logger,
	}
	return
}

func (h *AdvanceEpochTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error) {
	if _, ok := btx.Tx.(*tx.AdvanceEpochTx); !ok {
		return nil, tx.ErrInvalidTx
	}
	_, err1 := st.Branch().AdvanceEpoch(caller)
	if err1 != nil {
		h.logger.Info("CheckTx advance epoch fail", "caller", caller.Hex(), "err", err1)
	}
	res = checkResult(err1)
	return
}

func (h *AdvanceEpochTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := btx.Tx.(*tx.AdvanceEpochTx); !ok {
		return nil, tx.ErrInvalidTx
	}
	event, err1 := st.AdvanceEpoch(caller)
	if err1 != nil {
		h.logger.Info("advance epoch fail", "caller", caller.Hex(), "err", err1)
		return execResult(err1), nil
	}
	h.logger.Info("epoch advanced", "caller", caller.Hex(), "epoch", event.Epoch)
	return execResult(nil, types.EncodeEventAdvanceEpoch(event)), nil
}
