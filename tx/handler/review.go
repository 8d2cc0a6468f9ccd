package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type SubmitReviewTxHandler struct {
	logger cmtlog.Logger
}

func NewSubmitReviewTxHandler(logger cmtlog.Logger) (h *SubmitReviewTxHandler) {
	logger = logger.With("module", "submitReviewTx")
	h = &SubmitReviewTxHandler{
		logger: logger,
	}
	return
}

func (h *SubmitReviewTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error) {
	rtx, ok := btx.Tx.(*tx.SubmitReviewTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	_, err1 := st.Branch().SubmitReview(caller, rtx.Report, rtx.Approve)
	if err1 != nil {
		h.logger.Info("CheckTx submit review fail", "caller", caller.Hex(), "report", rtx.Report, "err", err1)
	}
	res = checkResult(err1)
	return
}

func (h *SubmitReviewTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error) {
	rtx, ok := btx.Tx.(*tx.SubmitReviewTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	event, err1 := st.SubmitReview(caller, rtx.Report, rtx.Approve)
	if err1 != nil {
		h.logger.Info("submit review fail", "caller", caller.Hex(), "report", rtx.Report, "err", err1)
		return execResult(err1), nil
	}
	return execResult(nil, types.EncodeEventSubmitReview(event)), nil
}
