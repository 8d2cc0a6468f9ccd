package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type FileReportTxHandler struct {
	logger cmtlog.Logger
}

func NewFileReportTxHandler(logger cmtlog.Logger) (h *FileReportTxHandler) {
	logger = logger.With("module", "fileReportTx")
	h = &FileReportTxHandler{
		logger: logger,
	}
	return
}

func (h *FileReportTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error) {
	ftx, ok := btx.Tx.(*tx.FileReportTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	_, err1 := st.Branch().FileReport(caller, ftx.Reporter, ftx.Bounty)
	if err1 != nil {
		h.logger.Info("CheckTx file report fail", "caller", caller.Hex(), "err", err1)
	}
	res = checkResult(err1)
	return
}

func (h *FileReportTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error) {
	ftx, ok := btx.Tx.(*tx.FileReportTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	event, err1 := st.FileReport(caller, ftx.Reporter, ftx.Bounty)
	if err1 != nil {
		h.logger.Info("file report fail", "caller", caller.Hex(), "err", err1)
		return execResult(err1), nil
	}
	h.logger.Info("report filed", "report", event.Report, "deadline", event.ReviewDeadlineEpoch)
	return execResult(nil, types.EncodeEventFileReport(event)), nil
}
