package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type TransferTxHandler struct {
	logger cmtlog.Logger
}

func NewTransferTxHandler(logger cmtlog.Logger) (h *TransferTxHandler) {
	logger = logger.With("module", "transferTx")
	h = &TransferTxHandler{
		logger: logger,
	}
	return
}

func (h *TransferTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error) {
	ttx, ok := btx.Tx.(*tx.TransferTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	_, err1 := st.Branch().Transfer(caller, ttx.To, ttx.Amount)
	if err1 != nil {
		h.logger.Info("CheckTx transfer fail", "from", caller.Hex(), "to", ttx.To.Hex(), "err", err1)
	}
	res = checkResult(err1)
	return
}

func (h *TransferTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error) {
	ttx, ok := btx.Tx.(*tx.TransferTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	event, err1 := st.Transfer(caller, ttx.To, ttx.Amount)
	if err1 != nil {
		h.logger.Info("transfer fail", "from", caller.Hex(), "to", ttx.To.Hex(), "err", err1)
		return execResult(err1), nil
	}
	return execResult(nil, types.EncodeEventTransfer(event)), nil
}
