package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type RegisterTxHandler struct {
	logger cmtlog.Logger
}

func NewRegisterTxHandler(logger cmtlog.Logger) (h *RegisterTxHandler) {
	logger = logger.With("module", "registerTx")
	h = &RegisterTxHandler{
		logger: logger,
	}
	return
}

func (h *RegisterTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error) {
	rtx, ok := btx.Tx.(*tx.RegisterTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	_, err1 := st.Branch().Register(caller, rtx.Amount)
	if err1 != nil {
		h.logger.Info("CheckTx register fail", "caller", caller.Hex(), "amount", rtx.Amount, "err", err1)
	}
	res = checkResult(err1)
	return
}

func (h *RegisterTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error) {
	rtx, ok := btx.Tx.(*tx.RegisterTx)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	event, err1 := st.Register(caller, rtx.Amount)
	if err1 != nil {
		h.logger.Info("register fail", "caller", caller.Hex(), "amount", rtx.Amount, "err", err1)
		return execResult(err1), nil
	}
	return execResult(nil, types.EncodeEventRegister(event)), nil
}
