package handler

import (
	"context"

	"github.com/calehh/bounty-app/state"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

// TxHandler applies one transaction type. Check validates against a
// throwaway copy of st; Process applies to st itself. Operation failures are
// reported through the result code, err is reserved for malformed input the
// handler cannot interpret.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.BountyTx, caller types.Identity) (res *abcitypes.ExecTxResult, err error)
}

func checkResult(err error) *abcitypes.ResponseCheckTx {
	res := &abcitypes.ResponseCheckTx{Code: 0}
	if err != nil {
		res.Code = state.ErrorCode(err)
		res.Log = err.Error()
	}
	return res
}

func execResult(err error, events ...abcitypes.Event) *abcitypes.ExecTxResult {
	res := &abcitypes.ExecTxResult{Code: 0}
	if err != nil {
		res.Code = state.ErrorCode(err)
		res.Log = err.Error()
		return res
	}
	res.Events = events
	return res
}
