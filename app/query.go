package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/calehh/bounty-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	CodeQueryNotFound uint32 = 1
	CodeQueryBadData  uint32 = 2
	CodeQueryNoRoute  uint32 = 404
)

var (
	ErrQueryData = errors.New("malformed query data")
)

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type QuerierFunc func(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)

func (f QuerierFunc) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	return f(ctx, req)
}

func (app *BountyApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = CodeQueryNoRoute
		res.Log = "unknown query path " + req.Path
		return
	}
	res, err = q.Query(ctx, req)
	return
}

// DecodeId reads a big-endian id of at most 8 bytes.
func DecodeId(data []byte) (id uint64, ok bool) {
	if len(data) == 0 || len(data) > 8 {
		return 0, false
	}
	for _, v := range data {
		id <<= 8
		id |= uint64(v)
	}
	return id, true
}

func EncodeId(id uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b
}

func jsonResponse(v any, height uint64) (res *abcitypes.ResponseQuery) {
	res = &abcitypes.ResponseQuery{Height: int64(height)}
	val, err := json.Marshal(v)
	if err != nil {
		res.Code = CodeQueryBadData
		res.Log = err.Error()
		return
	}
	res.Value = val
	return
}

func notFound(height uint64, err error) *abcitypes.ResponseQuery {
	res := &abcitypes.ResponseQuery{Code: CodeQueryNotFound, Height: int64(height), Log: "not found"}
	if err != nil {
		res.Log = err.Error()
	}
	return res
}

func badData() *abcitypes.ResponseQuery {
	return &abcitypes.ResponseQuery{Code: CodeQueryBadData, Log: ErrQueryData.Error()}
}

func (app *BountyApp) queryEpoch(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	h := app.db.Header()
	return jsonResponse(types.EpochInfo{Epoch: h.Epoch, LastAdvancer: h.LastAdvancer}, h.Height), nil
}

func (app *BountyApp) queryParams(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	h := app.db.Header()
	return jsonResponse(h.Params, h.Height), nil
}

func (app *BountyApp) queryPool(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	h := app.db.Header()
	return jsonResponse(types.PoolInfo{
		Total:        h.PoolTotal,
		Custodian:    h.Custodian,
		NextReportId: h.NextReportId,
	}, h.Height), nil
}

func (app *BountyApp) queryResearcher(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != common.AddressLength {
		return badData(), nil
	}
	r, height, err1 := app.db.GetResearcher(common.BytesToAddress(req.Data))
	if r == nil {
		return notFound(height, err1), nil
	}
	return jsonResponse(r, height), nil
}

func (app *BountyApp) queryReport(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	id, ok := DecodeId(req.Data)
	if !ok {
		return badData(), nil
	}
	r, height, err1 := app.db.GetReport(id)
	if r == nil {
		return notFound(height, err1), nil
	}
	return jsonResponse(r, height), nil
}

// queryReview expects the researcher address followed by the report id.
func (app *BountyApp) queryReview(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) <= common.AddressLength {
		return badData(), nil
	}
	id, ok := DecodeId(req.Data[common.AddressLength:])
	if !ok {
		return badData(), nil
	}
	r, height, err1 := app.db.GetReview(common.BytesToAddress(req.Data[:common.AddressLength]), id)
	if r == nil {
		return notFound(height, err1), nil
	}
	return jsonResponse(r, height), nil
}

func (app *BountyApp) queryBalance(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != common.AddressLength {
		return badData(), nil
	}
	addr := common.BytesToAddress(req.Data)
	bal, height, err1 := app.db.GetBalance(addr)
	if err1 != nil {
		return notFound(height, err1), nil
	}
	return jsonResponse(types.BalanceInfo{Address: addr, Balance: bal}, height), nil
}

func (app *BountyApp) queryNonce(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != common.AddressLength {
		return badData(), nil
	}
	addr := common.BytesToAddress(req.Data)
	nonce, height, err1 := app.db.GetNonce(addr)
	if err1 != nil {
		return notFound(height, err1), nil
	}
	return jsonResponse(types.NonceInfo{Address: addr, Nonce: nonce}, height), nil
}
