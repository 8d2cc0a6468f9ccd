package types

import (
	"encoding/json"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	idA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	idB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestEventsRoundTrip(t *testing.T) {
	adv := &EventAdvanceEpoch{Caller: idA, Epoch: 7}
	require.Equal(t, adv, DecodeEventAdvanceEpoch(EncodeEventAdvanceEpoch(adv)))

	reg := &EventRegister{Researcher: idA, Amount: 100, Epoch: 3, PoolTotal: 250}
	require.Equal(t, reg, DecodeEventRegister(EncodeEventRegister(reg)))

	fr := &EventFileReport{Report: 1, Filer: idA, Reporter: idB, RequestedBounty: 50, FiledEpoch: 2, ReviewDeadlineEpoch: 146}
	require.Equal(t, fr, DecodeEventFileReport(EncodeEventFileReport(fr)))

	sr := &EventSubmitReview{Reviewer: idB, Report: 1, Approve: true, ReviewCount: 2, ApprovalCount: 1, Epoch: 4}
	require.Equal(t, sr, DecodeEventSubmitReview(EncodeEventSubmitReview(sr)))

	tr := &EventTransfer{From: idA, To: idB, Amount: 9}
	require.Equal(t, tr, DecodeEventTransfer(EncodeEventTransfer(tr)))
}

func TestDecodeEventMalformed(t *testing.T) {
	ev := abci.Event{
		Type:       EventAdvanceEpochType,
		Attributes: []abci.EventAttribute{{Key: "epoch", Value: "x"}},
	}
	require.Nil(t, DecodeEventAdvanceEpoch(ev))
}

func TestAppStateValidate(t *testing.T) {
	st := DefaultAppState(idA, idB)
	require.NoError(t, st.Validate())
	require.Equal(t, DefaultParams(), st.Params)

	st.Custodian = BurnIdentity
	require.ErrorIs(t, st.Validate(), ErrGenesisCustodian)

	st = DefaultAppState(idA, idB)
	st.Params.MaxStake = 0
	require.ErrorIs(t, st.Validate(), ErrGenesisParams)

	st = DefaultAppState(idA, idB)
	st.Alloc = []GenesisAlloc{{Address: idA, Balance: 1}, {Address: idA, Balance: 2}}
	require.ErrorIs(t, st.Validate(), ErrGenesisAlloc)

	st = DefaultAppState(idA, idB)
	st.Params.ReviewWindow = ^uint64(0)
	require.ErrorIs(t, st.Validate(), ErrGenesisWindow)
	st.Params.ReviewWindow = MaxReviewWindow
	require.NoError(t, st.Validate())
}

func TestParseAppState(t *testing.T) {
	_, err := ParseAppState(nil)
	require.Error(t, err)

	st := DefaultAppState(idA, DefaultCustodian)
	st.Alloc = append(st.Alloc, GenesisAlloc{Address: idA, Balance: 1000})
	raw, err := json.Marshal(st)
	require.NoError(t, err)
	parsed, err := ParseAppState(raw)
	require.NoError(t, err)
	require.Equal(t, st, parsed)

	_, err = ParseAppState([]byte(`{"custodian":"0x00000000000000000000000000000000000000b2","params":{"maximum_bounty":0,"max_stake":1}}`))
	require.ErrorIs(t, err, ErrGenesisParams)
}

func TestGenesisDocValidate(t *testing.T) {
	doc := &GenesisDoc{}
	require.Error(t, doc.ValidateAndComplete())

	doc = &GenesisDoc{ChainID: "bounty-1"}
	require.NoError(t, doc.ValidateAndComplete())
	require.Equal(t, int64(1), doc.InitialHeight)
	require.False(t, doc.GenesisTime.IsZero())

	doc.AppState = json.RawMessage(`{"custodian":"0x0000000000000000000000000000000000000000","params":{"maximum_bounty":1,"max_stake":1}}`)
	require.ErrorIs(t, doc.ValidateAndComplete(), ErrGenesisCustodian)
}

func TestReportOpen(t *testing.T) {
	r := &Report{FiledEpoch: 2, ReviewDeadlineEpoch: 5}
	require.True(t, r.Open(4))
	require.False(t, r.Open(5))
	require.False(t, r.Open(6))
}

func TestIdentity(t *testing.T) {
	id, ok := IdentityFromHex(idA.Hex())
	require.True(t, ok)
	require.Equal(t, idA, id)
	_, ok = IdentityFromHex("0x1234")
	require.False(t, ok)
	require.NotEqual(t, BurnIdentity, DefaultCustodian)
}
