package tx

import (
	"encoding/json"
	"testing"

	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type testSigner struct {
	priv ed25519.PrivKey
}

func (s testSigner) Sign(msg []byte) ([]byte, error) {
	return s.priv.Sign(msg)
}

func (s testSigner) PubKey() []byte {
	return s.priv.PubKey().Bytes()
}

func TestSignAndUnmarshal(t *testing.T) {
	signer := testSigner{priv: ed25519.GenPrivKey()}
	reporter := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	cases := []struct {
		tp      BountyTxType
		payload any
	}{
		{BountyTxTypeAdvanceEpoch, &AdvanceEpochTx{}},
		{BountyTxTypeRegister, &RegisterTx{Amount: 100}},
		{BountyTxTypeFileReport, &FileReportTx{Reporter: reporter, Bounty: 50}},
		{BountyTxTypeSubmitReview, &SubmitReviewTx{Report: 1, Approve: true}},
		{BountyTxTypeTransfer, &TransferTx{To: reporter, Amount: 3}},
	}
	for _, c := range cases {
		t.Run(c.tp.String(), func(t *testing.T) {
			btx := New(c.tp, 7, c.payload)
			require.NoError(t, btx.Sign("chain", signer))
			require.Len(t, btx.Sig, 1)

			dat, err := MarshalBountyTx(btx)
			require.NoError(t, err)
			got, err := UnmarshalBountyTx(dat)
			require.NoError(t, err)
			require.Equal(t, c.tp, got.Type)
			require.Equal(t, uint64(7), got.Nonce)
			require.Equal(t, c.payload, got.Tx)

			caller, err := got.Caller()
			require.NoError(t, err)
			require.Equal(t, types.IdentityFromPubKey(signer.PubKey()), caller)

			msg, err := got.SigData([]byte("chain"))
			require.NoError(t, err)
			require.True(t, ed25519.PubKey(got.PubKey).VerifySignature(msg, got.Sig[0]))
		})
	}
}

func TestUnmarshalRejects(t *testing.T) {
	_, err := UnmarshalBountyTx([]byte(`{"type":9}`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalBountyTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	dat, err := json.Marshal(&BountyTx{Version: 1, Type: BountyTxTypeRegister, Tx: &RegisterTx{Amount: 1}})
	require.NoError(t, err)
	_, err = UnmarshalBountyTx(dat)
	require.ErrorIs(t, err, ErrUnsupportedTxVersion)
}

func TestCallerRequiresPubKey(t *testing.T) {
	btx := New(BountyTxTypeRegister, 0, &RegisterTx{Amount: 1})
	_, err := btx.Caller()
	require.ErrorIs(t, err, ErrInvalidPubKey)
}
