package state

import (
	"testing"

	"github.com/calehh/bounty-app/crypto"
	"github.com/calehh/bounty-app/tx"
	"github.com/calehh/bounty-app/types"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	st := newTestState(t, types.DefaultParams())
	pv := crypto.GenPV()

	btx := tx.New(tx.BountyTxTypeRegister, 0, &tx.RegisterTx{Amount: 5})
	require.NoError(t, btx.Sign("test-chain", pv))
	caller, err := st.Verify(btx, false)
	require.NoError(t, err)
	require.Equal(t, pv.Identity(), caller)

	require.NoError(t, st.IncrNonce(caller))
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)

	ahead := tx.New(tx.BountyTxTypeRegister, 4, &tx.RegisterTx{Amount: 5})
	require.NoError(t, ahead.Sign("test-chain", pv))
	_, err = st.Verify(ahead, false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)
	_, err = st.Verify(ahead, true)
	require.NoError(t, err)

	other := tx.New(tx.BountyTxTypeRegister, 1, &tx.RegisterTx{Amount: 5})
	require.NoError(t, other.Sign("other-chain", pv))
	_, err = st.Verify(other, false)
	require.ErrorIs(t, err, ErrTxSigInvalid)

	tampered := tx.New(tx.BountyTxTypeRegister, 1, &tx.RegisterTx{Amount: 5})
	require.NoError(t, tampered.Sign("test-chain", pv))
	tampered.Tx = &tx.RegisterTx{Amount: 6}
	_, err = st.Verify(tampered, false)
	require.ErrorIs(t, err, ErrTxSigInvalid)

	noKey := tx.New(tx.BountyTxTypeRegister, 1, &tx.RegisterTx{Amount: 5})
	_, err = st.Verify(noKey, false)
	require.ErrorIs(t, err, tx.ErrInvalidPubKey)
}
