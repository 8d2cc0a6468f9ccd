package tx

import (
	"encoding/json"
	"fmt"

	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// BountyTx is the signed envelope of every operation. The signer of PubKey
// is the caller of the operation.
type BountyTx struct {
	Version uint8        `json:"version"`
	Type    BountyTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	PubKey  []byte       `json:"pubKey"`
	Tx      any          `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

type AdvanceEpochTx struct{}

type RegisterTx struct {
	Amount uint64 `json:"amount"`
}

type FileReportTx struct {
	Reporter types.Identity `json:"reporter"`
	Bounty   uint64         `json:"bounty"`
}

type SubmitReviewTx struct {
	Report  uint64 `json:"report"`
	Approve bool   `json:"approve"`
}

type TransferTx struct {
	To     types.Identity `json:"to"`
	Amount uint64         `json:"amount"`
}

type bountyTxTmpl[Tx any] struct {
	Version uint8        `json:"version"`
	Type    BountyTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	PubKey  []byte       `json:"pubKey"`
	Tx      Tx           `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

// Signer produces a signature over raw bytes. crypto.PV satisfies it.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	PubKey() []byte
}

func New(tp BountyTxType, nonce uint64, payload any) *BountyTx {
	return &BountyTx{
		Version: BountyTxVersion0,
		Type:    tp,
		Nonce:   nonce,
		Tx:      payload,
	}
}

func (tx *BountyTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

// Sign sets the signer public key and signs the envelope for chainId.
func (tx *BountyTx) Sign(chainId string, signer Signer) (err error) {
	tx.PubKey = signer.PubKey()
	dat, err := tx.SigData([]byte(chainId))
	if err != nil {
		return
	}
	sig, err := signer.Sign(dat)
	if err != nil {
		return
	}
	tx.Sig = [][]byte{sig}
	return
}

func (tx *BountyTx) Caller() (id types.Identity, err error) {
	if len(tx.PubKey) != ed25519.PubKeySize {
		err = fmt.Errorf("%w: length %d", ErrInvalidPubKey, len(tx.PubKey))
		return
	}
	return types.IdentityFromPubKey(tx.PubKey), nil
}

func parseBountyTxType(dat []byte) BountyTxType {
	var tx struct {
		Type BountyTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return BountyTxTypeUnknown
	}
	return tx.Type
}

func unmarshalBountyTx[Tx any](dat []byte) (btx *BountyTx, err error) {
	var txt bountyTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != BountyTxVersion0 {
		err = ErrUnsupportedTxVersion
		return
	}
	btx = new(BountyTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.PubKey = txt.PubKey
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalBountyTx(dat []byte) (btx *BountyTx, err error) {
	tp := parseBountyTxType(dat)
	switch tp {
	case BountyTxTypeAdvanceEpoch:
		return unmarshalBountyTx[AdvanceEpochTx](dat)
	case BountyTxTypeRegister:
		return unmarshalBountyTx[RegisterTx](dat)
	case BountyTxTypeFileReport:
		return unmarshalBountyTx[FileReportTx](dat)
	case BountyTxTypeSubmitReview:
		return unmarshalBountyTx[SubmitReviewTx](dat)
	case BountyTxTypeTransfer:
		return unmarshalBountyTx[TransferTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalBountyTx(btx *BountyTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
