package tx

import (
	"errors"
)

type BountyTxType uint8

const (
	BountyTxTypeUnknown      BountyTxType = 0
	BountyTxTypeAdvanceEpoch BountyTxType = 1
	BountyTxTypeRegister     BountyTxType = 2
	BountyTxTypeFileReport   BountyTxType = 3
	BountyTxTypeSubmitReview BountyTxType = 4
	BountyTxTypeTransfer     BountyTxType = 5
)

func (t BountyTxType) String() string {
	switch t {
	case BountyTxTypeAdvanceEpoch:
		return "advance_epoch"
	case BountyTxTypeRegister:
		return "register"
	case BountyTxTypeFileReport:
		return "file_report"
	case BountyTxTypeSubmitReview:
		return "submit_review"
	case BountyTxTypeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

const (
	BountyTxVersion0 uint8 = 0
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrInvalidPubKey        = errors.New("invalid public key")
)
