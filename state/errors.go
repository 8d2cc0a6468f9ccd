package state

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

// Bounty errors. Each one is terminal for the transaction that raised it and
// leaves state untouched.
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrStakeRequired   = errors.New("stake required")
	ErrBountyInvalid   = errors.New("bounty invalid")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrReviewExpired   = errors.New("review expired")
	ErrCooldownActive  = errors.New("cooldown active")
	ErrInput           = errors.New("invalid input")
	ErrMinimumNotMet   = errors.New("minimum not met")
	ErrBountyUnknown   = errors.New("bounty unknown")
)

// Ledger errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransfer     = errors.New("invalid transfer")
)

// Envelope errors.
var (
	ErrTxNonceInvalid       = errors.New("nonce invalid")
	ErrTxSigInvalid         = errors.New("signature invalid")
	ErrStateHeightUnmatched = errors.New("state height unmatched")
)

const (
	CodeOK                  uint32 = 0
	CodeTxInvalid           uint32 = 1
	CodeNotAuthorized       uint32 = 100
	CodeStakeRequired       uint32 = 101
	CodeBountyInvalid       uint32 = 102
	CodeDuplicateReview     uint32 = 103
	CodeReviewExpired       uint32 = 104
	CodeCooldownActive      uint32 = 105
	CodeInput               uint32 = 106
	CodeMinimumNotMet       uint32 = 107
	CodeBountyUnknown       uint32 = 108
	CodeInsufficientBalance uint32 = 110
	CodeInvalidTransfer     uint32 = 111
)

var errCodes = []struct {
	err  error
	code uint32
}{
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrStakeRequired, CodeStakeRequired},
	{ErrBountyInvalid, CodeBountyInvalid},
	{ErrDuplicateReview, CodeDuplicateReview},
	{ErrReviewExpired, CodeReviewExpired},
	{ErrCooldownActive, CodeCooldownActive},
	{ErrInput, CodeInput},
	{ErrMinimumNotMet, CodeMinimumNotMet},
	{ErrBountyUnknown, CodeBountyUnknown},
	{ErrInsufficientBalance, CodeInsufficientBalance},
	{ErrInvalidTransfer, CodeInvalidTransfer},
}

// ErrorCode maps an error to the result code reported in CheckTx and
// FinalizeBlock. Unknown errors map to CodeTxInvalid.
func ErrorCode(err error) uint32 {
	if err == nil {
		return CodeOK
	}
	for _, e := range errCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeTxInvalid
}
