package types

type Researcher struct {
	Identity        Identity `json:"identity"`
	Staked          uint64   `json:"staked"`
	Active          bool     `json:"active"`
	RegisteredEpoch uint64   `json:"registered_epoch"`
}

type Report struct {
	Id                  uint64   `json:"id"`
	Reporter            Identity `json:"reporter"`
	RequestedBounty     uint64   `json:"requested_bounty"`
	ReviewCount         uint64   `json:"review_count"`
	ApprovalCount       uint64   `json:"approval_count"`
	PayoutProcessed     bool     `json:"payout_processed"`
	FiledEpoch          uint64   `json:"filed_epoch"`
	ReviewDeadlineEpoch uint64   `json:"review_deadline_epoch"`
}

// Open reports whether the report still accepts reviews at epoch.
func (r *Report) Open(epoch uint64) bool {
	return epoch < r.ReviewDeadlineEpoch
}

type Review struct {
	Researcher Identity `json:"researcher"`
	Report     uint64   `json:"report"`
	Approve    bool     `json:"approve"`
	Submitted  bool     `json:"submitted"`
	Epoch      uint64   `json:"epoch"`
}

// Params are the chain-wide bounds fixed at genesis.
//
// MaxStake bounds Register and MaximumBounty bounds FileReport. Both default
// to the same value; they are kept apart so operators can decouple them.
type Params struct {
	ReviewWindow  uint64 `json:"review_window"`
	ActivePeriod  uint64 `json:"active_period"`
	MaximumBounty uint64 `json:"maximum_bounty"`
	MaxStake      uint64 `json:"max_stake"`
}

const (
	DefaultReviewWindow  = 144
	DefaultActivePeriod  = 1008
	DefaultMaximumBounty = 1000000000

	// MaxReviewWindow keeps filed epoch plus window inside uint64.
	MaxReviewWindow = 1 << 32
)

func DefaultParams() Params {
	return Params{
		ReviewWindow:  DefaultReviewWindow,
		ActivePeriod:  DefaultActivePeriod,
		MaximumBounty: DefaultMaximumBounty,
		MaxStake:      DefaultMaximumBounty,
	}
}
