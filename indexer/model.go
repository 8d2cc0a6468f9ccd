package indexer

// relational models, sqlite or postgres

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Researcher struct {
	Address         string `gorm:"primaryKey;size:42" json:"address"`
	Staked          uint64 `json:"staked"`
	Active          bool   `json:"active"`
	RegisteredEpoch uint64 `json:"registered_epoch"`
	Height          uint64 `json:"height"`
}

type Report struct {
	Id                  uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Filer               string `gorm:"index;size:42" json:"filer"`
	Reporter            string `gorm:"index;size:42" json:"reporter"`
	RequestedBounty     uint64 `json:"requested_bounty"`
	ReviewCount         uint64 `json:"review_count"`
	ApprovalCount       uint64 `json:"approval_count"`
	FiledEpoch          uint64 `json:"filed_epoch"`
	ReviewDeadlineEpoch uint64 `json:"review_deadline_epoch"`
	Height              uint64 `json:"height"`
}

// Review mirrors the chain's one-review-per-researcher-and-report rule with
// a unique index.
type Review struct {
	Id         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Researcher string `gorm:"size:42;uniqueIndex:idx_review_researcher_report" json:"researcher"`
	Report     uint64 `gorm:"uniqueIndex:idx_review_researcher_report" json:"report"`
	Approve    bool   `json:"approve"`
	Epoch      uint64 `json:"epoch"`
	Height     uint64 `json:"height"`
}

type EpochAdvance struct {
	Epoch  uint64 `gorm:"primaryKey;autoIncrement:false" json:"epoch"`
	Caller string `gorm:"size:42" json:"caller"`
	Height uint64 `json:"height"`
}

type Transfer struct {
	Id        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Sender    string `gorm:"index;size:42" json:"sender"`
	Recipient string `gorm:"index;size:42" json:"recipient"`
	Amount    uint64 `json:"amount"`
	Height    uint64 `json:"height"`
}

func allModels() []any {
	return []any{&Height{}, &Researcher{}, &Report{}, &Review{}, &EpochAdvance{}, &Transfer{}}
}
