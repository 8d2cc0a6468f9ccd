package types

// Query payloads returned by the application's Query paths.

type EpochInfo struct {
	Epoch        uint64   `json:"epoch"`
	LastAdvancer Identity `json:"last_advancer"`
}

type PoolInfo struct {
	Total        uint64   `json:"total"`
	Custodian    Identity `json:"custodian"`
	NextReportId uint64   `json:"next_report_id"`
}

type BalanceInfo struct {
	Address Identity `json:"address"`
	Balance uint64   `json:"balance"`
}

type NonceInfo struct {
	Address Identity `json:"address"`
	Nonce   uint64   `json:"nonce"`
}
