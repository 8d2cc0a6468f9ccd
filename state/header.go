package state

import (
	"github.com/calehh/bounty-app/types"
	"github.com/ethereum/go-ethereum/common"
)

// StateHeader is the singleton record stored under KeyState. It carries the
// epoch clock, the shared counters and the genesis parameters.
type StateHeader struct {
	ChainId      string
	Height       uint64
	Epoch        uint64
	LastAdvancer common.Address
	NextReportId uint64
	PoolTotal    uint64
	Custodian    common.Address
	Params       types.Params
	Hash         []byte
	RootHash     []byte
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	if h.Hash != nil {
		n.Hash = make([]byte, len(h.Hash))
		copy(n.Hash, h.Hash)
	}
	if h.RootHash != nil {
		n.RootHash = make([]byte, len(h.RootHash))
		copy(n.RootHash, h.RootHash)
	}
	return &n
}

func (h *StateHeader) GetHash() []byte {
	if h == nil {
		return nil
	}
	return h.Hash
}
