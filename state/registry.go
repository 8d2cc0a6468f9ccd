package state

import (
	"github.com/calehh/bounty-app/types"
)

// Register stakes amount from caller into the pool custodian and writes a
// fresh researcher record. A second registration overwrites the first one;
// stakes do not accumulate on the record, only in the pool total.
func (s *State) Register(caller types.Identity, amount uint64) (event *types.EventRegister, err error) {
	s.logger.Debug("apply register", "caller", caller.Hex(), "amount", amount, "epoch", s.header.Epoch)
	if amount == 0 || amount > s.header.Params.MaxStake {
		err = ErrInput
		return
	}
	err = requireStake(amount)
	if err != nil {
		return
	}
	err = s.Ledger().Transfer(amount, caller, s.header.Custodian)
	if err != nil {
		return
	}
	r := &types.Researcher{
		Identity:        caller,
		Staked:          amount,
		Active:          true,
		RegisteredEpoch: s.header.Epoch,
	}
	err = s.putResearcher(r)
	if err != nil {
		return
	}
	s.header.PoolTotal += amount
	event = &types.EventRegister{
		Researcher: caller,
		Amount:     amount,
		Epoch:      r.RegisteredEpoch,
		PoolTotal:  s.header.PoolTotal,
	}
	return
}

// requireStake runs after the bound check in Register, which already rejects
// zero, so through Register it never fires.
func requireStake(amount uint64) error {
	if amount == 0 {
		return ErrStakeRequired
	}
	return nil
}

// Transfer moves balance between two identities through the ledger.
func (s *State) Transfer(from, to types.Identity, amount uint64) (event *types.EventTransfer, err error) {
	s.logger.Debug("apply transfer", "from", from.Hex(), "to", to.Hex(), "amount", amount)
	err = s.Ledger().Transfer(amount, from, to)
	if err != nil {
		return
	}
	event = &types.EventTransfer{
		From:   from,
		To:     to,
		Amount: amount,
	}
	return
}
