package state

import "github.com/calehh/bounty-app/types"

// AdvanceEpoch moves the clock forward by one. The identity that performed
// the previous advance may not perform the next one.
func (s *State) AdvanceEpoch(caller types.Identity) (event *types.EventAdvanceEpoch, err error) {
	s.logger.Debug("apply advance epoch", "caller", caller.Hex(), "epoch", s.header.Epoch, "height", s.header.Height)
	if caller == s.header.LastAdvancer {
		err = ErrCooldownActive
		return
	}
	s.header.Epoch += 1
	s.header.LastAdvancer = caller
	event = &types.EventAdvanceEpoch{
		Caller: caller,
		Epoch:  s.header.Epoch,
	}
	return
}

func (s *State) CurrentEpoch() uint64 {
	return s.header.Epoch
}

func (s *State) LastAdvancer() types.Identity {
	return s.header.LastAdvancer
}
