package state

import (
	"fmt"

	"github.com/calehh/bounty-app/types"
)

// Ledger moves value between identities. Register uses it to move a stake
// into the pool custodian; any error it returns aborts the registration.
type Ledger interface {
	Transfer(amount uint64, from, to types.Identity) error
}

// balanceBook is the default Ledger: balances kept in the state tree under
// KeyBalance, seeded from the genesis alloc.
type balanceBook struct {
	s *State
}

func (b balanceBook) Transfer(amount uint64, from, to types.Identity) (err error) {
	if amount == 0 {
		return fmt.Errorf("%w: zero amount", ErrInvalidTransfer)
	}
	if from == to {
		return fmt.Errorf("%w: self transfer", ErrInvalidTransfer)
	}
	fromBal, err := b.s.GetBalance(from)
	if err != nil {
		return
	}
	if fromBal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, fromBal, amount)
	}
	toBal, err := b.s.GetBalance(to)
	if err != nil {
		return
	}
	if toBal+amount < toBal {
		return fmt.Errorf("%w: balance overflow", ErrInvalidTransfer)
	}
	err = b.s.setBalance(from, fromBal-amount)
	if err != nil {
		return
	}
	return b.s.setBalance(to, toBal+amount)
}

func (s *State) GetBalance(id types.Identity) (bal uint64, err error) {
	_, err = s.getRecord(fmt.Sprintf(KeyBalance, id.Bytes()), &bal)
	return
}

func (s *State) setBalance(id types.Identity, bal uint64) error {
	return s.putRecord(fmt.Sprintf(KeyBalance, id.Bytes()), bal)
}

// Ledger returns the ledger operations transfer value through.
func (s *State) Ledger() Ledger {
	if s.ledger != nil {
		return s.ledger
	}
	return balanceBook{s: s}
}

// SetLedger replaces the balance book with an external ledger. Passing nil
// restores the balance book.
func (s *State) SetLedger(l Ledger) {
	s.ledger = l
}
