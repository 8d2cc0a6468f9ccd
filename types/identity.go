package types

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity is the only authentication primitive of the chain: the address of
// the key that signed a transaction. Nothing but equality is relied upon.
type Identity = common.Address

// BurnIdentity is the designated null identity. Reports may not credit it.
var BurnIdentity = Identity{}

// DefaultCustodian holds staked funds when genesis names no custodian. No
// key is known for it.
var DefaultCustodian = common.BytesToAddress(crypto.Keccak256([]byte("bounty/custodian")))

func IdentityFromPubKey(pk []byte) Identity {
	return common.BytesToAddress(ed25519.PubKey(pk).Address())
}

func IdentityFromHex(s string) (id Identity, ok bool) {
	if !common.IsHexAddress(s) {
		return
	}
	return common.HexToAddress(s), true
}
