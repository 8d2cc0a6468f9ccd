package crypto

import (
	"fmt"
	"os"

	"github.com/calehh/bounty-app/types"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// PV signs bounty transactions with a node's validator key.
type PV struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

func NewPV(priv crypto.PrivKey) *PV {
	return &PV{
		privateKey: priv,
		publicKey:  priv.PubKey(),
	}
}

// GenPV creates a PV with a fresh ed25519 key.
func GenPV() *PV {
	return NewPV(ed25519.GenPrivKey())
}

func LoadFilePV(keyFilePath string) (*PV, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading PrivValidator key from %v: %w", keyFilePath, err)
	}
	if _, ok := pvKey.PrivKey.(ed25519.PrivKey); !ok {
		return nil, fmt.Errorf("key %v is %s, want ed25519", keyFilePath, pvKey.PrivKey.Type())
	}

	return &PV{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PubKey,
	}, nil
}

func (k *PV) PubKey() []byte {
	return k.publicKey.Bytes()
}

func (k *PV) Identity() types.Identity {
	return types.IdentityFromPubKey(k.publicKey.Bytes())
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}
