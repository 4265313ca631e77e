package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrRejected: the signing capability refused the request (the wallet
// user declined). Callers degrade, they do not crash.
var ErrRejected = errors.New("signing request rejected")

// Signer is the wallet signing capability: a stable address plus
// EIP-191 personal_sign over an exact message.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, message string) (string, error)
}

// KeySigner signs with a local secp256k1 key, letting the headless
// client authenticate without an interactive wallet.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address string
}

func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, err
	}
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// NewKeySignerFromFile reads a hex-encoded key from disk.
func NewKeySignerFromFile(path string) (*KeySigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(strings.TrimSpace(string(raw)))
}

func (s *KeySigner) Address() string {
	return s.address
}

func (s *KeySigner) SignMessage(_ context.Context, message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), s.key)
	if err != nil {
		return "", err
	}
	// personal_sign convention: recovery id offset by 27.
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

func (s *KeySigner) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}
