package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe51296170827936ea5cce4b76994b0f"

func TestKeySignerAddress(t *testing.T) {
	s, err := NewKeySigner(testKeyHex)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if !strings.HasPrefix(s.Address(), "0x") || len(s.Address()) != 42 {
		t.Fatalf("unexpected address: %q", s.Address())
	}

	prefixed, err := NewKeySigner("0x" + testKeyHex)
	if err != nil {
		t.Fatalf("new signer with 0x prefix: %v", err)
	}
	if prefixed.Address() != s.Address() {
		t.Fatalf("prefix changed derived address")
	}
}

func TestKeySignerInvalidKey(t *testing.T) {
	if _, err := NewKeySigner("not-hex"); err == nil {
		t.Fatalf("expected error for invalid key")
	}
}

func TestSignMessageRecoversSigner(t *testing.T) {
	s, err := NewKeySigner(testKeyHex)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	message := "Sign in to Runera: nonce-1"
	sigHex, err := s.SignMessage(context.Background(), message)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("unexpected signature length: %d", len(sig))
	}
	sig[64] -= 27

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if crypto.PubkeyToAddress(*pub).Hex() != s.Address() {
		t.Fatalf("recovered address does not match signer")
	}
}
