package chain

import (
	"context"
	"errors"
	"strings"

	"runera-client/internal/api"
)

// Distinct on-chain failure classes; each maps to its own user-facing
// acknowledgment and none of them roll back the backend record.
var (
	ErrWrongNetwork         = errors.New("connected to the wrong network")
	ErrSignatureExpired     = errors.New("stats update signature expired")
	ErrInvalidSignature     = errors.New("stats update signature invalid")
	ErrProfileNotRegistered = errors.New("profile not registered on-chain")
	ErrUserRejected         = errors.New("transaction rejected by user")
)

// Client reads profile state and submits signed stats updates to the
// profile contract.
type Client interface {
	VerifyNetwork(ctx context.Context) error
	HasProfile(ctx context.Context, address string) (bool, error)
	GetProfile(ctx context.Context, address string) (api.ProfileStats, error)
	// UpdateStats dispatches the signed update transaction and waits
	// for it to mine. Returns the transaction hash.
	UpdateStats(ctx context.Context, address string, stats api.ProfileStats, deadline int64, signature string) (string, error)
}

// Classify maps a raw node/wallet error onto the failure taxonomy.
// Revert reasons surface as opaque strings, so matching is by
// substring the way the contract names its errors.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrWrongNetwork),
		errors.Is(err, ErrSignatureExpired),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrProfileNotRegistered),
		errors.Is(err, ErrUserRejected):
		return err
	}

	// A local timeout or cancellation is a transport condition, not a
	// contract revert; it must never read as signature expiry.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline passed") || strings.Contains(msg, "deadline expired") || strings.Contains(msg, "signature expired"):
		return ErrSignatureExpired
	case strings.Contains(msg, "invalid signature") || strings.Contains(msg, "invalid signer") || strings.Contains(msg, "unauthorized signer"):
		return ErrInvalidSignature
	case strings.Contains(msg, "not registered") || strings.Contains(msg, "no profile") || strings.Contains(msg, "profile does not exist"):
		return ErrProfileNotRegistered
	case strings.Contains(msg, "user denied") || strings.Contains(msg, "user rejected"):
		return ErrUserRejected
	}
	return err
}
