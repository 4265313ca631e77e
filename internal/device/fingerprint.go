package device

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"

	"github.com/google/uuid"
)

const installIDKey = "runera:install_id"

// KV is the slice of the device store the fingerprint needs.
type KV interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
}

var hostnameFn = os.Hostname

// Fingerprint returns a stable device hash: sha256 over hostname,
// platform and a persisted per-install ID. The ID is minted once and
// kept in the device store so the hash survives restarts.
func Fingerprint(ctx context.Context, kv KV) (string, error) {
	installID, err := kv.GetValue(ctx, installIDKey)
	if err != nil {
		return "", err
	}
	if installID == "" {
		installID = uuid.NewString()
		if err := kv.SetValue(ctx, installIDKey, installID); err != nil {
			return "", err
		}
	}

	host, _ := hostnameFn()
	sum := sha256.Sum256([]byte(host + "|" + runtime.GOOS + "|" + installID))
	return hex.EncodeToString(sum[:]), nil
}
