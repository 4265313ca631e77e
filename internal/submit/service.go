package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"runera-client/internal/api"
	"runera-client/internal/chain"
	"runera-client/internal/geo"
	"runera-client/internal/ledger"
	"runera-client/internal/record"

	"github.com/google/uuid"
)

// ErrInvalidRun rejects a run before any network call is made.
var ErrInvalidRun = errors.New("run has no duration and no distance")

const defaultTitle = "Morning Run"

var nowFn = time.Now

// Backend is the slice of the API client the protocol uses.
type Backend interface {
	SubmitRun(ctx context.Context, token string, req api.RunSubmitRequest) (api.RunSubmitResponse, error)
}

// Authenticator supplies the session credential and wallet identity.
type Authenticator interface {
	EnsureToken(ctx context.Context) (string, error)
	WalletAddress() string
}

// Outcome is the single explicit acknowledgment every submission ends
// in: verified with XP, recorded-locally with a note, or an explicit
// rejection reason. Silent failure is not an outcome.
type Outcome struct {
	RunID    string                `json:"run_id,omitempty"`
	Status   string                `json:"status"`
	XPEarned int64                 `json:"xp_earned"`
	TxHash   string                `json:"tx_hash,omitempty"`
	Reason   string                `json:"reason,omitempty"`
	Message  string                `json:"message"`
	Record   ledger.ActivityRecord `json:"record"`
}

// Service runs a completed run through verification, signature
// issuance and on-chain application, falling back at each stage. The
// ledger write in the final step always happens.
type Service struct {
	backend Backend
	authn   Authenticator
	chain   chain.Client // nil when no chain is configured
	store   ledger.Store
}

func NewService(backend Backend, authn Authenticator, chainClient chain.Client, store ledger.Store) *Service {
	return &Service{
		backend: backend,
		authn:   authn,
		chain:   chainClient,
		store:   store,
	}
}

// Submit takes one CompletedRun through the full protocol. The only
// error it returns before persisting anything is ErrInvalidRun; every
// remote failure degrades into a local-only outcome instead.
func (s *Service) Submit(ctx context.Context, run record.CompletedRun, title string) (Outcome, error) {
	// Step 1: local validation. A zero-distance run with real
	// duration is clamped to one meter so the attempt still counts.
	if run.DistanceMeters <= 0 && run.DurationSeconds <= 0 {
		return Outcome{}, ErrInvalidRun
	}
	if run.DistanceMeters <= 0 {
		run.DistanceMeters = 1
	}
	if title == "" {
		title = defaultTitle
	}

	outcome := Outcome{Status: ledger.StatusLocalOnly}

	// Step 2: credential. Without one there is no network submission,
	// straight to local persistence.
	token, err := s.authn.EnsureToken(ctx)
	if err != nil {
		log.Printf("submitting local-only, no session credential: %v", err)
		outcome.XPEarned = estimateXP(run.DistanceMeters)
		outcome.Reason = "auth_unavailable"
		outcome.Message = fmt.Sprintf("Run saved on device (+%d XP estimated). Sign-in unavailable, will sync later.", outcome.XPEarned)
		return s.persist(ctx, run, title, outcome)
	}

	// Step 3: backend verification.
	resp, err := s.backend.SubmitRun(ctx, token, s.buildRequest(run))
	if err != nil {
		log.Printf("run verification unreachable: %v", err)
		outcome.XPEarned = estimateXP(run.DistanceMeters)
		outcome.Reason = "backend_unavailable"
		outcome.Message = fmt.Sprintf("Run saved on device (+%d XP estimated). Backend unreachable, will sync later.", outcome.XPEarned)
		return s.persist(ctx, run, title, outcome)
	}

	outcome.RunID = resp.RunID
	if resp.Status != api.RunStatusVerified {
		outcome.XPEarned = resp.XPEarned
		if outcome.XPEarned == 0 {
			outcome.XPEarned = estimateXP(run.DistanceMeters)
		}
		outcome.Reason = resp.ReasonCode
		outcome.Message = fmt.Sprintf("Run saved on device, not verified (%s).", resp.ReasonCode)
		return s.persist(ctx, run, title, outcome)
	}

	outcome.Status = ledger.StatusVerified
	outcome.XPEarned = resp.XPEarned
	if outcome.XPEarned == 0 {
		// Stats in the sync payload carry the cumulative profile
		// total, not this run's reward; estimate rather than borrow it.
		outcome.XPEarned = estimateXP(run.DistanceMeters)
	}

	// Step 4: on-chain application, only with a signature in hand.
	if resp.OnchainSync != nil && s.chain != nil {
		s.applyOnChain(ctx, resp.OnchainSync, &outcome)
	} else {
		outcome.Message = fmt.Sprintf("Run verified! +%d XP earned.", outcome.XPEarned)
	}

	// Step 5: local persistence, always.
	return s.persist(ctx, run, title, outcome)
}

// applyOnChain dispatches the signed stats update. Failures before a
// transaction goes out demote the record to local-only; failures after
// dispatch keep the verified backend record and only annotate the
// acknowledgment.
func (s *Service) applyOnChain(ctx context.Context, sync *api.OnchainSync, outcome *Outcome) {
	wallet := s.authn.WalletAddress()

	// The deadline bounds the signature's validity. Past it, fail
	// fast locally, no network call.
	if sync.Deadline <= nowFn().Unix() {
		outcome.Status = ledger.StatusLocalOnly
		outcome.Reason = "signature_expired"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the stats signature expired before syncing. Retry from the activity list.", outcome.XPEarned)
		return
	}

	if err := s.chain.VerifyNetwork(ctx); err != nil {
		log.Printf("network check failed: %v", err)
		outcome.Status = ledger.StatusLocalOnly
		// A chain-ID mismatch is actionable by switching networks; a
		// failed check for any other reason is just an unreachable node.
		if errors.Is(err, chain.ErrWrongNetwork) {
			outcome.Reason = "wrong_network"
			outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the wallet is on the wrong network. Switch networks and retry.", outcome.XPEarned)
		} else {
			outcome.Reason = "chain_error"
			outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the chain could not be reached. It can be retried later.", outcome.XPEarned)
		}
		return
	}

	txHash, err := s.chain.UpdateStats(ctx, wallet, sync.Stats, sync.Deadline, sync.Signature)
	outcome.TxHash = txHash
	if err == nil {
		outcome.Message = fmt.Sprintf("Run verified! +%d XP earned, stats synced on-chain.", outcome.XPEarned)
		return
	}

	log.Printf("on-chain stats update failed: %v", err)
	if txHash == "" {
		// Nothing was dispatched; the chain never saw this update.
		outcome.Status = ledger.StatusLocalOnly
	}

	switch {
	case errors.Is(err, chain.ErrSignatureExpired):
		outcome.Reason = "signature_expired"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the stats signature expired on-chain. Retry from the activity list.", outcome.XPEarned)
	case errors.Is(err, chain.ErrInvalidSignature):
		outcome.Reason = "invalid_signature"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the chain rejected the stats signature.", outcome.XPEarned)
	case errors.Is(err, chain.ErrProfileNotRegistered):
		outcome.Reason = "profile_not_registered"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP). Register your profile on-chain to sync stats.", outcome.XPEarned)
	case errors.Is(err, chain.ErrUserRejected):
		outcome.Reason = "user_rejected"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP). On-chain sync was declined in the wallet.", outcome.XPEarned)
	default:
		outcome.Reason = "chain_error"
		outcome.Message = fmt.Sprintf("Run verified (+%d XP) but the on-chain sync failed. It can be retried later.", outcome.XPEarned)
	}
}

// persist appends the activity record and advances the streak. The
// ledger write happens for every terminal outcome, whatever the
// remote stages did.
func (s *Service) persist(ctx context.Context, run record.CompletedRun, title string, outcome Outcome) (Outcome, error) {
	wallet := s.authn.WalletAddress()
	now := nowFn()

	rec := ledger.ActivityRecord{
		ID:               uuid.NewString(),
		Title:            title,
		DistanceKm:       run.DistanceMeters / 1000,
		DurationSeconds:  run.DurationSeconds,
		Pace:             geo.FormatPace(run.DurationSeconds, run.DistanceMeters/1000),
		TimestampMs:      now.UnixMilli(),
		XPEarned:         outcome.XPEarned,
		SubmissionStatus: outcome.Status,
	}
	if outcome.RunID != "" {
		rec.ID = outcome.RunID
	}

	if err := s.store.Append(ctx, wallet, rec); err != nil {
		return outcome, fmt.Errorf("persist activity: %w", err)
	}

	streak, err := s.store.Streak(ctx, wallet)
	if err != nil {
		return outcome, fmt.Errorf("read streak: %w", err)
	}
	if err := s.store.SetStreak(ctx, wallet, streak.Advance(now)); err != nil {
		return outcome, fmt.Errorf("update streak: %w", err)
	}

	outcome.Record = rec
	return outcome, nil
}

func (s *Service) buildRequest(run record.CompletedRun) api.RunSubmitRequest {
	req := api.RunSubmitRequest{
		DistanceMeters:  run.DistanceMeters,
		DurationSeconds: run.DurationSeconds,
		StartTime:       run.StartTimeMs / 1000,
		EndTime:         run.EndTimeMs / 1000,
		DeviceHash:      run.DeviceFingerprint,
	}
	for _, s := range run.Samples {
		req.GPSData = append(req.GPSData, api.GPSPoint{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Timestamp: s.TimestampMs,
			Accuracy:  s.AccuracyMeters,
		})
	}
	return req
}

// estimateXP stands in for the backend reward when verification never
// happened: 10 XP per kilometer, floor of 5.
func estimateXP(distanceMeters float64) int64 {
	xp := int64(distanceMeters / 1000 * 10)
	if xp < 5 {
		xp = 5
	}
	return xp
}
