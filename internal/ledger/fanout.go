package ledger

import (
	"context"
	"log"
)

// Fanout writes through to every store and reads from the first. The
// device store stays authoritative; archive write failures are logged,
// never propagated, so a dead archive cannot block local persistence.
type Fanout struct {
	primary Store
	rest    []Store
}

func NewFanout(primary Store, rest ...Store) *Fanout {
	return &Fanout{primary: primary, rest: rest}
}

func (f *Fanout) Append(ctx context.Context, walletAddress string, rec ActivityRecord) error {
	if err := f.primary.Append(ctx, walletAddress, rec); err != nil {
		return err
	}
	for _, s := range f.rest {
		if err := s.Append(ctx, walletAddress, rec); err != nil {
			log.Printf("archive append failed: %v", err)
		}
	}
	return nil
}

func (f *Fanout) List(ctx context.Context, walletAddress string) ([]ActivityRecord, error) {
	return f.primary.List(ctx, walletAddress)
}

func (f *Fanout) Streak(ctx context.Context, walletAddress string) (StreakCounter, error) {
	return f.primary.Streak(ctx, walletAddress)
}

func (f *Fanout) SetStreak(ctx context.Context, walletAddress string, streak StreakCounter) error {
	if err := f.primary.SetStreak(ctx, walletAddress, streak); err != nil {
		return err
	}
	for _, s := range f.rest {
		if err := s.SetStreak(ctx, walletAddress, streak); err != nil {
			log.Printf("archive streak update failed: %v", err)
		}
	}
	return nil
}
