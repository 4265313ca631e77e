package ledger

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStreakExtendsFromYesterday(t *testing.T) {
	streak := StreakCounter{CurrentStreakDays: 3, LongestStreakDays: 5, LastRunDateKey: "2026-08-31"}
	got := streak.Advance(day("2026-09-01"))
	if got.CurrentStreakDays != 4 {
		t.Fatalf("expected streak 4, got %d", got.CurrentStreakDays)
	}
	if got.LongestStreakDays != 5 {
		t.Fatalf("expected longest 5, got %d", got.LongestStreakDays)
	}
	if got.LastRunDateKey != "2026-09-01" {
		t.Fatalf("expected date key updated, got %q", got.LastRunDateKey)
	}
}

func TestStreakUpdatesLongest(t *testing.T) {
	streak := StreakCounter{CurrentStreakDays: 3, LongestStreakDays: 3, LastRunDateKey: "2026-08-31"}
	got := streak.Advance(day("2026-09-01"))
	if got.CurrentStreakDays != 4 || got.LongestStreakDays != 4 {
		t.Fatalf("expected 4/4, got %d/%d", got.CurrentStreakDays, got.LongestStreakDays)
	}
}

func TestStreakSameDayUnchanged(t *testing.T) {
	streak := StreakCounter{CurrentStreakDays: 3, LongestStreakDays: 5, LastRunDateKey: "2026-09-01"}
	got := streak.Advance(day("2026-09-01"))
	if got != streak {
		t.Fatalf("same-day run changed streak: %+v", got)
	}
}

func TestStreakResetsWhenBroken(t *testing.T) {
	streak := StreakCounter{CurrentStreakDays: 7, LongestStreakDays: 9, LastRunDateKey: "2026-08-20"}
	got := streak.Advance(day("2026-09-01"))
	if got.CurrentStreakDays != 1 {
		t.Fatalf("expected reset to 1, got %d", got.CurrentStreakDays)
	}
	if got.LongestStreakDays != 9 {
		t.Fatalf("longest must survive a reset, got %d", got.LongestStreakDays)
	}
}

func TestFirstRunEver(t *testing.T) {
	got := StreakCounter{}.Advance(day("2026-09-01"))
	if got.CurrentStreakDays != 1 || got.LongestStreakDays != 1 {
		t.Fatalf("expected 1/1, got %d/%d", got.CurrentStreakDays, got.LongestStreakDays)
	}
}
