package ledger

import "time"

// SubmissionStatus records how far a run made it through remote
// verification.
const (
	StatusVerified  = "verified"
	StatusLocalOnly = "local_only"
)

// ActivityRecord is one completed run as kept on-device. Records are
// append-only; the ledger is the system of record when remote
// verification is unavailable.
type ActivityRecord struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	DistanceKm       float64 `json:"distance_km"`
	DurationSeconds  int64   `json:"duration_seconds"`
	Pace             string  `json:"pace"`
	TimestampMs      int64   `json:"timestamp_ms"`
	XPEarned         int64   `json:"xp_earned"`
	SubmissionStatus string  `json:"submission_status"`
}

const dateKeyLayout = "2006-01-02"

// StreakCounter is derived state recomputed on every completed run.
type StreakCounter struct {
	CurrentStreakDays int64  `json:"current_streak_days"`
	LongestStreakDays int64  `json:"longest_streak_days"`
	LastRunDateKey    string `json:"last_run_date_key"`
}

// Advance applies one run completed on the given day: yesterday's key
// extends the streak, today's key leaves it unchanged, anything older
// resets to 1.
func (s StreakCounter) Advance(today time.Time) StreakCounter {
	todayKey := today.Format(dateKeyLayout)
	yesterdayKey := today.AddDate(0, 0, -1).Format(dateKeyLayout)

	switch s.LastRunDateKey {
	case todayKey:
		return s
	case yesterdayKey:
		s.CurrentStreakDays++
	default:
		s.CurrentStreakDays = 1
	}
	s.LastRunDateKey = todayKey
	if s.CurrentStreakDays > s.LongestStreakDays {
		s.LongestStreakDays = s.CurrentStreakDays
	}
	return s
}
