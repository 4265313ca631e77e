package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier represents the minimal database operations the archive
// uses. Both *pgxpool.Pool and pgxmock pools satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	newPoolFn  = pgxpool.New
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

func ConnectPostgres(url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// PostgresArchive is the optional companion-sync archive of the
// ledger. Same Store surface, durable across devices.
type PostgresArchive struct {
	db Querier
}

func NewPostgresArchive(db Querier) *PostgresArchive {
	return &PostgresArchive{db: db}
}

func (a *PostgresArchive) Append(ctx context.Context, walletAddress string, rec ActivityRecord) error {
	_, err := a.db.Exec(ctx, `
		INSERT INTO activities (id, wallet_address, title, distance_km, duration_seconds, pace, recorded_at_ms, xp_earned, submission_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.ID, walletAddress, rec.Title, rec.DistanceKm, rec.DurationSeconds, rec.Pace, rec.TimestampMs, rec.XPEarned, rec.SubmissionStatus)
	return err
}

func (a *PostgresArchive) List(ctx context.Context, walletAddress string) ([]ActivityRecord, error) {
	rows, err := a.db.Query(ctx, `
		SELECT id, title, distance_km, duration_seconds, pace, recorded_at_ms, xp_earned, submission_status
		FROM activities WHERE wallet_address=$1
		ORDER BY recorded_at_ms
	`, walletAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ActivityRecord
	for rows.Next() {
		var rec ActivityRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.DistanceKm, &rec.DurationSeconds, &rec.Pace, &rec.TimestampMs, &rec.XPEarned, &rec.SubmissionStatus); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *PostgresArchive) Streak(ctx context.Context, walletAddress string) (StreakCounter, error) {
	var streak StreakCounter
	err := a.db.QueryRow(ctx, `
		SELECT current_days, longest_days, last_run_date
		FROM streaks WHERE wallet_address=$1
	`, walletAddress).Scan(&streak.CurrentStreakDays, &streak.LongestStreakDays, &streak.LastRunDateKey)
	if err == pgx.ErrNoRows {
		return StreakCounter{}, nil
	}
	if err != nil {
		return StreakCounter{}, err
	}
	return streak, nil
}

func (a *PostgresArchive) SetStreak(ctx context.Context, walletAddress string, streak StreakCounter) error {
	_, err := a.db.Exec(ctx, `
		INSERT INTO streaks (wallet_address, current_days, longest_days, last_run_date)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (wallet_address)
		DO UPDATE SET current_days=$2, longest_days=$3, last_run_date=$4
	`, walletAddress, streak.CurrentStreakDays, streak.LongestStreakDays, streak.LastRunDateKey)
	return err
}
