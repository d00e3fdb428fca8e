package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calder-games/skirmish/internal/game/encounter"
)

// ErrReportNotFound is returned when a battle report lookup yields no results.
var ErrReportNotFound = errors.New("battle report not found")

// BattleReportRepository persists finished encounter reports. The combat core
// itself owns no persistence; this repository sits behind the encounter
// manager's report sink and is the only writer of combat outcome data.
type BattleReportRepository struct {
	db *pgxpool.Pool
}

// NewBattleReportRepository creates a BattleReportRepository backed by the
// given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleReportRepository(db *pgxpool.Pool) *BattleReportRepository {
	return &BattleReportRepository{db: db}
}

// StoreReport inserts one battle report. Participants and rewards are stored
// as JSONB documents; the scalar outcome columns support aggregate queries
// without unpacking them.
//
// Postcondition: Returns nil iff the report row was committed.
func (r *BattleReportRepository) StoreReport(ctx context.Context, report encounter.Report) error {
	participants, err := json.Marshal(report.Participants)
	if err != nil {
		return fmt.Errorf("encoding participants: %w", err)
	}
	rewards, err := json.Marshal(report.Rewards)
	if err != nil {
		return fmt.Errorf("encoding rewards: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_reports
		     (session_id, started_at, duration_ms, rounds, victory, xp, currency, rewards, participants)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.SessionID,
		report.StartedAt,
		report.Duration.Milliseconds(),
		report.Rounds,
		report.Victory,
		report.Rewards.XP,
		report.Rewards.Currency,
		rewards,
		participants,
	)
	if err != nil {
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

// GetBySessionID retrieves one battle report by its session id.
//
// Postcondition: Returns the report, or ErrReportNotFound.
func (r *BattleReportRepository) GetBySessionID(ctx context.Context, sessionID string) (encounter.Report, error) {
	var (
		report       encounter.Report
		durationMS   int64
		rewards      []byte
		participants []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT session_id, started_at, duration_ms, rounds, victory, rewards, participants
		 FROM battle_reports WHERE session_id = $1`,
		sessionID,
	).Scan(&report.SessionID, &report.StartedAt, &durationMS, &report.Rounds, &report.Victory, &rewards, &participants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return encounter.Report{}, ErrReportNotFound
		}
		return encounter.Report{}, fmt.Errorf("querying battle report: %w", err)
	}

	report.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal(rewards, &report.Rewards); err != nil {
		return encounter.Report{}, fmt.Errorf("decoding rewards: %w", err)
	}
	if err := json.Unmarshal(participants, &report.Participants); err != nil {
		return encounter.Report{}, fmt.Errorf("decoding participants: %w", err)
	}
	return report, nil
}

// ListRecent returns up to limit reports ordered by most recent first.
func (r *BattleReportRepository) ListRecent(ctx context.Context, limit int) ([]encounter.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT session_id, started_at, duration_ms, rounds, victory, rewards, participants
		 FROM battle_reports ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battle reports: %w", err)
	}
	defer rows.Close()

	var reports []encounter.Report
	for rows.Next() {
		var (
			report       encounter.Report
			durationMS   int64
			rewards      []byte
			participants []byte
		)
		if err := rows.Scan(&report.SessionID, &report.StartedAt, &durationMS, &report.Rounds, &report.Victory, &rewards, &participants); err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		report.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal(rewards, &report.Rewards); err != nil {
			return nil, fmt.Errorf("decoding rewards: %w", err)
		}
		if err := json.Unmarshal(participants, &report.Participants); err != nil {
			return nil, fmt.Errorf("decoding participants: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle reports: %w", err)
	}
	return reports, nil
}

// WinRate returns the fraction of stored encounters that ended in victory,
// or 0 when no reports exist.
func (r *BattleReportRepository) WinRate(ctx context.Context) (float64, error) {
	var total, wins int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE victory) FROM battle_reports`,
	).Scan(&total, &wins)
	if err != nil {
		return 0, fmt.Errorf("querying win rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(wins) / float64(total), nil
}
