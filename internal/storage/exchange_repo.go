package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timestampLayout is how created_at is written; it sorts lexically.
const timestampLayout = "2006-01-02 15:04:05.000"

// ExchangeRepo provides methods for the exchange ledger.
type ExchangeRepo struct {
	db *sql.DB
}

// NewExchangeRepo creates a new ExchangeRepo.
func NewExchangeRepo(db *sql.DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

// Record inserts one ledger row. A zero CreatedAt is stamped with the current time.
func (r *ExchangeRepo) Record(ctx context.Context, ex Exchange) error {
	if ex.ID == "" {
		return fmt.Errorf("exchange id is required")
	}
	if ex.Status != StatusOK && ex.Status != StatusError {
		return fmt.Errorf("invalid exchange status %q", ex.Status)
	}
	createdAt := ex.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, request_id, model, history_len, message_chars, reply_chars, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.RequestID, ex.Model, ex.HistoryLen, ex.MessageChars, ex.ReplyChars,
		ex.Status, ex.Error, ex.Duration.Milliseconds(),
		createdAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Summary aggregates every row in the ledger.
func (r *ExchangeRepo) Summary(ctx context.Context) (ExchangeSummary, error) {
	var (
		summary ExchangeSummary
		meanMS  sql.NullFloat64
		lastAt  sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			AVG(duration_ms),
			MAX(created_at)
		FROM exchanges`,
	).Scan(&summary.Total, &summary.OK, &summary.Failed, &meanMS, &lastAt)
	if err != nil {
		return ExchangeSummary{}, fmt.Errorf("failed to summarize exchanges: %w", err)
	}

	if meanMS.Valid {
		summary.MeanDuration = time.Duration(meanMS.Float64 * float64(time.Millisecond))
	}
	if lastAt.Valid {
		summary.LastAt, err = parseTimestamp(lastAt.String)
		if err != nil {
			return ExchangeSummary{}, err
		}
	}
	return summary, nil
}

// Recent returns up to limit rows, newest first.
func (r *ExchangeRepo) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, request_id, model, history_len, message_chars, reply_chars, status, error, duration_ms, created_at
		FROM exchanges
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var (
			ex         Exchange
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&ex.ID, &ex.RequestID, &ex.Model, &ex.HistoryLen, &ex.MessageChars, &ex.ReplyChars,
			&ex.Status, &ex.Error, &durationMS, &createdAt); err != nil {
			return nil, err
		}
		ex.Duration = time.Duration(durationMS) * time.Millisecond
		ex.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exchanges, nil
}

// parseTimestamp accepts the layout written by Record, SQLite's CURRENT_TIMESTAMP
// and the RFC 3339 form the driver produces when it converts DATETIME columns.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
