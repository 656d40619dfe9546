package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RequestLogEntry captures one LLM API call for local telemetry.
type RequestLogEntry struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// ModelUsage aggregates request and token counts for one model.
type ModelUsage struct {
	Provider     string
	Model        string
	Requests     int
	InputTokens  int
	OutputTokens int
}

// RequestLog records LLM calls made on the learner's behalf.
type RequestLog interface {
	Append(ctx context.Context, entry RequestLogEntry) error

	// Totals returns the cumulative request count and token usage.
	Totals(ctx context.Context) (requests int, tokens int, err error)

	// Usage breaks token consumption down per model, most-used first.
	Usage(ctx context.Context) ([]ModelUsage, error)
}

type requestLog struct {
	db *sql.DB
}

func (l *requestLog) Append(ctx context.Context, entry RequestLogEntry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO llm_requests
		 (provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Provider, entry.Model, entry.Purpose,
		entry.InputTokens, entry.OutputTokens, entry.LatencyMs,
		boolToInt(entry.Success), entry.ErrorMessage,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

func (l *requestLog) Totals(ctx context.Context) (int, int, error) {
	var requests, tokens int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(input_tokens + output_tokens), 0) FROM llm_requests`,
	).Scan(&requests, &tokens)
	if err != nil {
		return 0, 0, fmt.Errorf("llm request totals: %w", err)
	}
	return requests, tokens, nil
}

func (l *requestLog) Usage(ctx context.Context) ([]ModelUsage, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT provider, model, COUNT(*),
		        COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		 FROM llm_requests
		 GROUP BY provider, model
		 ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("llm request usage: %w", err)
	}
	defer rows.Close()

	var usage []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Provider, &u.Model, &u.Requests, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan llm request usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
