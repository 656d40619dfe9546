package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrVersionConflict is returned when a save races another writer: the
// stored version no longer matches the version the caller read. The
// caller should reload and reapply its change.
var ErrVersionConflict = errors.New("store: profile record version conflict")

// Record is the serialized root progress record plus its write version.
type Record struct {
	Data    []byte
	Version int64
}

// ProfileRepo persists the single root progress record. Every write is a
// full-record replace guarded by an optimistic version check, so a lost
// update from an interleaved partial write cannot happen even if a
// second process opens the same database.
type ProfileRepo interface {
	// Load returns the current record, or nil if none has been saved.
	Load(ctx context.Context) (*Record, error)

	// Save replaces the record. expect must be the version returned by
	// the preceding Load (0 for a first write). Returns the new version,
	// or ErrVersionConflict if the record changed underneath the caller.
	Save(ctx context.Context, data []byte, expect int64) (int64, error)

	// PruneSnapshots deletes all but the most recent keep snapshots.
	PruneSnapshots(ctx context.Context, keep int) error

	// Reset deletes the record and all snapshots.
	Reset(ctx context.Context) error
}

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Load(ctx context.Context) (*Record, error) {
	var rec Record
	err := r.db.QueryRowContext(ctx,
		`SELECT data, version FROM profile_state WHERE id = 1`,
	).Scan(&rec.Data, &rec.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile record: %w", err)
	}
	return &rec, nil
}

func (r *profileRepo) Save(ctx context.Context, data []byte, expect int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	next := expect + 1

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if expect == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO profile_state (id, version, data, updated_at)
			 VALUES (1, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			next, string(data), now,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE profile_state SET version = ?, data = ?, updated_at = ?
			 WHERE id = 1 AND version = ?`,
			next, string(data), now, expect,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("save profile record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("save profile record: %w", err)
	}
	if n == 0 {
		return 0, ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profile_snapshots (version, data, created_at) VALUES (?, ?, ?)`,
		next, string(data), now,
	)
	if err != nil {
		return 0, fmt.Errorf("append snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return next, nil
}

func (r *profileRepo) PruneSnapshots(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM profile_snapshots WHERE id NOT IN (
			SELECT id FROM profile_snapshots ORDER BY id DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *profileRepo) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_state`); err != nil {
		return fmt.Errorf("reset profile record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_snapshots`); err != nil {
		return fmt.Errorf("reset snapshots: %w", err)
	}
	return tx.Commit()
}
