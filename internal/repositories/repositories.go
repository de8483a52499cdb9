// package repositories provides persistence for the fetched catalog.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
)

// SnapshotRepository implements [models.SnapshotStore] on SQLite.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save replaces the stored snapshot with s.
func (r *SnapshotRepository) Save(ctx context.Context, s models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSnapshot(ctx, tx); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, position, title, url, category, duration)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range s.Tracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, i, t.Title, t.URL, t.Category, t.Duration); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, source, provider, track_count, fetched_at)
		VALUES (1, ?, ?, ?, ?)
	`, s.Source, s.Provider, len(s.Tracks), fetchedAt.UTC()); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or [shared.ErrNoSnapshot] when none has been saved.
func (r *SnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	s, err := r.Info(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, url, category, duration
		FROM tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	s.Tracks = make([]models.Track, 0, s.Count)
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.URL, &t.Category, &t.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		s.Tracks = append(s.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}

	return &s.Snapshot, nil
}

// SnapshotInfo describes the stored snapshot without its tracks.
type SnapshotInfo struct {
	models.Snapshot
	Count int
}

// Info returns the snapshot metadata, or [shared.ErrNoSnapshot].
func (r *SnapshotRepository) Info(ctx context.Context) (*SnapshotInfo, error) {
	var info SnapshotInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT source, provider, track_count, fetched_at
		FROM snapshots
		WHERE id = 1
	`).Scan(&info.Source, &info.Provider, &info.Count, &info.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &info, nil
}

// Get returns one stored track by id.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.Track, error) {
	var t models.Track
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, url, category, duration
		FROM tracks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.URL, &t.Category, &t.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	return &t, nil
}

// Clear removes the stored snapshot.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSnapshot(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSnapshot(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
