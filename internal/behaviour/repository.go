package behaviour

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Firing is the audit record of one completed action run.
type Firing struct {
	ID            string    `json:"id"`
	BehaviourID   string    `json:"behaviour_id"`
	BehaviourName string    `json:"behaviour_name"`
	Group         string    `json:"group,omitempty"`
	EventTime     time.Time `json:"event_time"`
	ActionsRun    int       `json:"actions_run"`
	ActionsFailed int       `json:"actions_failed"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Repository defines the persistence interface for the behaviour
// subsystem: the current behaviour document plus the firing history.
// This abstraction allows different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// Document persistence (single current document)
	SaveDocument(ctx context.Context, doc []byte) error
	LoadDocument(ctx context.Context) ([]byte, error)

	// Firing history
	CreateFiring(ctx context.Context, f *Firing) error
	ListFirings(ctx context.Context, behaviourID string, limit int) ([]Firing, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveDocument stores doc as the current behaviour document,
// replacing any previous one.
func (r *SQLiteRepository) SaveDocument(ctx context.Context, doc []byte) error {
	query := `
		INSERT INTO behaviour_documents (id, document, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		string(doc),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving behaviour document: %w", err)
	}
	return nil
}

// LoadDocument returns the current behaviour document, or
// ErrDocumentNotFound if none has been saved yet.
func (r *SQLiteRepository) LoadDocument(ctx context.Context) ([]byte, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM behaviour_documents WHERE id = 1`,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("querying behaviour document: %w", err)
	}
	return []byte(doc), nil
}

// CreateFiring inserts a firing record. ID and RecordedAt are
// generated if empty.
func (r *SQLiteRepository) CreateFiring(ctx context.Context, f *Firing) error {
	if f.ID == "" {
		f.ID = GenerateID()
	}
	if f.RecordedAt.IsZero() {
		f.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO behaviour_firings (
			id, behaviour_id, behaviour_name, group_name,
			event_time, actions_run, actions_failed, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		f.ID,
		f.BehaviourID,
		f.BehaviourName,
		nullableGroup(f.Group),
		f.EventTime.UTC().Format(time.RFC3339Nano),
		f.ActionsRun,
		f.ActionsFailed,
		f.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting firing: %w", err)
	}
	return nil
}

// ListFirings retrieves recent firings, newest first. An empty
// behaviourID lists across all behaviours.
func (r *SQLiteRepository) ListFirings(ctx context.Context, behaviourID string, limit int) ([]Firing, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := `
		SELECT id, behaviour_id, behaviour_name, group_name,
			event_time, actions_run, actions_failed, recorded_at
		FROM behaviour_firings`
	args := []any{}
	if behaviourID != "" {
		query += ` WHERE behaviour_id = ?`
		args = append(args, behaviourID)
	}
	query += ` ORDER BY recorded_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying firings: %w", err)
	}
	defer rows.Close()

	var firings []Firing
	for rows.Next() {
		var f Firing
		var group sql.NullString
		var eventTime, recordedAt string

		if scanErr := rows.Scan(
			&f.ID,
			&f.BehaviourID,
			&f.BehaviourName,
			&group,
			&eventTime,
			&f.ActionsRun,
			&f.ActionsFailed,
			&recordedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scanning firing: %w", scanErr)
		}

		if group.Valid {
			f.Group = group.String
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, eventTime); parseErr == nil {
			f.EventTime = t
		}
		if t, parseErr := time.Parse(time.RFC3339, recordedAt); parseErr == nil {
			f.RecordedAt = t
		}
		firings = append(firings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating firings: %w", err)
	}
	return firings, nil
}

// nullableGroup maps the ungrouped empty string to NULL.
func nullableGroup(g string) sql.NullString {
	if g == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: g, Valid: true}
}
