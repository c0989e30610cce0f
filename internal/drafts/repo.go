package drafts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/starford/formbind/internal/apperr"
	"github.com/starford/formbind/internal/models"
)

// Row is one persisted draft.
type Row struct {
	ID        string
	Seed      string
	Version   uint64
	Model     models.Profile
	Valid     bool
	Checksum  string
	UpdatedAt time.Time
}

// Draft converts the row to its API representation.
func (r Row) Draft() models.Draft {
	return models.Draft{
		ID:        r.ID,
		Seed:      r.Seed,
		Version:   r.Version,
		Model:     r.Model,
		Valid:     r.Valid,
		Checksum:  r.Checksum,
		UpdatedAt: r.UpdatedAt,
	}
}

// Upsert inserts or replaces the draft of a form.
func (db *DB) Upsert(r Row) error {
	model, err := json.Marshal(r.Model)
	if err != nil {
		return fmt.Errorf("drafts: encode model: %w", err)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	_, err = db.conn.Exec(`
		INSERT INTO drafts (id, seed, version, model, valid, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed       = excluded.seed,
			version    = excluded.version,
			model      = excluded.model,
			valid      = excluded.valid,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.ID, r.Seed, int64(r.Version), string(model), r.Valid, r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("drafts: upsert %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the draft with the given id, or apperr.ErrNotFound.
func (db *DB) Get(id string) (*Row, error) {
	row := db.conn.QueryRow(`
		SELECT id, seed, version, model, valid, checksum, updated_at
		FROM drafts WHERE id = ?
	`, id)
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: get %s: %w", id, err)
	}
	return r, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (db *DB) Delete(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("drafts: delete %s: %w", id, err)
	}
	return nil
}

// List returns every draft, most recently updated first.
func (db *DB) List() ([]Row, error) {
	rows, err := db.conn.Query(`
		SELECT id, seed, version, model, valid, checksum, updated_at
		FROM drafts ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("drafts: list: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("drafts: list: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*Row, error) {
	var (
		r       Row
		version int64
		model   string
	)
	if err := s.Scan(&r.ID, &r.Seed, &version, &model, &r.Valid, &r.Checksum, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(model), &r.Model); err != nil {
		return nil, fmt.Errorf("decode model of %s: %w", r.ID, err)
	}
	r.Version = uint64(version)
	return &r, nil
}
