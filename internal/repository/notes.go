// Package repository reads and writes notes directly in the PostgreSQL
// database behind the hosted service.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophNotes/internal/client/backend"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/lib/pq"
)

// UserResolver returns the signed-in user, or nil when there is none.
type UserResolver interface {
	GetUser(ctx context.Context) (*models.User, error)
}

// errRowPolicy mirrors the row-level security violation of the hosted API.
var errRowPolicy = &backend.Error{
	Code:    "42501",
	Message: `new row violates row-level security policy for table "notes"`,
}

// PostgresNotesRepository implements note operations against a PostgreSQL
// database. A direct connection bypasses row-level security, so every
// statement is scoped to the user the Users resolver returns.
type PostgresNotesRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Users resolves the signed-in user for every call.
	Users UserResolver
}

// NewPostgresNotesRepository creates a new PostgresNotesRepository.
func NewPostgresNotesRepository(db *sql.DB, users UserResolver) *PostgresNotesRepository {
	return &PostgresNotesRepository{DB: db, Users: users}
}

// ListNotes returns the notes of the signed-in user, newest first. Without
// a user the list is empty.
func (r *PostgresNotesRepository) ListNotes(ctx context.Context) ([]models.Note, error) {
	u, err := r.Users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return []models.Note{}, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id::text, content, user_id::text, created_at FROM notes
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC
	`, u.ID)
	if err != nil {
		return nil, dbError("list notes", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			n  models.Note
			id string
		)
		if err := rows.Scan(&id, &n.Content, &n.UserID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		n.ID = models.ID(id)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list notes", err)
	}
	return notes, nil
}

// InsertNote stores note. The note must belong to the signed-in user.
func (r *PostgresNotesRepository) InsertNote(ctx context.Context, note models.NewNote) error {
	u, err := r.Users.GetUser(ctx)
	if err != nil {
		return err
	}
	if u == nil || u.ID != note.UserID {
		return errRowPolicy
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO notes (content, user_id) VALUES ($1, $2)`,
		note.Content, note.UserID,
	)
	if err != nil {
		return dbError("insert note", err)
	}
	return nil
}

// DeleteNote removes the note with the given id if it belongs to the
// signed-in user. Deleting a missing note is not an error.
func (r *PostgresNotesRepository) DeleteNote(ctx context.Context, id string) error {
	u, err := r.Users.GetUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	_, err = r.DB.ExecContext(ctx,
		`DELETE FROM notes WHERE id::text = $1 AND user_id = $2`,
		id, u.ID,
	)
	if err != nil {
		return dbError("delete note", err)
	}
	return nil
}

// dbError keeps the server's own message for Postgres errors so it reaches
// the user the same way REST API errors do.
func dbError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &backend.Error{Code: string(pqErr.Code), Message: pqErr.Message, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
