// Package page holds the controllers behind the two client pages: the entry
// page with the auth form and the dashboard with the notes panel. Controllers
// get the backend and the view they drive at construction and keep no state
// of their own between calls.
package page

import (
	"context"
	"errors"
	"strings"

	"github.com/atinyakov/GophNotes/internal/client/backend"
	"github.com/atinyakov/GophNotes/internal/models"
)

// Page paths.
const (
	EntryPath     = "./index.html"
	DashboardPath = "./dashboard.html"
)

// Auth is the part of the backend client dealing with sessions and users.
type Auth interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, creds models.Credentials) error
	SignUp(ctx context.Context, creds models.Credentials) error
	GetUser(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
}

// NotesStore reads and writes the signed-in user's notes.
type NotesStore interface {
	// ListNotes returns the notes newest first.
	ListNotes(ctx context.Context) ([]models.Note, error)
	InsertNote(ctx context.Context, note models.NewNote) error
	DeleteNote(ctx context.Context, id string) error
}

// Navigator knows the current page and moves between pages.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// IsEntryPath reports whether path addresses the entry page.
func IsEntryPath(path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, "index.html")
}

// IsDashboardPath reports whether path addresses the dashboard page.
func IsDashboardPath(path string) bool {
	return strings.HasSuffix(path, "dashboard.html")
}

// Message returns the text to show the user for err: the backend's own
// message when there is one, the error text otherwise.
func Message(err error) string {
	var be *backend.Error
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
