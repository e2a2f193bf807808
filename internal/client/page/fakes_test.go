package page

import (
	"context"

	"github.com/atinyakov/GophNotes/internal/models"
)

type mockAuth struct {
	GetSessionFunc         func(ctx context.Context) (*models.Session, error)
	SignInWithPasswordFunc func(ctx context.Context, creds models.Credentials) error
	SignUpFunc             func(ctx context.Context, creds models.Credentials) error
	GetUserFunc            func(ctx context.Context) (*models.User, error)
	SignOutFunc            func(ctx context.Context) error

	calls []string
}

func (m *mockAuth) GetSession(ctx context.Context) (*models.Session, error) {
	m.calls = append(m.calls, "GetSession")
	return m.GetSessionFunc(ctx)
}

func (m *mockAuth) SignInWithPassword(ctx context.Context, creds models.Credentials) error {
	m.calls = append(m.calls, "SignInWithPassword")
	return m.SignInWithPasswordFunc(ctx, creds)
}

func (m *mockAuth) SignUp(ctx context.Context, creds models.Credentials) error {
	m.calls = append(m.calls, "SignUp")
	return m.SignUpFunc(ctx, creds)
}

func (m *mockAuth) GetUser(ctx context.Context) (*models.User, error) {
	m.calls = append(m.calls, "GetUser")
	return m.GetUserFunc(ctx)
}

func (m *mockAuth) SignOut(ctx context.Context) error {
	m.calls = append(m.calls, "SignOut")
	return m.SignOutFunc(ctx)
}

type mockNotes struct {
	ListNotesFunc  func(ctx context.Context) ([]models.Note, error)
	InsertNoteFunc func(ctx context.Context, note models.NewNote) error
	DeleteNoteFunc func(ctx context.Context, id string) error

	listCalls  int
	inserted   []models.NewNote
	deletedIDs []string
}

func (m *mockNotes) ListNotes(ctx context.Context) ([]models.Note, error) {
	m.listCalls++
	return m.ListNotesFunc(ctx)
}

func (m *mockNotes) InsertNote(ctx context.Context, note models.NewNote) error {
	m.inserted = append(m.inserted, note)
	return m.InsertNoteFunc(ctx, note)
}

func (m *mockNotes) DeleteNote(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.DeleteNoteFunc(ctx, id)
}

// fakeNav records navigations.
type fakeNav struct {
	path      string
	navigated []string
}

func (n *fakeNav) CurrentPath() string { return n.path }

func (n *fakeNav) Navigate(path string) {
	n.navigated = append(n.navigated, path)
	n.path = path
}

type submitState struct {
	disabled bool
	label    string
}

// fakeAuthView records what the form controller did to the page.
type fakeAuthView struct {
	creds models.Credentials

	submitting []submitState
	status     *string
	statusErr  bool
}

func (v *fakeAuthView) Credentials() models.Credentials { return v.creds }

func (v *fakeAuthView) SetSubmitting(disabled bool, label string) {
	v.submitting = append(v.submitting, submitState{disabled, label})
}

func (v *fakeAuthView) ShowStatus(message string, isError bool) {
	v.status = &message
	v.statusErr = isError
}

// fakeNotesView records what the notes panel did to the page.
type fakeNotesView struct {
	content string
	confirm bool

	renders   []Content
	cleared   int
	alerts    []string
	questions []string
}

func (v *fakeNotesView) Render(c Content)     { v.renders = append(v.renders, c) }
func (v *fakeNotesView) NoteContent() string  { return v.content }
func (v *fakeNotesView) ClearNoteContent()    { v.cleared++; v.content = "" }
func (v *fakeNotesView) Alert(message string) { v.alerts = append(v.alerts, message) }

func (v *fakeNotesView) Confirm(question string) bool {
	v.questions = append(v.questions, question)
	return v.confirm
}
