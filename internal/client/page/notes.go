package page

import (
	"context"
	"slices"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// Texts of the notes panel.
const (
	FetchErrorText   = "Could not fetch notes."
	NoNotesText      = "You have no notes yet."
	ConfirmDelete    = "Are you sure you want to delete this note?"
	CreateErrorAlert = "Error creating note: "
	DeleteErrorAlert = "Error deleting note: "
)

// DeleteMarker is the class carried by the delete control of every card.
const DeleteMarker = "delete-btn"

// State is what the notes container currently shows.
type State int

const (
	// StateCards shows one card per note.
	StateCards State = iota
	// StateEmpty shows the "no notes" placeholder.
	StateEmpty
	// StateError shows the fetch error placeholder.
	StateError
)

// Card is one rendered note. Content is the raw note text; it is not
// escaped for whatever the view prints it into.
type Card struct {
	NoteID  string
	Content string
}

// Content replaces everything in the notes container.
type Content struct {
	State State
	Cards []Card
	// Text is the placeholder text for StateEmpty and StateError.
	Text string
}

// Target is the element a click landed on inside the notes container.
type Target struct {
	Classes []string
	// ID is the note id the element is tagged with, if any.
	ID string
}

// HasClass reports whether the target carries class.
func (t Target) HasClass(class string) bool {
	return slices.Contains(t.Classes, class)
}

// DeleteTarget is the target of a click on the delete control of note id.
func DeleteTarget(id string) Target {
	return Target{Classes: []string{DeleteMarker}, ID: id}
}

// NotesView is the dashboard as the notes panel sees it.
type NotesView interface {
	// Render replaces the contents of the notes container.
	Render(Content)
	// NoteContent returns the text in the new-note field.
	NoteContent() string
	// ClearNoteContent empties the new-note field.
	ClearNoteContent()
	// Alert shows a blocking message.
	Alert(message string)
	// Confirm asks a yes/no question and reports the answer.
	Confirm(question string) bool
}

// NotesPanel lists, creates and deletes the signed-in user's notes. After
// every successful change the whole list is fetched again.
type NotesPanel struct {
	Auth  Auth
	Notes NotesStore
	View  NotesView
	Nav   Navigator
	Log   *zap.Logger
}

// NewNotesPanel creates a NotesPanel.
func NewNotesPanel(auth Auth, notes NotesStore, view NotesView, nav Navigator, log *zap.Logger) *NotesPanel {
	return &NotesPanel{Auth: auth, Notes: notes, View: view, Nav: nav, Log: log}
}

// Load renders the notes when the dashboard opens.
func (p *NotesPanel) Load(ctx context.Context) {
	p.Refresh(ctx)
}

// Refresh fetches the notes and renders them in the order returned.
func (p *NotesPanel) Refresh(ctx context.Context) {
	notes, err := p.Notes.ListNotes(ctx)
	if err != nil {
		p.Log.Debug("fetch notes failed", zap.Error(err))
		p.View.Render(Content{State: StateError, Text: FetchErrorText})
		return
	}
	p.View.Render(render(notes))
}

func render(notes []models.Note) Content {
	if len(notes) == 0 {
		return Content{State: StateEmpty, Text: NoNotesText}
	}
	cards := make([]Card, 0, len(notes))
	for _, n := range notes {
		cards = append(cards, Card{NoteID: string(n.ID), Content: n.Content})
	}
	return Content{State: StateCards, Cards: cards}
}

// Create adds a note with the text from the new-note field. Empty text or a
// missing user make it do nothing at all.
func (p *NotesPanel) Create(ctx context.Context) {
	content := p.View.NoteContent()
	if content == "" {
		return
	}
	user, err := p.Auth.GetUser(ctx)
	if err != nil {
		p.Log.Debug("resolve user failed", zap.Error(err))
	}
	if user == nil {
		return
	}

	if err := p.Notes.InsertNote(ctx, models.NewNote{Content: content, UserID: user.ID}); err != nil {
		p.Log.Debug("create note failed", zap.Error(err))
		p.View.Alert(CreateErrorAlert + Message(err))
		return
	}
	p.View.ClearNoteContent()
	p.Refresh(ctx)
}

// Click handles a click inside the notes container. Only delete controls
// react; the deletion needs confirmation.
func (p *NotesPanel) Click(ctx context.Context, target Target) {
	if !target.HasClass(DeleteMarker) {
		return
	}
	if !p.View.Confirm(ConfirmDelete) {
		return
	}
	if err := p.Notes.DeleteNote(ctx, target.ID); err != nil {
		p.Log.Debug("delete note failed", zap.String("id", target.ID), zap.Error(err))
		p.View.Alert(DeleteErrorAlert + Message(err))
		return
	}
	p.Refresh(ctx)
}

// Logout signs out and returns to the entry page whether or not signing
// out succeeded.
func (p *NotesPanel) Logout(ctx context.Context) {
	if err := p.Auth.SignOut(ctx); err != nil {
		p.Log.Debug("sign out failed", zap.Error(err))
	}
	p.Nav.Navigate(EntryPath)
}
