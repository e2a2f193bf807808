package backend

import (
	"context"

	"github.com/atinyakov/GophNotes/internal/models"
)

const notesTable = "notes"

// RESTNotes reads and writes notes through the REST table API. Row-level
// security on the service limits every call to the signed-in user's rows.
type RESTNotes struct {
	Client *Client
}

// NewRESTNotes wraps c.
func NewRESTNotes(c *Client) *RESTNotes {
	return &RESTNotes{Client: c}
}

// ListNotes returns the user's notes, newest first.
func (n *RESTNotes) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := n.Client.From(notesTable).Select("*").Order("created_at", false).Execute(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// InsertNote creates a note owned by note.UserID.
func (n *RESTNotes) InsertNote(ctx context.Context, note models.NewNote) error {
	return n.Client.From(notesTable).Insert(ctx, note)
}

// DeleteNote removes the note with the given id.
func (n *RESTNotes) DeleteNote(ctx context.Context, id string) error {
	return n.Client.From(notesTable).Delete().Match(map[string]string{"id": id}).Execute(ctx)
}
