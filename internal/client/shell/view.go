package shell

import (
	"fmt"
	"strings"

	"github.com/atinyakov/GophNotes/internal/client/page"
	"github.com/atinyakov/GophNotes/internal/models"
)

var (
	_ page.Navigator = (*Shell)(nil)
	_ page.AuthView  = (*Shell)(nil)
	_ page.NotesView = (*Shell)(nil)
)

// CurrentPath implements page.Navigator.
func (s *Shell) CurrentPath() string {
	return s.path
}

// Navigate implements page.Navigator. The new page loads once the current
// command has finished.
func (s *Shell) Navigate(path string) {
	s.pending = path
}

// Credentials implements page.AuthView.
func (s *Shell) Credentials() models.Credentials {
	return models.Credentials{Email: s.email, Password: s.password}
}

// SetSubmitting implements page.AuthView. Only the busy label is printed;
// commands run one at a time, so there is nothing to disable.
func (s *Shell) SetSubmitting(disabled bool, label string) {
	if disabled {
		fmt.Fprintln(s.out, label)
	}
}

// ShowStatus implements page.AuthView.
func (s *Shell) ShowStatus(message string, isError bool) {
	marker := "[ok]"
	if isError {
		marker = "[error]"
	}
	fmt.Fprintf(s.out, "%s %s\n", marker, message)
}

// Render implements page.NotesView.
func (s *Shell) Render(c page.Content) {
	if c.State != page.StateCards {
		fmt.Fprintln(s.out, c.Text)
		return
	}
	for _, card := range c.Cards {
		fmt.Fprintf(s.out, "#%s  %s\n", card.NoteID, card.Content)
	}
}

// NoteContent implements page.NotesView.
func (s *Shell) NoteContent() string {
	return s.noteContent
}

// ClearNoteContent implements page.NotesView.
func (s *Shell) ClearNoteContent() {
	s.noteContent = ""
}

// Alert implements page.NotesView.
func (s *Shell) Alert(message string) {
	fmt.Fprintf(s.out, "! %s\n", message)
}

// Confirm implements page.NotesView. Anything but y or yes is a no, and so
// is a failed read.
func (s *Shell) Confirm(question string) bool {
	fmt.Fprintf(s.out, "%s [y/N]: ", question)
	answer, err := s.readLine()
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
