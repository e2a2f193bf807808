package backendtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/go-chi/chi/v5"
)

const notesTable = "notes"

// writeRESTError writes an error in the shape of the REST API.
func writeRESTError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"details": nil,
		"hint":    nil,
		"message": message,
	})
}

func notesOnly(w http.ResponseWriter, r *http.Request) bool {
	table := chi.URLParam(r, "table")
	if table == notesTable {
		return true
	}
	writeRESTError(w, http.StatusNotFound, "42P01", fmt.Sprintf("relation \"public.%s\" does not exist", table))
	return false
}

func column(r row, name string) (string, bool) {
	switch name {
	case "id":
		return strconv.FormatInt(r.ID, 10), true
	case "content":
		return r.Content, true
	case "user_id":
		return r.UserID, true
	}
	return "", false
}

func (s *Server) selectRows(w http.ResponseWriter, r *http.Request) {
	if !notesOnly(w, r) {
		return
	}
	userID := middleware.GetUserIDFromContext(r.Context())

	less, err := ordering(r.URL.Query().Get("order"))
	if err != nil {
		writeRESTError(w, http.StatusBadRequest, "42703", err.Error())
		return
	}

	s.mu.Lock()
	rows := []row{}
	for _, n := range s.rows {
		if n.UserID == userID {
			rows = append(rows, n)
		}
	}
	s.mu.Unlock()

	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	writeJSON(w, http.StatusOK, rows)
}

// ordering parses an order parameter such as "created_at.desc". Rows with
// equal timestamps keep their id order in the same direction.
func ordering(param string) (func(a, b row) bool, error) {
	if param == "" {
		return nil, nil
	}
	col, dir, _ := strings.Cut(param, ".")
	desc := dir == "desc"

	var less func(a, b row) bool
	switch col {
	case "created_at":
		less = func(a, b row) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case "id":
		less = func(a, b row) bool { return a.ID < b.ID }
	case "content":
		less = func(a, b row) bool { return a.Content < b.Content }
	default:
		return nil, fmt.Errorf("column %s.%s does not exist", notesTable, col)
	}
	if desc {
		return func(a, b row) bool { return less(b, a) }, nil
	}
	return less, nil
}

func (s *Server) insertRows(w http.ResponseWriter, r *http.Request) {
	if !notesOnly(w, r) {
		return
	}
	userID := middleware.GetUserIDFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeRESTError(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
		return
	}
	var news []models.NewNote
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		err = json.Unmarshal(body, &news)
	} else {
		var one models.NewNote
		err = json.Unmarshal(body, &one)
		news = []models.NewNote{one}
	}
	if err != nil {
		writeRESTError(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
		return
	}

	for _, n := range news {
		if userID == "" || n.UserID != userID {
			status := http.StatusForbidden
			if userID == "" {
				status = http.StatusUnauthorized
			}
			writeRESTError(w, status, "42501", `new row violates row-level security policy for table "notes"`)
			return
		}
	}

	s.mu.Lock()
	created := make([]row, 0, len(news))
	for _, n := range news {
		created = append(created, s.addRow(n.UserID, n.Content))
	}
	s.mu.Unlock()

	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		writeJSON(w, http.StatusCreated, created)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) deleteRows(w http.ResponseWriter, r *http.Request) {
	if !notesOnly(w, r) {
		return
	}
	userID := middleware.GetUserIDFromContext(r.Context())

	filters := make(map[string]string)
	for col, values := range r.URL.Query() {
		if _, known := column(row{}, col); !known {
			writeRESTError(w, http.StatusBadRequest, "42703", fmt.Sprintf("column %s.%s does not exist", notesTable, col))
			return
		}
		val, ok := strings.CutPrefix(values[0], "eq.")
		if !ok {
			writeRESTError(w, http.StatusBadRequest, "PGRST100", fmt.Sprintf("unsupported filter on column %s", col))
			return
		}
		filters[col] = val
	}
	if len(filters) == 0 {
		writeRESTError(w, http.StatusBadRequest, "21000", "DELETE requires a WHERE clause")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	for _, n := range s.rows {
		if n.UserID == userID && matches(n, filters) {
			continue
		}
		kept = append(kept, n)
	}
	s.rows = kept

	w.WriteHeader(http.StatusNoContent)
}

func matches(n row, filters map[string]string) bool {
	for col, want := range filters {
		got, ok := column(n, col)
		if !ok || got != want {
			return false
		}
	}
	return true
}
