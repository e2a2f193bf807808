// Package backendtest runs an in-process imitation of the hosted auth and
// REST API for tests. Users, refresh tokens and notes live in memory; access
// tokens are real HS256 JWTs and passwords are bcrypt hashes.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AnonKey is the public key clients must present.
const AnonKey = "test-anon-key"

type user struct {
	id        string
	email     string
	hash      []byte
	confirmed bool
}

type row struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type failure struct {
	status  int
	message string
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	secret      []byte
	autoConfirm bool
	tokenTTL    time.Duration
	log         *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	users    map[string]*user // by email
	refresh  map[string]string
	rows     []row
	nextID   int64
	failures map[string]failure
}

// Option configures a Server.
type Option func(*Server)

// WithAutoConfirm makes sign-up return a session right away instead of
// waiting for email confirmation.
func WithAutoConfirm() Option {
	return func(s *Server) { s.autoConfirm = true }
}

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithLogger logs every request served.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock sets the time source for token expiry and row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New starts a Server that is closed when tb finishes.
func New(tb testing.TB, opts ...Option) *Server {
	tb.Helper()
	s := &Server{
		secret:   []byte("backendtest-jwt-secret"),
		tokenTTL: time.Hour,
		log:      zap.NewNop(),
		now:      time.Now,
		users:    make(map[string]*user),
		refresh:  make(map[string]string),
		failures: make(map[string]failure),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	tb.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(s.log))
	r.Use(middleware.APIKey(AnonKey))
	r.Use(s.injectFailures)

	auth := middleware.BearerAuth(s.secret, AnonKey, func() time.Time { return s.now() })

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/signup", s.signUp)
		r.Post("/token", s.token)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/user", s.getUser)
			r.Post("/logout", s.logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/rest/v1/{table}", s.selectRows)
		r.Post("/rest/v1/{table}", s.insertRows)
		r.Delete("/rest/v1/{table}", s.deleteRows)
	})

	return r
}

// FailNext makes the next request to method and path fail with status and
// message.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if ok {
			middleware.WriteError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateUser registers a confirmed account and returns it.
func (s *Server) CreateUser(tb testing.TB, email, password string) models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUser(email, hash)
	u.confirmed = true
	return models.User{ID: u.id, Email: u.email}
}

// Confirm marks the account of email as confirmed, as following the link in
// the confirmation email would.
func (s *Server) Confirm(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if ok {
		u.confirmed = true
	}
	return ok
}

// AddNote stores a note for userID directly.
func (s *Server) AddNote(userID, content string) models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toNote(s.addRow(userID, content))
}

// Notes returns the notes of userID in insertion order.
func (s *Server) Notes(userID string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := []models.Note{}
	for _, r := range s.rows {
		if r.UserID == userID {
			notes = append(notes, toNote(r))
		}
	}
	return notes
}

func (s *Server) addRow(userID, content string) row {
	s.nextID++
	r := row{ID: s.nextID, Content: content, UserID: userID, CreatedAt: s.now().UTC()}
	s.rows = append(s.rows, r)
	return r
}

func toNote(r row) models.Note {
	return models.Note{
		ID:        models.ID(strconv.FormatInt(r.ID, 10)),
		Content:   r.Content,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
