package backendtest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// writeAuthError writes an error in the shape of the auth service.
func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"code":       status,
		"error_code": code,
		"msg":        msg,
	})
}

func (s *Server) addUser(email string, hash []byte) *user {
	u := &user{id: uuid.NewString(), email: email, hash: hash}
	s.users[email] = u
	return u
}

func (s *Server) userByID(id string) *user {
	for _, u := range s.users {
		if u.id == id {
			return u
		}
	}
	return nil
}

// issue creates a session for u. The caller holds s.mu.
func (s *Server) issue(u *user) (models.Session, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: u.email,
		Role:  "authenticated",
	}).SignedString(s.secret)
	if err != nil {
		return models.Session{}, err
	}

	refresh := uuid.NewString()
	s.refresh[refresh] = u.id
	return models.Session{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokenTTL.Seconds()),
		ExpiresAt:    exp.Unix(),
		User:         &models.User{ID: u.id, Email: u.email},
	}, nil
}

func (s *Server) writeSession(w http.ResponseWriter, u *user) {
	session, err := s.issue(u)
	if err != nil {
		writeAuthError(w, http.StatusInternalServerError, "unexpected_failure", "failed to sign token")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeAuthError(w, http.StatusBadRequest, "bad_json", "Could not parse request body as JSON")
		return
	}
	switch {
	case !strings.Contains(creds.Email, "@"):
		writeAuthError(w, http.StatusBadRequest, "email_address_invalid", "Unable to validate email address: invalid format")
		return
	case creds.Password == "":
		writeAuthError(w, http.StatusBadRequest, "validation_failed", "Signup requires a valid password")
		return
	case len(creds.Password) < minPasswordLen:
		writeAuthError(w, http.StatusUnprocessableEntity, "weak_password", "Password should be at least 6 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		writeAuthError(w, http.StatusInternalServerError, "unexpected_failure", "failed to hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[creds.Email]; exists {
		writeAuthError(w, http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
		return
	}
	u := s.addUser(creds.Email, hash)

	if s.autoConfirm {
		u.confirmed = true
		s.writeSession(w, u)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                   u.id,
		"email":                u.email,
		"confirmation_sent_at": s.now().UTC(),
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("grant_type") {
	case "password":
		s.passwordGrant(w, r)
	case "refresh_token":
		s.refreshGrant(w, r)
	default:
		writeAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported_grant_type")
	}
}

func (s *Server) passwordGrant(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeAuthError(w, http.StatusBadRequest, "bad_json", "Could not parse request body as JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[creds.Email]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(creds.Password)) != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid_credentials", "Invalid login credentials")
		return
	}
	if !u.confirmed {
		writeAuthError(w, http.StatusBadRequest, "email_not_confirmed", "Email not confirmed")
		return
	}
	s.writeSession(w, u)
}

func (s *Server) refreshGrant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "bad_json", "Could not parse request body as JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// refresh tokens are single use
	userID, ok := s.refresh[req.RefreshToken]
	delete(s.refresh, req.RefreshToken)
	u := s.userByID(userID)
	if !ok || u == nil {
		writeAuthError(w, http.StatusBadRequest, "refresh_token_not_found", "Invalid Refresh Token: Refresh Token Not Found")
		return
	}
	s.writeSession(w, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		writeAuthError(w, http.StatusForbidden, "bad_jwt", "invalid claim: missing sub claim")
		return
	}

	s.mu.Lock()
	u := s.userByID(userID)
	s.mu.Unlock()
	if u == nil {
		writeAuthError(w, http.StatusForbidden, "user_not_found", "User from sub claim in JWT does not exist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    u.id,
		"email": u.email,
		"aud":   "authenticated",
		"role":  "authenticated",
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		writeAuthError(w, http.StatusForbidden, "bad_jwt", "invalid claim: missing sub claim")
		return
	}

	s.mu.Lock()
	for token, owner := range s.refresh {
		if owner == userID {
			delete(s.refresh, token)
		}
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
