package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, srv *Server, method, path, token, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("apikey", AnonKey)
	if token == "" {
		token = AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func signIn(t *testing.T, srv *Server, email, password string) string {
	t.Helper()
	status, body := send(t, srv, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, status, body)
	var s struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	return s.AccessToken
}

func TestSelect_Order(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	srv := New(t, WithClock(func() time.Time { return now }))
	u := srv.CreateUser(t, "ann@example.com", "secret1")
	srv.AddNote(u.ID, "a")
	srv.AddNote(u.ID, "b")
	srv.AddNote(u.ID, "c")
	token := signIn(t, srv, "ann@example.com", "secret1")

	tests := []struct {
		order string
		want  []string
	}{
		{order: "created_at.desc", want: []string{"c", "b", "a"}},
		{order: "created_at.asc", want: []string{"a", "b", "c"}},
		{order: "id.desc", want: []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			status, body := send(t, srv, http.MethodGet, "/rest/v1/notes?select=*&order="+tt.order, token, "")
			require.Equal(t, http.StatusOK, status)

			var rows []row
			require.NoError(t, json.Unmarshal([]byte(body), &rows))
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.Content)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	status, body := send(t, srv, http.MethodGet, "/rest/v1/notes?order=title.asc", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "column notes.title does not exist")
}

func TestRest_Errors(t *testing.T) {
	srv := New(t)
	srv.CreateUser(t, "ann@example.com", "secret1")
	token := signIn(t, srv, "ann@example.com", "secret1")

	status, body := send(t, srv, http.MethodGet, "/rest/v1/todos", token, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, `relation \"public.todos\" does not exist`)

	status, body = send(t, srv, http.MethodDelete, "/rest/v1/notes", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "DELETE requires a WHERE clause")

	status, _ = send(t, srv, http.MethodPost, "/rest/v1/notes", "", `{"content":"x","user_id":"someone"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestInsert_Representation(t *testing.T) {
	srv := New(t)
	u := srv.CreateUser(t, "ann@example.com", "secret1")
	token := signIn(t, srv, "ann@example.com", "secret1")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/rest/v1/notes",
		strings.NewReader(`[{"content":"x","user_id":"`+u.ID+`"},{"content":"y","user_id":"`+u.ID+`"}]`))
	require.NoError(t, err)
	req.Header.Set("apikey", AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", "return=representation")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rows []row
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Len(t, srv.Notes(u.ID), 2)
}

func TestFailNext(t *testing.T) {
	srv := New(t)
	srv.FailNext(http.MethodGet, "/rest/v1/notes", http.StatusServiceUnavailable, "maintenance")

	status, body := send(t, srv, http.MethodGet, "/rest/v1/notes", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "maintenance")

	status, _ = send(t, srv, http.MethodGet, "/rest/v1/notes", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestToken_UnsupportedGrant(t *testing.T) {
	srv := New(t)

	status, body := send(t, srv, http.MethodPost, "/auth/v1/token?grant_type=magic", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, `"error_code":"unsupported_grant_type"`)
}
