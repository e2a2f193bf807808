package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	pathToken  = "/auth/v1/token"
	pathSignUp = "/auth/v1/signup"
	pathUser   = "/auth/v1/user"
	pathLogout = "/auth/v1/logout"
)

// expiryMargin refreshes a session slightly before the token actually expires.
const expiryMargin = 10 * time.Second

// GetSession returns the current session, refreshing it first when the
// access token has expired. No session is reported as nil with a nil error.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	s, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if !s.Expired(c.now().Add(expiryMargin)) {
		return s, nil
	}

	if s.RefreshToken == "" {
		return nil, c.store.Clear()
	}
	refreshed, err := c.refresh(ctx, s.RefreshToken)
	if err != nil {
		c.log.Debug("session refresh failed", zap.Error(err))
		return nil, multierr.Append(err, c.store.Clear())
	}
	return refreshed, nil
}

// SignInWithPassword authenticates with email and password and stores the
// resulting session.
func (c *Client) SignInWithPassword(ctx context.Context, creds models.Credentials) error {
	var s models.Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathToken,
		query:  url.Values{"grant_type": {"password"}},
		body:   creds,
	}, &s)
	if err != nil {
		return err
	}
	return c.storeSession(&s)
}

// signUpResponse is either a session (auto-confirmed accounts) or a bare user
// (accounts that still need to confirm their email).
type signUpResponse struct {
	models.Session
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp creates an account. When the service signs the new user in right
// away, the session is stored; otherwise no session exists until the email
// is confirmed.
func (c *Client) SignUp(ctx context.Context, creds models.Credentials) error {
	var resp signUpResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathSignUp,
		body:   creds,
	}, &resp)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return nil
	}
	return c.storeSession(&resp.Session)
}

// GetUser fetches the user of the current session from the service. Without
// a session it returns nil and no error.
func (c *Client) GetUser(ctx context.Context) (*models.User, error) {
	s, err := c.GetSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	var u models.User
	err = c.do(ctx, request{
		method: http.MethodGet,
		path:   pathUser,
		token:  s.AccessToken,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut revokes the session on the service and drops it locally. The local
// session is dropped even when the service call fails.
func (c *Client) SignOut(ctx context.Context) error {
	s, err := c.store.Load()
	if err != nil {
		return multierr.Append(err, c.store.Clear())
	}
	var remoteErr error
	if s != nil {
		remoteErr = c.do(ctx, request{
			method: http.MethodPost,
			path:   pathLogout,
			token:  s.AccessToken,
		}, nil)
	}
	return multierr.Append(remoteErr, c.store.Clear())
}

// accessToken returns the bearer token for table requests, or "" to fall
// back to the anon key.
func (c *Client) accessToken(ctx context.Context) string {
	s, err := c.GetSession(ctx)
	if err != nil || s == nil {
		return ""
	}
	return s.AccessToken
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	var s models.Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathToken,
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": refreshToken},
	}, &s)
	if err != nil {
		return nil, err
	}
	if err := c.storeSession(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) storeSession(s *models.Session) error {
	if s.AccessToken == "" {
		return &Error{Message: "no session returned"}
	}
	if s.ExpiresAt == 0 {
		s.ExpiresAt = c.expiresAt(s)
	}
	return c.store.Save(s)
}

// expiresAt derives the expiry of a session the service returned without
// expires_at: from expires_in, or from the token's own exp claim.
func (c *Client) expiresAt(s *models.Session) int64 {
	if s.ExpiresIn > 0 {
		return c.now().Unix() + s.ExpiresIn
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}
