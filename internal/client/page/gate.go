package page

import (
	"context"

	"go.uber.org/zap"
)

// Gate redirects between the entry page and the dashboard depending on
// whether a session exists. It runs once per page load.
type Gate struct {
	Auth Auth
	Nav  Navigator
	Log  *zap.Logger
}

// NewGate creates a Gate.
func NewGate(auth Auth, nav Navigator, log *zap.Logger) *Gate {
	return &Gate{Auth: auth, Nav: nav, Log: log}
}

// Check looks up the session and redirects when the current page does not
// match it. A failed lookup counts as no session.
func (g *Gate) Check(ctx context.Context) {
	session, err := g.Auth.GetSession(ctx)
	if err != nil {
		g.Log.Debug("session lookup failed", zap.Error(err))
		session = nil
	}

	path := g.Nav.CurrentPath()
	switch {
	case session != nil && IsEntryPath(path):
		g.Nav.Navigate(DashboardPath)
	case session == nil && IsDashboardPath(path):
		g.Nav.Navigate(EntryPath)
	}
}
