package page

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

func TestGate_Check(t *testing.T) {
	session := &models.Session{AccessToken: "tok"}

	tests := []struct {
		name       string
		path       string
		session    *models.Session
		sessionErr error
		want       []string
	}{
		{name: "signed in on entry", path: "/app/index.html", session: session, want: []string{DashboardPath}},
		{name: "signed in on root", path: "/", session: session, want: []string{DashboardPath}},
		{name: "signed in on dashboard", path: "/app/dashboard.html", session: session},
		{name: "signed out on dashboard", path: "/app/dashboard.html", want: []string{EntryPath}},
		{name: "signed out on entry", path: "/app/index.html"},
		{name: "lookup error on dashboard", path: "/dashboard.html", sessionErr: errors.New("boom"), want: []string{EntryPath}},
		{name: "signed in on other page", path: "/about.html", session: session},
		{name: "signed out on other page", path: "/about.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuth{
				GetSessionFunc: func(ctx context.Context) (*models.Session, error) {
					return tt.session, tt.sessionErr
				},
			}
			nav := &fakeNav{path: tt.path}

			NewGate(auth, nav, zap.NewNop()).Check(context.Background())

			if len(nav.navigated) != len(tt.want) {
				t.Fatalf("navigated = %v; want %v", nav.navigated, tt.want)
			}
			for i := range tt.want {
				if nav.navigated[i] != tt.want[i] {
					t.Errorf("navigated[%d] = %q; want %q", i, nav.navigated[i], tt.want[i])
				}
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if !IsEntryPath(EntryPath) {
		t.Errorf("IsEntryPath(%q) = false", EntryPath)
	}
	if !IsDashboardPath(DashboardPath) {
		t.Errorf("IsDashboardPath(%q) = false", DashboardPath)
	}
	if IsEntryPath(DashboardPath) {
		t.Errorf("IsEntryPath(%q) = true", DashboardPath)
	}
	if IsDashboardPath("/") {
		t.Error(`IsDashboardPath("/") = true`)
	}
}
