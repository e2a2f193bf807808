package page

import (
	"context"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// Labels and messages of the auth form.
const (
	SubmitLabel     = "Sign In / Sign Up"
	ProcessingLabel = "Processing..."
	SignUpSuccess   = "Account created! Please check your email for verification."
)

// AuthView is the auth form as the controller sees it.
type AuthView interface {
	// Credentials returns the current email and password field values.
	Credentials() models.Credentials
	// SetSubmitting enables or disables the submit control and sets its label.
	SetSubmitting(disabled bool, label string)
	// ShowStatus replaces the status line; isError selects the error styling.
	ShowStatus(message string, isError bool)
}

// AuthForm signs the user in, or signs them up when signing in fails.
type AuthForm struct {
	Auth Auth
	View AuthView
	Nav  Navigator
	Log  *zap.Logger
}

// NewAuthForm creates an AuthForm.
func NewAuthForm(auth Auth, view AuthView, nav Navigator, log *zap.Logger) *AuthForm {
	return &AuthForm{Auth: auth, View: view, Nav: nav, Log: log}
}

// Submit handles one submission of the form. Any sign-in failure, wrong
// password included, is followed by a sign-up attempt with the same
// credentials; only the sign-up outcome is shown.
func (f *AuthForm) Submit(ctx context.Context) {
	creds := f.View.Credentials()
	f.View.SetSubmitting(true, ProcessingLabel)

	err := f.Auth.SignInWithPassword(ctx, creds)
	if err == nil {
		// the dashboard replaces this page, the form is not restored
		f.Nav.Navigate(DashboardPath)
		return
	}
	f.Log.Debug("sign in failed, trying sign up", zap.Error(err))

	if err := f.Auth.SignUp(ctx, creds); err != nil {
		f.Log.Debug("sign up failed", zap.Error(err))
		f.View.ShowStatus(Message(err), true)
	} else {
		f.View.ShowStatus(SignUpSuccess, false)
	}

	f.View.SetSubmitting(false, SubmitLabel)
}
