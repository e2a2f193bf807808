// Package shell runs the notes client as an interactive terminal program.
// The entry page and the dashboard become two modes of one command loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/GophNotes/internal/client/page"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	entryHelp     = "Available commands: login, help, exit"
	dashboardHelp = "Available commands: add [text], delete <id>, list, logout, help, exit"
	unknownCmd    = "Unknown command. Type 'help' for a list of commands."

	// defaultStart is opened when Run is given no start path.
	defaultStart = "/"
)

// errStopped is returned by reads abandoned because Run's context ended.
var errStopped = errors.New("shell stopped")

// Shell reads commands from in and drives the page controllers, printing
// whatever they show to out.
type Shell struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal behind in, or -1 when in is not a terminal.
	fd  int
	log *zap.Logger

	gate  *page.Gate
	form  *page.AuthForm
	panel *page.NotesPanel

	path    string
	pending string
	// done is the Done channel of the context Run was called with.
	done <-chan struct{}

	// form fields
	email       string
	password    string
	noteContent string
}

// New creates a Shell over in and out. When in is a terminal, passwords are
// read without echo.
func New(auth page.Auth, notes page.NotesStore, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	s := &Shell{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
		log: log,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.fd = int(f.Fd())
	}
	s.gate = page.NewGate(auth, s, log)
	s.form = page.NewAuthForm(auth, s, s, log)
	s.panel = page.NewNotesPanel(auth, notes, s, s, log)
	return s
}

// Run opens the page at start and processes commands until exit, the end
// of input or the cancellation of ctx. An empty start opens the entry page.
func (s *Shell) Run(ctx context.Context, start string) error {
	if ctx.Err() != nil {
		return nil
	}
	s.done = ctx.Done()
	if start == "" {
		start = defaultStart
	}
	s.Navigate(start)
	s.settle(ctx)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(s.out)
			return nil
		}
		fmt.Fprintf(s.out, "%s> ", s.mode())
		line, err := s.readLine()
		if err != nil {
			if stopped(err) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}

		if page.IsDashboardPath(s.path) {
			err = s.dashboard(ctx, args, line)
		} else {
			err = s.entry(ctx, args)
		}
		if err != nil {
			if stopped(err) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			fmt.Fprintln(s.out)
			return nil
		}
		s.settle(ctx)
	}
}

func (s *Shell) entry(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, entryHelp)
	case "login":
		email, err := s.prompt("Email: ")
		if err != nil {
			return err
		}
		password, err := s.promptPassword("Password: ")
		if err != nil {
			return err
		}
		s.email, s.password = email, password
		s.form.Submit(ctx)
	default:
		fmt.Fprintln(s.out, unknownCmd)
	}
	return nil
}

func (s *Shell) dashboard(ctx context.Context, args []string, line string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, dashboardHelp)
	case "add":
		// The note is kept as typed after the single separating space.
		text := strings.TrimPrefix(strings.TrimLeft(line, " \t"), "add")
		if text == "" {
			fmt.Fprint(s.out, "Note: ")
			var err error
			if text, err = s.readLine(); err != nil {
				return err
			}
		} else {
			text = text[1:]
		}
		s.noteContent = text
		s.panel.Create(ctx)
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: delete <id>")
			return nil
		}
		s.panel.Click(ctx, page.DeleteTarget(args[1]))
	case "list":
		s.panel.Refresh(ctx)
	case "logout":
		s.panel.Logout(ctx)
	default:
		fmt.Fprintln(s.out, unknownCmd)
	}
	return nil
}

// settle performs pending navigations. Every arrival is a page load: the
// gate runs first and the page only shows if the gate let it stay.
func (s *Shell) settle(ctx context.Context) {
	for s.pending != "" {
		s.path, s.pending = s.pending, ""
		s.log.Debug("page load", zap.String("path", s.path))

		s.gate.Check(ctx)
		if s.pending != "" {
			continue
		}

		if page.IsDashboardPath(s.path) {
			fmt.Fprintln(s.out, "== Your notes ==")
			s.panel.Load(ctx)
		} else {
			s.resetForm()
			fmt.Fprintln(s.out, "== Sign in or sign up ==")
		}
	}
}

func (s *Shell) resetForm() {
	s.email, s.password = "", ""
	s.noteContent = ""
}

func (s *Shell) mode() string {
	if page.IsDashboardPath(s.path) {
		return "notes"
	}
	return "login"
}

func stopped(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, errStopped)
}

type readResult struct {
	line string
	err  error
}

// await runs read in its own goroutine and gives up on it once Run's context
// is done. An abandoned read finishes into a buffered channel nobody drains.
func (s *Shell) await(read func() (string, error)) (string, error) {
	res := make(chan readResult, 1)
	go func() {
		line, err := read()
		res <- readResult{line: line, err: err}
	}()
	select {
	case r := <-res:
		return r.line, r.err
	case <-s.done:
		return "", errStopped
	}
}

func (s *Shell) readLine() (string, error) {
	return s.await(func() (string, error) {
		line, err := s.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	})
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) promptPassword(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if s.fd < 0 {
		return s.readLine()
	}
	state, err := term.GetState(s.fd)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	pass, err := s.await(func() (string, error) {
		b, err := term.ReadPassword(s.fd)
		return string(b), err
	})
	fmt.Fprintln(s.out)
	if errors.Is(err, errStopped) {
		// the abandoned read would leave echo off
		_ = term.Restore(s.fd, state)
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return pass, nil
}
