// Package config provides functionality for managing configuration options
// for the client using command-line flags, a JSON config file, a .env file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Notes drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
)

// Options holds the configuration values for the client.
type Options struct {
	// BackendURL is the base URL of the hosted auth and database service.
	BackendURL string `json:"backend_url"`

	// AnonKey is the public API key sent with every request.
	AnonKey string `json:"anon_key"`

	// SessionFile is where the current session is persisted between runs.
	SessionFile string `json:"session_file"`

	// CAFile optionally points to a PEM bundle trusted for the backend's TLS certificate.
	CAFile string `json:"ca_file"`

	// Timeout bounds every HTTP request to the backend.
	Timeout time.Duration `json:"-"`

	// LogLevel is the zap level for diagnostics written to stderr.
	LogLevel string `json:"log_level"`

	// NotesDriver selects how notes are read and written: "rest" or "postgres".
	NotesDriver string `json:"notes_driver"`

	// DatabaseDSN is the Postgres connection string used by the postgres driver.
	DatabaseDSN string `json:"database_dsn"`

	// StartPage is the page path the shell opens on.
	StartPage string `json:"start_page"`

	// EnvFile is the dotenv file loaded before environment overrides.
	EnvFile string `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// ShowVersion prints build metadata and exits.
	ShowVersion bool `json:"-"`
}

// fileOptions mirrors the JSON config file; durations are written as strings.
type fileOptions struct {
	*Options
	Timeout string `json:"timeout"`
}

// Parse parses the command-line arguments, the optional config file, the
// optional .env file and environment variables, in that order of precedence
// from lowest to highest. args excludes the program name.
func Parse(args []string) (*Options, error) {
	options := &Options{}

	set := flag.NewFlagSet("gophnotes", flag.ContinueOnError)
	set.StringVar(&options.BackendURL, "url", "http://localhost:54321", "hosted backend base URL")
	set.StringVar(&options.AnonKey, "key", "", "hosted backend anon key")
	set.StringVar(&options.SessionFile, "session", "session.json", "path to the session file")
	set.StringVar(&options.CAFile, "ca", "", "path to a CA bundle for the backend certificate")
	set.DurationVar(&options.Timeout, "timeout", 10*time.Second, "backend request timeout")
	set.StringVar(&options.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	set.StringVar(&options.NotesDriver, "notes", DriverREST, "notes driver: rest | postgres")
	set.StringVar(&options.DatabaseDSN, "d", "", "postgres DSN for the postgres notes driver")
	set.StringVar(&options.StartPage, "page", "/", "page to open: / or /dashboard.html")
	set.StringVar(&options.EnvFile, "env", ".env", "path to a dotenv file")
	set.StringVar(&options.Config, "config", "", "path to config file")
	set.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
	set.BoolVar(&options.ShowVersion, "version", false, "show build version and date")
	if err := set.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := loadFile(options.Config, options); err != nil {
			return nil, err
		}
	}

	if options.EnvFile != "" {
		if err := godotenv.Load(options.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error while loading env file: %w", err)
		}
	}

	applyEnv(options)

	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func loadFile(path string, options *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	fo := fileOptions{Options: options}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.Timeout != "" {
		d, err := time.ParseDuration(fo.Timeout)
		if err != nil {
			return fmt.Errorf("error while parsing config file: timeout: %w", err)
		}
		options.Timeout = d
	}
	return nil
}

func applyEnv(options *Options) {
	if v := os.Getenv("NOTES_BACKEND_URL"); v != "" {
		options.BackendURL = v
	}
	if v := os.Getenv("NOTES_ANON_KEY"); v != "" {
		options.AnonKey = v
	}
	if v := os.Getenv("NOTES_SESSION_FILE"); v != "" {
		options.SessionFile = v
	}
	if v := os.Getenv("NOTES_LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := os.Getenv("NOTES_DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
}

func (o *Options) validate() error {
	switch o.NotesDriver {
	case DriverREST:
	case DriverPostgres:
		if o.DatabaseDSN == "" {
			return errors.New("postgres notes driver requires a database DSN")
		}
	default:
		return fmt.Errorf("unknown notes driver: %q", o.NotesDriver)
	}
	return nil
}
