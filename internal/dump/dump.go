// Package dump owns the external collaborators of a run: invoking pg_dump
// to capture the schema dump, and probing version identity for the METADATA
// artifact. The whole dump is captured before parsing begins; the core
// never reads from a live process pipe.
package dump

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// ConnectionParams identifies the database pg_dump and the version probe
// connect to.
type ConnectionParams struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// URL renders the params as a PostgreSQL connection URI.
func (p ConnectionParams) URL() string {
	u := url.URL{
		Scheme:   "postgresql",
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: "application_name=pgsplit",
	}
	if p.Username != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		} else {
			u.User = url.User(p.Username)
		}
	}
	return u.String()
}

// runner executes an external command and returns its stdout.
// Extracted for testability.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Capturer invokes pg_dump and captures its full output.
type Capturer struct {
	run runner
}

// NewCapturer creates a Capturer that shells out to pg_dump.
func NewCapturer() *Capturer {
	return &Capturer{run: execRunner}
}

// Capture runs pg_dump with --schema-only --no-owner and returns the whole
// dump text. Each allowed schema is passed through as a --schema flag so
// pg_dump already restricts the dump server-side; the schema filter still
// applies downstream.
func (c *Capturer) Capture(ctx context.Context, params ConnectionParams, schemas []string) (string, error) {
	args := []string{
		"--dbname=" + params.URL(),
		"--schema-only",
		"--no-owner",
	}
	for _, s := range schemas {
		args = append(args, "--schema", s)
	}

	out, err := c.run(ctx, "pg_dump", args...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pgsplit.ErrDumpFailed, err)
	}
	return string(out), nil
}

// versionPattern extracts the numeric version from "pg_dump (PostgreSQL) 16.2".
var versionPattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)*)`)

// PgDumpVersion probes the installed pg_dump binary's version.
func (c *Capturer) PgDumpVersion(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "pg_dump", "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", pgsplit.ErrDumpFailed, err)
	}
	m := versionPattern.FindString(strings.TrimSpace(string(out)))
	if m == "" {
		return "", fmt.Errorf("%w: unrecognized version output %q", pgsplit.ErrDumpFailed, strings.TrimSpace(string(out)))
	}
	return m, nil
}
