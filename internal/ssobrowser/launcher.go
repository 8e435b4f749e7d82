package ssobrowser

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/browser"
)

// LaunchOutcome reports whether a browser was actually spawned or the
// caller must present the URL for the user to open manually.
type LaunchOutcome struct {
	Opened bool
	URL    string
}

// ErrEmptyURL is returned when Open is called with an empty URL.
var ErrEmptyURL = errors.New("ssobrowser: empty URL")

// commandRunner abstracts process spawning so tests can substitute a fake.
type commandRunner interface {
	Run(name string, args []string) error
}

type systemCommandRunner struct{}

func (systemCommandRunner) Run(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}

// Launcher opens a URL in the system browser, trying BROWSER-env candidates
// first, then platform defaults, then pkg/browser as a last resort.
type Launcher struct {
	runner commandRunner
	getenv func(string) string
	goos   string
}

// NewLauncher returns a Launcher wired to the real OS.
func NewLauncher() *Launcher {
	return &Launcher{runner: systemCommandRunner{}, getenv: os.Getenv, goos: runtime.GOOS}
}

// Open attempts every candidate in turn, returning Opened as soon as one
// spawns successfully, or ManualOpen (Opened=false) if all fail.
func (l *Launcher) Open(rawURL string) (LaunchOutcome, error) {
	if rawURL == "" {
		return LaunchOutcome{}, ErrEmptyURL
	}
	for _, candidate := range l.resolveCandidates(rawURL) {
		if len(candidate) == 0 {
			continue
		}
		if err := l.runner.Run(candidate[0], candidate[1:]); err == nil {
			return LaunchOutcome{Opened: true, URL: rawURL}, nil
		}
	}
	if err := browser.OpenURL(rawURL); err == nil {
		return LaunchOutcome{Opened: true, URL: rawURL}, nil
	}
	return LaunchOutcome{Opened: false, URL: rawURL}, nil
}

// resolveCandidates unions BROWSER-env candidates (in order, with %s
// substituted for the URL or the URL appended when no placeholder is
// present) with the platform's default commands, de-duplicated by first
// occurrence.
func (l *Launcher) resolveCandidates(rawURL string) [][]string {
	seen := map[string]bool{}
	var out [][]string

	add := func(fields []string) {
		if len(fields) == 0 {
			return
		}
		key := strings.Join(fields, "\x00")
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, fields)
	}

	for _, entry := range l.browserEnvCandidates() {
		fields := splitShellWords(entry)
		if len(fields) == 0 {
			continue
		}
		substituted := false
		resolved := make([]string, len(fields))
		for i, f := range fields {
			if strings.Contains(f, "%s") {
				resolved[i] = strings.ReplaceAll(f, "%s", rawURL)
				substituted = true
			} else {
				resolved[i] = f
			}
		}
		if !substituted {
			resolved = append(resolved, rawURL)
		}
		add(resolved)
	}

	for _, fields := range l.defaultCommands(rawURL) {
		add(fields)
	}
	return out
}

func (l *Launcher) browserEnvCandidates() []string {
	val := l.getenv("BROWSER")
	if val == "" {
		return nil
	}
	sep := ":"
	if l.goos == "windows" {
		sep = ";"
	}
	parts := strings.Split(val, sep)
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *Launcher) defaultCommands(rawURL string) [][]string {
	switch l.goos {
	case "windows":
		return [][]string{
			{"cmd", "/C", "start", "", rawURL},
			{"rundll32", "url.dll,FileProtocolHandler", rawURL},
		}
	case "darwin":
		return [][]string{{"open", rawURL}}
	default:
		return [][]string{
			{"xdg-open", rawURL},
			{"gio", "open", "--", rawURL},
			{"sensible-browser", rawURL},
			{"www-browser", rawURL},
		}
	}
}

// ManualOpenMessage formats the message shown when a browser could not be
// opened automatically.
func ManualOpenMessage(rawURL string) string {
	return "Action required: open the following URL in your browser to continue SSO: " + rawURL
}
