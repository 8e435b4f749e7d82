package ssobrowser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrNotATTY indicates stdin isn't a terminal, so non-canonical input mode
// cannot be engaged.
var ErrNotATTY = errors.New("ssobrowser: stdin is not a terminal")

// AuthenticatorResponse is what the caller's RequestAuthenticator function
// must return: the SSO URL to open and, for the with-listener flow, the
// proof key echoed back in the final login request.
type AuthenticatorResponse struct {
	SSOURL   string
	ProofKey string
}

// RequestAuthenticatorFunc POSTs session/authenticator-request. It is
// injected by the caller (the root package's login client) so this package
// never needs to know about HTTP/session wiring, avoiding an import cycle.
type RequestAuthenticatorFunc func(ctx context.Context, redirectPort uint16) (AuthenticatorResponse, error)

// Result is the outcome of a completed SSO flow.
type Result struct {
	Token    string
	ProofKey string
}

// Config is the tagged union of SSO callback strategies this package
// understands; the root package's BrowserConfig variants convert to these
// when invoking Run, keeping this package free of a dependency on the root
// package.
type Config interface{ isConfig() }

// WithCallbackListenerConfig mirrors the root package's WithCallbackListener
// option.
type WithCallbackListenerConfig struct {
	LaunchMode int
	Listener   ListenerConfig
}

func (WithCallbackListenerConfig) isConfig() {}

// WithoutCallbackListenerConfig mirrors WithoutCallbackListener.
type WithoutCallbackListenerConfig struct {
	LaunchMode   int
	RedirectPort uint16
}

func (WithoutCallbackListenerConfig) isConfig() {}

// Run drives the external-browser SSO flow end to end, dispatching on the
// Config variant.
func Run(ctx context.Context, cfg Config, requestAuth RequestAuthenticatorFunc, timeout time.Duration) (Result, error) {
	switch c := cfg.(type) {
	case WithCallbackListenerConfig:
		return runWithListener(ctx, c, requestAuth, timeout)
	case WithoutCallbackListenerConfig:
		return runWithoutListener(ctx, c, requestAuth)
	default:
		return Result{}, fmt.Errorf("ssobrowser: unsupported config type %T", cfg)
	}
}

func openAuthPage(launchMode int, ssoURL string) {
	if launchMode == 1 /* manual */ {
		fmt.Fprintln(os.Stderr, ManualOpenMessage(ssoURL))
		return
	}
	outcome, err := NewLauncher().Open(ssoURL)
	if err != nil || !outcome.Opened {
		fmt.Fprintln(os.Stderr, ManualOpenMessage(ssoURL))
	}
}

func runWithListener(ctx context.Context, cfg WithCallbackListenerConfig, requestAuth RequestAuthenticatorFunc, timeout time.Duration) (Result, error) {
	running, err := SpawnListener(cfg.Listener)
	if err != nil {
		return Result{}, err
	}
	port := uint16(running.Addr.(*net.TCPAddr).Port)

	auth, err := requestAuth(ctx, port)
	if err != nil {
		_ = running.Shutdown(context.Background())
		return Result{}, err
	}

	openAuthPage(cfg.LaunchMode, auth.SSOURL)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var payload Payload
	var fallbackMsg string
	select {
	case <-running.Payloads.Ready():
		payload = running.Payloads.Value()
	case <-running.done:
		// The serving loop exited on its own (listener error, unexpected
		// close) before any payload arrived.
		fallbackMsg = "Local callback listener stopped before receiving token. Continue with manual URL input."
	case <-timer.C:
		fallbackMsg = "Callback was not received in time. Falling back to manual URL input."
	}
	_ = running.Shutdown(context.Background())

	if fallbackMsg != "" {
		fmt.Fprintln(os.Stderr, fallbackMsg)
		token, err := manualTokenFlow()
		if err != nil {
			return Result{}, err
		}
		return Result{Token: token, ProofKey: auth.ProofKey}, nil
	}
	return Result{Token: payload.Token, ProofKey: auth.ProofKey}, nil
}

func runWithoutListener(ctx context.Context, cfg WithoutCallbackListenerConfig, requestAuth RequestAuthenticatorFunc) (Result, error) {
	auth, err := requestAuth(ctx, cfg.RedirectPort)
	if err != nil {
		return Result{}, err
	}
	openAuthPage(cfg.LaunchMode, auth.SSOURL)
	fmt.Fprintln(os.Stderr, "Your browser will likely show a connection-error page after sign-in. This is expected; copy the URL from the address bar instead.")
	token, err := manualTokenFlow()
	if err != nil {
		return Result{}, err
	}
	return Result{Token: token, ProofKey: auth.ProofKey}, nil
}

func manualTokenFlow() (string, error) {
	fmt.Fprint(os.Stderr, "Redirected URL: ")
	line, err := readRedirectedURLLine()
	if err != nil {
		return "", err
	}
	if trimmedEmpty(line) {
		return "", errors.New("no redirected URL was provided")
	}
	payload, err := ExtractFromURL(line)
	if err != nil {
		return "", fmt.Errorf("unable to extract token from redirected URL (expected query or fragment token=...): %w", err)
	}
	if payload.Token == "" {
		return "", errors.New("unable to extract token from redirected URL (expected query or fragment token=...)")
	}
	return payload.Token, nil
}

func readRedirectedURLLine() (string, error) {
	line, err := readRedirectedURLLineNoncanonical()
	if errors.Is(err, ErrNotATTY) {
		l, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && l == "" {
			return "", err
		}
		return trimNewline(l), nil
	}
	return line, err
}

func trimmedEmpty(s string) bool {
	return trimNewline(s) == ""
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
