package snowflake

import "net"

// AuthMethod selects how a Session authenticates. The concrete
// implementations below are the closed set of variants; external packages
// cannot add new ones, since isAuthMethod is unexported.
type AuthMethod interface {
	isAuthMethod()
}

// PasswordAuth authenticates with a plaintext password.
type PasswordAuth struct {
	Password string
}

func (PasswordAuth) isAuthMethod() {}

// KeyPairAuth authenticates by signing a JWT with an RSA private key
// (SNOWFLAKE_JWT authenticator). PEM is the PKCS#8 (or, for legacy
// passphrase-protected keys, PKCS#1) encoded private key; Passphrase is
// optional.
type KeyPairAuth struct {
	PEM        []byte
	Passphrase []byte
}

func (KeyPairAuth) isAuthMethod() {}

// OAuthAuth authenticates with a pre-obtained OAuth bearer token. Acquiring
// or refreshing that token is the caller's responsibility.
type OAuthAuth struct {
	Token string
}

func (OAuthAuth) isAuthMethod() {}

// ExternalBrowserAuth drives an SSO flow through a browser-based identity
// provider, either via a local callback listener or a manual URL paste.
type ExternalBrowserAuth struct {
	Config BrowserConfig
}

func (ExternalBrowserAuth) isAuthMethod() {}

// BrowserLaunchMode controls whether the SSO flow attempts to open a
// browser automatically or always presents the URL for the user to open by
// hand.
type BrowserLaunchMode int

const (
	// BrowserLaunchAuto attempts to open the system browser before falling
	// back to a manual prompt.
	BrowserLaunchAuto BrowserLaunchMode = iota
	// BrowserLaunchManual never attempts to open a browser.
	BrowserLaunchManual
)

// BrowserConfig is the tagged union of the two SSO callback strategies: a
// local HTTP listener that receives the token automatically, or no listener
// at all (the user pastes the redirected URL back).
type BrowserConfig interface {
	isBrowserConfig()
}

// WithCallbackListener runs a local HTTP server to receive the SSO
// callback automatically, falling back to manual paste on timeout or
// listener failure.
type WithCallbackListener struct {
	LaunchMode BrowserLaunchMode
	// Addr and Port select the callback listener's bind address; Port 0
	// (the default) lets the OS assign an ephemeral port.
	Addr net.IP
	Port uint16
}

func (WithCallbackListener) isBrowserConfig() {}

// DefaultCallbackListenerConfig returns the default callback listener
// setup: auto launch mode, bound to 127.0.0.1 on an ephemeral port.
func DefaultCallbackListenerConfig() WithCallbackListener {
	return WithCallbackListener{LaunchMode: BrowserLaunchAuto, Addr: net.IPv4(127, 0, 0, 1)}
}

// WithoutCallbackListener skips the local listener entirely; the SSO
// redirect must use RedirectPort, and the user pastes the resulting URL.
type WithoutCallbackListener struct {
	LaunchMode   BrowserLaunchMode
	RedirectPort uint16 // must be non-zero
}

func (WithoutCallbackListener) isBrowserConfig() {}
