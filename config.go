package snowflake

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/snowflakedb/snowflake-rest-go/internal/logger"
)

// ConnectionConfig carries the account/warehouse-level settings used to
// build the base URL and to populate login-request query parameters.
type ConnectionConfig struct {
	Account   string
	Warehouse string
	Database  string
	Schema    string
	Role      string

	// Protocol, Host and Port override the account-derived default base URL
	// (https://{account}.snowflakecomputing.com), used for local/testing
	// deployments.
	Protocol string
	Host     string
	Port     int
}

// BaseURL resolves the account's REST endpoint, honoring any Host/Protocol
// override.
func (c ConnectionConfig) BaseURL() (*url.URL, error) {
	if c.Host != "" {
		protocol := c.Protocol
		if protocol == "" {
			protocol = "https"
		}
		host := c.Host
		if c.Port != 0 {
			host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		}
		return url.Parse(protocol + "://" + host)
	}
	return url.Parse("https://" + c.Account + ".snowflakecomputing.com")
}

// ProxyConfig is the minimal, explicit proxy override the Client Builder
// supports. Environment-variable proxy precedence chains are not read; only
// the explicit URL (with optional basic-auth credentials) is used.
type ProxyConfig struct {
	URL      *url.URL
	Username string
	Password string
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Username   string
	Auth       AuthMethod
	Connection ConnectionConfig

	// Application is shown as the application label on the browser
	// callback page. It is not sent in login or query requests.
	Application string

	// Timeout, when set, bounds the whole-request duration for the login
	// POST, the SSO callback wait, and (unless overridden per-call) the
	// async query poll deadline. When zero, each operation applies its own
	// default: 120s for the external-browser login POST, 60s for the
	// callback wait, 300s for async polling.
	Timeout time.Duration

	Proxy *ProxyConfig

	Logger logger.Logger

	// HTTPClient, if set, is used as-is instead of one built from Proxy.
	HTTPClient *http.Client
}

// ClientBuilder assembles a Client from functional options.
type ClientBuilder struct {
	cfg ClientConfig
}

// NewClientBuilder starts a builder for the given username and connection.
func NewClientBuilder(username string, conn ConnectionConfig) *ClientBuilder {
	return &ClientBuilder{cfg: ClientConfig{
		Username:   username,
		Connection: conn,
	}}
}

// Option mutates a ClientBuilder.
type Option func(*ClientBuilder)

// WithAuth sets the authentication method.
func WithAuth(auth AuthMethod) Option {
	return func(b *ClientBuilder) { b.cfg.Auth = auth }
}

// WithApplication sets the SSO callback page's application label.
func WithApplication(app string) Option {
	return func(b *ClientBuilder) { b.cfg.Application = app }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *ClientBuilder) { b.cfg.Timeout = d }
}

// WithProxy sets an explicit outbound proxy.
func WithProxy(p ProxyConfig) Option {
	return func(b *ClientBuilder) { b.cfg.Proxy = &p }
}

// WithLogger overrides the default logger.
func WithLogger(l logger.Logger) Option {
	return func(b *ClientBuilder) { b.cfg.Logger = l }
}

// WithHTTPClient overrides the built-in HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(b *ClientBuilder) { b.cfg.HTTPClient = c }
}

// Apply applies options in order.
func (b *ClientBuilder) Apply(opts ...Option) *ClientBuilder {
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves the HTTP client (gzip is automatic via http.Transport's
// built-in transparent compression; TLS uses Go's default trust store) and
// returns a ready-to-use Client.
func (b *ClientBuilder) Build() (*Client, error) {
	cfg := b.cfg
	if cfg.Logger == nil {
		cfg.Logger = logger.New()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		}
		if cfg.Proxy != nil && cfg.Proxy.URL != nil {
			proxyURL := *cfg.Proxy.URL
			if cfg.Proxy.Username != "" {
				proxyURL.User = url.UserPassword(cfg.Proxy.Username, cfg.Proxy.Password)
			}
			transport.Proxy = http.ProxyURL(&proxyURL)
		}
		httpClient = &http.Client{Transport: transport}
	}
	return &Client{cfg: cfg, http: httpClient, log: cfg.Logger}, nil
}

// Client is the top-level entry point: it holds connection configuration and
// an HTTP client, and produces an authenticated Session via Login.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  logger.Logger
}
