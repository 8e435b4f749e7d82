package snowflake

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/snowflakedb/snowflake-rest-go/internal/ssobrowser"
)

// Login authenticates per the Client's configured AuthMethod and returns a
// ready-to-use Session.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	base, err := c.cfg.Connection.BaseURL()
	if err != nil {
		return nil, newErr(KindURL, "invalid connection configuration", err)
	}
	c.log.Debugf("logging in to %v as %v", base, c.cfg.Username)

	switch auth := c.cfg.Auth.(type) {
	case PasswordAuth:
		return c.loginWithData(ctx, base, loginRequestData{
			AccountName:       c.cfg.Connection.Account,
			LoginName:         c.cfg.Username,
			Password:          auth.Password,
			ClientEnvironment: newClientEnvironment(timeoutSeconds(c.cfg.Timeout)),
		}, false)
	case KeyPairAuth:
		token, err := generateKeyPairJWT(auth, c.cfg.Connection.Account, c.cfg.Username, time.Now())
		if err != nil {
			return nil, err
		}
		return c.loginWithData(ctx, base, loginRequestData{
			AccountName:       c.cfg.Connection.Account,
			LoginName:         c.cfg.Username,
			Authenticator:     "SNOWFLAKE_JWT",
			Token:             token,
			ClientEnvironment: newClientEnvironment(timeoutSeconds(c.cfg.Timeout)),
		}, false)
	case OAuthAuth:
		return c.loginWithData(ctx, base, loginRequestData{
			AccountName:       c.cfg.Connection.Account,
			LoginName:         c.cfg.Username,
			Authenticator:     "OAUTH",
			Token:             auth.Token,
			ClientEnvironment: newClientEnvironment(timeoutSeconds(c.cfg.Timeout)),
		}, false)
	case ExternalBrowserAuth:
		return c.loginExternalBrowser(ctx, base, auth)
	default:
		return nil, newErr(KindDecode, "unsupported auth method", nil)
	}
}

func timeoutSeconds(d time.Duration) *int64 {
	if d <= 0 {
		return nil
	}
	s := int64(d.Seconds())
	return &s
}

func (c *Client) loginWithData(ctx context.Context, base *url.URL, data loginRequestData, externalBrowser bool) (*Session, error) {
	params := url.Values{}
	if c.cfg.Connection.Database != "" {
		params.Set("databaseName", c.cfg.Connection.Database)
	}
	if c.cfg.Connection.Schema != "" {
		params.Set("schemaName", c.cfg.Connection.Schema)
	}
	if c.cfg.Connection.Warehouse != "" {
		params.Set("warehouse", c.cfg.Connection.Warehouse)
	}
	if c.cfg.Connection.Role != "" {
		params.Set("roleName", c.cfg.Connection.Role)
	}
	if externalBrowser {
		params.Set("request_id", uuid.NewString())
	}

	fullURL := base.ResolveReference(&url.URL{Path: "/session/v1/login-request", RawQuery: params.Encode()}).String()

	timeout := c.cfg.Timeout
	if externalBrowser && timeout <= 0 {
		timeout = 120 * time.Second
	}
	loginCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		loginCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var resp loginResponse
	if err := postJSON(loginCtx, c.http, fullURL, nil, loginRequest{Data: data}, &resp); err != nil {
		c.log.Warnf("login request failed: %v", err)
		return nil, err
	}
	if !resp.Success {
		c.log.Warnf("login rejected: %v", resp.Message)
		return nil, newCommunicationErr(resp.Message)
	}
	if resp.Data == nil {
		return nil, newCommunicationErr("missing login-response data")
	}
	c.log.Debug("login succeeded")
	return &Session{
		client:  c,
		base:    base,
		token:   resp.Data.Token,
		account: c.cfg.Connection.Account,
		timeout: c.cfg.Timeout,
	}, nil
}

func (c *Client) loginExternalBrowser(ctx context.Context, base *url.URL, auth ExternalBrowserAuth) (*Session, error) {
	requestAuth := func(ctx context.Context, redirectPort uint16) (ssobrowser.AuthenticatorResponse, error) {
		fullURL := base.ResolveReference(&url.URL{Path: "/session/authenticator-request"}).String()
		reqData := authenticatorRequestData{
			AccountName:             c.cfg.Connection.Account,
			LoginName:               c.cfg.Username,
			ClientEnvironment:       newClientEnvironment(timeoutSeconds(c.cfg.Timeout)),
			Authenticator:           "EXTERNALBROWSER",
			BrowserModeRedirectPort: strconv.Itoa(int(redirectPort)),
		}
		var resp authenticatorResponse
		if err := postJSON(ctx, c.http, fullURL, nil, authenticatorRequest{Data: reqData}, &resp); err != nil {
			return ssobrowser.AuthenticatorResponse{}, err
		}
		if !resp.Success || resp.Data == nil {
			return ssobrowser.AuthenticatorResponse{}, newCommunicationErr(resp.Message)
		}
		return ssobrowser.AuthenticatorResponse{SSOURL: resp.Data.SSOURL, ProofKey: resp.Data.ProofKey}, nil
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var ssoCfg ssobrowser.Config
	launchMode := 0
	switch cfg := auth.Config.(type) {
	case WithCallbackListener:
		if cfg.LaunchMode == BrowserLaunchManual {
			launchMode = 1
		}
		listenerCfg := ssobrowser.DefaultListenerConfig()
		if cfg.Addr != nil {
			listenerCfg.Host = cfg.Addr
		}
		listenerCfg.Port = cfg.Port
		listenerCfg.Application = c.cfg.Application
		ssoCfg = ssobrowser.WithCallbackListenerConfig{LaunchMode: launchMode, Listener: listenerCfg}
	case WithoutCallbackListener:
		if cfg.LaunchMode == BrowserLaunchManual {
			launchMode = 1
		}
		ssoCfg = ssobrowser.WithoutCallbackListenerConfig{LaunchMode: launchMode, RedirectPort: cfg.RedirectPort}
	default:
		return nil, newErr(KindDecode, "unsupported browser config", nil)
	}

	result, err := ssobrowser.Run(ctx, ssoCfg, requestAuth, timeout)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		// ssobrowser.Run's own errors (empty/unparsable manual-paste input)
		// are plain errors to keep that package free of a dependency on
		// this one; wrap them the same way any other failed authentication
		// round trip is reported to callers.
		return nil, newCommunicationErr(err.Error())
	}

	return c.loginWithData(ctx, base, loginRequestData{
		AccountName:       c.cfg.Connection.Account,
		LoginName:         c.cfg.Username,
		Authenticator:     "EXTERNALBROWSER",
		Token:             result.Token,
		ProofKey:          result.ProofKey,
		ClientEnvironment: newClientEnvironment(timeoutSeconds(c.cfg.Timeout)),
	}, true)
}
