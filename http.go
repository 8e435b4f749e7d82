package snowflake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	snowflakeClientAppID   = "GoRESTClient"
	snowflakeDriverVersion = "1.0.0"
)

func userAgent() string {
	return fmt.Sprintf("%s/%s", snowflakeClientAppID, snowflakeDriverVersion)
}

// postJSON POSTs a JSON body to fullURL and decodes the JSON response into
// out. Non-2xx responses surface the body as a KindCommunication error.
func postJSON(ctx context.Context, httpClient *http.Client, fullURL string, headers map[string]string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return newErr(KindJSON, "failed to encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(buf))
	if err != nil {
		return newErr(KindURL, "invalid request URL: "+fullURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/snowflake")
	req.Header.Set("User-Agent", userAgent())
	for k, v := range headers {
		if !isValidHeaderValue(v) {
			return newErr(KindInvalidHeader, "invalid header value for "+k, nil)
		}
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return newErr(KindHTTP, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newErr(KindIO, "failed to read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newCommunicationErr(string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return newJSONErr(err, string(respBody))
	}
	return nil
}

// getJSON is the GET counterpart used for polling the async query result
// URL. Result chunks are fetched by downloadChunk instead.
func getJSON(ctx context.Context, httpClient *http.Client, fullURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return newErr(KindURL, "invalid request URL: "+fullURL, err)
	}
	req.Header.Set("Accept", "application/snowflake")
	req.Header.Set("User-Agent", userAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return newErr(KindHTTP, "request failed", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newErr(KindIO, "failed to read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newCommunicationErr(string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return newJSONErr(err, string(respBody))
	}
	return nil
}

func isValidHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 && v[i] != '\t' {
			return false
		}
	}
	return true
}

// isValidHeaderName checks name against the RFC 7230 token grammar HTTP
// header field names must follow.
func isValidHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", rune(c)):
		default:
			return false
		}
	}
	return true
}

// validateHeaderMap checks that a server-supplied header map ("chunkHeaders")
// is well-formed before it's attached to every subsequent chunk download
// request.
func validateHeaderMap(headers map[string]string) error {
	for k, v := range headers {
		if !isValidHeaderName(k) {
			return newErr(KindInvalidHeader, "malformed chunk header name: "+k, nil)
		}
		if !isValidHeaderValue(v) {
			return newErr(KindInvalidHeader, "malformed chunk header value for "+k, nil)
		}
	}
	return nil
}

func resolveURL(base *url.URL, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", newErr(KindURL, "invalid URL: "+ref, err)
	}
	if refURL.IsAbs() {
		return refURL.String(), nil
	}
	return base.ResolveReference(refURL).String(), nil
}
