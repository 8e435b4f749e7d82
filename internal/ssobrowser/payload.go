// Package ssobrowser implements the external-browser SSO flow: parsing the
// callback payload, launching a browser, running the local callback
// listener, and falling back to a manual URL paste.
package ssobrowser

import (
	"net/url"
	"strings"
)

// Payload is the token/consent pair extracted from a callback, whether
// delivered via the local HTTP listener or pasted back by hand.
type Payload struct {
	Token   string
	Consent *bool
}

// ParsePairs folds a sequence of key/value pairs into a Payload using these
// accumulation rules: keys are matched case-insensitively; for "token", the
// first non-empty value wins and later
// empty values never clear it; for "consent", only "true"/"false"
// (case-insensitive, trimmed) are valid and the latest valid value wins;
// an invalid value does not clear a previously parsed one. Unknown keys are
// ignored.
func ParsePairs(pairs [][2]string) Payload {
	var p Payload
	for _, kv := range pairs {
		key := strings.ToLower(kv[0])
		switch key {
		case "token":
			if p.Token == "" && kv[1] != "" {
				p.Token = kv[1]
			}
		case "consent":
			if v, ok := parseConsent(kv[1]); ok {
				p.Consent = &v
			}
		}
	}
	return p
}

func parseConsent(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// ExtractFromURL parses a full redirect URL and returns the merged payload:
// each field (token, consent) independently prefers the query string over
// the fragment.
func ExtractFromURL(rawURL string) (Payload, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Payload{}, err
	}
	query := ParsePairs(pairsFromValues(u.Query()))
	fragValues, err := url.ParseQuery(u.Fragment)
	if err != nil {
		// A malformed fragment isn't fatal; only the query string is
		// guaranteed to be well-formed by url.Parse itself.
		fragValues = url.Values{}
	}
	fragment := ParsePairs(pairsFromValues(fragValues))

	merged := Payload{Token: query.Token, Consent: query.Consent}
	if merged.Token == "" {
		merged.Token = fragment.Token
	}
	if merged.Consent == nil {
		merged.Consent = fragment.Consent
	}
	return merged, nil
}

func pairsFromValues(values url.Values) [][2]string {
	pairs := make([][2]string, 0, len(values))
	for k, vs := range values {
		for _, v := range vs {
			pairs = append(pairs, [2]string{k, v})
		}
	}
	return pairs
}
