package ssobrowser

import (
	"encoding/json"
	"net/url"
)

type jsonCallbackBody struct {
	Token   string `json:"token"`
	Consent *bool  `json:"consent"`
}

// parseJSONPayload decodes a POST body shaped as {"token": "...", "consent":
// true}. A malformed body yields an empty Payload rather than an error;
// the caller treats a missing token as "no token provided" either way.
func parseJSONPayload(body []byte) Payload {
	var b jsonCallbackBody
	if err := json.Unmarshal(body, &b); err != nil {
		return Payload{}
	}
	return Payload{Token: b.Token, Consent: b.Consent}
}

// parseFormBody parses an application/x-www-form-urlencoded POST body into
// key/value pairs, preserving order for same-named keys.
func parseFormBody(body string) ([][2]string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}
	return pairsFromValues(values), nil
}
