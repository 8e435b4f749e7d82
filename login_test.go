package snowflake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, srv *httptest.Server, auth AuthMethod) *Client {
	t.Helper()
	conn := ConnectionConfig{Account: "testaccount", Protocol: "http", Host: srv.Listener.Addr().String()}
	c, err := NewClientBuilder("tester", conn).Apply(
		WithAuth(auth),
		WithHTTPClient(srv.Client()),
	).Build()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoginPasswordSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/session/v1/login-request", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Data.Password != "hunter2" {
			t.Fatalf("password = %q", req.Data.Password)
		}
		json.NewEncoder(w).Encode(loginResponse{Success: true, Data: &loginResponseData{Token: "sess-token"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, PasswordAuth{Password: "hunter2"})
	sess, err := c.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sess.Token() != "sess-token" {
		t.Fatalf("token = %q", sess.Token())
	}
}

func TestLoginOAuthSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/session/v1/login-request", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Data.Authenticator != "OAUTH" || req.Data.Token != "oauth-tok" {
			t.Fatalf("req.Data = %+v", req.Data)
		}
		json.NewEncoder(w).Encode(loginResponse{Success: true, Data: &loginResponseData{Token: "sess-token-2"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, OAuthAuth{Token: "oauth-tok"})
	sess, err := c.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sess.Token() != "sess-token-2" {
		t.Fatalf("token = %q", sess.Token())
	}
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/session/v1/login-request", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(loginResponse{Success: false, Message: "incorrect username or password"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, PasswordAuth{Password: "wrong"})
	_, err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	sfErr, ok := err.(*Error)
	if !ok || sfErr.Kind != KindCommunication {
		t.Fatalf("err = %v, want KindCommunication", err)
	}
}
