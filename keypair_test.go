package snowflake

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateTestKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestGenerateKeyPairJWTClaimShape(t *testing.T) {
	pemBytes := generateTestKeyPEM(t)
	auth := KeyPairAuth{PEM: pemBytes}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signed, err := generateKeyPairJWT(auth, "myaccount.us-east-1", "alice", now)
	if err != nil {
		t.Fatal(err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(signed, jwt.MapClaims{})
	if err != nil {
		t.Fatal(err)
	}
	claims := parsed.Claims.(jwt.MapClaims)

	sub, _ := claims.GetSubject()
	if sub != "MYACCOUNT.ALICE" {
		t.Fatalf("subject = %q, want account truncated at '.' and uppercased", sub)
	}
	iss, _ := claims.GetIssuer()
	if !strings.HasPrefix(iss, "MYACCOUNT.ALICE.SHA256:") {
		t.Fatalf("issuer = %q", iss)
	}

	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	if exp.Time.Sub(iat.Time) != keyPairJWTLifetime {
		t.Fatalf("lifetime = %v, want %v", exp.Time.Sub(iat.Time), keyPairJWTLifetime)
	}
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	if _, err := parsePrivateKey([]byte("not pem"), nil); err == nil {
		t.Fatal("expected error for non-PEM input")
	}
}
