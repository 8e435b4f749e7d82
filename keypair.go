package snowflake

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// keyPairJWTLifetime is the fixed ten-minute token validity window.
const keyPairJWTLifetime = 10 * time.Minute

// parsePrivateKey decodes a PEM-encoded RSA private key. When a passphrase
// is supplied and the block is a legacy encrypted PEM block, it is decrypted
// and parsed as PKCS#1; otherwise the block is parsed as unencrypted PKCS#8.
func parsePrivateKey(pemBytes, passphrase []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, newErr(KindIO, "no PEM block found in private key", nil)
	}
	if len(passphrase) > 0 && x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // legacy fallback, see DESIGN.md
		der, err := x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, newErr(KindIO, "failed to decrypt private key", err)
		}
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, newErr(KindIO, "failed to parse decrypted private key", err)
		}
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, newErr(KindIO, "failed to parse PKCS8 private key", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, newErr(KindIO, "private key is not an RSA key", nil)
	}
	return rsaKey, nil
}

// publicKeyFingerprint returns the base64-standard-encoded SHA-256 digest
// of the DER-encoded public key, as used in the JWT "iss" claim.
func publicKeyFingerprint(key *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", newErr(KindIO, "failed to marshal public key", err)
	}
	sum := sha256.Sum256(der)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// generateKeyPairJWT builds and signs the SNOWFLAKE_JWT authenticator token:
// account is uppercased and truncated at the first "." (the region/cloud
// suffix is excluded from the JWT subject/issuer even though
// ConnectionConfig.Account may carry it), username is uppercased.
func generateKeyPairJWT(auth KeyPairAuth, account, username string, now time.Time) (string, error) {
	key, err := parsePrivateKey(auth.PEM, auth.Passphrase)
	if err != nil {
		return "", err
	}
	fingerprint, err := publicKeyFingerprint(key)
	if err != nil {
		return "", err
	}
	accountID := strings.ToUpper(account)
	if idx := strings.IndexByte(accountID, '.'); idx >= 0 {
		accountID = accountID[:idx]
	}
	userID := strings.ToUpper(username)
	subject := accountID + "." + userID
	issuer := subject + ".SHA256:" + fingerprint

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(keyPairJWTLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", newErr(KindIO, "failed to sign JWT", err)
	}
	return signed, nil
}
