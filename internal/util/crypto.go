package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

func HmacSHA256(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SignHostToken issues a bearer token of the form "<hostID>.<hmac>". Host
// identity itself lives in an external service; the orchestrator only needs
// to verify that the token was minted with the shared secret.
func SignHostToken(secret, hostID string) string {
	return fmt.Sprintf("%s.%s", hostID, HmacSHA256(secret, hostID))
}

// VerifyHostToken returns the host id embedded in a signed token, or false if
// the signature does not match.
func VerifyHostToken(secret, token string) (string, bool) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}
	hostID := token[:idx]
	sig := token[idx+1:]
	if !ConstantTimeEqual(sig, HmacSHA256(secret, hostID)) {
		return "", false
	}
	return hostID, true
}
