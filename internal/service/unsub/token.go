// Package unsub signs one-click unsubscribe links. Tokens are an HMAC over
// the normalized address, so links stay valid indefinitely and need no
// server-side storage.
package unsub

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"

	"rrtracker/pkg/util"
)

// Signer issues and verifies unsubscribe tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Token returns the hex HMAC-SHA256 of the normalized email.
func (s *Signer) Token(email string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(util.NormalizeEmail(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token matches email, in constant time.
func (s *Signer) Verify(email, token string) bool {
	return hmac.Equal([]byte(s.Token(email)), []byte(token))
}

// Link builds the signed unsubscribe URL for email under baseURL.
func (s *Signer) Link(baseURL, email string) string {
	e := util.NormalizeEmail(email)
	return baseURL + "/api/unsubscribe?e=" + url.QueryEscape(e) + "&t=" + s.Token(e)
}
