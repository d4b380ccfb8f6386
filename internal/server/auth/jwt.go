// Package auth signs the session cookie. The cookie value is an HS256 token
// whose only job is to carry the opaque session id tamper-proof; all session
// state stays on the server.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the standard registered claims plus the session id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// CookieSigner turns session ids into cookie values and back.
type CookieSigner struct {
	secret []byte
	now    func() time.Time
}

func NewCookieSigner(secret []byte) *CookieSigner {
	return &CookieSigner{secret: secret, now: time.Now}
}

// Sign wraps sessionID in a token valid for ttl.
func (c *CookieSigner) Sign(sessionID string, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionID: sessionID,
	})

	return token.SignedString(c.secret)
}

// SessionID validates value and extracts the session id. Expired tokens
// yield common.ErrTokenExpired, anything else invalid common.ErrInvalidToken.
func (c *CookieSigner) SessionID(value string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.SessionID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.SessionID, nil
}
