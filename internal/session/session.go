package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated backend session: the bearer token and its
// expiry as epoch seconds.
type Session struct {
	Token  string
	Expiry int64
}

// ValidAt reports whether the session is usable at time t. A session is
// valid only while its expiry is strictly in the future; t equal to the
// expiry is already invalid.
func (s Session) ValidAt(t time.Time) bool {
	return s.Token != "" && t.Unix() < s.Expiry
}

// Valid reports whether the session is usable right now.
func (s Session) Valid() bool {
	return s.ValidAt(time.Now())
}

// Decode verifies a token against the shared HMAC secret and derives the
// session expiry from its exp claim. On any parse or verification failure
// the returned session still carries the raw token with a zero expiry, so
// a caller may keep using it until the next validity check rejects it.
func Decode(secret, tokenStr string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{Token: tokenStr}, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid || claims.ExpiresAt == nil {
		return Session{Token: tokenStr}, fmt.Errorf("token has no usable expiry")
	}

	return Session{Token: tokenStr, Expiry: claims.ExpiresAt.Unix()}, nil
}
