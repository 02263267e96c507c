package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrMalformedToken = errors.New("stored token is not a parsable JWT")

// TokenInfo is what the client can read out of the stored bearer token
// without the server secret: the claims are parsed unverified, purely to
// know who the token was issued to and when it lapses.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never report expired.
func (i *TokenInfo) Expired() bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(i.ExpiresAt)
}

func parseTokenInfo(tokenString string) (*TokenInfo, error) {
	parser := &jwt.Parser{}
	token, _, err := parser.ParseUnverified(tokenString, &jwt.StandardClaims{})
	if err != nil {
		return nil, ErrMalformedToken
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != 0 {
		info.IssuedAt = time.Unix(claims.IssuedAt, 0)
	}
	if claims.ExpiresAt != 0 {
		info.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
	}
	return info, nil
}
