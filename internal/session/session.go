// Package session holds the state one simulated user carries across stages.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fitsim/internal/datagen"
)

var ErrEmptyToken = errors.New("empty auth token")

// Session is passed by value into each stage and returned updated. The zero
// value is the state before Authentication.
type Session struct {
	Token    string
	UserID   int64
	HasUser  bool
	Identity *datagen.Registration
	Claims   *Claims
}

// Claims is the subset of a JWT payload the simulator reports on. The token
// signature is never verified.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

func (s Session) HasToken() bool { return s.Token != "" }

// WithToken returns a copy holding token. A token is never cleared, so an
// empty token is rejected and the session is returned unchanged.
func (s Session) WithToken(token string) (Session, error) {
	if token == "" {
		return s, ErrEmptyToken
	}
	s.Token = token
	s.Claims = ParseClaims(token)
	return s, nil
}

func (s Session) WithUser(id int64) Session {
	s.UserID = id
	s.HasUser = true
	return s
}

func (s Session) WithIdentity(r datagen.Registration) Session {
	s.Identity = &r
	return s
}

func (s Session) Username() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Username
}

// ParseClaims decodes token as an unverified JWT. It returns nil when the
// token is opaque.
func ParseClaims(token string) *Claims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out
}
