package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"fitsim/internal/session"
)

const (
	PathHealth   = "/health"
	PathRegister = "/api/auth/register"
	PathLogin    = "/api/auth/login"
)

// Authentication checks gateway health, registers a fresh identity and logs
// in with it. Any failure fails the stage.
type Authentication struct {
	d Deps
}

func NewAuthentication(d Deps) *Authentication {
	return &Authentication{d: d.withDefaults()}
}

func (a *Authentication) Name() string { return "Authentication" }

func (a *Authentication) Reached() State { return StateAuthenticated }

func (a *Authentication) Run(ctx context.Context, s session.Session) (session.Session, StageResult) {
	rec := newRecorder(a.d, a.Name())

	health := rec.do(ctx, s, call{
		name:   "health check",
		method: http.MethodGet,
		path:   PathHealth,
		onFail: SeverityError,
	})
	if !health.OK() {
		return s, rec.finish(false, "gateway is not healthy")
	}

	reg := a.d.Data.Registration()
	register := rec.do(ctx, s, call{
		name:   "register",
		method: http.MethodPost,
		path:   PathRegister,
		body:   reg,
		expect: http.StatusCreated,
		onFail: SeverityError,
	})
	if !register.OK() {
		return s, rec.finish(false, "registration failed")
	}
	s = s.WithIdentity(reg)
	if id, ok := userID(register.Body); ok {
		s = s.WithUser(id)
	}

	var token string
	login := rec.do(ctx, s, call{
		name:   "login",
		method: http.MethodPost,
		path:   PathLogin,
		body:   reg.Credentials(),
		expect: http.StatusOK,
		onFail: SeverityError,
		check: func(body []byte) (string, error) {
			token = gjson.GetBytes(body, "token").String()
			if token == "" {
				return "", fmt.Errorf("%w: login response has no token", ErrContractViolation)
			}
			return "", nil
		},
	})
	if !login.OK() {
		return s, rec.finish(false, "login failed")
	}

	next, err := s.WithToken(token)
	if err != nil {
		return s, rec.finish(false, err.Error())
	}
	s = next
	if !s.HasUser {
		if id, ok := userID(login.Body); ok {
			s = s.WithUser(id)
		}
	}

	detail := "authenticated as " + s.Username()
	if !s.HasUser {
		detail += " (user id unknown)"
	}
	return s, rec.finish(true, detail)
}

// userID extracts a numeric user.id from a register or login response.
func userID(body []byte) (int64, bool) {
	r := gjson.GetBytes(body, "user.id")
	if !r.Exists() {
		return 0, false
	}
	switch r.Type {
	case gjson.Number:
		return r.Int(), true
	case gjson.String:
		id := r.Int()
		return id, id != 0
	}
	return 0, false
}
