package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"fitsim/internal/session"
)

const PathGoals = "/api/goals"

func profilePath(userID int64) string {
	return "/api/users/" + strconv.FormatInt(userID, 10) + "/profile"
}

// PersonalInfo updates the profile and creates one goal. The two operations
// are independent.
type PersonalInfo struct {
	d Deps
}

func NewPersonalInfo(d Deps) *PersonalInfo {
	return &PersonalInfo{d: d.withDefaults()}
}

func (p *PersonalInfo) Name() string { return "Personal Info" }

func (p *PersonalInfo) Reached() State { return StateProfileDone }

func (p *PersonalInfo) Run(ctx context.Context, s session.Session) (session.Session, StageResult) {
	rec := newRecorder(p.d, p.Name())

	profile := call{
		name:   "update profile",
		method: http.MethodPut,
		body:   p.d.Data.Profile(),
		auth:   true,
		expect: http.StatusOK,
		onFail: SeverityError,
	}
	if s.HasUser {
		profile.path = profilePath(s.UserID)
		rec.do(ctx, s, profile)
	} else {
		profile.path = "/api/users/{id}/profile"
		rec.skip(profile, fmt.Errorf("%w: no user id in session", ErrContractViolation))
	}

	rec.do(ctx, s, call{
		name:   "create goal",
		method: http.MethodPost,
		path:   PathGoals,
		body:   p.d.Data.Goal(),
		auth:   true,
		expect: http.StatusCreated,
		onFail: SeverityError,
		check: func(body []byte) (string, error) {
			if id := gjson.GetBytes(body, "id"); id.Exists() {
				return "goal id " + id.String(), nil
			}
			return "", nil
		},
	})

	c := rec.result.Counters()
	return s, rec.finish(!rec.hasErrors(), fmt.Sprintf("%d/%d operations succeeded", c.OK, len(rec.result.Ops)))
}
