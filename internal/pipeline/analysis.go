package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"fitsim/internal/session"
)

const (
	PathNutritionAnalysis = "/api/nutrition/analysis"
	PathMyGoals           = "/api/goals/my-goals"
	PathRecommendations   = "/api/goals/recommendations"
)

func dashboardPath(userID int64) string {
	return "/api/users/" + strconv.FormatInt(userID, 10) + "/dashboard"
}

func goalStatisticsPath(goalID string) string {
	return "/api/goals/" + goalID + "/statistics"
}

// Analysis pulls the read-only reports. Every failure is a warning and the
// stage always completes.
type Analysis struct {
	d Deps
}

func NewAnalysis(d Deps) *Analysis {
	return &Analysis{d: d.withDefaults()}
}

func (a *Analysis) Name() string { return "Analysis" }

func (a *Analysis) Reached() State { return StateAnalyzedDone }

func (a *Analysis) Run(ctx context.Context, s session.Session) (session.Session, StageResult) {
	rec := newRecorder(a.d, a.Name())

	nutrition := get("nutrition analysis", PathNutritionAnalysis, SeverityWarning)
	nutrition.check = func(body []byte) (string, error) {
		r := gjson.ParseBytes(body)
		return fmt.Sprintf("calories %s kcal, protein %sg, carbs %sg, fat %sg",
			num(r.Get("totalCalories")), num(r.Get("totalProtein")),
			num(r.Get("totalCarbs")), num(r.Get("totalFat"))), nil
	}
	rec.do(ctx, s, nutrition)

	var goalIDs []string
	goals := get("my goals", PathMyGoals, SeverityWarning)
	goals.check = func(body []byte) (string, error) {
		list := gjson.ParseBytes(body).Array()
		if len(list) == 0 {
			return "", fmt.Errorf("%w: no goals found", ErrContractViolation)
		}
		for _, g := range list {
			if id := g.Get("id"); id.Exists() {
				goalIDs = append(goalIDs, id.String())
			}
		}
		return fmt.Sprintf("%d goal(s)", len(list)), nil
	}
	rec.do(ctx, s, goals)

	for _, id := range goalIDs {
		stat := get("goal "+id+" statistics", goalStatisticsPath(id), SeverityWarning)
		stat.check = func(body []byte) (string, error) {
			if p := gjson.GetBytes(body, "progress"); p.Exists() {
				return "progress " + num(p) + "%", nil
			}
			return "", nil
		}
		rec.do(ctx, s, stat)
	}

	recs := get("recommendations", PathRecommendations, SeverityWarning)
	recs.check = func(body []byte) (string, error) {
		n := len(gjson.ParseBytes(body).Array())
		if n == 0 {
			return "", fmt.Errorf("%w: no recommendations yet", ErrContractViolation)
		}
		return fmt.Sprintf("%d recommendation(s)", n), nil
	}
	rec.do(ctx, s, recs)

	dashboard := get("dashboard", "/api/users/{id}/dashboard", SeverityWarning)
	if s.HasUser {
		dashboard.path = dashboardPath(s.UserID)
		dashboard.check = func(body []byte) (string, error) {
			keys := DashboardKeys(body)
			if len(keys) == 0 {
				return "dashboard is still updating", nil
			}
			return "sections: " + strings.Join(keys, ", "), nil
		}
		rec.do(ctx, s, dashboard)
	} else {
		rec.skip(dashboard, fmt.Errorf("%w: no user id in session", ErrContractViolation))
	}

	c := rec.result.Counters()
	return s, rec.finish(true, fmt.Sprintf("%d read(s), %d warning(s)", len(rec.result.Ops), c.Warnings))
}

// DashboardKeys lists the sorted top-level keys of a dashboard response.
func DashboardKeys(body []byte) []string {
	var keys []string
	gjson.ParseBytes(body).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// num renders a JSON number, or 0 when absent.
func num(r gjson.Result) string {
	if !r.Exists() {
		return "0"
	}
	return strconv.FormatFloat(r.Float(), 'f', -1, 64)
}
