package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"fitsim/internal/session"
)

const (
	PathFoods     = "/api/foods?page=1&limit=10"
	PathMeals     = "/api/meals"
	PathExercises = "/api/exercises"

	MealsPerRun     = 3
	ExercisesPerRun = 2
)

// Tracking logs meals and exercises. Every create call is recorded on its
// own and consecutive creates are gated by the pacer.
type Tracking struct {
	d Deps
}

func NewTracking(d Deps) *Tracking {
	return &Tracking{d: d.withDefaults()}
}

func (t *Tracking) Name() string { return "Tracking" }

func (t *Tracking) Reached() State { return StateTrackingDone }

func (t *Tracking) Run(ctx context.Context, s session.Session) (session.Session, StageResult) {
	rec := newRecorder(t.d, t.Name())

	var foods []int64
	rec.do(ctx, s, call{
		name:   "list foods",
		method: http.MethodGet,
		path:   PathFoods,
		auth:   true,
		onFail: SeverityWarning,
		check: func(body []byte) (string, error) {
			foods = foodIDs(body)
			if len(foods) == 0 {
				return "", fmt.Errorf("%w: no food ids, using placeholders", ErrContractViolation)
			}
			return fmt.Sprintf("%d foods available", len(foods)), nil
		},
	})

	created := 0
	for i := 0; i < MealsPerRun; i++ {
		meal := t.d.Data.Meal(foods)
		created += t.create(ctx, rec, s, call{
			name:   fmt.Sprintf("log meal %d (%s)", i+1, meal.Name),
			method: http.MethodPost,
			path:   PathMeals,
			body:   meal,
			auth:   true,
			expect: http.StatusCreated,
			onFail: SeverityError,
		})
	}

	for i := 0; i < ExercisesPerRun; i++ {
		ex := t.d.Data.Exercise()
		created += t.create(ctx, rec, s, call{
			name:   fmt.Sprintf("log exercise %d (%s)", i+1, ex.Name),
			method: http.MethodPost,
			path:   PathExercises,
			body:   ex,
			auth:   true,
			expect: http.StatusCreated,
			onFail: SeverityError,
		})
	}

	return s, rec.finish(!rec.hasErrors(), fmt.Sprintf("%d/%d records created", created, MealsPerRun+ExercisesPerRun))
}

// create waits for the pacer and performs c. It returns 1 when the record
// was created.
func (t *Tracking) create(ctx context.Context, rec *recorder, s session.Session, c call) int {
	if err := t.d.Pacer.Wait(ctx); err != nil {
		rec.skip(c, fmt.Errorf("pacing: %w", err))
		return 0
	}
	if rec.do(ctx, s, c).OK() {
		return 1
	}
	return 0
}

func foodIDs(body []byte) []int64 {
	var ids []int64
	for _, r := range gjson.GetBytes(body, "data.#.id").Array() {
		if id := r.Int(); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
