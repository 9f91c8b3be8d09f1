// Package datagen produces pseudo-random but schema-valid payloads for the
// simulated user.
package datagen

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const dateLayout = "2006-01-02"

// NewSeededRNG creates a seeded random number generator. A zero seed uses the
// current time.
func NewSeededRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Generator is safe for concurrent use.
type Generator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	now       func() time.Time
	lastToken int64
}

func New(rng *rand.Rand, now func() time.Time) *Generator {
	if rng == nil {
		rng = NewSeededRNG(0)
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// randomRange returns a value in [lo, hi].
func randomRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// token is a millisecond timestamp that strictly increases per generator, so
// two registrations in the same millisecond still get distinct usernames.
func (g *Generator) token() int64 {
	t := g.now().UnixMilli()
	if t <= g.lastToken {
		t = g.lastToken + 1
	}
	g.lastToken = t
	return t
}

func (g *Generator) Registration() Registration {
	g.mu.Lock()
	defer g.mu.Unlock()

	first := pick(g.rng, firstNames)
	last := pick(g.rng, lastNames)
	username := Slug(first) + "_" + Slug(last) + "_" + strconv.FormatInt(g.token(), 10)

	born := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, g.rng.Intn(35*365))

	return Registration{
		Username:    username,
		Email:       username + "@" + EmailDomain,
		Password:    Password,
		FirstName:   first,
		LastName:    last,
		DateOfBirth: born.Format(dateLayout),
		Gender:      pick(g.rng, genders),
	}
}

func (g *Generator) Profile() Profile {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Profile{
		Height:              randomRange(g.rng, MinHeightCm, MaxHeightCm),
		Weight:              randomRange(g.rng, MinWeightKg, MaxWeightKg),
		ActivityLevel:       pick(g.rng, activityLevels),
		HealthConditions:    pick(g.rng, healthConditions),
		DietaryRestrictions: pick(g.rng, dietaryRestriction),
	}
}

func (g *Generator) Goal() Goal {
	g.mu.Lock()
	defer g.mu.Unlock()

	days := pick(g.rng, goalDays)
	return Goal{
		GoalType:     pick(g.rng, goalTypes),
		TargetWeight: pick(g.rng, targetWeights),
		TargetDate:   g.now().AddDate(0, 0, days).Format(dateLayout),
		Description:  GoalDescription,
	}
}

// Meal picks a catalog meal. When available is non-empty every food id is
// replaced by a random pick from it; otherwise the placeholder ids are kept.
func (g *Generator) Meal(available []int64) Meal {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := pick(g.rng, meals).clone()
	if len(available) > 0 {
		for i := range m.Foods {
			m.Foods[i].FoodID = pick(g.rng, available)
		}
	}
	return m
}

func (g *Generator) Exercise() Exercise {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pick(g.rng, exercises)
}

// Slug lowercases s and strips diacritics so it can be used in a username.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// Đ/đ carry a stroke, not a combining mark, so NFD leaves them alone.
	out = strings.NewReplacer("Đ", "D", "đ", "d").Replace(out)
	return cases.Lower(language.Vietnamese).String(out)
}
