package dummy

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"fitsim/internal/datagen"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   issuer,
		"timestamp": s.cfg.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg datagen.Registration
	if !decode(w, r, &reg) {
		return
	}
	if reg.Username == "" || reg.Password == "" || !strings.Contains(reg.Email, "@") {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	s.mu.Lock()
	_, nameTaken := s.byName[reg.Username]
	_, emailTaken := s.byEmail[reg.Email]
	if nameTaken || emailTaken {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	u := &user{ID: s.id(), Reg: reg, Created: s.cfg.Now()}
	s.users[u.ID] = u
	s.byName[reg.Username] = u.ID
	s.byEmail[reg.Email] = u.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered",
		"user":    publicUser(u),
	})
}

func publicUser(u *user) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"username":  u.Reg.Username,
		"email":     u.Reg.Email,
		"firstName": u.Reg.FirstName,
		"lastName":  u.Reg.LastName,
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds datagen.Credentials
	if !decode(w, r, &creds) {
		return
	}

	s.mu.Lock()
	id, ok := s.byName[creds.Username]
	var u *user
	if ok {
		u = s.users[id]
	}
	s.mu.Unlock()

	if u == nil || u.Reg.Password != creds.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.issueToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": publicUser(u)})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, u *user) {
	if !ownPath(w, r, u) {
		return
	}
	var p datagen.Profile
	if !decode(w, r, &p) {
		return
	}
	if p.Height <= 0 || p.Weight <= 0 {
		writeError(w, http.StatusBadRequest, "height and weight must be positive")
		return
	}

	s.mu.Lock()
	u.Profile = &p
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "profile updated", "profile": p})
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request, u *user) {
	var in datagen.Goal
	if !decode(w, r, &in) {
		return
	}
	if _, err := time.Parse(dateLayout, in.TargetDate); err != nil || in.GoalType == "" {
		writeError(w, http.StatusBadRequest, "goalType and targetDate (YYYY-MM-DD) are required")
		return
	}

	s.mu.Lock()
	g := &goal{
		ID:           s.id(),
		UserID:       u.ID,
		GoalType:     in.GoalType,
		TargetWeight: in.TargetWeight,
		TargetDate:   in.TargetDate,
		Description:  in.Description,
		Status:       "active",
		CreatedAt:    s.cfg.Now(),
	}
	s.goals[u.ID] = append(s.goals[u.ID], g)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, g)
}

// progress is the elapsed share of the goal's time window, in percent.
func (s *Server) progress(g *goal) int {
	target, err := time.Parse(dateLayout, g.TargetDate)
	if err != nil {
		return 0
	}
	total := target.Sub(g.CreatedAt)
	if total <= 0 {
		return 100
	}
	p := int(100 * s.cfg.Now().Sub(g.CreatedAt) / total)
	return min(max(p, 0), 100)
}

func (s *Server) myGoals(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	out := make([]goal, 0, len(s.goals[u.ID]))
	for _, g := range s.goals[u.ID] {
		cp := *g
		cp.Progress = s.progress(g)
		out = append(out, cp)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) goalStatistics(w http.ResponseWriter, r *http.Request, u *user) {
	id, err := strconv.ParseInt(r.PathValue("goalId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals[u.ID] {
		if g.ID != id {
			continue
		}
		days := 0
		if target, err := time.Parse(dateLayout, g.TargetDate); err == nil {
			days = max(int(target.Sub(s.cfg.Now()).Hours()/24), 0)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"goalId":        g.ID,
			"goalType":      g.GoalType,
			"progress":      s.progress(g),
			"daysRemaining": days,
			"status":        g.Status,
			"mealsLogged":   len(s.meals[u.ID]),
			"workoutsDone":  len(s.exercises[u.ID]),
		})
		return
	}
	writeError(w, http.StatusNotFound, "goal not found")
}

func (s *Server) recommendations(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	profile := u.Profile
	goals := len(s.goals[u.ID])
	workouts := len(s.exercises[u.ID])
	s.mu.Unlock()

	type rec struct {
		Type     string `json:"type"`
		Content  string `json:"content"`
		Priority string `json:"priority"`
	}
	var out []rec
	if profile == nil {
		out = append(out, rec{"profile", "Complete your profile to get tailored advice", "high"})
	} else if bmi := float64(profile.Weight) / ((float64(profile.Height) / 100) * (float64(profile.Height) / 100)); bmi >= 25 {
		out = append(out, rec{"nutrition", "Reduce daily calories by 300-500 kcal", "high"})
	} else {
		out = append(out, rec{"nutrition", "Keep a balanced protein intake", "medium"})
	}
	if goals == 0 {
		out = append(out, rec{"goal", "Set a goal to track your progress", "medium"})
	}
	if workouts < 3 {
		out = append(out, rec{"activity", "Aim for at least three workouts per week", "medium"})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listFoods(w http.ResponseWriter, r *http.Request, _ *user) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 || limit < 1 {
		writeError(w, http.StatusBadRequest, "page and limit must be positive")
		return
	}

	start := min((page-1)*limit, len(foods))
	end := min(start+limit, len(foods))
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  foods[start:end],
		"page":  page,
		"limit": limit,
		"total": len(foods),
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func (s *Server) createMeal(w http.ResponseWriter, r *http.Request, u *user) {
	var in datagen.Meal
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || len(in.Foods) == 0 {
		writeError(w, http.StatusBadRequest, "name and foods are required")
		return
	}

	var total Nutrition
	for _, portion := range in.Foods {
		f, ok := findFood(portion.FoodID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown food id "+strconv.FormatInt(portion.FoodID, 10))
			return
		}
		k := float64(portion.Quantity) / 100
		total = total.add(Nutrition{Calories: f.Calories * k, Protein: f.Protein * k, Carbs: f.Carbs * k, Fat: f.Fat * k})
	}

	s.mu.Lock()
	m := meal{ID: s.id(), UserID: u.ID, Name: in.Name, MealType: in.MealType, Nutrition: total.rounded(), LoggedAt: s.cfg.Now()}
	s.meals[u.ID] = append(s.meals[u.ID], m)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) createExercise(w http.ResponseWriter, r *http.Request, u *user) {
	var in datagen.Exercise
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || in.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive duration are required")
		return
	}

	s.mu.Lock()
	e := exercise{
		ID:             s.id(),
		UserID:         u.ID,
		Name:           in.Name,
		ExerciseType:   in.ExerciseType,
		Duration:       in.Duration,
		Intensity:      in.Intensity,
		CaloriesBurned: in.CaloriesBurned,
		LoggedAt:       s.cfg.Now(),
	}
	s.exercises[u.ID] = append(s.exercises[u.ID], e)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

// today sums the nutrition of meals logged on the current day.
func (s *Server) today(userID int64) (Nutrition, int) {
	day := s.cfg.Now().Format(dateLayout)
	var total Nutrition
	n := 0
	for _, m := range s.meals[userID] {
		if m.LoggedAt.Format(dateLayout) == day {
			total = total.add(m.Nutrition)
			n++
		}
	}
	return total.rounded(), n
}

func (s *Server) nutritionAnalysis(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	total, n := s.today(u.ID)
	s.mu.Unlock()

	if n == 0 {
		writeError(w, http.StatusNotFound, "no nutrition data for today")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Date string `json:"date"`
		Nutrition
		MealCount int `json:"mealCount"`
	}{s.cfg.Now().Format(dateLayout), total, n})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, u *user) {
	if !ownPath(w, r, u) {
		return
	}

	s.mu.Lock()
	total, meals := s.today(u.ID)
	burned := 0
	types := map[string]int{}
	for _, e := range s.exercises[u.ID] {
		burned += e.CaloriesBurned
		types[e.ExerciseType]++
	}
	goals := len(s.goals[u.ID])
	profile := u.Profile
	s.mu.Unlock()

	activity := make([]string, 0, len(types))
	for t := range types {
		activity = append(activity, t)
	}
	sort.Strings(activity)

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":          profile,
		"caloriesConsumed": total.Calories,
		"caloriesBurned":   burned,
		"mealsToday":       meals,
		"activeGoals":      goals,
		"activityTypes":    activity,
	})
}
