package dummy

import (
	"math"
	"time"

	"fitsim/internal/datagen"
)

type Food struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"` // per 100g
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// foods backs /api/foods. Ids 1 to 7 match datagen.PlaceholderFoodIDs.
var foods = []Food{
	{ID: 1, Name: "Bánh phở", Calories: 110, Protein: 1.8, Carbs: 25, Fat: 0.2},
	{ID: 2, Name: "Thịt bò", Calories: 250, Protein: 26, Carbs: 0, Fat: 15},
	{ID: 3, Name: "Cơm trắng", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
	{ID: 4, Name: "Thịt gà", Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6},
	{ID: 5, Name: "Rau muống xào", Calories: 60, Protein: 2.6, Carbs: 4, Fat: 4},
	{ID: 6, Name: "Xà lách", Calories: 15, Protein: 1.4, Carbs: 2.9, Fat: 0.2},
	{ID: 7, Name: "Dầu ô liu", Calories: 884, Protein: 0, Carbs: 0, Fat: 100},
}

func findFood(id int64) (Food, bool) {
	for _, f := range foods {
		if f.ID == id {
			return f, true
		}
	}
	return Food{}, false
}

type Nutrition struct {
	Calories float64 `json:"totalCalories"`
	Protein  float64 `json:"totalProtein"`
	Carbs    float64 `json:"totalCarbs"`
	Fat      float64 `json:"totalFat"`
}

func (n Nutrition) add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

func (n Nutrition) rounded() Nutrition {
	r := func(v float64) float64 { return math.Round(v*10) / 10 }
	return Nutrition{Calories: r(n.Calories), Protein: r(n.Protein), Carbs: r(n.Carbs), Fat: r(n.Fat)}
}

type user struct {
	ID      int64
	Reg     datagen.Registration
	Profile *datagen.Profile
	Created time.Time
}

type goal struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	GoalType     string    `json:"goalType"`
	TargetWeight int       `json:"targetWeight"`
	TargetDate   string    `json:"targetDate"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	CreatedAt    time.Time `json:"createdAt"`
}

type meal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	MealType  string    `json:"mealType"`
	Nutrition Nutrition `json:"nutrition"`
	LoggedAt  time.Time `json:"loggedAt"`
}

type exercise struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Name           string    `json:"name"`
	ExerciseType   string    `json:"exerciseType"`
	Duration       int       `json:"duration"`
	Intensity      string    `json:"intensity"`
	CaloriesBurned int       `json:"caloriesBurned"`
	LoggedAt       time.Time `json:"loggedAt"`
}
