package datagen

type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

// Credentials is the login payload derived from a registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r Registration) Credentials() Credentials {
	return Credentials{Username: r.Username, Password: r.Password}
}

type Profile struct {
	Height              int    `json:"height"`
	Weight              int    `json:"weight"`
	ActivityLevel       string `json:"activityLevel"`
	HealthConditions    string `json:"healthConditions"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
}

type Goal struct {
	GoalType     string `json:"goalType"`
	TargetWeight int    `json:"targetWeight"`
	TargetDate   string `json:"targetDate"`
	Description  string `json:"description"`
}

type FoodPortion struct {
	FoodID   int64  `json:"foodId"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type Meal struct {
	Name     string        `json:"name"`
	MealType string        `json:"mealType"`
	Foods    []FoodPortion `json:"foods"`
}

func (m Meal) clone() Meal {
	m.Foods = append([]FoodPortion(nil), m.Foods...)
	return m
}

type Exercise struct {
	Name           string `json:"name"`
	ExerciseType   string `json:"exerciseType"`
	Duration       int    `json:"duration"`
	Intensity      string `json:"intensity"`
	CaloriesBurned int    `json:"caloriesBurned"`
}
