package datagen

var (
	firstNames = []string{"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Võ", "Đặng"}
	lastNames  = []string{"An", "Bình", "Chi", "Dung", "Hà", "Linh", "Mai", "Nam", "Quang", "Thảo"}
	genders    = []string{"male", "female"}

	activityLevels     = []string{"sedentary", "lightly_active", "moderately_active", "very_active"}
	healthConditions   = []string{"none", "diabetes", "hypertension"}
	dietaryRestriction = []string{"none", "vegetarian", "vegan", "gluten_free"}

	goalTypes     = []string{"lose_weight", "gain_muscle", "maintain_weight", "improve_endurance"}
	targetWeights = []int{60, 65, 70, 75, 80}
	goalDays      = []int{30, 60, 90, 180}
)

const (
	EmailDomain     = "fitness.test"
	Password        = "FitnessApp123!"
	GoalDescription = "Mục tiêu fitness cá nhân được tạo tự động"

	MinHeightCm = 150
	MaxHeightCm = 180
	MinWeightKg = 50
	MaxWeightKg = 90
)

// PlaceholderFoodIDs are the food ids used by the meal catalog when no live
// food list is available. The gateway is expected to seed foods 1 to 7.
var PlaceholderFoodIDs = []int64{1, 2, 3, 4, 5, 6, 7}

var meals = []Meal{
	{
		Name:     "Phở bò",
		MealType: "breakfast",
		Foods: []FoodPortion{
			{FoodID: 1, Quantity: 300, Unit: "g"},
			{FoodID: 2, Quantity: 100, Unit: "g"},
		},
	},
	{
		Name:     "Cơm trưa văn phòng",
		MealType: "lunch",
		Foods: []FoodPortion{
			{FoodID: 3, Quantity: 150, Unit: "g"},
			{FoodID: 4, Quantity: 100, Unit: "g"},
			{FoodID: 5, Quantity: 200, Unit: "g"},
		},
	},
	{
		Name:     "Salad tối",
		MealType: "dinner",
		Foods: []FoodPortion{
			{FoodID: 6, Quantity: 200, Unit: "g"},
			{FoodID: 7, Quantity: 50, Unit: "g"},
		},
	},
}

var exercises = []Exercise{
	{Name: "Chạy bộ buổi sáng", ExerciseType: "cardio", Duration: 30, Intensity: "moderate", CaloriesBurned: 300},
	{Name: "Tập gym", ExerciseType: "strength", Duration: 60, Intensity: "high", CaloriesBurned: 400},
	{Name: "Yoga thư giãn", ExerciseType: "flexibility", Duration: 45, Intensity: "low", CaloriesBurned: 150},
}

// Catalog accessors return copies so callers cannot mutate the fixed data.

func Meals() []Meal {
	out := make([]Meal, len(meals))
	for i, m := range meals {
		out[i] = m.clone()
	}
	return out
}

func Exercises() []Exercise {
	return append([]Exercise(nil), exercises...)
}
