// Package testutil provides seeded test data factories shared by package tests
package testutil

import (
	"fmt"

	"plan-generator/internal/pkg/common"

	"github.com/brianvoe/gofakeit/v6"
)

// Int 取得 int 指標
func Int(n int) *int {
	return &n
}

// Factory 以固定種子產生測試資料
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory creates a new factory with seeded faker
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Faker 底層的 gofakeit 實例
func (f *Factory) Faker() *gofakeit.Faker {
	return f.faker
}

func (f *Factory) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%03d", prefix, f.seq)
}

// ---------------- Recipe ----------------

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	r common.Recipe
}

// Recipe 建立指定餐別的食譜，營養素依 30/40/30 比例換算
func (f *Factory) Recipe(mealType common.MealType) *RecipeBuilder {
	cal := float64(f.faker.Number(200, 700))
	b := &RecipeBuilder{r: common.Recipe{
		ID:          f.nextID("recipe"),
		Name:        f.faker.Dinner(),
		Description: f.faker.Sentence(6),
		MealType:    mealType,
		DietaryTags: []common.DietaryTag{},
		Ingredients: []common.Ingredient{
			{Name: f.faker.Vegetable(), Quantity: float64(f.faker.Number(1, 4)), Unit: "cup"},
			{Name: f.faker.Fruit(), Quantity: float64(f.faker.Number(1, 3)), Unit: "piece"},
		},
	}}
	return b.WithCalories(cal)
}

// WithID 設定 ID
func (b *RecipeBuilder) WithID(id string) *RecipeBuilder {
	b.r.ID = id
	return b
}

// WithName 設定名稱
func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.r.Name = name
	return b
}

// WithDescription 設定描述
func (b *RecipeBuilder) WithDescription(desc string) *RecipeBuilder {
	b.r.Description = desc
	return b
}

// WithDietaryTags 設定飲食標籤
func (b *RecipeBuilder) WithDietaryTags(tags ...common.DietaryTag) *RecipeBuilder {
	b.r.DietaryTags = tags
	return b
}

// WithTags 設定自由標籤
func (b *RecipeBuilder) WithTags(tags ...string) *RecipeBuilder {
	b.r.Tags = tags
	return b
}

// WithIngredients 以名稱取代食材（每項 1 個單位）
func (b *RecipeBuilder) WithIngredients(names ...string) *RecipeBuilder {
	b.r.Ingredients = nil
	for _, n := range names {
		b.r.Ingredients = append(b.r.Ingredients, common.Ingredient{Name: n, Quantity: 1, Unit: "cup"})
	}
	return b
}

// WithIngredient 追加一項食材
func (b *RecipeBuilder) WithIngredient(name string, qty float64, unit string) *RecipeBuilder {
	b.r.Ingredients = append(b.r.Ingredients, common.Ingredient{Name: name, Quantity: qty, Unit: unit})
	return b
}

// WithCalories 設定熱量並依 30/40/30 換算營養素
func (b *RecipeBuilder) WithCalories(cal float64) *RecipeBuilder {
	g := common.DefaultMacroRatios.Grams(cal)
	b.r.Nutrition = common.Nutrition{
		Calories: cal,
		Protein:  g.Protein,
		Carbs:    g.Carbs,
		Fat:      g.Fat,
		Fiber:    5,
		Sugar:    8,
		Sodium:   300,
	}
	return b
}

// WithNutrition 直接設定營養成分
func (b *RecipeBuilder) WithNutrition(n common.Nutrition) *RecipeBuilder {
	b.r.Nutrition = n
	return b
}

// Build 產生食譜
func (b *RecipeBuilder) Build() common.Recipe {
	return b.r
}

// ---------------- Workout ----------------

// WorkoutBuilder provides a fluent interface for building test workouts
type WorkoutBuilder struct {
	w common.Workout
}

// Workout 建立指定類型的課表，預設為徒手、beginner、30 分鐘
func (f *Factory) Workout(t common.WorkoutType) *WorkoutBuilder {
	return &WorkoutBuilder{w: common.Workout{
		ID:              f.nextID("workout"),
		Name:            fmt.Sprintf("%s %s", f.faker.Adjective(), t),
		Description:     f.faker.Sentence(6),
		Type:            t,
		Difficulty:      common.LevelBeginner,
		DurationMinutes: 30,
		TargetMuscles:   []common.MuscleGroup{common.MuscleFullBody},
		Exercises: []common.Exercise{
			{
				Name:              "Squat",
				MuscleGroups:      []common.MuscleGroup{common.MuscleQuadriceps},
				Sets:              3,
				Reps:              Int(12),
				RestSeconds:       Int(60),
				CaloriesPerMinute: 6,
			},
		},
	}}
}

// WithID 設定 ID
func (b *WorkoutBuilder) WithID(id string) *WorkoutBuilder {
	b.w.ID = id
	return b
}

// WithName 設定名稱與描述
func (b *WorkoutBuilder) WithName(name, desc string) *WorkoutBuilder {
	b.w.Name = name
	b.w.Description = desc
	return b
}

// WithDifficulty 設定難度
func (b *WorkoutBuilder) WithDifficulty(d common.Difficulty) *WorkoutBuilder {
	b.w.Difficulty = d
	return b
}

// WithDuration 設定時長
func (b *WorkoutBuilder) WithDuration(minutes int) *WorkoutBuilder {
	b.w.DurationMinutes = minutes
	return b
}

// WithEquipment 設定課表層級的器材
func (b *WorkoutBuilder) WithEquipment(eq ...common.Equipment) *WorkoutBuilder {
	b.w.Equipment = eq
	return b
}

// WithMuscles 設定目標肌群
func (b *WorkoutBuilder) WithMuscles(m ...common.MuscleGroup) *WorkoutBuilder {
	b.w.TargetMuscles = m
	return b
}

// WithExercises 取代動作
func (b *WorkoutBuilder) WithExercises(ex ...common.Exercise) *WorkoutBuilder {
	b.w.Exercises = ex
	return b
}

// Build 產生課表
func (b *WorkoutBuilder) Build() common.Workout {
	return b.w
}

// ---------------- Random catalogs ----------------

var (
	mealTypes    = []common.MealType{common.MealBreakfast, common.MealLunch, common.MealDinner, common.MealSnack}
	dietTags     = []common.DietaryTag{common.DietVegetarian, common.DietVegan, common.DietPescatarian, common.DietGlutenFree, common.DietHighProtein}
	riskyFoods   = []string{"peanut butter", "shrimp", "cheddar cheese", "eggs", "almond milk", "chicken breast", "salmon"}
	workoutTypes = []common.WorkoutType{common.WorkoutStrength, common.WorkoutCardio, common.WorkoutHIIT, common.WorkoutFlexibility}
	levels       = []common.FitnessLevel{common.LevelBeginner, common.LevelIntermediate, common.LevelAdvanced}
	equipment    = []common.Equipment{common.EquipBodyweight, common.EquipDumbbells, common.EquipBarbell, common.EquipKettlebell, common.EquipYogaMat, common.EquipJumpRope}
	muscles      = []common.MuscleGroup{common.MuscleChest, common.MuscleBack, common.MuscleCore, common.MuscleQuadriceps, common.MuscleFullBody, common.MuscleCardio}
)

// RandomRecipes 隨機食譜目錄，每種餐別至少一道
func (f *Factory) RandomRecipes(n int) []common.Recipe {
	out := make([]common.Recipe, 0, n)
	for i := 0; i < n; i++ {
		mt := mealTypes[i%len(mealTypes)]
		b := f.Recipe(mt)
		var tags []common.DietaryTag
		for _, t := range dietTags {
			if f.faker.Bool() {
				tags = append(tags, t)
			}
		}
		b.WithDietaryTags(tags...)
		if f.faker.Number(0, 2) == 0 {
			b.WithIngredient(f.faker.RandomString(riskyFoods), 1, "cup")
		}
		out = append(out, b.Build())
	}
	return out
}

// RandomWorkouts 隨機課表目錄
func (f *Factory) RandomWorkouts(n int) []common.Workout {
	out := make([]common.Workout, 0, n)
	for i := 0; i < n; i++ {
		b := f.Workout(workoutTypes[f.faker.Number(0, len(workoutTypes)-1)])
		b.WithDifficulty(levels[f.faker.Number(0, len(levels)-1)])
		b.WithDuration(f.faker.Number(15, 90))
		b.WithMuscles(muscles[f.faker.Number(0, len(muscles)-1)], muscles[f.faker.Number(0, len(muscles)-1)])
		eq := equipment[f.faker.Number(0, len(equipment)-1)]
		b.WithEquipment(eq)
		b.WithExercises(common.Exercise{
			Name:              f.faker.Verb() + " drill",
			Equipment:         []common.Equipment{eq},
			Sets:              f.faker.Number(1, 5),
			DurationSeconds:   Int(f.faker.Number(20, 90)),
			RestSeconds:       Int(f.faker.Number(0, 90)),
			CaloriesPerMinute: float64(f.faker.Number(3, 12)),
		})
		out = append(out, b.Build())
	}
	return out
}

// RandomProfile 隨機使用者檔案
func (f *Factory) RandomProfile() *common.Profile {
	p := &common.Profile{
		Name:               f.faker.Name(),
		DailyCalorieTarget: float64(f.faker.Number(1500, 3000)),
		Macros:             common.DefaultMacroRatios,
		MealsPerDay:        3,
		FitnessLevel:       levels[f.faker.Number(0, len(levels)-1)],
		FitnessGoals:       []common.FitnessGoal{common.GoalGeneralFitness},
		MaxWorkoutMinutes:  60,
	}
	if f.faker.Bool() {
		p.DietaryPreferences = []common.DietaryTag{dietTags[f.faker.Number(0, 2)]}
	}
	for _, a := range []string{"peanut", "shellfish", "dairy", "egg"} {
		if f.faker.Number(0, 3) == 0 {
			p.Allergies = append(p.Allergies, a)
		}
	}
	for _, e := range equipment[1:] {
		if f.faker.Bool() {
			p.Equipment = append(p.Equipment, e)
		}
	}
	return p
}
