package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"plan-generator/internal/pkg/common"
	"plan-generator/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeSeed(t *testing.T, seed Seed) string {
	t.Helper()
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImportSeedIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := testutil.NewFactory(7)
	seed := Seed{Recipes: f.RandomRecipes(12), Workouts: f.RandomWorkouts(6)}
	path := writeSeed(t, seed)

	nr, nw, err := store.ImportSeed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 12, nr)
	assert.Equal(t, 6, nw)

	recipes, err := store.LoadRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 12)
	for i := range recipes {
		assert.Equal(t, seed.Recipes[i].ID, recipes[i].ID, "catalog order is preserved")
		assert.Equal(t, seed.Recipes[i].Ingredients, recipes[i].Ingredients)
		assert.Equal(t, seed.Recipes[i].MealType, recipes[i].MealType)
	}

	workouts, err := store.LoadWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, workouts, 6)
	assert.Equal(t, seed.Workouts[0].Exercises, workouts[0].Exercises)

	t.Run("second import is skipped", func(t *testing.T) {
		nr, nw, err := store.ImportSeed(ctx, path)
		require.NoError(t, err)
		assert.Zero(t, nr)
		assert.Zero(t, nw)
	})
}

func TestImportSeedMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.ImportSeed(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMealPlanRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := testutil.NewFactory(8)
	breakfast := f.Recipe(common.MealBreakfast).Build()
	dinner := f.Recipe(common.MealDinner).Build()

	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	plan := &common.MealPlan{
		ID:                 "mp_0a1b2c3d",
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, 1),
		DailyCalorieTarget: 2000,
		Macros:             common.DefaultMacroRatios,
		Days: []*common.DailyMealPlan{
			{Date: start, Meals: map[common.MealType]*common.Recipe{common.MealBreakfast: &breakfast, common.MealDinner: &dinner}},
			{Date: start.AddDate(0, 0, 1), Meals: map[common.MealType]*common.Recipe{common.MealDinner: &dinner}, Tolerance: &common.ToleranceMiss{CalorieMiss: true, Calories: 1500, TargetCalories: 2000}},
		},
	}
	require.NoError(t, store.SaveMealPlan(ctx, plan))

	got, err := store.GetMealPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
	require.Len(t, got.Days, 2)
	assert.True(t, got.Days[0].Date.Equal(start))
	assert.Equal(t, dinner.ID, got.Days[1].Meals[common.MealDinner].ID)
	assert.Equal(t, plan.Days[0].TotalNutrition(), got.Days[0].TotalNutrition())
	require.NotNil(t, got.Days[1].Tolerance)
	assert.True(t, got.Days[1].Tolerance.CalorieMiss)
	assert.NoError(t, got.Validate())

	_, err = store.GetMealPlan(ctx, "mp_missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	assert.True(t, common.IsValidationError(store.SaveMealPlan(ctx, &common.MealPlan{})))
}

func TestWorkoutPlanRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := testutil.NewFactory(9).Workout(common.WorkoutStrength).Build()

	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	plan := &common.WorkoutPlan{ID: "wp_0a1b2c3d", StartDate: start, EndDate: start.AddDate(0, 0, 6), WorkoutDaysPerWeek: 1}
	for i := 0; i < 7; i++ {
		day := &common.DailyWorkoutPlan{Date: start.AddDate(0, 0, i), RestDay: i != 0}
		if i == 0 {
			day.Workouts = []*common.Workout{&w}
		}
		plan.Days = append(plan.Days, day)
	}
	require.NoError(t, store.SaveWorkoutPlan(ctx, plan))

	got, err := store.GetWorkoutPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.WorkoutDays())
	assert.Equal(t, w.Exercises, got.Days[0].Workouts[0].Exercises)
}

func TestEmbeddingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vectors := map[string][]float32{
		"lentil soup":     {0.25, 0.5, -0.125},
		"kettlebell hiit": {1, 0, 0.5},
		"empty":           nil,
	}
	require.NoError(t, store.SaveEmbeddings(ctx, "http:test", vectors))
	require.NoError(t, store.SaveEmbeddings(ctx, "http:test", map[string][]float32{"lentil soup": {0.5, 0.5, 0.5}}))

	got, err := store.LoadEmbeddings(ctx, "http:test")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, got["lentil soup"], "later save replaces the vector")
	assert.Equal(t, []float32{1, 0, 0.5}, got["kettlebell hiit"])

	other, err := store.LoadEmbeddings(ctx, "ollama:other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
