package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"plan-generator/internal/core/catalog"
	"plan-generator/internal/core/embedding"
	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"
	"plan-generator/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recipeResults struct {
	Query   string                 `json:"query"`
	Results []matcher.ScoredRecipe `json:"results"`
}

type workoutResults struct {
	Query   string                  `json:"query"`
	Results []matcher.ScoredWorkout `json:"results"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := testutil.NewFactory(31)

	recipes := []common.Recipe{
		f.Recipe(common.MealBreakfast).WithID("oat-bowl").WithName("Peanut butter oat bowl").
			WithIngredients("rolled oats", "peanut butter", "banana").Build(),
		f.Recipe(common.MealBreakfast).WithID("tofu-scramble").WithName("Tofu scramble").
			WithDietaryTags(common.DietVegan).WithIngredients("tofu", "spinach", "turmeric").Build(),
		f.Recipe(common.MealDinner).WithID("salmon-rice").WithName("Salmon rice bowl").
			WithIngredients("salmon", "rice", "cucumber").Build(),
	}
	workouts := []common.Workout{
		f.Workout(common.WorkoutStrength).WithID("barbell-squat").WithName("Barbell squat day", "Heavy barbell squats").
			WithEquipment(common.EquipBarbell).Build(),
		f.Workout(common.WorkoutStrength).WithID("bodyweight-legs").WithName("Bodyweight legs", "Squats and lunges").Build(),
		f.Workout(common.WorkoutCardio).WithID("easy-run").WithName("Easy run", "Steady zone two running").Build(),
		f.Workout(common.WorkoutCardio).WithID("long-run").WithName("Long run", "Slow long distance running").
			WithDuration(150).Build(),
	}

	rc, invalid := catalog.NewRecipeCatalog(recipes)
	require.Empty(t, invalid)
	wc, invalidW := catalog.NewWorkoutCatalog(workouts)
	require.Empty(t, invalidW)
	idx := embedding.NewIndex(nil, embedding.NewCache(), embedding.NewVocabulary(catalog.Corpus(rc, wc)), embedding.Options{})

	h := NewHandler(matcher.NewMealMatcher(rc, idx, matcher.Options{}), matcher.NewWorkoutMatcher(wc, idx, matcher.Options{}))
	r := gin.New()
	r.GET("/recipes/search", h.HandleRecipeSearch)
	r.GET("/workouts/search", h.HandleWorkoutSearch)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestRecipeSearch(t *testing.T) {
	r := newRouter(t)

	t.Run("breakfast only", func(t *testing.T) {
		w := get(r, "/recipes/search?q=oat+breakfast&meal_type=breakfast")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp recipeResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "oat-bowl", resp.Results[0].Recipe.ID)
		for _, res := range resp.Results {
			assert.Equal(t, common.MealBreakfast, res.Recipe.MealType)
		}
	})

	t.Run("allergies are a hard filter", func(t *testing.T) {
		w := get(r, "/recipes/search?q=peanut+butter+oat&allergies=peanut")
		require.Equal(t, http.StatusOK, w.Code)
		var resp recipeResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		for _, res := range resp.Results {
			assert.NotEqual(t, "oat-bowl", res.Recipe.ID)
		}
	})

	t.Run("top_k", func(t *testing.T) {
		w := get(r, "/recipes/search?q=bowl&top_k=1")
		require.Equal(t, http.StatusOK, w.Code)
		var resp recipeResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Results, 1)
	})

	for name, url := range map[string]string{
		"missing query": "/recipes/search",
		"bad meal type": "/recipes/search?q=oats&meal_type=brunch",
		"top_k too big": "/recipes/search?q=oats&top_k=500",
		"top_k not int": "/recipes/search?q=oats&top_k=ten",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(r, url).Code)
		})
	}
}

func TestWorkoutSearch(t *testing.T) {
	r := newRouter(t)

	t.Run("equipment filter", func(t *testing.T) {
		w := get(r, "/workouts/search?q=squat&equipment=bodyweight")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp workoutResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Results)
		for _, res := range resp.Results {
			assert.NotEqual(t, "barbell-squat", res.Workout.ID)
		}
	})

	t.Run("no equipment means no filter", func(t *testing.T) {
		w := get(r, "/workouts/search?q=barbell+squat&workout_type=strength")
		require.Equal(t, http.StatusOK, w.Code)
		var resp workoutResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "barbell-squat", resp.Results[0].Workout.ID)
	})

	t.Run("duration capped by default", func(t *testing.T) {
		ids := func(path string) []string {
			w := get(r, path)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp workoutResults
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			var out []string
			for _, res := range resp.Results {
				out = append(out, res.Workout.ID)
			}
			return out
		}
		assert.NotContains(t, ids("/workouts/search?q=run&workout_type=cardio"), "long-run")
		assert.Contains(t, ids("/workouts/search?q=run&workout_type=cardio&max_duration=180"), "long-run")
		assert.Equal(t, []string{"easy-run"}, ids("/workouts/search?q=run&workout_type=cardio&max_duration=30"))
	})

	assert.Equal(t, http.StatusBadRequest, get(r, "/workouts/search?q=run&max_duration=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/workouts/search?q=run&workout_type=crossfit").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/workouts/search?q=run&equipment=hovercraft").Code)
}
