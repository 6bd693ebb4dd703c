package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"plan-generator/internal/core/catalog"
	"plan-generator/internal/core/embedding"
	"plan-generator/internal/core/matcher"
	"plan-generator/internal/pkg/common"
	"plan-generator/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, 10, 12, 9, 30, 0, 0, time.UTC)

func mealPlannerFor(t *testing.T, recipes []common.Recipe, opts Options) *MealPlanner {
	t.Helper()
	c, invalid := catalog.NewRecipeCatalog(recipes)
	require.Empty(t, invalid)
	idx := embedding.NewIndex(nil, embedding.NewCache(), embedding.NewVocabulary(c.Texts()), embedding.Options{})
	return NewMealPlanner(matcher.NewMealMatcher(c, idx, matcher.Options{}), opts)
}

func workoutPlannerFor(t *testing.T, workouts []common.Workout, opts Options) *WorkoutPlanner {
	t.Helper()
	c, invalid := catalog.NewWorkoutCatalog(workouts)
	require.Empty(t, invalid)
	idx := embedding.NewIndex(nil, embedding.NewCache(), embedding.NewVocabulary(c.Texts()), embedding.Options{})
	return NewWorkoutPlanner(matcher.NewWorkoutMatcher(c, idx, matcher.Options{}), opts)
}

func profile2000() *common.Profile {
	return &common.Profile{
		DailyCalorieTarget: 2000,
		Macros:             common.DefaultMacroRatios,
		MealsPerDay:        3,
	}
}

// balancedCatalog 每個主餐 n 道食譜，熱量剛好等於該餐的目標
func balancedCatalog(f *testutil.Factory, n int, daily float64) []common.Recipe {
	var out []common.Recipe
	for _, s := range Slots(3, 0) {
		for i := 0; i < n; i++ {
			out = append(out, f.Recipe(s.Type).WithCalories(daily*s.Share).Build())
		}
	}
	return out
}

// fakeRanker 固定排名
type fakeRanker struct {
	ranked map[common.MealType][]*common.Recipe
}

func (f *fakeRanker) Match(_ context.Context, _ *common.Profile, q matcher.MealQuery) (*matcher.MealResult, error) {
	var res matcher.MealResult
	for _, r := range f.ranked[q.MealType] {
		res.Matches = append(res.Matches, matcher.ScoredRecipe{Recipe: r})
	}
	if len(res.Matches) == 0 {
		return nil, &common.ConstraintError{Domain: "meal", Slot: string(q.MealType)}
	}
	return &res, nil
}

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) SuggestMeal(ctx context.Context, p *common.Profile, mealType common.MealType) (string, error) {
	args := m.Called(ctx, p, mealType)
	return args.String(0), args.Error(1)
}

func (m *mockSuggester) SuggestWorkout(ctx context.Context, p *common.Profile, t common.WorkoutType) (string, error) {
	args := m.Called(ctx, p, t)
	return args.String(0), args.Error(1)
}

type recorder struct {
	plans  []string
	misses int
}

func (r *recorder) ObservePlan(kind string, _ time.Duration) { r.plans = append(r.plans, kind) }
func (r *recorder) IncToleranceMiss()                        { r.misses++ }

func TestSlots(t *testing.T) {
	types := func(slots []Slot) []common.MealType {
		out := make([]common.MealType, len(slots))
		for i, s := range slots {
			out[i] = s.Type
		}
		return out
	}
	sum := func(slots []Slot) float64 {
		total := 0.0
		for _, s := range slots {
			total += s.Share
		}
		return total
	}

	assert.Equal(t, []common.MealType{common.MealDinner}, types(Slots(1, 0)))
	assert.Equal(t, []common.MealType{common.MealLunch, common.MealDinner}, types(Slots(2, 0)))
	assert.Equal(t, []common.MealType{common.MealBreakfast, common.MealLunch, common.MealDinner}, types(Slots(3, 0)))
	assert.Equal(t, []common.MealType{
		common.MealBreakfast, common.MealLunch, common.MealDinner, common.MealSnack, common.MealSnack,
	}, types(Slots(5, 0)))
	assert.Len(t, Slots(3, 2), 5)

	for _, n := range []int{1, 2, 3, 4, 6} {
		assert.InDelta(t, 1.0, sum(Slots(n, 1)), 1e-9)
	}
	three := Slots(3, 0)
	assert.InDelta(t, 0.25/0.95, three[0].Share, 1e-9)
	assert.InDelta(t, three[1].Share, three[2].Share, 1e-9)
}

func TestMealPlanLengthsAndDates(t *testing.T) {
	f := testutil.NewFactory(30)
	rec := &recorder{}
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	p := mealPlannerFor(t, balancedCatalog(f, 7, 2000), Options{Recorder: rec, Now: func() time.Time { return now }})
	ctx := context.Background()

	daily, err := p.GenerateDailyPlan(ctx, profile2000(), monday)
	require.NoError(t, err)
	assert.Len(t, daily.Days, 1)
	assert.Equal(t, daily.StartDate, daily.EndDate)
	assert.NoError(t, daily.Validate())

	weekly, err := p.GenerateWeeklyPlan(ctx, profile2000(), monday)
	require.NoError(t, err)
	require.Len(t, weekly.Days, 7)
	assert.NoError(t, weekly.Validate())
	assert.Equal(t, common.Date(monday), weekly.StartDate)
	assert.Equal(t, "2026-10-18", common.FormatDate(weekly.EndDate))
	assert.True(t, strings.HasPrefix(weekly.ID, "mp_"))
	assert.Len(t, weekly.ID, 11)
	assert.Equal(t, now, weekly.CreatedAt)
	assert.Equal(t, []string{"meal", "meal"}, rec.plans)

	for _, d := range weekly.Days {
		assert.Len(t, d.Meals, 3)
		assert.Nil(t, d.Tolerance)
		assert.InDelta(t, 2000, d.TotalNutrition().Calories, 1e-6)
	}

	_, err = p.GeneratePlan(ctx, profile2000(), monday, 0)
	assert.True(t, common.IsValidationError(err))
}

func TestMealPlanVegetarianPeanutExample(t *testing.T) {
	f := testutil.NewFactory(31)
	allowed := map[string]bool{}
	var recipes []common.Recipe
	for i, mt := range []common.MealType{common.MealBreakfast, common.MealBreakfast, common.MealLunch, common.MealLunch, common.MealDinner} {
		r := f.Recipe(mt).WithDietaryTags(common.DietVegetarian).WithIngredients("beans", "tomato").WithCalories(float64(500 + 50*i)).Build()
		allowed[r.ID] = true
		recipes = append(recipes, r)
	}
	recipes = append(recipes,
		f.Recipe(common.MealDinner).WithID("pork").WithIngredients("pork chop").Build(),
		f.Recipe(common.MealDinner).WithID("satay").WithDietaryTags(common.DietVegan).WithIngredients("peanut sauce", "tofu").Build(),
	)

	prof := profile2000()
	prof.DietaryPreferences = []common.DietaryTag{common.DietVegetarian}
	prof.Allergies = []string{"peanut"}

	plan, err := mealPlannerFor(t, recipes, Options{}).GenerateDailyPlan(context.Background(), prof, monday)
	require.NoError(t, err)
	require.Len(t, plan.Days, 1)
	for _, r := range plan.Days[0].Recipes() {
		assert.True(t, allowed[r.ID], "recipe %s is not an allowed vegetarian recipe", r.ID)
	}
}

func TestMealPlanVariety(t *testing.T) {
	ctx := context.Background()

	t.Run("no repeats while unused candidates remain", func(t *testing.T) {
		f := testutil.NewFactory(32)
		plan, err := mealPlannerFor(t, balancedCatalog(f, 7, 2000), Options{}).GenerateWeeklyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, d := range plan.Days {
			for _, r := range d.Recipes() {
				assert.False(t, seen[r.ID], "recipe %s repeated", r.ID)
				seen[r.ID] = true
			}
		}
		assert.Len(t, seen, 21)
	})

	t.Run("least recently used is reused first", func(t *testing.T) {
		f := testutil.NewFactory(33)
		plan, err := mealPlannerFor(t, balancedCatalog(f, 3, 2000), Options{}).GenerateWeeklyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		for _, mt := range common.MainMealTypes {
			for d := 3; d < 7; d++ {
				assert.Equal(t, plan.Days[d-3].Meals[mt].ID, plan.Days[d].Meals[mt].ID)
			}
		}
	})
}

func TestMealPlanRepair(t *testing.T) {
	f := testutil.NewFactory(34)
	ctx := context.Background()
	slots := Slots(3, 0)

	fit := map[common.MealType]*common.Recipe{}
	for _, s := range slots {
		r := f.Recipe(s.Type).WithCalories(2000 * s.Share).Build()
		fit[s.Type] = &r
	}
	huge := f.Recipe(common.MealBreakfast).WithID("huge").WithCalories(1400).Build()

	t.Run("swap brings the day back into tolerance", func(t *testing.T) {
		ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
			common.MealBreakfast: {&huge, fit[common.MealBreakfast]},
			common.MealLunch:     {fit[common.MealLunch]},
			common.MealDinner:    {fit[common.MealDinner]},
		}}
		plan, err := NewMealPlanner(ranker, Options{}).GenerateDailyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		day := plan.Days[0]
		assert.Equal(t, fit[common.MealBreakfast].ID, day.Meals[common.MealBreakfast].ID)
		assert.Nil(t, day.Tolerance)
	})

	t.Run("repair disabled leaves the day flagged", func(t *testing.T) {
		ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
			common.MealBreakfast: {&huge, fit[common.MealBreakfast]},
			common.MealLunch:     {fit[common.MealLunch]},
			common.MealDinner:    {fit[common.MealDinner]},
		}}
		rec := &recorder{}
		plan, err := NewMealPlanner(ranker, Options{RepairAttempts: -1, Recorder: rec}).GenerateDailyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		day := plan.Days[0]
		require.NotNil(t, day.Tolerance)
		assert.True(t, day.Tolerance.CalorieMiss)
		assert.Zero(t, day.Tolerance.RepairAttempts)
		assert.Equal(t, 1, rec.misses)
		assert.Len(t, plan.FlaggedDays(), 1)
	})

	t.Run("unreachable target is flagged after bounded attempts", func(t *testing.T) {
		tiny := func(mt common.MealType, id string) *common.Recipe {
			r := f.Recipe(mt).WithID(id).WithCalories(100).Build()
			return &r
		}
		ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
			common.MealBreakfast: {tiny(common.MealBreakfast, "b1"), tiny(common.MealBreakfast, "b2")},
			common.MealLunch:     {tiny(common.MealLunch, "l1"), tiny(common.MealLunch, "l2")},
			common.MealDinner:    {tiny(common.MealDinner, "d1"), tiny(common.MealDinner, "d2")},
		}}
		plan, err := NewMealPlanner(ranker, Options{RepairAttempts: 3}).GenerateDailyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		miss := plan.Days[0].Tolerance
		require.NotNil(t, miss)
		assert.True(t, miss.CalorieMiss)
		assert.True(t, miss.MacroMiss)
		assert.InDelta(t, 300, miss.Calories, 1e-6)
		assert.LessOrEqual(t, miss.RepairAttempts, 3)
	})
}

func TestMealPlanRepairRespectsVariety(t *testing.T) {
	f := testutil.NewFactory(37)
	ctx := context.Background()
	slots := Slots(3, 0)

	recipe := func(mt common.MealType, id string, cal float64) *common.Recipe {
		r := f.Recipe(mt).WithID(id).WithCalories(cal).Build()
		return &r
	}
	target := func(mt common.MealType) float64 {
		for _, s := range slots {
			if s.Type == mt {
				return 2000 * s.Share
			}
		}
		return 0
	}
	good := recipe(common.MealBreakfast, "b-good", target(common.MealBreakfast))
	heavy1 := recipe(common.MealBreakfast, "b-heavy-1", 1400)
	heavy2 := recipe(common.MealBreakfast, "b-heavy-2", 1400)
	lunches := []*common.Recipe{
		recipe(common.MealLunch, "l1", target(common.MealLunch)),
		recipe(common.MealLunch, "l2", target(common.MealLunch)),
	}
	dinners := []*common.Recipe{
		recipe(common.MealDinner, "d1", target(common.MealDinner)),
		recipe(common.MealDinner, "d2", target(common.MealDinner)),
	}

	t.Run("no repeats when the catalog covers every slot", func(t *testing.T) {
		ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
			common.MealBreakfast: {heavy1, heavy2, good},
			common.MealLunch:     lunches,
			common.MealDinner:    dinners,
		}}
		plan, err := NewMealPlanner(ranker, Options{}).GeneratePlan(ctx, profile2000(), monday, 2)
		require.NoError(t, err)
		require.Len(t, plan.Days, 2)

		seen := map[string]int{}
		for _, d := range plan.Days {
			for _, r := range d.Recipes() {
				seen[r.ID]++
			}
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "recipe %s repeated", id)
		}
		assert.Equal(t, good.ID, plan.Days[0].Meals[common.MealBreakfast].ID)
		assert.Nil(t, plan.Days[0].Tolerance)
		assert.NotNil(t, plan.Days[1].Tolerance, "day without an unused fit is flagged")
	})

	t.Run("repeats allowed when the catalog is too small", func(t *testing.T) {
		ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
			common.MealBreakfast: {heavy1, good},
			common.MealLunch:     lunches,
			common.MealDinner:    dinners,
		}}
		plan, err := NewMealPlanner(ranker, Options{}).GeneratePlan(ctx, profile2000(), monday, 2)
		require.NoError(t, err)
		for _, d := range plan.Days {
			assert.Equal(t, good.ID, d.Meals[common.MealBreakfast].ID)
			assert.Nil(t, d.Tolerance)
		}
	})
}

func TestMealPlanRepairNeedsBothMisses(t *testing.T) {
	f := testutil.NewFactory(38)
	slots := Slots(3, 0)

	fit := map[common.MealType]*common.Recipe{}
	for _, s := range slots {
		r := f.Recipe(s.Type).WithCalories(2000 * s.Share).Build()
		fit[s.Type] = &r
	}
	// 營養素與合適的早餐相同，只有熱量偏高
	n := fit[common.MealBreakfast].Nutrition
	n.Calories = 1100
	caloriesOnly := f.Recipe(common.MealBreakfast).WithID("calories-only").WithNutrition(n).Build()

	ranker := &fakeRanker{ranked: map[common.MealType][]*common.Recipe{
		common.MealBreakfast: {&caloriesOnly, fit[common.MealBreakfast]},
		common.MealLunch:     {fit[common.MealLunch]},
		common.MealDinner:    {fit[common.MealDinner]},
	}}
	plan, err := NewMealPlanner(ranker, Options{}).GenerateDailyPlan(context.Background(), profile2000(), monday)
	require.NoError(t, err)

	day := plan.Days[0]
	assert.Equal(t, "calories-only", day.Meals[common.MealBreakfast].ID)
	require.NotNil(t, day.Tolerance)
	assert.True(t, day.Tolerance.CalorieMiss)
	assert.False(t, day.Tolerance.MacroMiss)
	assert.Zero(t, day.Tolerance.RepairAttempts)
}

func TestMealPlanToleranceProperty(t *testing.T) {
	f := testutil.NewFactory(35)
	p := mealPlannerFor(t, f.RandomRecipes(40), Options{})

	for i := 0; i < 20; i++ {
		prof := f.RandomProfile()
		plan, err := p.GenerateWeeklyPlan(context.Background(), prof, monday)
		if err != nil {
			_, ok := common.AsConstraintError(err)
			require.True(t, ok, "unexpected error %v", err)
			continue
		}
		require.Len(t, plan.Days, 7)
		dietaryRelaxed := strings.Contains(strings.Join(plan.Days[0].Notes, "\n"), matcher.StageDietary)
		target := prof.DailyCalorieTarget
		for _, d := range plan.Days {
			if !dietaryRelaxed {
				for _, r := range d.Recipes() {
					for _, pref := range prof.DietaryPreferences {
						assert.True(t, pref.SatisfiedBy(r.DietaryTags), "recipe %s violates %s", r.ID, pref)
					}
				}
			}
			cal := d.TotalNutrition().Calories
			within := cal >= target*0.9-1e-6 && cal <= target*1.1+1e-6
			assert.True(t, within || d.Flagged(), "day %s out of tolerance but not flagged", common.FormatDate(d.Date))
			for _, r := range d.Recipes() {
				for _, a := range prof.Allergies {
					for _, ing := range r.Ingredients {
						assert.NotContains(t, common.IngredientKey(ing.Name), common.IngredientKey(a))
					}
				}
			}
		}
	}
}

func TestMealPlanSuggestions(t *testing.T) {
	f := testutil.NewFactory(36)
	ctx := context.Background()
	dinnersOnly := []common.Recipe{
		f.Recipe(common.MealDinner).WithCalories(700).Build(),
		f.Recipe(common.MealDinner).WithCalories(600).Build(),
		f.Recipe(common.MealDinner).WithCalories(650).Build(),
	}

	t.Run("relaxed slots carry a suggestion", func(t *testing.T) {
		s := &mockSuggester{}
		s.On("SuggestMeal", mock.Anything, mock.Anything, common.MealBreakfast).Return("Try overnight oats", nil)
		s.On("SuggestMeal", mock.Anything, mock.Anything, common.MealLunch).Return("", errors.New("provider down"))

		plan, err := mealPlannerFor(t, dinnersOnly, Options{Suggester: s}).GenerateWeeklyPlan(ctx, profile2000(), monday)
		require.NoError(t, err)
		notes := strings.Join(plan.Days[0].Notes, "\n")
		assert.Contains(t, notes, "breakfast: relaxed meal_type")
		assert.Contains(t, notes, "lunch: relaxed meal_type")
		assert.Contains(t, notes, "Try overnight oats")
		assert.Empty(t, plan.Days[1].Notes)
		s.AssertExpectations(t)
	})

	t.Run("empty catalog is a constraint error", func(t *testing.T) {
		_, err := mealPlannerFor(t, nil, Options{}).GenerateDailyPlan(ctx, profile2000(), monday)
		c, ok := common.AsConstraintError(err)
		require.True(t, ok)
		assert.Equal(t, "meal", c.Domain)
	})
}

func TestScheduleOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4, 5}, ScheduleOffsets(4))
	assert.Equal(t, []int{0, 2, 5}, ScheduleOffsets(3))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, ScheduleOffsets(7))
	assert.Empty(t, ScheduleOffsets(0))

	for n := 1; n <= 7; n++ {
		offsets := ScheduleOffsets(n)
		require.Len(t, offsets, n)
		for i := 1; i < n; i++ {
			assert.Greater(t, offsets[i], offsets[i-1])
		}
		assert.Less(t, offsets[n-1], 7)
	}
}

func assertIntensityBalanced(t *testing.T, plan *common.WorkoutPlan) {
	t.Helper()
	prevHigh := false
	for _, d := range plan.Days {
		if len(d.Workouts) == 0 {
			continue
		}
		high := d.HighIntensity()
		assert.False(t, prevHigh && high, "consecutive high-intensity workout days at %s", common.FormatDate(d.Date))
		prevHigh = high
	}
}

func TestWorkoutPlanSchedule(t *testing.T) {
	f := testutil.NewFactory(40)
	var workouts []common.Workout
	for _, wt := range []common.WorkoutType{common.WorkoutStrength, common.WorkoutCardio, common.WorkoutFlexibility} {
		for i := 0; i < 3; i++ {
			workouts = append(workouts, f.Workout(wt).Build())
		}
	}
	rec := &recorder{}
	p := workoutPlannerFor(t, workouts, Options{Recorder: rec})

	plan, err := p.GenerateWeeklyPlan(context.Background(), &common.Profile{}, monday, 4)
	require.NoError(t, err)
	require.Len(t, plan.Days, 7)
	assert.NoError(t, plan.Validate())
	assert.True(t, strings.HasPrefix(plan.ID, "wp_"))
	assert.Equal(t, 4, plan.WorkoutDays())
	assert.Equal(t, []string{"workout"}, rec.plans)

	var weekdays []time.Weekday
	for _, d := range plan.Days {
		if len(d.Workouts) > 0 {
			weekdays = append(weekdays, d.Date.Weekday())
			assert.False(t, d.RestDay)
		} else {
			assert.True(t, d.RestDay)
		}
	}
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Saturday}, weekdays)

	rest, err := p.GenerateWeeklyPlan(context.Background(), &common.Profile{}, monday, 0)
	require.NoError(t, err)
	assert.Zero(t, rest.WorkoutDays())

	_, err = p.GenerateWeeklyPlan(context.Background(), &common.Profile{}, monday, 8)
	assert.True(t, common.IsValidationError(err))
}

func TestWorkoutPlanIntensityBalance(t *testing.T) {
	f := testutil.NewFactory(41)
	ctx := context.Background()
	prof := &common.Profile{FitnessGoals: []common.FitnessGoal{common.GoalEndurance}}

	t.Run("low-intensity substitute between hiit days", func(t *testing.T) {
		p := workoutPlannerFor(t, []common.Workout{
			f.Workout(common.WorkoutHIIT).WithID("hiit-1").Build(),
			f.Workout(common.WorkoutHIIT).WithID("hiit-2").Build(),
			f.Workout(common.WorkoutHIIT).WithID("hiit-3").Build(),
			f.Workout(common.WorkoutFlexibility).WithID("stretch").WithDuration(20).Build(),
			f.Workout(common.WorkoutFlexibility).WithID("yoga").WithDuration(25).Build(),
		}, Options{})

		plan, err := p.GenerateWeeklyPlan(ctx, prof, monday, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, plan.WorkoutDays())
		assertIntensityBalanced(t, plan)
		assert.NotEmpty(t, plan.Adjustments)
	})

	t.Run("active recovery when nothing low-intensity exists", func(t *testing.T) {
		p := workoutPlannerFor(t, []common.Workout{
			f.Workout(common.WorkoutHIIT).WithID("hiit-a").Build(),
			f.Workout(common.WorkoutHIIT).WithID("hiit-b").Build(),
		}, Options{})

		plan, err := p.GenerateWeeklyPlan(ctx, prof, monday, 3)
		require.NoError(t, err)
		assertIntensityBalanced(t, plan)
		assert.NoError(t, plan.Validate())
		assert.Equal(t, 1, plan.WorkoutDays())
		recovery := plan.Days[2]
		assert.True(t, recovery.RestDay)
		assert.Empty(t, recovery.Workouts)
		assert.Equal(t, activeRecoveryNote, recovery.Notes)
		assert.NotEmpty(t, plan.Adjustments)
	})

	t.Run("over an hour counts as high intensity", func(t *testing.T) {
		p := workoutPlannerFor(t, []common.Workout{
			f.Workout(common.WorkoutCardio).WithID("marathon").WithDuration(120).Build(),
			f.Workout(common.WorkoutCardio).WithID("jog").WithDuration(30).Build(),
		}, Options{})

		plan, err := p.GenerateWeeklyPlan(ctx, &common.Profile{MaxWorkoutMinutes: 180, FitnessGoals: prof.FitnessGoals}, monday, 7)
		require.NoError(t, err)
		assertIntensityBalanced(t, plan)
	})

	t.Run("constraint error when equipment rules out everything", func(t *testing.T) {
		p := workoutPlannerFor(t, []common.Workout{
			f.Workout(common.WorkoutStrength).WithEquipment(common.EquipBarbell).Build(),
		}, Options{})
		_, err := p.GenerateWeeklyPlan(ctx, &common.Profile{}, monday, 2)
		_, ok := common.AsConstraintError(err)
		assert.True(t, ok)
	})
}

func TestWorkoutPlanRejectsUnknownProfileValues(t *testing.T) {
	f := testutil.NewFactory(44)
	p := workoutPlannerFor(t, []common.Workout{
		f.Workout(common.WorkoutStrength).Build(),
		f.Workout(common.WorkoutCardio).Build(),
	}, Options{})
	ctx := context.Background()

	cases := map[string]*common.Profile{
		"goal":      {FitnessGoals: []common.FitnessGoal{"yoga"}},
		"equipment": {Equipment: []common.Equipment{"hovercraft"}},
		"level":     {FitnessLevel: "elite"},
	}
	for name, prof := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				_, err = p.GenerateWeeklyPlan(ctx, prof, monday, 3)
			})
			assert.True(t, common.IsValidationError(err), "got %v", err)
		})
	}

	unknown := []common.FitnessGoal{"yoga"}
	assert.Equal(t, common.GoalWorkoutTypes(nil), common.GoalWorkoutTypes(unknown))
	assert.Equal(t, common.GoalMuscleGroups(nil), common.GoalMuscleGroups(unknown))
}

func TestWorkoutPlanSuggestionOnRelaxation(t *testing.T) {
	f := testutil.NewFactory(42)
	s := &mockSuggester{}
	s.On("SuggestWorkout", mock.Anything, mock.Anything, common.WorkoutFlexibility).Return("Ten minutes of gentle stretching", nil).Once()

	p := workoutPlannerFor(t, []common.Workout{
		f.Workout(common.WorkoutStrength).Build(),
		f.Workout(common.WorkoutStrength).Build(),
	}, Options{Suggester: s})

	prof := &common.Profile{FitnessGoals: []common.FitnessGoal{common.GoalFlexibility}}
	plan, err := p.GenerateWeeklyPlan(context.Background(), prof, monday, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.WorkoutDays())
	assert.Contains(t, plan.Days[0].Notes, "gentle stretching")
	assert.Len(t, plan.Adjustments, 2)
	s.AssertExpectations(t)
}

func TestWorkoutPlanProperties(t *testing.T) {
	f := testutil.NewFactory(43)
	p := workoutPlannerFor(t, f.RandomWorkouts(40), Options{})

	for i := 0; i < 20; i++ {
		prof := f.RandomProfile()
		n := f.Faker().Number(0, 7)
		plan, err := p.GenerateWeeklyPlan(context.Background(), prof, monday, n)
		if err != nil {
			_, ok := common.AsConstraintError(err)
			require.True(t, ok, "unexpected error %v", err)
			continue
		}
		require.Len(t, plan.Days, 7)
		assert.NoError(t, plan.Validate())
		assertIntensityBalanced(t, plan)
		for _, d := range plan.Days {
			for _, w := range d.Workouts {
				for _, ex := range w.Exercises {
					assert.True(t, common.EquipmentSubset(ex.Equipment, prof.Equipment))
				}
				assert.True(t, common.EquipmentSubset(w.RequiredEquipment(), prof.Equipment))
			}
		}
	}
}
