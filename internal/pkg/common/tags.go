package common

import (
	"fmt"
	"strings"
)

// normalizeTag 統一標籤格式：小寫、空白與連字號轉底線
func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// ---------------- 飲食標籤 ----------------

// DietaryTag 飲食偏好標籤
type DietaryTag string

const (
	DietNone        DietaryTag = "none"
	DietVegetarian  DietaryTag = "vegetarian"
	DietVegan       DietaryTag = "vegan"
	DietPescatarian DietaryTag = "pescatarian"
	DietKeto        DietaryTag = "keto"
	DietPaleo       DietaryTag = "paleo"
	DietGlutenFree  DietaryTag = "gluten_free"
	DietDairyFree   DietaryTag = "dairy_free"
	DietLowCarb     DietaryTag = "low_carb"
	DietHighProtein DietaryTag = "high_protein"
)

var dietaryTags = map[DietaryTag]struct{}{
	DietNone: {}, DietVegetarian: {}, DietVegan: {}, DietPescatarian: {}, DietKeto: {},
	DietPaleo: {}, DietGlutenFree: {}, DietDairyFree: {}, DietLowCarb: {}, DietHighProtein: {},
}

// dietarySatisfiers 偏好 -> 可滿足該偏好的食譜標籤
var dietarySatisfiers = map[DietaryTag][]DietaryTag{
	DietVegetarian:  {DietVegetarian, DietVegan},
	DietVegan:       {DietVegan},
	DietPescatarian: {DietPescatarian, DietVegetarian, DietVegan},
}

// ParseDietaryTag 解析飲食標籤
func ParseDietaryTag(s string) (DietaryTag, error) {
	t := DietaryTag(normalizeTag(s))
	if _, ok := dietaryTags[t]; !ok {
		return "", fmt.Errorf("unknown dietary tag %q", s)
	}
	return t, nil
}

// Valid 是否為已知標籤
func (t DietaryTag) Valid() bool {
	_, ok := dietaryTags[t]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (t *DietaryTag) UnmarshalText(b []byte) error {
	v, err := ParseDietaryTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SatisfiedBy 食譜標籤集合是否滿足此偏好
func (t DietaryTag) SatisfiedBy(recipeTags []DietaryTag) bool {
	if t == DietNone {
		return true
	}
	accepted, ok := dietarySatisfiers[t]
	if !ok {
		accepted = []DietaryTag{t}
	}
	for _, have := range recipeTags {
		for _, want := range accepted {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ---------------- 餐別 ----------------

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MainMealTypes 主餐順序
var MainMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// ParseMealType 解析餐別
func ParseMealType(s string) (MealType, error) {
	switch t := MealType(normalizeTag(s)); t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return t, nil
	case "snacks":
		return MealSnack, nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Valid 是否為已知餐別
func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (t *MealType) UnmarshalText(b []byte) error {
	v, err := ParseMealType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ---------------- 體能程度 / 難度 ----------------

// FitnessLevel 體能程度，同時作為運動難度
type FitnessLevel string

// Difficulty 運動難度
type Difficulty = FitnessLevel

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

var levelRank = map[FitnessLevel]int{
	LevelBeginner:     1,
	LevelIntermediate: 2,
	LevelAdvanced:     3,
}

// ParseFitnessLevel 解析體能程度
func ParseFitnessLevel(s string) (FitnessLevel, error) {
	l := FitnessLevel(normalizeTag(s))
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("unknown fitness level %q", s)
	}
	return l, nil
}

// Valid 是否為已知程度
func (l FitnessLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (l *FitnessLevel) UnmarshalText(b []byte) error {
	v, err := ParseFitnessLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Allows 此程度的使用者可否進行指定難度的運動
func (l FitnessLevel) Allows(d Difficulty) bool {
	have, ok := levelRank[l]
	if !ok {
		have = levelRank[LevelBeginner]
	}
	want, ok := levelRank[d]
	if !ok {
		return false
	}
	return want <= have
}

// ---------------- 運動類型 ----------------

// WorkoutType 運動類型
type WorkoutType string

const (
	WorkoutStrength    WorkoutType = "strength"
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutHIIT        WorkoutType = "hiit"
	WorkoutFlexibility WorkoutType = "flexibility"
	WorkoutMixed       WorkoutType = "mixed"
)

var workoutTypes = map[WorkoutType]struct{}{
	WorkoutStrength: {}, WorkoutCardio: {}, WorkoutHIIT: {}, WorkoutFlexibility: {}, WorkoutMixed: {},
}

// ParseWorkoutType 解析運動類型
func ParseWorkoutType(s string) (WorkoutType, error) {
	t := WorkoutType(normalizeTag(s))
	if _, ok := workoutTypes[t]; !ok {
		return "", fmt.Errorf("unknown workout type %q", s)
	}
	return t, nil
}

// Valid 是否為已知類型
func (t WorkoutType) Valid() bool {
	_, ok := workoutTypes[t]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (t *WorkoutType) UnmarshalText(b []byte) error {
	v, err := ParseWorkoutType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ---------------- 肌群 ----------------

// MuscleGroup 肌群
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleCore       MuscleGroup = "core"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleFullBody   MuscleGroup = "full_body"
	MuscleCardio     MuscleGroup = "cardio"
)

var muscleGroups = map[MuscleGroup]struct{}{
	MuscleChest: {}, MuscleBack: {}, MuscleShoulders: {}, MuscleBiceps: {}, MuscleTriceps: {},
	MuscleCore: {}, MuscleQuadriceps: {}, MuscleHamstrings: {}, MuscleGlutes: {}, MuscleCalves: {},
	MuscleFullBody: {}, MuscleCardio: {},
}

var muscleAliases = map[string]MuscleGroup{
	"abs":   MuscleCore,
	"quads": MuscleQuadriceps,
	"legs":  MuscleQuadriceps,
	"arms":  MuscleBiceps,
	"full":  MuscleFullBody,
}

// ParseMuscleGroup 解析肌群
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	n := normalizeTag(s)
	if alias, ok := muscleAliases[n]; ok {
		return alias, nil
	}
	m := MuscleGroup(n)
	if _, ok := muscleGroups[m]; !ok {
		return "", fmt.Errorf("unknown muscle group %q", s)
	}
	return m, nil
}

// Valid 是否為已知肌群
func (m MuscleGroup) Valid() bool {
	_, ok := muscleGroups[m]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (m *MuscleGroup) UnmarshalText(b []byte) error {
	v, err := ParseMuscleGroup(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ---------------- 器材 ----------------

// Equipment 運動器材
type Equipment string

const (
	EquipBodyweight      Equipment = "bodyweight"
	EquipDumbbells       Equipment = "dumbbells"
	EquipBarbell         Equipment = "barbell"
	EquipKettlebell      Equipment = "kettlebell"
	EquipResistanceBands Equipment = "resistance_bands"
	EquipPullUpBar       Equipment = "pull_up_bar"
	EquipBench           Equipment = "bench"
	EquipJumpRope        Equipment = "jump_rope"
	EquipYogaMat         Equipment = "yoga_mat"
	EquipTreadmill       Equipment = "treadmill"
	EquipStationaryBike  Equipment = "stationary_bike"
	EquipRowingMachine   Equipment = "rowing_machine"
	EquipCableMachine    Equipment = "cable_machine"
)

var equipmentSet = map[Equipment]struct{}{
	EquipBodyweight: {}, EquipDumbbells: {}, EquipBarbell: {}, EquipKettlebell: {},
	EquipResistanceBands: {}, EquipPullUpBar: {}, EquipBench: {}, EquipJumpRope: {},
	EquipYogaMat: {}, EquipTreadmill: {}, EquipStationaryBike: {}, EquipRowingMachine: {},
	EquipCableMachine: {},
}

var equipmentAliases = map[string]Equipment{
	"none":             EquipBodyweight,
	"body_weight":      EquipBodyweight,
	"no_equipment":     EquipBodyweight,
	"dumbbell":         EquipDumbbells,
	"kettlebells":      EquipKettlebell,
	"resistance_band":  EquipResistanceBands,
	"bands":            EquipResistanceBands,
	"pullup_bar":       EquipPullUpBar,
	"mat":              EquipYogaMat,
	"bike":             EquipStationaryBike,
	"rower":            EquipRowingMachine,
	"cable":            EquipCableMachine,
	"weight_bench":     EquipBench,
	"skipping_rope":    EquipJumpRope,
	"running_machine":  EquipTreadmill,
	"exercise_bike":    EquipStationaryBike,
	"barbells":         EquipBarbell,
	"benches":          EquipBench,
	"jumprope":         EquipJumpRope,
	"yoga_mats":        EquipYogaMat,
	"treadmills":       EquipTreadmill,
	"rowing_machines":  EquipRowingMachine,
	"cable_machines":   EquipCableMachine,
	"pull_up_bars":     EquipPullUpBar,
	"stationary_bikes": EquipStationaryBike,
}

// ParseEquipment 解析器材名稱（含常見別名）
func ParseEquipment(s string) (Equipment, error) {
	n := normalizeTag(s)
	if alias, ok := equipmentAliases[n]; ok {
		return alias, nil
	}
	e := Equipment(n)
	if _, ok := equipmentSet[e]; !ok {
		return "", fmt.Errorf("unknown equipment %q", s)
	}
	return e, nil
}

// Valid 是否為已知器材
func (e Equipment) Valid() bool {
	_, ok := equipmentSet[e]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (e *Equipment) UnmarshalText(b []byte) error {
	v, err := ParseEquipment(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// EquipmentSubset required 是否都在 available 之內，徒手永遠可用
func EquipmentSubset(required, available []Equipment) bool {
	have := make(map[Equipment]struct{}, len(available)+1)
	have[EquipBodyweight] = struct{}{}
	for _, e := range available {
		have[e] = struct{}{}
	}
	for _, e := range required {
		if _, ok := have[e]; !ok {
			return false
		}
	}
	return true
}

// ---------------- 健身目標 ----------------

// FitnessGoal 健身目標
type FitnessGoal string

const (
	GoalWeightLoss     FitnessGoal = "weight_loss"
	GoalMuscleGain     FitnessGoal = "muscle_gain"
	GoalMaintenance    FitnessGoal = "maintenance"
	GoalEndurance      FitnessGoal = "endurance"
	GoalStrength       FitnessGoal = "strength"
	GoalFlexibility    FitnessGoal = "flexibility"
	GoalGeneralFitness FitnessGoal = "general_fitness"
)

// goalMuscles 目標 -> 目標肌群
var goalMuscles = map[FitnessGoal][]MuscleGroup{
	GoalWeightLoss:     {MuscleFullBody, MuscleCardio},
	GoalMuscleGain:     {MuscleChest, MuscleBack, MuscleShoulders, MuscleQuadriceps, MuscleHamstrings},
	GoalMaintenance:    {MuscleFullBody},
	GoalEndurance:      {MuscleCardio, MuscleFullBody},
	GoalStrength:       {MuscleChest, MuscleBack, MuscleQuadriceps, MuscleCore},
	GoalFlexibility:    {MuscleFullBody},
	GoalGeneralFitness: {MuscleFullBody, MuscleCardio},
}

// goalTypes 目標 -> 建議運動類型（依優先順序）
var goalTypes = map[FitnessGoal][]WorkoutType{
	GoalWeightLoss:     {WorkoutHIIT, WorkoutCardio, WorkoutStrength},
	GoalMuscleGain:     {WorkoutStrength},
	GoalMaintenance:    {WorkoutStrength, WorkoutCardio, WorkoutFlexibility},
	GoalEndurance:      {WorkoutCardio, WorkoutHIIT},
	GoalStrength:       {WorkoutStrength},
	GoalFlexibility:    {WorkoutFlexibility},
	GoalGeneralFitness: {WorkoutStrength, WorkoutCardio, WorkoutHIIT, WorkoutFlexibility},
}

// ParseFitnessGoal 解析健身目標
func ParseFitnessGoal(s string) (FitnessGoal, error) {
	g := FitnessGoal(normalizeTag(s))
	if _, ok := goalMuscles[g]; !ok {
		return "", fmt.Errorf("unknown fitness goal %q", s)
	}
	return g, nil
}

// Valid 是否為已知目標
func (g FitnessGoal) Valid() bool {
	_, ok := goalMuscles[g]
	return ok
}

// UnmarshalText 實作 encoding.TextUnmarshaler
func (g *FitnessGoal) UnmarshalText(b []byte) error {
	v, err := ParseFitnessGoal(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// GoalMuscleGroups 多個目標對應的目標肌群（去重，保持順序）
// 沒有目標時視為 general_fitness
func GoalMuscleGroups(goals []FitnessGoal) []MuscleGroup {
	if len(goals) == 0 {
		goals = []FitnessGoal{GoalGeneralFitness}
	}
	seen := make(map[MuscleGroup]struct{})
	var out []MuscleGroup
	for _, g := range goals {
		for _, m := range goalMuscles[g] {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return append([]MuscleGroup(nil), goalMuscles[GoalGeneralFitness]...)
	}
	return out
}

// GoalWorkoutTypes 多個目標對應的運動類型（去重，保持順序）
func GoalWorkoutTypes(goals []FitnessGoal) []WorkoutType {
	if len(goals) == 0 {
		goals = []FitnessGoal{GoalGeneralFitness}
	}
	seen := make(map[WorkoutType]struct{})
	var out []WorkoutType
	for _, g := range goals {
		for _, t := range goalTypes[g] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	// 未知目標沒有對應類型
	if len(out) == 0 {
		return append([]WorkoutType(nil), goalTypes[GoalGeneralFitness]...)
	}
	return out
}
