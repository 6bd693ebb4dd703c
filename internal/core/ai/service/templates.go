package service

import (
	"fmt"
	"strings"

	"plan-generator/internal/pkg/common"
)

// 沒有生成模型時的固定建議

func mealTemplate(p *common.Profile, mealType common.MealType, calories int) string {
	protein := "a lean protein such as chicken, fish or eggs"
	switch {
	case hasDiet(p, common.DietVegan):
		protein = "a plant protein such as tofu, tempeh or lentils"
	case hasDiet(p, common.DietVegetarian):
		protein = "a vegetarian protein such as beans, lentils or tofu"
	case hasDiet(p, common.DietPescatarian):
		protein = "fish or legumes"
	}

	base := "a whole grain and plenty of vegetables"
	switch {
	case hasDiet(p, common.DietKeto), hasDiet(p, common.DietLowCarb):
		base = "non-starchy vegetables and a healthy fat"
	case hasDiet(p, common.DietGlutenFree):
		base = "rice or potatoes and plenty of vegetables"
	}
	if mealType == common.MealSnack {
		base = "a piece of fruit or a handful of vegetables"
	}

	text := fmt.Sprintf("Build a simple %s around %s with %s, about %d kcal.", mealType, protein, base, calories)
	if len(p.Allergies) > 0 {
		text += fmt.Sprintf(" Leave out %s.", strings.Join(p.Allergies, ", "))
	}
	return text
}

func workoutTemplate(p *common.Profile, workoutType common.WorkoutType, minutes int) string {
	var body string
	switch workoutType {
	case common.WorkoutStrength:
		body = "3 rounds of squats, push-ups, rows and lunges"
	case common.WorkoutCardio:
		body = "brisk walking, cycling or jogging at a steady pace"
	case common.WorkoutHIIT:
		body = "30 second intervals of jumping jacks, squats and mountain climbers with equal rest"
	case common.WorkoutFlexibility:
		body = "a gentle stretching and mobility flow"
	default:
		body = "a warm-up, a short strength circuit and an easy cool-down"
	}
	if eq := equipmentList(p.Equipment); eq != "" && workoutType == common.WorkoutStrength {
		body += " using " + eq
	}
	return fmt.Sprintf("Try %d minutes of %s at a %s pace.", minutes, body, p.Level())
}

func hasDiet(p *common.Profile, tag common.DietaryTag) bool {
	for _, d := range p.DietaryPreferences {
		if d == tag {
			return true
		}
	}
	return false
}
