package persistence

import (
	"time"

	"plan-generator/internal/pkg/common"

	pgvector "github.com/pgvector/pgvector-go"
)

// RecipeRecord 食譜目錄，完整內容以 JSON 保存
type RecipeRecord struct {
	ID        string        `gorm:"primaryKey;size:64"`
	Position  int           `gorm:"index"`
	Name      string        `gorm:"size:255;not null"`
	MealType  string        `gorm:"size:20;index"`
	Data      common.Recipe `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RecipeRecord) TableName() string { return "recipes" }

// WorkoutRecord 課表目錄
type WorkoutRecord struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Position  int            `gorm:"index"`
	Name      string         `gorm:"size:255;not null"`
	Type      string         `gorm:"size:20;index"`
	Data      common.Workout `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WorkoutRecord) TableName() string { return "workouts" }

// MealPlanRecord 已產生的餐點計畫
type MealPlanRecord struct {
	ID        string          `gorm:"primaryKey;size:64"`
	StartDate time.Time       `gorm:"index"`
	EndDate   time.Time       `gorm:"not null"`
	Days      int             `gorm:"not null"`
	Data      common.MealPlan `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time
}

func (MealPlanRecord) TableName() string { return "meal_plans" }

// WorkoutPlanRecord 已產生的運動計畫
type WorkoutPlanRecord struct {
	ID        string             `gorm:"primaryKey;size:64"`
	StartDate time.Time          `gorm:"index"`
	EndDate   time.Time          `gorm:"not null"`
	Data      common.WorkoutPlan `gorm:"serializer:json;type:text;not null"`
	CreatedAt time.Time
}

func (WorkoutPlanRecord) TableName() string { return "workout_plans" }

// EmbeddingRecord 預先計算的向量，以 (namespace, text) 唯一
type EmbeddingRecord struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	Namespace  string          `gorm:"size:128;not null;uniqueIndex:idx_embedding_text"`
	TextHash   string          `gorm:"size:64;not null;uniqueIndex:idx_embedding_text"`
	Text       string          `gorm:"type:text;not null"`
	Dimensions int             `gorm:"not null"`
	Vector     pgvector.Vector `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (EmbeddingRecord) TableName() string { return "embeddings" }
