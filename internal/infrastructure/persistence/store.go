// Package persistence stores catalogs, generated plans and precomputed embeddings with gorm.
package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"

	"plan-generator/internal/pkg/common"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrPlanNotFound 計畫不存在
var ErrPlanNotFound = common.NewError(common.ErrCodeNotFound, "計畫不存在", http.StatusNotFound, nil)

// Seed 目錄種子檔內容
type Seed struct {
	Recipes  []common.Recipe  `json:"recipes"`
	Workouts []common.Workout `json:"workouts"`
}

// Store gorm 儲存層
type Store struct {
	db *gorm.DB
}

// Open 開啟 sqlite 資料庫並建立資料表
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// 每條連線都是獨立的記憶體資料庫
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New 以既有連線建立儲存層
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&RecipeRecord{},
		&WorkoutRecord{},
		&MealPlanRecord{},
		&WorkoutPlanRecord{},
		&EmbeddingRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// DB 底層連線
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉連線
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ImportSeed 目錄為空時匯入種子檔，回傳匯入的食譜與課表數
func (s *Store) ImportSeed(ctx context.Context, path string) (int, int, error) {
	var recipes, workouts int64
	if err := s.db.WithContext(ctx).Model(&RecipeRecord{}).Count(&recipes).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&WorkoutRecord{}).Count(&workouts).Error; err != nil {
		return 0, 0, err
	}
	if recipes > 0 || workouts > 0 {
		common.LogInfo("Catalog already populated, skipping seed",
			zap.Int64("recipes", recipes),
			zap.Int64("workouts", workouts),
		)
		return 0, 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := common.ParseJSONBytes(data, &seed); err != nil {
		return 0, 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := s.SaveRecipes(ctx, seed.Recipes); err != nil {
		return 0, 0, err
	}
	if err := s.SaveWorkouts(ctx, seed.Workouts); err != nil {
		return 0, 0, err
	}

	common.LogInfo("目錄種子已匯入",
		zap.String("file", path),
		zap.Int("recipes", len(seed.Recipes)),
		zap.Int("workouts", len(seed.Workouts)),
	)
	return len(seed.Recipes), len(seed.Workouts), nil
}

// SaveRecipes 依序寫入食譜，相同 ID 覆寫
func (s *Store) SaveRecipes(ctx context.Context, recipes []common.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	records := make([]RecipeRecord, len(recipes))
	for i, r := range recipes {
		records[i] = RecipeRecord{
			ID:       r.ID,
			Position: i,
			Name:     r.Name,
			MealType: string(r.MealType),
			Data:     r,
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("failed to save recipes: %w", err)
	}
	return nil
}

// SaveWorkouts 依序寫入課表，相同 ID 覆寫
func (s *Store) SaveWorkouts(ctx context.Context, workouts []common.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	records := make([]WorkoutRecord, len(workouts))
	for i, w := range workouts {
		records[i] = WorkoutRecord{
			ID:       w.ID,
			Position: i,
			Name:     w.Name,
			Type:     string(w.Type),
			Data:     w,
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("failed to save workouts: %w", err)
	}
	return nil
}

// LoadRecipes 依匯入順序讀取食譜
func (s *Store) LoadRecipes(ctx context.Context) ([]common.Recipe, error) {
	var records []RecipeRecord
	if err := s.db.WithContext(ctx).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	out := make([]common.Recipe, len(records))
	for i, r := range records {
		out[i] = r.Data
	}
	return out, nil
}

// LoadWorkouts 依匯入順序讀取課表
func (s *Store) LoadWorkouts(ctx context.Context) ([]common.Workout, error) {
	var records []WorkoutRecord
	if err := s.db.WithContext(ctx).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load workouts: %w", err)
	}
	out := make([]common.Workout, len(records))
	for i, r := range records {
		out[i] = r.Data
	}
	return out, nil
}

// SaveMealPlan 保存餐點計畫
func (s *Store) SaveMealPlan(ctx context.Context, plan *common.MealPlan) error {
	if plan == nil || plan.ID == "" {
		return common.NewValidationError("meal plan with id is required")
	}
	record := MealPlanRecord{
		ID:        plan.ID,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Days:      len(plan.Days),
		Data:      *plan,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save meal plan: %w", err)
	}
	return nil
}

// GetMealPlan 讀取餐點計畫
func (s *Store) GetMealPlan(ctx context.Context, id string) (*common.MealPlan, error) {
	var record MealPlanRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	plan := record.Data
	return &plan, nil
}

// SaveWorkoutPlan 保存運動計畫
func (s *Store) SaveWorkoutPlan(ctx context.Context, plan *common.WorkoutPlan) error {
	if plan == nil || plan.ID == "" {
		return common.NewValidationError("workout plan with id is required")
	}
	record := WorkoutPlanRecord{
		ID:        plan.ID,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Data:      *plan,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save workout plan: %w", err)
	}
	return nil
}

// GetWorkoutPlan 讀取運動計畫
func (s *Store) GetWorkoutPlan(ctx context.Context, id string) (*common.WorkoutPlan, error) {
	var record WorkoutPlanRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workout plan: %w", err)
	}
	plan := record.Data
	return &plan, nil
}

// SaveEmbeddings 保存某個向量來源的預先計算向量
func (s *Store) SaveEmbeddings(ctx context.Context, namespace string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	records := make([]EmbeddingRecord, 0, len(vectors))
	for text, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		records = append(records, EmbeddingRecord{
			Namespace:  namespace,
			TextHash:   hashText(text),
			Text:       text,
			Dimensions: len(vec),
			Vector:     pgvector.NewVector(vec),
		})
	}
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "text_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "dimensions"}),
		}).
		CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}
	return nil
}

// LoadEmbeddings 讀取某個向量來源的所有向量，以原文為鍵
func (s *Store) LoadEmbeddings(ctx context.Context, namespace string) (map[string][]float32, error) {
	var records []EmbeddingRecord
	if err := s.db.WithContext(ctx).Where("namespace = ?", namespace).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	out := make(map[string][]float32, len(records))
	for _, r := range records {
		out[r.Text] = r.Vector.Slice()
	}
	return out, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
