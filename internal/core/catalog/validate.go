package catalog

import (
	"errors"
	"fmt"
	"strings"

	"plan-generator/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

// enumValue 封閉列舉型別
type enumValue interface {
	Valid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("enum", validateEnum)
	v.RegisterStructValidation(validateExercise, common.Exercise{})
	return v
}

// validateEnum 欄位必須是已知的列舉值
func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(enumValue)
	return ok && e.Valid()
}

// validateExercise reps 與 duration 剛好設定一個，且休息秒數必填
func validateExercise(sl validator.StructLevel) {
	ex := sl.Current().Interface().(common.Exercise)

	switch {
	case (ex.Reps == nil) == (ex.DurationSeconds == nil):
		sl.ReportError(ex.Reps, "Reps", "Reps", "reps_xor_duration", "")
	case ex.Reps != nil && *ex.Reps <= 0:
		sl.ReportError(ex.Reps, "Reps", "Reps", "gt", "0")
	case ex.DurationSeconds != nil && *ex.DurationSeconds <= 0:
		sl.ReportError(ex.DurationSeconds, "DurationSeconds", "DurationSeconds", "gt", "0")
	}

	if ex.RestSeconds == nil {
		sl.ReportError(ex.RestSeconds, "RestSeconds", "RestSeconds", "required", "")
	} else if *ex.RestSeconds < 0 {
		sl.ReportError(ex.RestSeconds, "RestSeconds", "RestSeconds", "gte", "0")
	}
}

// describe 將驗證錯誤整理為單行訊息
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// ValidateRecipe 驗證單一食譜
func ValidateRecipe(r *common.Recipe) error {
	if err := validate.Struct(r); err != nil {
		return &common.InvalidEntityError{Kind: "recipe", ID: r.ID, Reason: describe(err)}
	}
	return nil
}

// ValidateWorkout 驗證單一課表與其所有動作
func ValidateWorkout(w *common.Workout) error {
	if err := validate.Struct(w); err != nil {
		return &common.InvalidEntityError{Kind: "workout", ID: w.ID, Reason: describe(err)}
	}
	return nil
}
