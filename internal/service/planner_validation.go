package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lesson-planner-api/internal/planner"
)

// registerPlannerValidations adds the isodate and weekday tags used by the planner DTOs.
func registerPlannerValidations(v *validator.Validate) error {
	return errors.Join(
		v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := planner.NormalizeDate(fl.Field().String())
			return err == nil
		}),
		v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, err := planner.ParseWeekday(fl.Field().String())
			return err == nil
		}),
	)
}
