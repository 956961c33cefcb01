package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cartime-app/cartime-backend/internal/utils"
)

// RegisterCustomValidators adds the binding tags the DTOs rely on to gin's
// validator engine.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("dateonly", validateDateOnly)
}

// validateDateOnly accepts strict YYYY-MM-DD calendar dates.
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := utils.ParseDateOnly(fl.Field().String())
	return err == nil
}
