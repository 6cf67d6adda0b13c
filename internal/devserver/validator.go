package devserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom game tag registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation(ValidationTagGame, validateGame)
	return &Validator{validate: v}
}

func validateGame(fl validator.FieldLevel) bool {
	return domain.GameType(fl.Field().String()).Valid()
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// ValidateGame checks a game path parameter
func (v *Validator) ValidateGame(game string) error {
	return v.validate.Var(game, "required,"+ValidationTagGame)
}

// FormatValidationError formats validation errors into a field → message map without
// leaking internal struct names
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = ValidationMsgMalformed
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = ValidationMsgRequired
		case ValidationTagGame:
			errs[field] = ValidationMsgGame
		case "max":
			errs[field] = fmt.Sprintf(ValidationMsgMax, e.Param())
		default:
			errs[field] = ValidationMsgDefault
		}
	}

	return errs
}
