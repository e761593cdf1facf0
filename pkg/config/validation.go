package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a run-parameter validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	// Generate custom message based on tag
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "gt":
		return fmt.Sprintf("%s must be greater than the bound", e.Field)
	case "lt":
		return fmt.Sprintf("%s must be less than the bound", e.Field)
	case "min":
		return fmt.Sprintf("%s must be at least the bound", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the allowed values", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validator provides run-parameter validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new run-parameter validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateParams validates a parameter set, combining struct-tag checks with
// the cross-field section rules.
func (v *Validator) ValidateParams(params *RunParams) error {
	if params == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "params",
				Tag:     "required",
				Value:   nil,
				Message: "params is nil",
			},
		}
	}

	err := v.validate.Struct(params)
	if err == nil {
		if customErrors := v.validateCustomRules(params); len(customErrors) > 0 {
			return customErrors
		}
		return nil
	}

	// Convert validator errors to our custom error format
	var validationErrors ValidationErrors

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			validationErrors = append(validationErrors, ValidationError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Value(),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			Message: err.Error(),
		})
	}

	if customErrors := v.validateCustomRules(params); len(customErrors) > 0 {
		validationErrors = append(validationErrors, customErrors...)
	}

	return validationErrors
}

// validateCustomRules covers the cross-field constraints struct tags cannot
// express.
func (v *Validator) validateCustomRules(params *RunParams) ValidationErrors {
	var errs ValidationErrors

	sec := params.Section
	if sec.FlangeThickness > 0 && sec.Depth > 0 && sec.FlangeThickness >= sec.Depth/2 {
		errs = append(errs, ValidationError{
			Field:   "Section.FlangeThickness",
			Tag:     "section",
			Value:   sec.FlangeThickness,
			Message: "flange thickness must be less than half the depth",
		})
	}
	if sec.WebThickness > 0 && sec.FlangeWidth > 0 && sec.WebThickness >= sec.FlangeWidth {
		errs = append(errs, ValidationError{
			Field:   "Section.WebThickness",
			Tag:     "section",
			Value:   sec.WebThickness,
			Message: "web thickness must be less than the flange width",
		})
	}

	// Convergence must trigger before the safety hold can stall the run.
	if params.ConvergenceFloor > 0 && params.SafetyFloor > 0 &&
		params.ConvergenceFloor <= params.SafetyFloor {
		errs = append(errs, ValidationError{
			Field:   "ConvergenceFloor",
			Tag:     "floors",
			Value:   params.ConvergenceFloor,
			Message: "convergence floor must be greater than the safety floor",
		})
	}

	return errs
}

// Validate runs the default validator over a parameter set.
func Validate(params *RunParams) error {
	return NewValidator().ValidateParams(params)
}
