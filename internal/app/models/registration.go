package models

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// ValidateRegistrationData checks submitted form values against the event's field definitions.
// It returns one message per offending label, or nil when the data is acceptable.
func ValidateRegistrationData(fields []RegistrationField, data map[string]string) map[string]interface{} {
	problems := map[string]interface{}{}
	for _, f := range fields {
		value := strings.TrimSpace(data[f.Label])
		if value == "" {
			if f.Required {
				problems[f.Label] = f.Label + " is required"
			}
			continue
		}

		switch f.Kind {
		case FieldEmail:
			if fieldValidator.Var(value, "email") != nil {
				problems[f.Label] = f.Label + " must be a valid email address"
			}
		case FieldNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				problems[f.Label] = f.Label + " must be a number"
			}
		case FieldTel:
			if fieldValidator.Var(strings.NewReplacer(" ", "", "-", "").Replace(value), "e164|numeric") != nil {
				problems[f.Label] = f.Label + " must be a phone number"
			}
		case FieldSelect:
			if !containsString(f.Options, value) {
				problems[f.Label] = f.Label + " must be one of: " + strings.Join(f.Options, ", ")
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// RegistrationOutcome is the result of one registration attempt
type RegistrationOutcome struct {
	EventID           string
	UserID            string
	AlreadyRegistered bool
	RegisteredCount   int
	Capacity          int
	// Overbooked is set when capacity enforcement is off and the seat went past capacity
	Overbooked bool
}
