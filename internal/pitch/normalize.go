package pitch

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is the normalized, validated pitch request record.
type Input struct {
	JobTitle          string `form:"jobTitle" validate:"required,min=2"`
	Purpose           string `form:"purpose" validate:"required,min=2"`
	FocusArea         string `form:"focusArea"`
	Audience          string `form:"audience"`
	AdditionalContext string `form:"additionalContext"`
	Tone              string `form:"tone"`
	Length            string `form:"length"`
}

// Violation names one field that failed validation.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Normalize coerces the raw multipart fields into an Input and validates it.
// It is pure and touches no downstream service; a non-empty violation list
// means the request must be rejected before any work happens.
func Normalize(raw RawFields) (Input, []Violation) {
	in := Input{
		JobTitle:          raw.First("jobTitle"),
		Purpose:           raw.First("purpose"),
		FocusArea:         raw.First("focusArea"),
		Audience:          raw.First("audience"),
		AdditionalContext: raw.First("additionalContext"),
		Tone:              raw.First("tone"),
		Length:            raw.First("length"),
	}

	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in, []Violation{{Field: "", Reason: err.Error()}}
	}

	violations := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, Violation{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return in, violations
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
