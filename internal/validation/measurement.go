package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"iris-api/internal/inference"
)

// Rules a field can violate. The whole record is rejected on the first
// violation of any field; there are no cross-field rules.
const (
	RuleRequired = "required"
	RuleRange    = "range"
	RuleType     = "type"
)

// MeasurementRequest is the wire shape of one measurement. Fields are
// pointers so an absent field is distinguishable from a legitimate 0.0.
type MeasurementRequest struct {
	SepalLength *float64 `json:"sepal_length" validate:"required,gte=0,lte=10"`
	SepalWidth  *float64 `json:"sepal_width" validate:"required,gte=0,lte=10"`
	PetalLength *float64 `json:"petal_length" validate:"required,gte=0,lte=10"`
	PetalWidth  *float64 `json:"petal_width" validate:"required,gte=0,lte=10"`
}

// Measurement converts a validated request into the inference input.
// Callers must run Validate first.
func (r MeasurementRequest) Measurement() inference.Measurement {
	return inference.Measurement{
		SepalLength: *r.SepalLength,
		SepalWidth:  *r.SepalWidth,
		PetalLength: *r.PetalLength,
		PetalWidth:  *r.PetalWidth,
	}
}

// FieldError names one offending field and the rule it violated.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonTagName)
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// Validate checks every field of the request against the measurement
// contract: present, and within [0, 10] inclusive.
func Validate(r MeasurementRequest) []FieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Rule: RuleType, Message: err.Error()}}
	}

	fieldErrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, toFieldError(fe))
	}
	return fieldErrs
}

func toFieldError(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{
			Field:   fe.Field(),
			Rule:    RuleRequired,
			Message: fmt.Sprintf("%s is required", fe.Field()),
		}
	case "gte", "lte":
		return FieldError{
			Field:   fe.Field(),
			Rule:    RuleRange,
			Message: fmt.Sprintf("%s must be between 0 and 10", fe.Field()),
		}
	default:
		return FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()),
		}
	}
}

// PrefixIndex rewrites field names for batch items so each error is
// addressed to the record it belongs to, e.g. "[2].petal_width".
func PrefixIndex(fieldErrs []FieldError, index int) []FieldError {
	prefixed := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		fe.Field = fmt.Sprintf("[%d].%s", index, fe.Field)
		fe.Message = fmt.Sprintf("[%d]: %s", index, fe.Message)
		prefixed[i] = fe
	}
	return prefixed
}

// FieldErrorsFromJSON maps a JSON decode error onto a wrong-type field
// error when the offending field is known. Malformed JSON that cannot be
// attributed to a field returns nil.
func FieldErrorsFromJSON(err error) []FieldError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}
	return []FieldError{{
		Field:   typeErr.Field,
		Rule:    RuleType,
		Message: fmt.Sprintf("%s must be a number", typeErr.Field),
	}}
}
