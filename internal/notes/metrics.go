package notes

import (
	"fmt"
	"reflect"

	"github.com/dkeeling/lifelog/internal/domain"
	"github.com/dkeeling/lifelog/internal/validate"
)

// timeSeriesFields validates one Metric record (Hike / Bike Ride).
// Every field is optional; times, distance and speeds must be ≥ 0 and the
// start date must be a full ISO-8601 timestamp.
var timeSeriesFields = []validate.Field{
	{Param: "startDate", Rules: []validate.Rule{
		validate.RFC3339("The start date must be a full ISO-8601 timestamp."),
	}},
	{Param: "movingTime", Rules: []validate.Rule{
		validate.NonNegative("The moving time must be a number greater than or equal to 0."),
	}},
	{Param: "totalTime", Rules: []validate.Rule{
		validate.NonNegative("The total time must be a number greater than or equal to 0."),
	}},
	{Param: "distance", Rules: []validate.Rule{
		validate.NonNegative("The distance must be a number greater than or equal to 0."),
	}},
	{Param: "avgSpeed", Rules: []validate.Rule{
		validate.NonNegative("The average speed must be a number greater than or equal to 0."),
	}},
	{Param: "maxSpeed", Rules: []validate.Rule{
		validate.NonNegative("The maximum speed must be a number greater than or equal to 0."),
	}},
	{Param: "elevationGain", Rules: []validate.Rule{
		validate.Number("The elevation gain must be a number."),
	}},
	{Param: "maxElevation", Rules: []validate.Rule{
		validate.Number("The maximum elevation must be a number."),
	}},
}

// propertyValueFields validates one {property, value} pair (Workout).
var propertyValueFields = []validate.Field{
	{Param: "property", Rules: []validate.Rule{
		validate.Required("A metric property is required."),
	}},
	{Param: "value", Rules: []validate.Rule{
		validate.Required("A metric value is required."),
	}},
}

// ValidateMetrics validates a note's metrics array against the subtype's
// metric shape, accumulating every error with index-qualified params like
// "metrics[2].value". It also rejects structurally identical entries
// (deep equality on coerced elements, element-wise).
//
// The returned value is the coerced metrics array for the payload echo; when
// value is absent (nil) it is returned unchanged with no errors.
func ValidateMetrics(shape MetricShape, value any) ([]domain.FieldError, any) {
	if value == nil || shape == MetricsNone {
		return nil, value
	}

	arr, ok := value.([]any)
	if !ok {
		fe := domain.NewFieldError("metrics", "The metrics must be supplied as an array.", value)
		return []domain.FieldError{fe}, value
	}

	elemFields := timeSeriesFields
	if shape == MetricsPropertyValue {
		elemFields = propertyValueFields
	}

	var errs []domain.FieldError
	coerced := make([]any, len(arr))
	for i, elem := range arr {
		m, ok := elem.(map[string]any)
		if !ok {
			errs = append(errs, domain.NewFieldError(
				fmt.Sprintf("metrics[%d]", i), "Each metric must be an object.", elem))
			coerced[i] = elem
			continue
		}
		elemErrs, normalized := validate.Apply(elemFields, m)
		for _, fe := range elemErrs {
			fe.Param = fmt.Sprintf("metrics[%d].%s", i, fe.Param)
			errs = append(errs, fe)
		}
		coerced[i] = normalized
	}

	if dup := hasDuplicateElements(coerced); dup {
		errs = append(errs, domain.NewFieldError(
			"metrics", "Duplicate metrics are not allowed.", coerced))
	}
	return errs, coerced
}

// hasDuplicateElements reports whether any two coerced metric entries are
// structurally identical on all populated fields.
func hasDuplicateElements(arr []any) bool {
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			if reflect.DeepEqual(arr[i], arr[j]) {
				return true
			}
		}
	}
	return false
}
