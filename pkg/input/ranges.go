package input

import (
	"fmt"
	"math"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// RangeWarning flags a value outside the typical range shown on the form.
// Warnings are advisory; scoring never looks at them.
type RangeWarning struct {
	Field   string  `json:"field" yaml:"field"`
	Value   float64 `json:"value" yaml:"value"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Message string  `json:"message" yaml:"message"`
}

func (w RangeWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// CheckRanges compares each measurement with its typical range
func CheckRanges(h models.HealthInput) []RangeWarning {
	var warnings []RangeWarning

	for _, f := range catalog {
		v, _ := h.Value(f.Key)

		var msg string
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			msg = "value is not a finite number"
		case v < 0:
			msg = fmt.Sprintf("negative value %g", v)
		case v < f.TypicalMin:
			msg = fmt.Sprintf("%g is below the typical range %s", v, f.Placeholder)
		case v > f.TypicalMax:
			msg = fmt.Sprintf("%g is above the typical range %s", v, f.Placeholder)
		default:
			continue
		}

		warnings = append(warnings, RangeWarning{
			Field:   f.Key,
			Value:   v,
			Min:     f.TypicalMin,
			Max:     f.TypicalMax,
			Message: msg,
		})
	}

	return warnings
}
