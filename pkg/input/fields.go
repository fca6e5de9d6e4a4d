// Package input turns raw form values, CLI flags and record files into
// models.HealthInput values.
package input

import (
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// Field describes one of the eight measurements as presented on the form
type Field struct {
	Key         string  `json:"key" yaml:"key"`
	Label       string  `json:"label" yaml:"label"`
	Unit        string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Placeholder string  `json:"placeholder" yaml:"placeholder"`
	Description string  `json:"description" yaml:"description"`
	TypicalMin  float64 `json:"typicalMin" yaml:"typicalMin"`
	TypicalMax  float64 `json:"typicalMax" yaml:"typicalMax"`
	Default     float64 `json:"default" yaml:"default"`
	Integer     bool    `json:"integer,omitempty" yaml:"integer,omitempty"`
}

var catalog = []Field{
	{
		Key:         "pregnancies",
		Label:       "Number of Pregnancies",
		Placeholder: "0-15",
		Description: "Total number of pregnancies",
		TypicalMin:  0,
		TypicalMax:  15,
		Default:     0,
		Integer:     true,
	},
	{
		Key:         "glucose",
		Label:       "Glucose Level (mg/dL)",
		Unit:        "mg/dL",
		Placeholder: "70-200",
		Description: "Plasma glucose concentration",
		TypicalMin:  70,
		TypicalMax:  200,
		Default:     120,
	},
	{
		Key:         "bloodPressure",
		Label:       "Blood Pressure (mmHg)",
		Unit:        "mmHg",
		Placeholder: "60-140",
		Description: "Diastolic blood pressure",
		TypicalMin:  60,
		TypicalMax:  140,
		Default:     80,
	},
	{
		Key:         "skinThickness",
		Label:       "Skin Thickness (mm)",
		Unit:        "mm",
		Placeholder: "10-50",
		Description: "Triceps skin fold thickness",
		TypicalMin:  10,
		TypicalMax:  50,
		Default:     20,
	},
	{
		Key:         "insulin",
		Label:       "Insulin Level (μU/mL)",
		Unit:        "μU/mL",
		Placeholder: "15-300",
		Description: "2-Hour serum insulin",
		TypicalMin:  15,
		TypicalMax:  300,
		Default:     80,
	},
	{
		Key:         "bmi",
		Label:       "BMI (Body Mass Index)",
		Unit:        "kg/m²",
		Placeholder: "15-50",
		Description: "Weight in kg/(height in m)²",
		TypicalMin:  15,
		TypicalMax:  50,
		Default:     25,
	},
	{
		Key:         "diabetesPedigree",
		Label:       "Diabetes Pedigree Function",
		Placeholder: "0.0-2.5",
		Description: "Genetic diabetes likelihood",
		TypicalMin:  0,
		TypicalMax:  2.5,
		Default:     0.5,
	},
	{
		Key:         "age",
		Label:       "Age (years)",
		Unit:        "years",
		Placeholder: "18-100",
		Description: "Age in years",
		TypicalMin:  18,
		TypicalMax:  100,
		Default:     30,
	},
}

// Fields returns the field catalog in form order. The slice is a copy.
func Fields() []Field {
	out := make([]Field, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for a json key
func Lookup(key string) (Field, bool) {
	for _, f := range catalog {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the values the form starts out with
func Defaults() models.HealthInput {
	var h models.HealthInput
	for _, f := range catalog {
		set(&h, f.Key, f.Default)
	}
	return h
}

// set assigns v to the field named key. Unknown keys are ignored.
func set(h *models.HealthInput, key string, v float64) {
	switch key {
	case "pregnancies":
		h.Pregnancies = toCount(v)
	case "glucose":
		h.Glucose = v
	case "bloodPressure":
		h.BloodPressure = v
	case "skinThickness":
		h.SkinThickness = v
	case "insulin":
		h.Insulin = v
	case "bmi":
		h.BMI = v
	case "diabetesPedigree":
		h.DiabetesPedigree = v
	case "age":
		h.Age = v
	}
}
