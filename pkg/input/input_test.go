package input

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"120", 120},
		{"  33.6", 33.6},
		{"12abc", 12},
		{".5", 0.5},
		{"5.", 5},
		{"-.25", -0.25},
		{"1e2x", 100},
		{"1e", 1},
		{"1e+", 1},
		{"2.5E-1", 0.25},
		{"0x10", 0},
		{"-0", 0},
		{"NaN", 0},
		{"+7", 7},
		{"\t\n 42 mg/dL", 42},
		{"1,5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestParseNumberInfinity(t *testing.T) {
	assert.True(t, math.IsInf(ParseNumber("Infinity"), 1))
	assert.True(t, math.IsInf(ParseNumber("-Infinityx"), -1))
	assert.True(t, math.IsInf(ParseNumber("1e400"), 1))
	assert.Equal(t, 0.0, ParseNumber("inf"))
}

func TestFieldsCatalog(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, 8)
	for i, f := range fields {
		assert.Equal(t, models.HealthFieldKeys[i], f.Key, "catalog follows form order")
		assert.NotEmpty(t, f.Label)
		assert.LessOrEqual(t, f.TypicalMin, f.TypicalMax)
	}

	// Returned slice is a copy
	fields[0].Label = "changed"
	assert.Equal(t, "Number of Pregnancies", Fields()[0].Label)

	f, ok := Lookup("bmi")
	require.True(t, ok)
	assert.Equal(t, "15-50", f.Placeholder)
	_, ok = Lookup("cholesterol")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, models.HealthInput{
		Pregnancies:      0,
		Glucose:          120,
		BloodPressure:    80,
		SkinThickness:    20,
		Insulin:          80,
		BMI:              25,
		DiabetesPedigree: 0.5,
		Age:              30,
	}, Defaults())
}

func TestFromValues(t *testing.T) {
	got := FromValues(map[string]string{
		"pregnancies":    "2.9",
		"glucose":        "150",
		"blood_pressure": "abc",
		"BMI":            "31.2",
		"unknown":        "99",
	}, Defaults())

	assert.Equal(t, 2, got.Pregnancies, "pregnancies truncates toward zero")
	assert.Equal(t, 150.0, got.Glucose)
	assert.Equal(t, 0.0, got.BloodPressure, "unparseable text becomes 0")
	assert.Equal(t, 31.2, got.BMI)
	assert.Equal(t, 80.0, got.Insulin, "missing fields keep the base value")
}

func TestCanonicalKey(t *testing.T) {
	for in, want := range map[string]string{
		"bloodPressure":            "bloodPressure",
		"blood-pressure":           "bloodPressure",
		"SkinThickness":            "skinThickness",
		"DiabetesPedigreeFunction": "diabetesPedigree",
		" Age ":                    "age",
	} {
		got, ok := CanonicalKey(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := CanonicalKey("Outcome")
	assert.False(t, ok)
}

func TestLoadRecordsJSON(t *testing.T) {
	records, err := LoadRecords(strings.NewReader(`[
		{"pregnancies": 6, "glucose": 148, "bloodPressure": 72, "skinThickness": 35, "insulin": 0, "bmi": 33.6, "diabetesPedigree": 0.627, "age": 50},
		{"glucose": "85", "bmi": "26.6x"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 6, records[0].Pregnancies)
	assert.Equal(t, 0.627, records[0].DiabetesPedigree)
	assert.Equal(t, 85.0, records[1].Glucose)
	assert.Equal(t, 26.6, records[1].BMI)
}

func TestLoadRecordsYAMLStream(t *testing.T) {
	records, err := LoadRecords(strings.NewReader("glucose: 140\nage: 65\n---\n- bmi: 30\n- bmi: 25\n---\n"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 140.0, records[0].Glucose)
	assert.Equal(t, 30.0, records[1].BMI)
	assert.Equal(t, 25.0, records[2].BMI)
}

func TestLoadRecordsErrors(t *testing.T) {
	_, err := LoadRecords(strings.NewReader(`{"glucose": [1, 2]}`))
	assert.ErrorContains(t, err, "field glucose")

	_, err = LoadRecords(strings.NewReader(`[1, 2]`))
	assert.ErrorContains(t, err, "expected a mapping")

	_, err = LoadRecords(strings.NewReader(`42`))
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	data := "Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Outcome\n" +
		"6,148,72,35,0,33.6,0.627,50,1\n" +
		"1,85,66,29,0,26.6,0.351,31,0\n"

	records, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.HealthInput{
		Pregnancies: 6, Glucose: 148, BloodPressure: 72, SkinThickness: 35,
		Insulin: 0, BMI: 33.6, DiabetesPedigree: 0.627, Age: 50,
	}, records[0])

	_, err = LoadCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}

func TestCheckRanges(t *testing.T) {
	assert.Empty(t, CheckRanges(Defaults()))

	h := Defaults()
	h.Glucose = 350
	h.BMI = -1
	h.Age = 10

	warnings := CheckRanges(h)
	require.Len(t, warnings, 3)
	assert.Equal(t, "glucose", warnings[0].Field)
	assert.Contains(t, warnings[0].Message, "above")
	assert.Equal(t, "bmi", warnings[1].Field)
	assert.Contains(t, warnings[1].Message, "negative")
	assert.Equal(t, "age", warnings[2].Field)
	assert.Contains(t, warnings[2].Message, "below")
}
