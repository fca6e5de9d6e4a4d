package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// aliases maps normalised column and key spellings to json keys. The Pima
// dataset headers (e.g. DiabetesPedigreeFunction) are accepted as-is.
var aliases = map[string]string{
	"pregnancies":              "pregnancies",
	"glucose":                  "glucose",
	"bloodpressure":            "bloodPressure",
	"skinthickness":            "skinThickness",
	"insulin":                  "insulin",
	"bmi":                      "bmi",
	"diabetespedigree":         "diabetesPedigree",
	"diabetespedigreefunction": "diabetesPedigree",
	"pedigree":                 "diabetesPedigree",
	"age":                      "age",
}

// CanonicalKey maps "blood_pressure", "BloodPressure" or "blood-pressure" to
// "bloodPressure". The second result is false for keys that name no field.
func CanonicalKey(key string) (string, bool) {
	norm := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))

	canonical, ok := aliases[norm]
	return canonical, ok
}

// FromValues builds an input from raw strings keyed by field name. Missing
// fields start at base; unknown keys are ignored.
func FromValues(values map[string]string, base models.HealthInput) models.HealthInput {
	h := base
	for k, v := range values {
		if key, ok := CanonicalKey(k); ok {
			set(&h, key, ParseNumber(v))
		}
	}
	return h
}

// LoadRecords reads health inputs from YAML or JSON. A document may hold a
// single record or a sequence of records, and a YAML stream may hold several
// documents. Values may be numbers or numeric strings.
func LoadRecords(r io.Reader) ([]models.HealthInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []models.HealthInput
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for doc := 1; ; doc++ {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		root := &node
		if root.Kind == yaml.DocumentNode {
			if len(root.Content) == 0 {
				continue
			}
			root = root.Content[0]
		}

		switch root.Kind {
		case yaml.MappingNode:
			rec, err := recordFromNode(root)
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", doc, err)
			}
			records = append(records, rec)
		case yaml.SequenceNode:
			for i, item := range root.Content {
				if item.Kind != yaml.MappingNode {
					return nil, fmt.Errorf("document %d, record %d: expected a mapping, got %s", doc, i, nodeKind(item))
				}
				rec, err := recordFromNode(item)
				if err != nil {
					return nil, fmt.Errorf("document %d, record %d: %w", doc, i, err)
				}
				records = append(records, rec)
			}
		case yaml.ScalarNode:
			if root.Tag == "!!null" {
				continue
			}
			return nil, fmt.Errorf("document %d: expected a record or a list of records, got a scalar", doc)
		default:
			return nil, fmt.Errorf("document %d: expected a record or a list of records, got %s", doc, nodeKind(root))
		}
	}

	return records, nil
}

func recordFromNode(node *yaml.Node) (models.HealthInput, error) {
	var h models.HealthInput
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		key, ok := CanonicalKey(keyNode.Value)
		if !ok {
			continue
		}

		switch valueNode.Kind {
		case yaml.ScalarNode:
			if valueNode.Tag == "!!null" {
				continue
			}
			set(&h, key, scalarValue(valueNode))
		case yaml.AliasNode:
			if valueNode.Alias != nil && valueNode.Alias.Kind == yaml.ScalarNode {
				set(&h, key, scalarValue(valueNode.Alias))
				continue
			}
			return h, fmt.Errorf("field %s: alias must point at a scalar", key)
		default:
			return h, fmt.Errorf("field %s: expected a number, got %s", key, nodeKind(valueNode))
		}
	}
	return h, nil
}

// scalarValue decodes YAML numbers natively (so .inf works) and falls back to
// ParseNumber for everything else.
func scalarValue(n *yaml.Node) float64 {
	if n.Tag == "!!int" || n.Tag == "!!float" {
		var f float64
		if err := n.Decode(&f); err == nil {
			if math.IsNaN(f) {
				return 0
			}
			return f
		}
	}
	return ParseNumber(n.Value)
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}

// LoadCSV reads records from CSV with a header row. Columns that name no
// field (such as the dataset's Outcome column) are ignored.
func LoadCSV(r io.Reader) ([]models.HealthInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	known := 0
	for i, name := range header {
		if key, ok := CanonicalKey(name); ok {
			columns[i] = key
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("CSV header names no health fields: %s", strings.Join(header, ","))
	}

	var records []models.HealthInput
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var h models.HealthInput
		for i, value := range row {
			if i < len(columns) && columns[i] != "" {
				set(&h, columns[i], ParseNumber(value))
			}
		}
		records = append(records, h)
	}

	return records, nil
}
