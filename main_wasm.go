//go:build wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/session"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/version"
)

var (
	wasmReady   = false
	wasmSession *session.Session
	wasmScorer  *scorer.RiskScorer
)

func main() {
	s, err := scorer.New()
	if err != nil {
		fmt.Printf("failed to initialize scorer: %v\n", err)
		return
	}
	wasmScorer = s
	wasmSession = session.New(s, session.Sleep(session.DefaultDelay))

	js.Global().Set("predictor", js.ValueOf(map[string]interface{}{
		"assess":      js.FuncOf(wasmAssess),
		"reset":       js.FuncOf(wasmReset),
		"state":       js.FuncOf(wasmState),
		"fields":      js.FuncOf(wasmFields),
		"rules":       js.FuncOf(wasmRules),
		"version":     js.FuncOf(wasmVersion),
		"initialized": js.FuncOf(wasmIsInitialized),
	}))

	wasmReady = true
	fmt.Println("diabetes-predictor WASM module initialized")

	select {}
}

// wasmAssess takes a JSON object of field values and resolves with the assessment
// once the simulated analysis delay has passed.
func wasmAssess(this js.Value, args []js.Value) interface{} {
	assessArgs := args

	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve := args[0]
		reject := args[1]

		go func() {
			defer func() {
				if r := recover(); r != nil {
					reject.Invoke(jsError(fmt.Errorf("panic occurred: %v", r)))
				}
			}()

			if len(assessArgs) < 1 {
				reject.Invoke(jsError(fmt.Errorf("missing required argument: input")))
				return
			}

			records, err := input.LoadRecords(strings.NewReader(assessArgs[0].String()))
			if err != nil {
				reject.Invoke(jsError(err))
				return
			}
			if len(records) != 1 {
				reject.Invoke(jsError(fmt.Errorf("expected one record, got %d", len(records))))
				return
			}

			assessment, err := wasmSession.Submit(context.Background(), records[0])
			if err != nil {
				reject.Invoke(jsError(err))
				return
			}

			result, err := toJS(map[string]interface{}{
				"assessment": assessment,
				"warnings":   warningStrings(input.CheckRanges(records[0])),
				"disclaimer": scorer.Disclaimer,
			})
			if err != nil {
				reject.Invoke(jsError(err))
				return
			}
			resolve.Invoke(result)
		}()

		return nil
	})

	return js.Global().Get("Promise").New(handler)
}

func wasmReset(this js.Value, args []js.Value) interface{} {
	wasmSession.Reset()
	return js.Undefined()
}

func wasmState(this js.Value, args []js.Value) interface{} {
	return mustJS(wasmSession.Snapshot())
}

func wasmFields(this js.Value, args []js.Value) interface{} {
	return mustJS(input.Fields())
}

// ruleInfo mirrors the /v1/rules response of the HTTP server
type ruleInfo struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Field     string            `json:"field"`
	Order     int               `json:"order"`
	MaxPoints int               `json:"maxPoints"`
	Tiers     []models.RuleTier `json:"tiers"`
}

func wasmRules(this js.Value, args []js.Value) interface{} {
	rules := wasmScorer.Rules()
	summaries := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		summaries = append(summaries, ruleInfo{
			ID:        rule.GetID(),
			Title:     rule.GetTitle(),
			Field:     rule.Spec.Field,
			Order:     rule.Spec.Order,
			MaxPoints: rule.MaxPoints(),
			Tiers:     rule.Spec.Tiers,
		})
	}
	return mustJS(summaries)
}

func wasmVersion(this js.Value, args []js.Value) interface{} {
	return mustJS(version.Get())
}

func wasmIsInitialized(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(wasmReady)
}

func warningStrings(warnings []input.RangeWarning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.String())
	}
	return out
}

// toJS round-trips v through JSON so js.ValueOf only sees maps, slices and scalars
func toJS(v interface{}) (js.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return js.Undefined(), fmt.Errorf("failed to serialize result: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return js.Undefined(), fmt.Errorf("failed to deserialize result: %w", err)
	}
	return js.ValueOf(generic), nil
}

func mustJS(v interface{}) js.Value {
	value, err := toJS(v)
	if err != nil {
		return jsError(err)
	}
	return value
}

func jsError(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}
