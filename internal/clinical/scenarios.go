package clinical

import (
	"bytes"
	_ "embed"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/errors"
)

//go:embed scenarios.json
var scenariosJSON []byte

var ErrUnknownScenario = errors.NewSentinel("unknown scenario")

// Scenario is a ready-made partial form for a common clinical situation.
type Scenario struct {
	Category    string          `json:"category"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Patch       json.RawMessage `json:"patch"`
}

var scenarios = mustLoadScenarios()

func mustLoadScenarios() []Scenario {
	var loaded []Scenario
	if err := json.Unmarshal(scenariosJSON, &loaded); err != nil {
		panic(err)
	}
	return loaded
}

// Scenarios returns the scenario library in display order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// ScenarioByLabel looks a scenario up by its label.
func ScenarioByLabel(label string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Label == label {
			return s, nil
		}
	}
	return Scenario{}, errors.Wrap(ErrUnknownScenario, label, slog.String("scenario", label))
}

// ApplyScenario returns a blank form that keeps the shift and gender of current, with the
// scenario patch applied on top.
func ApplyScenario(current FormState, s Scenario) (FormState, error) {
	next, err := ApplyPatch(current.ResetKeepingContext(), s.Patch)
	if err != nil {
		return FormState{}, errors.Wrap(err, "apply scenario", slog.String("scenario", s.Label))
	}
	return next, nil
}

// ApplyPatch merges a JSON patch onto a copy of f. Objects merge field by field, arrays and
// scalars present in the patch replace the current value. The result is validated.
func ApplyPatch(f FormState, patch []byte) (FormState, error) {
	next := f.Clone()
	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return FormState{}, errors.Wrap(ErrInvalidForm, "decode patch: "+err.Error())
	}
	next.Normalize()
	if err := next.Validate(); err != nil {
		return FormState{}, err
	}
	return next, nil
}
