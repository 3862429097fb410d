package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dawless-studio/studio-api/internal/studio"
)

// Parameter types accepted by the registry
const (
	ParamString   = "string"
	ParamNumber   = "number"
	ParamSequence = "sequence"
)

// ParamSpec describes one required action parameter
type ParamSpec struct {
	Name string
	Type string
}

// HandlerFunc applies one validated action to the studio engines
type HandlerFunc func(ctx context.Context, eng studio.Engines, params map[string]any) error

// Spec is the single declaration for an action kind: its parameter shape,
// the description advertised to the model, the default confirmation policy
// suggested to the prompt, and the handler. Adding a kind means adding one
// entry here.
type Spec struct {
	Kind             string
	Params           []ParamSpec
	Description      string
	ConfirmByDefault bool
	Handler          HandlerFunc
}

// Registry is the closed set of action kinds the dispatcher understands
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry builds the default action registry
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]Spec)}

	r.register(Spec{
		Kind: "set_parameter",
		Params: []ParamSpec{
			{Name: "instrument_id", Type: ParamString},
			{Name: "parameter", Type: ParamString},
			{Name: "value", Type: ParamNumber},
		},
		Description: "Modify a synthesizer parameter",
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			return eng.Audio.SetParameter(stringParam(p, "instrument_id"), stringParam(p, "parameter"), numberParam(p, "value"))
		},
	})

	r.register(Spec{
		Kind: "create_pattern",
		Params: []ParamSpec{
			{Name: "track_id", Type: ParamString},
			{Name: "notes", Type: ParamSequence},
			{Name: "length", Type: ParamNumber},
		},
		Description:      "Generate a MIDI pattern",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			var notes []studio.Note
			if err := decodeSequence(p["notes"], &notes); err != nil {
				return fmt.Errorf("invalid notes: %w", err)
			}
			_, err := eng.Sequencer.InsertPattern(stringParam(p, "track_id"), notes, numberParam(p, "length"))
			return err
		},
	})

	r.register(Spec{
		Kind: "add_automation",
		Params: []ParamSpec{
			{Name: "track_id", Type: ParamString},
			{Name: "cc_number", Type: ParamNumber},
			{Name: "curve_data", Type: ParamSequence},
		},
		Description:      "Draw automation curve",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			var curve []studio.CurvePoint
			if err := decodeSequence(p["curve_data"], &curve); err != nil {
				return fmt.Errorf("invalid curve_data: %w", err)
			}
			return eng.Timeline.AddAutomation(stringParam(p, "track_id"), int(numberParam(p, "cc_number")), curve)
		},
	})

	r.register(Spec{
		Kind: "suggest_chord_progression",
		Params: []ParamSpec{
			{Name: "key", Type: ParamString},
			{Name: "mood", Type: ParamString},
			{Name: "genre", Type: ParamString},
		},
		Description: "Suggest harmonic progressions",
		Handler: func(_ context.Context, _ studio.Engines, _ map[string]any) error {
			// Informational only: the suggestion text lives in the response
			// message, nothing in the studio changes.
			return nil
		},
	})

	r.register(Spec{
		Kind:        "analyze_mix",
		Params:      nil,
		Description: "Analyze frequency balance and conflicts",
		Handler: func(_ context.Context, eng studio.Engines, _ map[string]any) error {
			_, err := eng.Analyzer.AnalyzeMix()
			return err
		},
	})

	r.register(Spec{
		Kind: "route_cable",
		Params: []ParamSpec{
			{Name: "from", Type: ParamString},
			{Name: "to", Type: ParamString},
			{Name: "type", Type: ParamString},
		},
		Description:      "Connect instruments",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			return eng.Patchbay.Connect(stringParam(p, "from"), stringParam(p, "to"), stringParam(p, "type"))
		},
	})

	r.register(Spec{
		Kind: "apply_scale",
		Params: []ParamSpec{
			{Name: "track_id", Type: ParamString},
			{Name: "scale", Type: ParamString},
			{Name: "root_note", Type: ParamString},
		},
		Description:      "Quantize notes to musical scale",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			return eng.Quantizer.ApplyScale(stringParam(p, "track_id"), stringParam(p, "scale"), stringParam(p, "root_note"))
		},
	})

	r.register(Spec{
		Kind: "generate_variation",
		Params: []ParamSpec{
			{Name: "pattern_id", Type: ParamString},
			{Name: "mutation_type", Type: ParamString},
		},
		Description:      "Create pattern variation",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			_, err := eng.Sequencer.MutatePattern(stringParam(p, "pattern_id"), stringParam(p, "mutation_type"))
			return err
		},
	})

	r.register(Spec{
		Kind: "set_tempo",
		Params: []ParamSpec{
			{Name: "bpm", Type: ParamNumber},
		},
		Description:      "Change project tempo",
		ConfirmByDefault: true,
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			return eng.Project.SetTempo(numberParam(p, "bpm"))
		},
	})

	r.register(Spec{
		Kind: "add_marker",
		Params: []ParamSpec{
			{Name: "position", Type: ParamNumber},
			{Name: "label", Type: ParamString},
			{Name: "type", Type: ParamString},
		},
		Description: "Add timeline marker",
		Handler: func(_ context.Context, eng studio.Engines, p map[string]any) error {
			return eng.Timeline.AddMarker(numberParam(p, "position"), stringParam(p, "label"), stringParam(p, "type"))
		},
	})

	return r
}

func (r *Registry) register(spec Spec) {
	if _, exists := r.specs[spec.Kind]; exists {
		panic(fmt.Sprintf("duplicate action kind %q", spec.Kind))
	}
	r.specs[spec.Kind] = spec
	r.order = append(r.order, spec.Kind)
}

// Lookup returns the spec for a kind
func (r *Registry) Lookup(kind string) (Spec, bool) {
	spec, ok := r.specs[kind]
	return spec, ok
}

// Kinds returns every registered kind in registration order
func (r *Registry) Kinds() []string {
	return append([]string(nil), r.order...)
}

// Validate checks that params carry every required parameter with the
// expected type
func (r *Registry) Validate(kind string, params map[string]any) error {
	spec, ok := r.specs[kind]
	if !ok {
		return fmt.Errorf("unknown action type: %s", kind)
	}

	for _, ps := range spec.Params {
		value, present := params[ps.Name]
		if !present {
			return fmt.Errorf("%s: missing required parameter %q", kind, ps.Name)
		}
		switch ps.Type {
		case ParamString:
			if _, ok := value.(string); !ok {
				return fmt.Errorf("%s: parameter %q must be a string", kind, ps.Name)
			}
		case ParamNumber:
			if !isNumber(value) {
				return fmt.Errorf("%s: parameter %q must be a number", kind, ps.Name)
			}
		case ParamSequence:
			if _, ok := value.([]any); !ok {
				return fmt.Errorf("%s: parameter %q must be a sequence", kind, ps.Name)
			}
		}
	}
	return nil
}

// Capabilities renders the registry in the shape the prompt builder
// advertises to the model
func (r *Registry) Capabilities() map[string]any {
	caps := make(map[string]any, len(r.specs))
	for kind, spec := range r.specs {
		names := make([]string, len(spec.Params))
		for i, ps := range spec.Params {
			names[i] = ps.Name + ": " + ps.Type
		}
		caps[kind] = map[string]any{
			"params":                names,
			"description":           spec.Description,
			"requires_confirmation": spec.ConfirmByDefault,
		}
	}
	return caps
}

func stringParam(p map[string]any, name string) string {
	s, _ := p[name].(string)
	return s
}

func numberParam(p map[string]any, name string) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, int, json.Number:
		return true
	}
	return false
}

// decodeSequence converts an untyped JSON array into a typed slice
func decodeSequence(value any, out any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
