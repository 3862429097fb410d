package studio

// Note is a single MIDI note inside a pattern
type Note struct {
	Pitch    int     `json:"pitch"`
	Velocity int     `json:"velocity"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CurvePoint is one point of an automation curve
type CurvePoint struct {
	Position float64 `json:"position"`
	Value    float64 `json:"value"`
}

// Pattern is a MIDI clip owned by the sequencer
type Pattern struct {
	ID      string  `json:"id"`
	TrackID string  `json:"track_id"`
	Notes   []Note  `json:"notes"`
	Length  float64 `json:"length"`
}

// AutomationLane is a CC curve on the timeline
type AutomationLane struct {
	TrackID  string       `json:"track_id"`
	CCNumber int          `json:"cc_number"`
	Curve    []CurvePoint `json:"curve"`
}

// Marker is a named timeline position
type Marker struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
	Type     string  `json:"type"`
}

// Cable is a connection between two instruments
type Cable struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// MixReport is the output of a mix analysis pass
type MixReport struct {
	InstrumentCount int      `json:"instrument_count"`
	RoleCounts      map[string]int `json:"role_counts"`
	Conflicts       []string `json:"conflicts"`
}

// AudioEngine mutates synthesizer parameters
type AudioEngine interface {
	SetParameter(instrumentID, parameter string, value float64) error
}

// Sequencer owns MIDI patterns
type Sequencer interface {
	InsertPattern(trackID string, notes []Note, length float64) (string, error)
	MutatePattern(patternID, mutationType string) (string, error)
}

// Timeline owns automation lanes and markers
type Timeline interface {
	AddAutomation(trackID string, ccNumber int, curve []CurvePoint) error
	AddMarker(position float64, label, markerType string) error
}

// Patchbay connects instruments together
type Patchbay interface {
	Connect(from, to, cableType string) error
}

// Quantizer snaps pattern notes to a musical scale
type Quantizer interface {
	ApplyScale(trackID, scale, rootNote string) error
}

// ProjectStore owns project-wide settings
type ProjectStore interface {
	SetTempo(bpm float64) error
}

// Analyzer inspects the current mix
type Analyzer interface {
	AnalyzeMix() (*MixReport, error)
}

// Engines bundles the per-subsystem mutation entry points the dispatcher
// handlers delegate to. The dispatcher depends only on these narrow
// interfaces, never on the full studio shape.
type Engines struct {
	Audio     AudioEngine
	Sequencer Sequencer
	Timeline  Timeline
	Patchbay  Patchbay
	Quantizer Quantizer
	Project   ProjectStore
	Analyzer  Analyzer
}
