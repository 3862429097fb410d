package studio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/google/uuid"
)

const (
	tempoMin = 20.0
	tempoMax = 999.0

	ccNumberMin = 0
	ccNumberMax = 127

	midiPitchMin = 0
	midiPitchMax = 127
)

var cableTypes = map[string]bool{
	"audio": true,
	"midi":  true,
	"cv":    true,
}

// scaleIntervals maps scale names to pitch classes relative to the root
var scaleIntervals = map[string][]int{
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"pentatonic_major": {0, 2, 4, 7, 9},
	"pentatonic_minor": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var noteNames = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5,
	"F#": 6, "GB": 6, "G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// Memory is an in-memory studio that implements every engine interface.
// It is seeded from a dashboard snapshot and mutated only through the
// narrow entry points; Snapshot serializes the state back out.
type Memory struct {
	tempo         float64
	timeSignature string
	key           string
	instruments   []models.Instrument
	patterns      []Pattern
	automation    []AutomationLane
	markers       []Marker
	cables        []Cable
}

// NewMemory builds a studio from a project snapshot. Opaque pattern,
// timeline and routing entries that this engine understands are decoded;
// anything unrecognized is dropped.
func NewMemory(state models.ProjectState) *Memory {
	m := &Memory{
		tempo:         state.Tempo,
		timeSignature: state.TimeSignature,
		key:           state.Key,
	}
	if m.tempo == 0 {
		m.tempo = 120
	}
	if m.timeSignature == "" {
		m.timeSignature = "4/4"
	}

	m.instruments = make([]models.Instrument, len(state.Instruments))
	copy(m.instruments, state.Instruments)

	for _, raw := range state.Patterns {
		var p Pattern
		if err := json.Unmarshal(raw, &p); err == nil && p.ID != "" {
			m.patterns = append(m.patterns, p)
		}
	}
	for _, raw := range state.Timeline {
		var mk Marker
		if err := json.Unmarshal(raw, &mk); err == nil && mk.Label != "" {
			m.markers = append(m.markers, mk)
			continue
		}
		var lane AutomationLane
		if err := json.Unmarshal(raw, &lane); err == nil && lane.TrackID != "" {
			m.automation = append(m.automation, lane)
		}
	}
	for _, raw := range state.Routing {
		var c Cable
		if err := json.Unmarshal(raw, &c); err == nil && c.From != "" {
			m.cables = append(m.cables, c)
		}
	}

	return m
}

// Snapshot serializes the studio back into the wire shape
func (m *Memory) Snapshot() models.ProjectState {
	state := models.ProjectState{
		Tempo:         m.tempo,
		TimeSignature: m.timeSignature,
		Key:           m.key,
		Instruments:   make([]models.Instrument, len(m.instruments)),
	}
	copy(state.Instruments, m.instruments)

	for _, p := range m.patterns {
		raw, _ := json.Marshal(p)
		state.Patterns = append(state.Patterns, raw)
	}
	for _, lane := range m.automation {
		raw, _ := json.Marshal(lane)
		state.Timeline = append(state.Timeline, raw)
	}
	for _, mk := range m.markers {
		raw, _ := json.Marshal(mk)
		state.Timeline = append(state.Timeline, raw)
	}
	for _, c := range m.cables {
		raw, _ := json.Marshal(c)
		state.Routing = append(state.Routing, raw)
	}

	return state
}

// SetParameter sets a named parameter on an instrument
func (m *Memory) SetParameter(instrumentID, parameter string, value float64) error {
	for i := range m.instruments {
		if m.instruments[i].ID == instrumentID {
			if m.instruments[i].Parameters == nil {
				m.instruments[i].Parameters = make(map[string]float64)
			}
			m.instruments[i].Parameters[parameter] = value
			return nil
		}
	}
	return fmt.Errorf("instrument %q not found", instrumentID)
}

// InsertPattern adds a new pattern on a track and returns its ID
func (m *Memory) InsertPattern(trackID string, notes []Note, length float64) (string, error) {
	if trackID == "" {
		return "", fmt.Errorf("track_id is required")
	}
	if length <= 0 {
		return "", fmt.Errorf("pattern length must be positive, got %g", length)
	}
	for _, n := range notes {
		if n.Pitch < midiPitchMin || n.Pitch > midiPitchMax {
			return "", fmt.Errorf("note pitch %d out of MIDI range", n.Pitch)
		}
	}

	p := Pattern{
		ID:      uuid.New().String(),
		TrackID: trackID,
		Notes:   append([]Note(nil), notes...),
		Length:  length,
	}
	m.patterns = append(m.patterns, p)
	return p.ID, nil
}

// MutatePattern derives a new pattern from an existing one
func (m *Memory) MutatePattern(patternID, mutationType string) (string, error) {
	src := m.findPattern(patternID)
	if src == nil {
		return "", fmt.Errorf("pattern %q not found", patternID)
	}

	variation := Pattern{
		ID:      uuid.New().String(),
		TrackID: src.TrackID,
		Notes:   append([]Note(nil), src.Notes...),
		Length:  src.Length,
	}

	switch mutationType {
	case "reverse":
		for i := range variation.Notes {
			n := &variation.Notes[i]
			n.Start = variation.Length - n.Start - n.Duration
			if n.Start < 0 {
				n.Start = 0
			}
		}
		sort.Slice(variation.Notes, func(i, j int) bool {
			return variation.Notes[i].Start < variation.Notes[j].Start
		})
	case "invert":
		if len(variation.Notes) > 0 {
			pivot := variation.Notes[0].Pitch
			for i := range variation.Notes {
				inverted := 2*pivot - variation.Notes[i].Pitch
				if inverted >= midiPitchMin && inverted <= midiPitchMax {
					variation.Notes[i].Pitch = inverted
				}
			}
		}
	case "octave_up", "octave_down":
		shift := 12
		if mutationType == "octave_down" {
			shift = -12
		}
		for i := range variation.Notes {
			shifted := variation.Notes[i].Pitch + shift
			if shifted >= midiPitchMin && shifted <= midiPitchMax {
				variation.Notes[i].Pitch = shifted
			}
		}
	case "thin":
		// Keep every other note for a sparser variation
		kept := variation.Notes[:0]
		for i, n := range variation.Notes {
			if i%2 == 0 {
				kept = append(kept, n)
			}
		}
		variation.Notes = kept
	default:
		return "", fmt.Errorf("unknown mutation type %q", mutationType)
	}

	m.patterns = append(m.patterns, variation)
	return variation.ID, nil
}

// AddAutomation appends a CC curve on a track
func (m *Memory) AddAutomation(trackID string, ccNumber int, curve []CurvePoint) error {
	if trackID == "" {
		return fmt.Errorf("track_id is required")
	}
	if ccNumber < ccNumberMin || ccNumber > ccNumberMax {
		return fmt.Errorf("cc_number %d out of range [%d, %d]", ccNumber, ccNumberMin, ccNumberMax)
	}
	if len(curve) == 0 {
		return fmt.Errorf("curve_data must contain at least one point")
	}

	m.automation = append(m.automation, AutomationLane{
		TrackID:  trackID,
		CCNumber: ccNumber,
		Curve:    append([]CurvePoint(nil), curve...),
	})
	return nil
}

// AddMarker places a named marker on the timeline
func (m *Memory) AddMarker(position float64, label, markerType string) error {
	if position < 0 {
		return fmt.Errorf("marker position must not be negative, got %g", position)
	}
	if label == "" {
		return fmt.Errorf("marker label is required")
	}

	m.markers = append(m.markers, Marker{Position: position, Label: label, Type: markerType})
	return nil
}

// Connect routes a cable between two instruments
func (m *Memory) Connect(from, to, cableType string) error {
	if from == "" || to == "" {
		return fmt.Errorf("cable endpoints are required")
	}
	if from == to {
		return fmt.Errorf("cannot route %q to itself", from)
	}
	if !cableTypes[cableType] {
		return fmt.Errorf("unknown cable type %q (allowed: audio, midi, cv)", cableType)
	}
	for _, c := range m.cables {
		if c.From == from && c.To == to && c.Type == cableType {
			return fmt.Errorf("%s cable %s -> %s already exists", cableType, from, to)
		}
	}

	m.cables = append(m.cables, Cable{From: from, To: to, Type: cableType})
	return nil
}

// ApplyScale quantizes every pattern note on a track to the given scale
func (m *Memory) ApplyScale(trackID, scale, rootNote string) error {
	intervals, ok := scaleIntervals[strings.ToLower(scale)]
	if !ok {
		return fmt.Errorf("unknown scale %q", scale)
	}
	root, ok := noteNames[strings.ToUpper(rootNote)]
	if !ok {
		return fmt.Errorf("unknown root note %q", rootNote)
	}

	touched := false
	for i := range m.patterns {
		if m.patterns[i].TrackID != trackID {
			continue
		}
		touched = true
		for j := range m.patterns[i].Notes {
			m.patterns[i].Notes[j].Pitch = quantizePitch(m.patterns[i].Notes[j].Pitch, root, intervals)
		}
	}
	if !touched {
		return fmt.Errorf("no patterns on track %q", trackID)
	}
	return nil
}

// SetTempo changes the project tempo
func (m *Memory) SetTempo(bpm float64) error {
	if bpm < tempoMin || bpm > tempoMax {
		return fmt.Errorf("bpm %g out of range [%g, %g]", bpm, tempoMin, tempoMax)
	}
	m.tempo = bpm
	return nil
}

// Tempo returns the current project tempo
func (m *Memory) Tempo() float64 {
	return m.tempo
}

// AnalyzeMix reports role distribution and likely frequency conflicts
func (m *Memory) AnalyzeMix() (*MixReport, error) {
	report := &MixReport{
		InstrumentCount: len(m.instruments),
		RoleCounts:      make(map[string]int),
	}
	for _, inst := range m.instruments {
		report.RoleCounts[inst.Role]++
	}

	// Flag roles that commonly fight for the same frequency band
	for _, role := range []string{"bass", "sub", "kick"} {
		if report.RoleCounts[role] > 1 {
			report.Conflicts = append(report.Conflicts,
				fmt.Sprintf("%d instruments share the %s role; expect low-end masking", report.RoleCounts[role], role))
		}
	}
	return report, nil
}

// Engines returns the engine bundle backed by this studio
func (m *Memory) Engines() Engines {
	return Engines{
		Audio:     m,
		Sequencer: m,
		Timeline:  m,
		Patchbay:  m,
		Quantizer: m,
		Project:   m,
		Analyzer:  m,
	}
}

func (m *Memory) findPattern(id string) *Pattern {
	for i := range m.patterns {
		if m.patterns[i].ID == id {
			return &m.patterns[i]
		}
	}
	return nil
}

// quantizePitch snaps a pitch to the nearest scale degree, preferring the
// lower candidate on ties
func quantizePitch(pitch, root int, intervals []int) int {
	octave := pitch / 12

	best := pitch
	bestDistance := 128
	for _, iv := range intervals {
		candidate := (root + iv) % 12
		for _, oct := range []int{octave - 1, octave, octave + 1} {
			p := oct*12 + candidate
			if p < midiPitchMin || p > midiPitchMax {
				continue
			}
			d := p - pitch
			if d < 0 {
				d = -d
			}
			if d < bestDistance || (d == bestDistance && p < best) {
				best = p
				bestDistance = d
			}
		}
	}
	return best
}
