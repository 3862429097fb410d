package prompt

import (
	"strings"

	"github.com/dawless-studio/studio-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetProgressions loads the chord progression reference as text
func (l *Loader) GetProgressions() (string, error) {
	return strings.TrimSpace(string(embedded.ProgressionsJSON)), nil
}

// GetScaleMoods loads the scale mood heuristics CSV
func (l *Loader) GetScaleMoods() (string, error) {
	return strings.TrimSpace(string(embedded.ScaleMoodsCsv)), nil
}
