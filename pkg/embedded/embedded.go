package embedded

import (
	_ "embed"
)

// Embed prompt reference data

//go:embed data/progressions.json
var ProgressionsJSON []byte

//go:embed data/scale_moods.csv
var ScaleMoodsCsv []byte
