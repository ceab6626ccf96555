package valuation

import (
	"strings"

	"hauswert/internal/models"
)

const neutralScore = 3

// levelKind selects the vocabulary used when parsing free text.
type levelKind int

const (
	levelModernization levelKind = iota
	levelEnergy
	levelFitout
)

// NormalizeLevel converts a score-or-text attribute into the canonical 1-5
// score. Unknown or empty input maps to the neutral score of 3.
func NormalizeLevel(in models.LevelInput, kind levelKind) int {
	if in.HasScore() {
		return *in.Score
	}
	if text := strings.TrimSpace(in.Text); text != "" {
		return parseLevelText(text, kind)
	}
	return neutralScore
}

type levelPattern struct {
	substr string
	score  int
}

// Longer, more specific patterns come first: "not modernized" must win
// over "modernized", "semi-detached" over "detached".
var levelVocabulary = map[levelKind][]levelPattern{
	levelModernization: {
		{"not modernized", 1},
		{"unmodernized", 1},
		{"unrenovated", 1},
		{"original condition", 1},
		{"needs renovation", 2},
		{"partially modernized", 3},
		{"partly modernized", 3},
		{"partial", 3},
		{"fully modernized", 5},
		{"completely renovated", 5},
		{"like new", 5},
		{"modernized", 4},
		{"renovated", 4},
	},
	levelEnergy: {
		{"very poor", 1},
		{"uninsulated", 1},
		{"poor", 2},
		{"dated", 2},
		{"average", 3},
		{"normal", 3},
		{"passive house", 5},
		{"excellent", 5},
		{"good", 4},
		{"efficient", 4},
	},
	levelFitout: {
		{"very simple", 1},
		{"substandard", 1},
		{"simple", 2},
		{"basic", 2},
		{"standard", 3},
		{"normal", 3},
		{"average", 3},
		{"luxur", 5},
		{"exclusive", 5},
		{"upscale", 4},
		{"high-quality", 4},
		{"high quality", 4},
	},
}

func parseLevelText(text string, kind levelKind) int {
	text = strings.ToLower(text)
	for _, p := range levelVocabulary[kind] {
		if strings.Contains(text, p.substr) {
			return p.score
		}
	}
	return neutralScore
}
