package core

import "strings"

// PlatformDetectThreshold is the minimum score a profile must exceed to be
// reported as the detected platform.
const PlatformDetectThreshold = 0.3

// UnknownPlatform is reported when no profile scores above the threshold.
const UnknownPlatform = "unknown"

// PlatformScore is the column-overlap score of one profile.
type PlatformScore struct {
	Platform string  `json:"platform"`
	Score    float64 `json:"score"`
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
}

// ScorePlatforms scores every registered profile against the source columns.
// A profile entry counts as matched when any of its synonyms is present,
// compared case-insensitively. Results are in registration order.
func ScorePlatforms(columns []string) []PlatformScore {
	colSet := make(map[string]bool, len(columns))
	for _, c := range columns {
		colSet[strings.ToLower(c)] = true
	}

	profiles := Platforms()
	scores := make([]PlatformScore, 0, len(profiles))
	for _, p := range profiles {
		ps := PlatformScore{Platform: p.Key, Total: len(p.Fields)}
		for _, f := range p.Fields {
			for _, syn := range f.Synonyms {
				if colSet[strings.ToLower(syn)] {
					ps.Matched++
					break
				}
			}
		}
		if ps.Total > 0 {
			ps.Score = float64(ps.Matched) / float64(ps.Total)
		}
		scores = append(scores, ps)
	}
	return scores
}

// DetectPlatform returns the best-scoring profile key when its score exceeds
// PlatformDetectThreshold. Ties go to the profile registered first.
func DetectPlatform(columns []string) (string, bool) {
	best := -1.0
	bestKey := ""
	for _, s := range ScorePlatforms(columns) {
		if s.Score > best {
			best = s.Score
			bestKey = s.Platform
		}
	}
	if bestKey == "" || best <= PlatformDetectThreshold {
		return "", false
	}
	return bestKey, true
}
