package config

import (
	"github.com/hbollon/go-edlib"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a key to be
// offered as a correction.
const suggestionThreshold = 0.8

// suggestKey returns the known key closest to key, or "" when nothing is close
// enough to be a likely typo.
func suggestKey(key string, known []string) string {
	if key == "" {
		return ""
	}
	best := ""
	var bestScore float32
	for _, candidate := range known {
		score, err := edlib.StringsSimilarity(key, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}
