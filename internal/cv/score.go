package cv

import (
	"math"
	"strings"
)

// MatchScore computes the 0-100 matching score of a candidate against a
// job's required skills. Pure and deterministic: identical inputs always
// produce identical scores, which the ingestion tests rely on.
//
//	overlap          = |candidateSkills ∩ requiredSkills|   (case-insensitive)
//	base             = overlap / max(1, |requiredSkills|)
//	experienceFactor = clamp(0.8 + 0.05*experienceYears, 0.8, 1.2)
//	score            = clamp(round(100 * base * experienceFactor), 0, 100)
func MatchScore(candidateSkills, requiredSkills []string, experienceYears int) int {
	required := make(map[string]struct{}, len(requiredSkills))
	for _, s := range requiredSkills {
		required[normalizeSkill(s)] = struct{}{}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		key := normalizeSkill(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := required[key]; ok {
			overlap++
		}
	}

	denom := len(required)
	if denom < 1 {
		denom = 1
	}
	base := float64(overlap) / float64(denom)

	factor := 0.8 + 0.05*float64(experienceYears)
	factor = clamp(factor, 0.8, 1.2)

	score := int(math.Round(100 * base * factor))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
