package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScoreFullOverlapWithExperience(t *testing.T) {
	// 2/2 overlap, factor clamp(0.8+0.25) = 1.05 -> clamped to 100
	score := MatchScore(
		[]string{"React", "Node.js", "SQL"},
		[]string{"React", "Node.js"},
		5,
	)
	assert.Equal(t, 100, score)
}

func TestMatchScoreNoOverlapNoExperience(t *testing.T) {
	score := MatchScore([]string{"PHP"}, []string{"React", "Node.js"}, 0)
	assert.Equal(t, 0, score)
}

func TestMatchScorePartialOverlap(t *testing.T) {
	// 1/2 overlap, factor 0.8 -> round(100 * 0.5 * 0.8) = 40
	score := MatchScore([]string{"React"}, []string{"React", "Node.js"}, 0)
	assert.Equal(t, 40, score)

	// factor caps at 1.2 regardless of experience
	score = MatchScore([]string{"React"}, []string{"React", "Node.js"}, 40)
	assert.Equal(t, 60, score)
}

func TestMatchScoreCaseInsensitive(t *testing.T) {
	score := MatchScore([]string{"react", "NODE.JS"}, []string{"React", "Node.js"}, 0)
	assert.Equal(t, 80, score)
}

func TestMatchScoreEmptyRequiredSkills(t *testing.T) {
	// denominator is max(1, 0); no overlap possible
	assert.Equal(t, 0, MatchScore([]string{"Go"}, nil, 10))
}

func TestMatchScoreDuplicateCandidateSkills(t *testing.T) {
	// duplicates must not inflate the overlap
	score := MatchScore([]string{"React", "react", "React"}, []string{"React", "Node.js"}, 0)
	assert.Equal(t, 40, score)
}

func TestMatchScoreDeterministicAndBounded(t *testing.T) {
	cases := []struct {
		candidate []string
		required  []string
		years     int
	}{
		{nil, nil, 0},
		{[]string{"Go"}, []string{"Go"}, 0},
		{[]string{"Go"}, []string{"Go"}, 100},
		{[]string{"Go", "SQL", "AWS"}, []string{"Go", "Rust"}, 3},
		{[]string{"x"}, []string{"a", "b", "c", "d", "e"}, 7},
	}
	for _, tc := range cases {
		first := MatchScore(tc.candidate, tc.required, tc.years)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, MatchScore(tc.candidate, tc.required, tc.years))
		}
		assert.GreaterOrEqual(t, first, 0)
		assert.LessOrEqual(t, first, 100)
	}
}
