package debate

import (
	"math/rand/v2"

	"github.com/soyeahso/arena/internal/agent"
)

// Score is one participant's final result.
type Score struct {
	Total     int
	Breakdown map[string]int
}

// ScoreFunc computes a participant's score at the Results phase. The exact
// values are not load-bearing; only recording and ranking are.
type ScoreFunc func(d *agent.Debater) Score

// RandomScore is the default scorer: total 15-25 with a 3-5 rating per
// category.
func RandomScore(_ *agent.Debater) Score {
	return Score{
		Total: 15 + rand.IntN(11),
		Breakdown: map[string]int{
			"Logic":          3 + rand.IntN(3),
			"Persuasiveness": 3 + rand.IntN(3),
			"Clarity":        3 + rand.IntN(3),
			"Strategy":       3 + rand.IntN(3),
		},
	}
}
