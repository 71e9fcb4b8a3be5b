package diplomacy

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// Politics drives domestic political life: elections in democracies and
// coups where stability collapses.
type Politics struct {
	cfg config.Config
	rng *rand.Rand
}

// NewPolitics creates the domestic-politics advisor.
func NewPolitics(cfg config.Config, rng *rand.Rand) *Politics {
	return &Politics{cfg: cfg, rng: rng}
}

// Update processes elections and coup checks for every living nation.
func (p *Politics) Update(roster *nation.Roster, step int) []string {
	var events []string

	for _, n := range roster.Living() {
		// Elections: democracies hold them periodically; outcomes nudge
		// ideology toward the center and reset some instability.
		if n.Government == "Democracy" && step-n.LastElection >= 4 && p.rng.Float64() < 0.25 {
			n.LastElection = step
			n.Ideology = n.Ideology*0.8 + p.rng.NormFloat64()*10
			n.Stability = math.Min(100, n.Stability+5)
			events = append(events, fmt.Sprintf("ELECTION: %s holds elections", n.Name))
		}

		// Coups: a deeply unstable nation risks a military takeover.
		if n.Stability < 25 && p.rng.Float64() < 0.1 {
			n.Government = "Autocracy"
			n.Stability = math.Max(0, n.Stability-30)
			events = append(events, fmt.Sprintf("COUP: government overthrown in %s", n.Name))
		}
	}
	return events
}
