// Package events generates stochastic world events: natural disasters
// and pandemics. It feeds the orchestrator through a narrow interface
// and only ever mutates nation-level state.
package events

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/geo"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// pandemicDuration is how many steps an outbreak lasts in one nation.
const pandemicDuration = 10

// System rolls for disasters and tracks pandemic progression.
type System struct {
	cfg config.Config
	rng *rand.Rand

	// Remaining outbreak steps per infected nation id.
	outbreaks map[int]int
}

// New creates the event system drawing randomness from rng.
func New(cfg config.Config, rng *rand.Rand) *System {
	return &System{cfg: cfg, rng: rng, outbreaks: make(map[int]int)}
}

// TradeLinks is the slice of the economy the event system needs:
// contagion follows trade.
type TradeLinks interface {
	TradePartners(nationID int) []int
}

// ProcessEvents advances all event state one step. The grid is used for
// proximity-based pandemic spread between territories.
func (s *System) ProcessEvents(roster *nation.Roster, trade TradeLinks, step int, grid *geo.Grid) []string {
	var out []string

	// Natural disasters strike individual nations.
	for _, n := range roster.Living() {
		if s.rng.Float64() < s.cfg.EventDisasterProb {
			n.GDP = math.Max(s.cfg.GDPMin, n.GDP*0.98)
			n.Population = math.Max(0, n.Population*0.995)
			n.Stability = math.Max(0, n.Stability-2)
			out = append(out, fmt.Sprintf("DISASTER: natural disaster strikes %s", n.Name))
		}
	}

	// New pandemic outbreak at a random origin.
	living := roster.Living()
	if len(living) > 0 && s.rng.Float64() < s.cfg.EventPandemicProb {
		origin := living[s.rng.Intn(len(living))]
		if _, infected := s.outbreaks[origin.ID]; !infected {
			s.outbreaks[origin.ID] = pandemicDuration
			origin.PandemicActive = true
			out = append(out, fmt.Sprintf("PANDEMIC: outbreak begins in %s", origin.Name))
		}
	}

	// Progress active outbreaks; spread along trade links.
	for _, id := range sortedKeys(s.outbreaks) {
		n, ok := roster.Get(id)
		if !ok || !n.Alive() {
			delete(s.outbreaks, id)
			continue
		}

		// Health-modulated lethality each step.
		lethality := 0.002 * (1 - n.Health/150)
		n.Population = math.Max(0, n.Population*(1-lethality))
		n.Health = math.Max(0, n.Health-1)

		for _, pid := range trade.TradePartners(id) {
			partner, ok := roster.Get(pid)
			if !ok || !partner.Alive() || partner.PandemicActive {
				continue
			}
			if s.rng.Float64() < 0.1 {
				s.outbreaks[pid] = pandemicDuration
				partner.PandemicActive = true
				out = append(out, fmt.Sprintf("PANDEMIC: outbreak spreads to %s", partner.Name))
			}
		}

		s.outbreaks[id]--
		if s.outbreaks[id] <= 0 {
			delete(s.outbreaks, id)
			n.PandemicActive = false
			out = append(out, fmt.Sprintf("PANDEMIC: outbreak ends in %s", n.Name))
		}
	}

	return out
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
