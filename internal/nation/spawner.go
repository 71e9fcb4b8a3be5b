package nation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
)

// Name-generation pools for procedural nations.
var (
	namePrefixes = []string{"North", "South", "East", "West", "New", "Greater", "United"}
	nameRoots    = []string{
		"Aria", "Boren", "Calid", "Drakos", "Elaria", "Fendor", "Garvon",
		"Halcyon", "Ithara", "Jorvik", "Kalmar", "Lumeria", "Mordian",
		"Navaria", "Ostara", "Pyrrhia", "Quelmar", "Rhovana", "Solvaria",
		"Tarsus", "Urland", "Vesperia", "Westmark", "Xandria", "Yvoria", "Zephyria",
	}
	nameSuffixes = []string{"ia", "land", "stan", "mark", "burg", "haven", "realm"}

	// Government draw weighted toward democracies and autocracies.
	governmentPool    = []string{"Democracy", "Autocracy", "Theocracy", "Technocracy", "Anarchy"}
	governmentWeights = []float64{0.35, 0.35, 0.10, 0.15, 0.05}
)

// Spawner creates nations with randomized, correlated attributes from
// the shared seeded stream.
type Spawner struct {
	cfg config.Config
	rng *rand.Rand
}

// NewSpawner creates a nation spawner drawing from rng.
func NewSpawner(cfg config.Config, rng *rand.Rand) *Spawner {
	return &Spawner{cfg: cfg, rng: rng}
}

// Spawn creates one nation with the given id. Population is log-normal,
// GDP follows population times a log-normal per-capita draw, and the
// remaining attributes come from bounded normal or uniform draws.
func (s *Spawner) Spawn(id int) *Nation {
	name := s.generateName()
	government := s.pickGovernment()

	pop := clamp(s.logNormal(math.Log(20e6), 1.0), s.cfg.PopMin, s.cfg.PopMax)
	gdpPerCapita := s.logNormal(math.Log(15000), 1.2)
	gdp := clamp(pop*gdpPerCapita, s.cfg.GDPMin, s.cfg.GDPMax)

	tech := clamp(s.rng.NormFloat64()*15+40, s.cfg.TechMin, s.cfg.TechMax)
	health := clamp(40+gdpPerCapita/1000+s.uniform(-10, 10), s.cfg.HealthMin, s.cfg.HealthMax)
	ideology := clamp(s.rng.NormFloat64()*40, -100, 100)
	stability := clamp(config.GovernmentTypes[government].StabilityBase+s.uniform(-15, 15), 0, 100)

	cur := s.spawnCurrency(name, gdp)

	n := New(id, name, government, pop, gdp, tech, health, ideology, stability, cur)
	n.Military = MilitaryPower{
		Army: s.uniform(20, 50),
		Navy: s.uniform(10, 40),
		Air:  s.uniform(10, 40),
	}
	return n
}

// spawnCurrency rolls the regime 70/20/10 floating/pegged/gold. The
// gold regime is only available when enabled in config.
func (s *Spawner) spawnCurrency(nationName string, gdp float64) *Currency {
	code := nationName
	if len(code) > 3 {
		code = code[:3]
	}

	regime := RegimeFloating
	roll := s.rng.Float64()
	switch {
	case roll < 0.7:
		regime = RegimeFloating
	case roll < 0.9:
		regime = RegimePegged
	default:
		if s.cfg.EnableGoldStd {
			regime = RegimeGold
		}
	}

	cur := NewCurrency(code, regime)
	switch regime {
	case RegimeGold:
		cur.GoldReserves = gdp * 0.1
	case RegimePegged:
		cur.PegTarget = 1.0
	}
	return cur
}

func (s *Spawner) generateName() string {
	if s.rng.Float64() < 0.3 {
		prefix := namePrefixes[s.rng.Intn(len(namePrefixes))]
		root := nameRoots[s.rng.Intn(len(nameRoots))]
		return fmt.Sprintf("%s %s", prefix, root)
	}
	root := nameRoots[s.rng.Intn(len(nameRoots))]
	if s.rng.Float64() < 0.5 {
		return root + nameSuffixes[s.rng.Intn(len(nameSuffixes))]
	}
	return root
}

func (s *Spawner) pickGovernment() string {
	r := s.rng.Float64()
	acc := 0.0
	for i, w := range governmentWeights {
		acc += w
		if r < acc {
			return governmentPool[i]
		}
	}
	return governmentPool[len(governmentPool)-1]
}

func (s *Spawner) logNormal(mu, sigma float64) float64 {
	return math.Exp(s.rng.NormFloat64()*sigma + mu)
}

func (s *Spawner) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
