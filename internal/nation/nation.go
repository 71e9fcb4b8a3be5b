// Package nation models a sovereign state: demographics, production,
// monetary policy, military posture, and territory. Nations are created
// once at world initialization and never removed — a population of zero
// is a terminal state that all active computations must filter out.
package nation

import (
	"math"
	"math/rand"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/geo"
)

// AllianceCap is the maximum number of alliance partners per nation.
const AllianceCap = 10

// Strategic resource names.
const (
	ResourceOil       = "oil"
	ResourceRareEarth = "rare_earth"
	ResourceFarmland  = "farmland"
	ResourceWater     = "water"
)

// MilitaryPower holds per-branch force levels.
type MilitaryPower struct {
	Army    float64 `json:"army"`
	Navy    float64 `json:"navy"`
	Air     float64 `json:"air"`
	Nuclear float64 `json:"nuclear"`
}

// Total returns the aggregate power across all branches.
func (m MilitaryPower) Total() float64 {
	return m.Army + m.Navy + m.Air + m.Nuclear
}

// Nation is a sovereign state entity.
type Nation struct {
	ID         int
	Name       string
	Government string

	Population float64
	GDP        float64
	Technology float64
	Health     float64
	Ideology   float64
	Stability  float64

	Military MilitaryPower
	Currency *Currency

	AtWar         bool
	WarExhaustion float64

	Alliances     map[int]struct{}
	RelationsWith map[int]float64

	Territory []geo.Coord
	IsCoastal bool

	Resources          map[string]float64
	ResourcesExtracted map[string]float64
	ResourcesInitial   map[string]float64

	// Economic bookkeeping.
	CapitalStock   float64
	InvestmentRate float64
	DebtToGDP      float64
	InflationRate  float64
	TradeBalance   float64
	FDIInflows     float64
	FDIOutflows    float64

	SanctionsActive  map[int]struct{} // nations we sanction
	SanctionsFrom    map[int]struct{} // nations sanctioning us
	ColonialSubjects map[int]struct{}

	HasSpaceProgram bool
	LastElection    int
	PandemicActive  bool

	prevGDP float64 // previous-step GDP for the output-gap estimate
}

// New constructs a nation with derived bookkeeping initialized. The
// initial capital stock assumes a capital/output ratio of 3.
func New(id int, name, government string, population, gdp, technology, health, ideology, stability float64, cur *Currency) *Nation {
	return &Nation{
		ID:                 id,
		Name:               name,
		Government:         government,
		Population:         population,
		GDP:                gdp,
		Technology:         technology,
		Health:             health,
		Ideology:           ideology,
		Stability:          stability,
		Currency:           cur,
		Alliances:          make(map[int]struct{}),
		RelationsWith:      make(map[int]float64),
		Resources:          make(map[string]float64),
		ResourcesExtracted: make(map[string]float64),
		ResourcesInitial:   make(map[string]float64),
		SanctionsActive:    make(map[int]struct{}),
		SanctionsFrom:      make(map[int]struct{}),
		ColonialSubjects:   make(map[int]struct{}),
		CapitalStock:       gdp * 3.0,
		InvestmentRate:     0.25,
		InflationRate:      0.02,
		prevGDP:            gdp,
	}
}

// Alive reports whether the nation still exists as an actor.
func (n *Nation) Alive() bool {
	return n.Population > 0
}

// GDPPerCapita returns GDP per head, floored against a zero population.
func (n *Nation) GDPPerCapita() float64 {
	return n.GDP / math.Max(1.0, n.Population)
}

// CalculateGDP recomputes output via a Cobb-Douglas production function
// Y = A·K^α·L^(1-α), applies the external trade multiplier and wartime
// damage, clamps to the configured bounds, and rolls the capital stock
// forward one Solow step. Returns the new GDP.
func (n *Nation) CalculateGDP(cfg config.Config, tradeMultiplier float64) float64 {
	n.prevGDP = n.GDP

	// Human capital: health level scaled by an education proxy (tech).
	h := (n.Health / 100.0) * (1 + n.Technology/200.0)

	// Effective labor. Higher tech implies an older population and a
	// lower working-age share.
	workingAgeRatio := 0.65 - n.Technology/1000.0
	laborMillions := math.Max(1.0, n.Population*workingAgeRatio*h/1e6)

	// Total factor productivity: base growth, technology multiplier,
	// and institutions proxied by stability. 0.05 is the output
	// calibration constant.
	tfpBase := 1.0 + cfg.TFPGrowthBase*cfg.RealismMultiplier()
	tfpTech := 1 + n.Technology/100.0
	institutions := (n.Stability / 100.0) * 1.2
	tfp := tfpBase * tfpTech * institutions * 0.05

	capital := math.Max(1.0, n.CapitalStock)
	capitalTrillions := math.Max(0.001, capital/1e12)

	alpha := cfg.CapitalShareAlpha
	rawGDP := tfp * math.Pow(capitalTrillions, alpha) * math.Pow(laborMillions, 1-alpha) * 1e12

	newGDP := rawGDP * tradeMultiplier
	if n.AtWar {
		newGDP *= 0.92
	}

	// Capital accumulation with diminishing investment efficiency once
	// the capital/output ratio exceeds 5.
	investRate := n.InvestmentRate
	if n.CapitalStock/math.Max(1.0, newGDP) > 5.0 {
		investRate *= 0.95
	}
	investment := newGDP * investRate
	depreciation := capital * cfg.DepreciationRate
	n.CapitalStock = math.Max(1.0, capital+investment-depreciation)

	n.GDP = math.Max(cfg.GDPMin, math.Min(cfg.GDPMax, newGDP))
	return n.GDP
}

// ManageMonetaryPolicy sets the policy rate by a Taylor rule
// i = r* + π + 0.5(π − π*) + 0.5·gap, smoothed 80/20 against the
// current rate and floored at the zero lower bound. Pegged regimes
// have no independent policy and are left untouched.
func (n *Nation) ManageMonetaryPolicy(cfg config.Config) {
	if n.Currency.Regime == RegimePegged {
		return
	}

	pi := n.InflationRate
	growth := n.GDP/math.Max(1, n.prevGDP) - 1
	outputGap := growth - 0.02 // 2% assumed potential growth

	const neutralRealRate = 0.02
	target := neutralRealRate + pi + 0.5*(pi-cfg.InflationTarget) + 0.5*outputGap

	n.Currency.InterestRate = math.Max(0.0, n.Currency.InterestRate*0.8+target*0.2)
}

// UpdatePopulation applies base growth modified by health deviation and
// farmland availability, then a logistic factor converging toward the
// carrying capacity. Population never goes negative.
func (n *Nation) UpdatePopulation(cfg config.Config) {
	base := cfg.PopGrowthBase * cfg.RealismMultiplier()
	healthTerm := (n.Health - 50) / 100.0 * 0.001

	resourceTerm := 0.0
	if farmland, ok := n.Resources[ResourceFarmland]; ok {
		resourceTerm = math.Min(0.05, farmland/(1e3+n.Population/1e6))
	}

	growth := base + healthTerm + resourceTerm
	carrying := cfg.PopMax * cfg.PopCarryingFactor
	logistic := 1 - (n.Population/carrying)*cfg.PopLogisticStrength

	n.Population = math.Max(0.0, n.Population*(1+growth)*logistic)
}

// UpdateHealth nudges the health index by GDP per capita and
// technology, clamped to the configured band.
func (n *Nation) UpdateHealth(cfg config.Config) {
	delta := (n.GDPPerCapita()/50000.0)*cfg.HealthGDPElasticity + (n.Technology/100.0)*cfg.HealthTechBonus
	n.Health = clamp(n.Health+delta-0.01, cfg.HealthMin, cfg.HealthMax)
}

// UpdateStability applies a small bounded random shock.
func (n *Nation) UpdateStability(rng *rand.Rand) {
	shock := rng.Float64()*2 - 1
	n.Stability = clamp(n.Stability+shock*0.5, 0, 100)
}

// InvestRD converts a fraction of GDP into technology, capped at 100.
func (n *Nation) InvestRD(fraction float64, cfg config.Config) {
	gain := fraction * cfg.TechRDEfficiency * 100.0
	n.Technology = math.Min(100.0, n.Technology+gain)
}

// BuildMilitary converts a fraction of GDP into conventional force,
// split army-heavy. Nuclear arsenals are not built here.
func (n *Nation) BuildMilitary(fraction float64, cfg config.Config) {
	spending := fraction * n.GDP
	units := spending / (n.GDP*cfg.MilitaryGDPCost + 1e-12) * 0.001
	n.Military.Army += units * 0.5
	n.Military.Navy += units * 0.25
	n.Military.Air += units * 0.25
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
