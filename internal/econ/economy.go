// Package econ models the international economy: the gravity-model
// trade network, FDI flows with capital flight, colonial tribute and
// independence, exchange-rate processing, and sovereign debt crises.
package econ

import (
	"math"
	"math/rand"
	"sort"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/geo"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// tradePair keys a bilateral trade volume, lower id first.
type tradePair struct {
	A, B int
}

// Economy manages trade, capital flows, and currency markets.
type Economy struct {
	cfg config.Config
	rng *rand.Rand

	tradeVolumes map[tradePair]float64

	// Bilateral FDI stocks: investor id → target id → position.
	fdiPositions map[int]map[int]float64

	// Previous-step GDP per nation, for the debt-crisis growth check.
	prevGDP map[int]float64
}

// New creates an economy drawing randomness from rng.
func New(cfg config.Config, rng *rand.Rand) *Economy {
	return &Economy{
		cfg:          cfg,
		rng:          rng,
		tradeVolumes: make(map[tradePair]float64),
		fdiPositions: make(map[int]map[int]float64),
		prevGDP:      make(map[int]float64),
	}
}

// UpdateTradeNetwork recalculates all bilateral trade volumes from a
// gravity model over centroid hex distance, with comparative-advantage,
// alliance, sanction, and geography modifiers. Each recorded agreement
// also shifts the partners' trade balances, which feed the balance of
// payments.
func (e *Economy) UpdateTradeNetwork(roster *nation.Roster, grid *geo.Grid) {
	e.tradeVolumes = make(map[tradePair]float64)
	living := roster.Living()

	for i, a := range living {
		for _, b := range living[i+1:] {
			if _, sanctioned := a.SanctionsFrom[b.ID]; sanctioned {
				continue
			}
			if _, sanctioned := b.SanctionsFrom[a.ID]; sanctioned {
				continue
			}

			distance := centroidDistance(a, b, grid)

			gravity := a.GDP * b.GDP / (distance * distance)

			geoPenalty := 1.0
			if !a.IsCoastal {
				geoPenalty *= 0.5
			}
			if !b.IsCoastal {
				geoPenalty *= 0.5
			}
			// Long-distance trade needs naval power.
			if distance > 30 {
				if a.Military.Navy < 10 {
					geoPenalty *= 0.8
				}
				if b.Military.Navy < 10 {
					geoPenalty *= 0.8
				}
			}

			advantage := comparativeAdvantage(a, b)
			allianceBonus := 1.0
			if _, allied := a.Alliances[b.ID]; allied {
				allianceBonus = 1.2
			}

			volume := gravity * (1 + advantage) * allianceBonus * geoPenalty * 1e-10
			if volume > a.GDP*0.01 {
				e.tradeVolumes[pairOf(a.ID, b.ID)] = volume

				// One side runs a surplus against the other, up to
				// 30% of the flow.
				shift := (e.rng.Float64()*0.6 - 0.3) * volume
				a.TradeBalance += shift
				b.TradeBalance -= shift
			}
		}
	}
}

// TradeMultiplier returns the nation's GDP multiplier from trade
// integration: 3% per partner, capped at a 50% boost.
func (e *Economy) TradeMultiplier(n *nation.Nation) float64 {
	boost := float64(len(e.TradePartners(n.ID))) * 0.03
	return 1.0 + math.Min(0.5, boost)
}

// ProcessFDIFlows runs capital flight out of unstable targets, then
// allocates new investment to the highest risk-adjusted returns.
func (e *Economy) ProcessFDIFlows(roster *nation.Roster) {
	// Capital flight. Map iteration order is not deterministic, so
	// walk ids sorted to keep the replay stream stable.
	for _, investorID := range sortedSet(e.fdiPositions) {
		positions := e.fdiPositions[investorID]
		investor, ok := roster.Get(investorID)
		if !ok {
			continue
		}
		for _, targetID := range sortedSet(positions) {
			position := positions[targetID]
			target, ok := roster.Get(targetID)
			if !ok || !target.Alive() {
				delete(positions, targetID) // total loss
				continue
			}

			severity := 0.0
			if target.Stability < 40 {
				severity += 0.2
			}
			if target.AtWar {
				severity += 0.3
			}
			if severity == 0 {
				continue
			}

			flight := position * severity
			positions[targetID] -= flight
			if positions[targetID] < 1e6 {
				delete(positions, targetID)
			}

			investor.FDIOutflows -= flight
			target.FDIInflows -= flight

			shock := math.Min(0.5, flight/target.GDP*2.0)
			target.GDP = e.clampGDP(target.GDP * (1 - shock))
			target.Currency.ExchangeRate = math.Max(0.001, target.Currency.ExchangeRate*0.95)
			target.Stability = math.Max(0, target.Stability-2)
		}
	}

	// New investment from wealthy nations.
	for _, investor := range roster.Living() {
		if investor.GDP < 1e11 {
			continue
		}
		budget := investor.GDP * (0.01 + e.rng.Float64()*0.04)

		type candidate struct {
			target *nation.Nation
			ret    float64
		}
		var candidates []candidate
		for _, target := range roster.Living() {
			if target.ID == investor.ID {
				continue
			}
			growthPotential := (100 - target.Technology) / 100 * 0.05
			risk := (100 - target.Stability) / 100 * 0.04
			expected := 0.06 + growthPotential - risk
			if expected > 0.02 {
				candidates = append(candidates, candidate{target, expected})
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].ret != candidates[j].ret {
				return candidates[i].ret > candidates[j].ret
			}
			return candidates[i].target.ID < candidates[j].target.ID
		})

		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		for _, c := range candidates {
			investment := budget / 3
			investor.FDIOutflows += investment
			c.target.FDIInflows += investment

			if e.fdiPositions[investor.ID] == nil {
				e.fdiPositions[investor.ID] = make(map[int]float64)
			}
			e.fdiPositions[investor.ID][c.target.ID] += investment

			// Technology transfer accompanies investment.
			transfer := (investor.Technology - c.target.Technology) * 0.05 * 0.1
			if transfer > 0 {
				c.target.Technology = math.Min(100, c.target.Technology+transfer)
			}
		}
	}
}

// ProcessColonialRelations extracts tribute from colonial subjects and
// rolls for independence movements.
func (e *Economy) ProcessColonialRelations(roster *nation.Roster) {
	for _, master := range roster.All() {
		if len(master.ColonialSubjects) == 0 {
			continue
		}

		for _, subjectID := range sortedSet(master.ColonialSubjects) {
			subject, ok := roster.Get(subjectID)
			if !ok || !subject.Alive() {
				delete(master.ColonialSubjects, subjectID)
				continue
			}

			// Tribute plus cheap resource drain. Sorted walk keeps the
			// accumulation order identical across replays.
			tribute := subject.GDP * 0.03
			drainValue := 0.0
			resources := make([]string, 0, len(subject.Resources))
			for res := range subject.Resources {
				resources = append(resources, res)
			}
			sort.Strings(resources)
			for _, res := range resources {
				if amount := subject.Resources[res]; amount > 0 {
					drain := amount * 0.01
					subject.Resources[res] -= drain
					drainValue += drain * 1e6
				}
			}
			transfer := tribute + drainValue
			subject.GDP = e.clampGDP(subject.GDP - transfer)
			master.GDP = e.clampGDP(master.GDP + transfer)

			// Independence needs a minimally stable subject.
			if subject.Stability < 50 {
				continue
			}
			techFactor := math.Pow(subject.Technology/100.0, 2)
			weakness := (100 - master.Stability) / 100.0
			drift := math.Abs(master.Ideology-subject.Ideology) / 200.0
			revoltProb := 0.05 * techFactor * (1 + weakness) * (1 + drift)

			if e.rng.Float64() < revoltProb {
				delete(master.ColonialSubjects, subjectID)
				subject.Stability = math.Min(100, subject.Stability+15)
				subject.Ideology -= master.Ideology * 0.3
				master.Stability = math.Max(0, master.Stability-10)

				// Nationalize the master's FDI position.
				if positions := e.fdiPositions[master.ID]; positions != nil {
					if seized := positions[subjectID]; seized > 0 {
						delete(positions, subjectID)
						master.FDIOutflows -= seized
						subject.CapitalStock += seized
					}
				}
			}
		}
	}
}

// UpdateExchangeRates feeds each living nation's balance of payments
// and inflation differential into its currency state machine.
func (e *Economy) UpdateExchangeRates(roster *nation.Roster) {
	living := roster.Living()
	if len(living) == 0 {
		return
	}

	avgInflation := 0.0
	for _, n := range living {
		avgInflation += n.InflationRate
	}
	avgInflation /= float64(len(living))

	for _, n := range living {
		bop := (n.TradeBalance + n.FDIInflows - n.FDIOutflows) / math.Max(1, n.GDP)
		n.Currency.UpdateExchangeRate(bop, n.InflationRate-avgInflation, e.cfg, e.rng)
	}
}

// SimulateDebtCrisis accrues sovereign debt from deficits, then checks
// the nation for default and, when it fires, spreads contagion to trade
// partners. Reports whether a default occurred this step.
func (e *Economy) SimulateDebtCrisis(n *nation.Nation, roster *nation.Roster) bool {
	prev, ok := e.prevGDP[n.ID]
	if !ok {
		prev = n.GDP
	}
	growth := n.GDP/math.Max(1, prev) - 1
	e.prevGDP[n.ID] = n.GDP

	// Debt dynamics: interest compounds against growth, external
	// deficits and war spending are financed by borrowing, and a small
	// primary surplus retires debt in good times.
	deficit := math.Max(0, -n.TradeBalance/math.Max(1, n.GDP)) * 0.3
	if n.AtWar {
		deficit += 0.02
	}
	n.DebtToGDP = math.Max(0, n.DebtToGDP*(1+n.Currency.InterestRate-growth)+deficit-0.01)

	if n.DebtToGDP <= 1.2 {
		return false
	}

	crisisProb := (n.DebtToGDP - 1.0) * 0.3
	if growth < 0 {
		crisisProb += 0.2
	}
	if e.rng.Float64() >= crisisProb {
		return false
	}

	// Sovereign default: haircut, contraction, devaluation.
	n.DebtToGDP *= 0.6
	n.GDP = e.clampGDP(n.GDP * 0.9)
	n.Stability = math.Max(0, n.Stability-20)
	n.Currency.ExchangeRate = math.Max(0.001, n.Currency.ExchangeRate*0.7)

	// Contagion to trade partners.
	for _, pid := range e.TradePartners(n.ID) {
		partner, ok := roster.Get(pid)
		if !ok || !partner.Alive() {
			continue
		}
		if e.rng.Float64() < 0.3 {
			partner.Currency.ExchangeRate = math.Max(0.001, partner.Currency.ExchangeRate*0.9)
			partner.GDP = e.clampGDP(partner.GDP * 0.98)
			partner.Stability = math.Max(0, partner.Stability-5)
		}
	}
	return true
}

// TradePartners returns the ids trading with the given nation, in
// ascending order.
func (e *Economy) TradePartners(nationID int) []int {
	var partners []int
	for pair := range e.tradeVolumes {
		switch nationID {
		case pair.A:
			partners = append(partners, pair.B)
		case pair.B:
			partners = append(partners, pair.A)
		}
	}
	sort.Ints(partners)
	return partners
}

// GlobalTradeVolume sums all bilateral trade volumes.
func (e *Economy) GlobalTradeVolume() float64 {
	total := 0.0
	for _, v := range e.tradeVolumes {
		total += v
	}
	return total
}

// DropNation purges a dead nation from all trade and FDI records.
func (e *Economy) DropNation(id int) {
	for pair := range e.tradeVolumes {
		if pair.A == id || pair.B == id {
			delete(e.tradeVolumes, pair)
		}
	}
	delete(e.fdiPositions, id)
	for _, positions := range e.fdiPositions {
		delete(positions, id)
	}
}

// comparativeAdvantage estimates Ricardian trade gains from resource
// complementarity and tech spillovers, less ideological friction.
func comparativeAdvantage(a, b *nation.Nation) float64 {
	resourceComp := 0.0
	for _, res := range []string{nation.ResourceOil, nation.ResourceRareEarth, nation.ResourceFarmland} {
		resourceComp += math.Abs(a.Resources[res] - b.Resources[res])
	}
	techBenefit := math.Min(math.Abs(a.Technology-b.Technology)/100, 0.2)
	friction := math.Abs(a.Ideology-b.Ideology) / 1000
	return math.Max(0, resourceComp*0.01+techBenefit-friction)
}

// centroidDistance computes the hex distance between two nations'
// territory centroids, with a fixed fallback when either holds none.
func centroidDistance(a, b *nation.Nation, grid *geo.Grid) float64 {
	if len(a.Territory) == 0 || len(b.Territory) == 0 {
		return 50.0
	}
	ax, ay := centroid(a.Territory)
	bx, by := centroid(b.Territory)
	return math.Max(1.0, float64(grid.Distance(ax, ay, bx, by)))
}

func centroid(tiles []geo.Coord) (int, int) {
	sx, sy := 0, 0
	for _, t := range tiles {
		sx += t.X
		sy += t.Y
	}
	return sx / len(tiles), sy / len(tiles)
}

func pairOf(a, b int) tradePair {
	if a > b {
		a, b = b, a
	}
	return tradePair{A: a, B: b}
}

func (e *Economy) clampGDP(gdp float64) float64 {
	return math.Max(e.cfg.GDPMin, math.Min(e.cfg.GDPMax, gdp))
}

func sortedSet[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
