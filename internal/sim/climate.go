package sim

import (
	"fmt"
	"math"

	"github.com/SurfitWasTaken/GeoSim/internal/geo"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// Tipping point identifiers.
const (
	tippingPermafrost      = "permafrost"
	tippingAmazon          = "amazon"
	tippingIceSheets       = "ice_sheets"
	tippingBudgetExhausted = "budget_exhausted"
)

// permafrostCarbonBurst is the one-time release when permafrost thaws.
const permafrostCarbonBurst = 200e9

// UpdateClimate accumulates emissions, converts cumulative carbon into
// warming, fires one-shot tipping points, and applies warming damage.
// The climate index is degrees of warming over pre-industrial.
func (w *World) UpdateClimate(step int) []string {
	var ev []string
	living := w.Roster.Living()

	// Emissions: output-driven plus the carbon cost of all fossil fuel
	// extracted to date. Green technology above 80 cuts the footprint.
	var emissions float64
	for _, n := range living {
		e := n.GDP * w.cfg.ClimateGDPFactor
		e += n.ResourcesExtracted[nation.ResourceOil] * 10 * w.cfg.ClimateResourceFactor
		if n.Technology > 80 {
			e *= 1 - (n.Technology-80)/40
		}
		emissions += e
	}
	w.CumulativeCarbon += emissions

	// Warming scales linearly with the share of the 2°C budget burned.
	// Tipping-point carbon bursts land after this read, so they warm the
	// world from the next step on.
	w.ClimateIndex = w.CumulativeCarbon / w.cfg.CarbonBudget2C * w.cfg.ClimateTempScaling

	ev = append(ev, w.checkTippingPoints()...)
	ev = append(ev, w.applyWarmingDamage(step)...)

	return ev
}

// checkTippingPoints fires each threshold crossing exactly once.
func (w *World) checkTippingPoints() []string {
	var ev []string
	temp := w.ClimateIndex

	if temp > 1.5 && w.tip(tippingPermafrost) {
		w.CumulativeCarbon += permafrostCarbonBurst
		ev = append(ev, "CLIMATE: permafrost thaw releases a massive carbon burst")
	}
	if temp > 2.0 && w.tip(tippingAmazon) {
		for _, n := range w.Roster.Living() {
			if _, ok := n.Resources[nation.ResourceFarmland]; ok {
				n.Resources[nation.ResourceFarmland] *= 0.95
			}
		}
		ev = append(ev, "CLIMATE: rainforest dieback degrades farmland worldwide")
	}
	if temp > 2.5 && w.tip(tippingIceSheets) {
		for _, n := range w.Roster.Living() {
			if n.IsCoastal {
				n.Stability = math.Max(0, n.Stability-10)
			}
		}
		ev = append(ev, "CLIMATE: ice sheet collapse destabilizes coastal nations")
	}
	if w.CumulativeCarbon > w.cfg.CarbonBudget2C && w.tip(tippingBudgetExhausted) {
		ev = append(ev, "CLIMATE: the 2C carbon budget is exhausted")
	}
	return ev
}

// tip records a tipping point and reports whether it was newly crossed.
func (w *World) tip(name string) bool {
	if _, done := w.TippingPoints[name]; done {
		return false
	}
	w.TippingPoints[name] = struct{}{}
	return true
}

// applyWarmingDamage imposes the recurring costs of warming: coastal
// losses, farmland degradation, sea-level tile loss, and disasters.
func (w *World) applyWarmingDamage(step int) []string {
	var ev []string
	temp := w.ClimateIndex
	if temp <= 0 {
		return nil
	}

	for _, n := range w.Roster.Living() {
		// Coastal economies bear quadratic damage from storms and
		// sea-level rise.
		if n.IsCoastal {
			damage := 0.001 * temp * temp
			n.GDP = math.Max(w.cfg.GDPMin, n.GDP*(1-damage))
		}

		if temp > 1.5 {
			if _, ok := n.Resources[nation.ResourceFarmland]; ok {
				n.Resources[nation.ResourceFarmland] *= 1 - 0.001*temp
			}
		}

		if w.rng.Float64() < 0.01*temp {
			n.GDP = math.Max(w.cfg.GDPMin, n.GDP*0.97)
			n.Population = math.Max(0, n.Population*0.99)
			ev = append(ev, fmt.Sprintf("CLIMATE DISASTER: extreme weather devastates %s", n.Name))
		}
	}

	// Severe warming drowns low-lying territory every tenth step.
	if temp > 2.0 && step%10 == 0 {
		ev = append(ev, w.loseCoastalTiles()...)
	}
	return ev
}

// loseCoastalTiles removes one ocean-adjacent tile from each coastal
// nation, shrinking its resource base. Nearly-submerged nations take a
// stability hit.
func (w *World) loseCoastalTiles() []string {
	var ev []string
	for _, n := range w.Roster.Living() {
		if !n.IsCoastal || len(n.Territory) == 0 {
			continue
		}

		lost := -1
		for i, t := range n.Territory {
			for _, nb := range w.Grid.Neighbors(t.X, t.Y) {
				if w.Grid.TerrainAt(nb.X, nb.Y) == geo.Ocean {
					lost = i
					break
				}
			}
			if lost >= 0 {
				break
			}
		}
		if lost < 0 {
			continue
		}

		t := n.Territory[lost]
		w.Grid.SetOwner(t.X, t.Y, geo.NoOwner)
		n.Territory = append(n.Territory[:lost], n.Territory[lost+1:]...)

		n.Resources[nation.ResourceFarmland] *= 0.95
		n.Resources[nation.ResourceWater] *= 0.95

		if len(n.Territory) <= 3 {
			n.Stability = math.Max(0, n.Stability-5)
			ev = append(ev, fmt.Sprintf("CLIMATE: rising seas swallow territory of %s", n.Name))
		}
	}
	return ev
}

// extractResources runs one Hubbert-curve extraction step for every
// fossil and mineral deposit. The production rate peaks when roughly
// 40% of the deposit is gone and falls toward zero as it depletes.
func (w *World) extractResources() {
	for _, n := range w.Roster.Living() {
		for _, res := range []string{nation.ResourceOil, nation.ResourceRareEarth} {
			initial := n.ResourcesInitial[res]
			if initial <= 0 {
				continue
			}

			depletion := n.ResourcesExtracted[res] / initial
			depletion = math.Max(0.01, math.Min(0.99, depletion))

			// Hubbert bell: 29·d²·(1−d)³, normalized to peak near 1.
			rate := 29 * depletion * depletion * math.Pow(1-depletion, 3)
			rate *= w.cfg.ResourceDepletionRate
			rate *= 1 + n.Technology/100*0.5

			amount := initial * rate
			remaining := math.Max(0, initial-n.ResourcesExtracted[res])
			amount = math.Min(amount, remaining)
			if amount <= 0 {
				continue
			}

			n.ResourcesExtracted[res] += amount
			n.Resources[res] = math.Max(0, n.Resources[res]-amount)

			revenue := amount * w.uniform(1e6, 5e6)
			n.GDP = math.Max(w.cfg.GDPMin, math.Min(w.cfg.GDPMax, n.GDP+revenue))
		}
	}
}
