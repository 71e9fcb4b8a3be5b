// Package combat resolves military conflicts between nations using a
// Lanchester square-law attrition model with technology, logistics,
// exhaustion, and nuclear-escalation modifiers.
package combat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// War causes.
const (
	CauseIdeological   = "ideological"
	CauseResources     = "resources"
	CauseSanctions     = "sanctions"
	CausePreemptive    = "preemptive"
	CauseBorderDispute = "border_dispute"
)

// defaultDistance is used when a belligerent holds no territory and no
// real supply-line distance can be computed.
const defaultDistance = 10

// outcome of a resolved war.
type outcome string

const (
	attackerVictory outcome = "attacker_victory"
	defenderVictory outcome = "defender_victory"
	stalemate       outcome = "stalemate"
	nuclearExchange outcome = "nuclear_exchange"
)

// War is an active or archived conflict record. Ally sets are
// snapshotted at declaration time for flag cleanup on termination.
type War struct {
	AttackerID     int     `json:"attacker_id"`
	DefenderID     int     `json:"defender_id"`
	AttackerAllies []int   `json:"attacker_allies"`
	DefenderAllies []int   `json:"defender_allies"`
	Cause          string  `json:"cause"`
	Duration       int     `json:"duration"`
	Intensity      float64 `json:"intensity"`
	Distance       int     `json:"distance"`
	NuclearWinter  bool    `json:"nuclear_winter,omitempty"`
}

// Trigger is a pending war declaration.
type Trigger struct {
	AttackerID int
	DefenderID int
	Cause      string
}

// System owns the active conflicts and the global nuclear state.
type System struct {
	cfg config.Config
	rng *rand.Rand

	Active      []*War
	History     []*War
	Detonations int
}

// NewSystem creates a war system drawing randomness from rng.
func NewSystem(cfg config.Config, rng *rand.Rand) *System {
	return &System{cfg: cfg, rng: rng}
}

// CheckTriggers rolls for new conflicts between every ordered pair of
// living, non-warring, non-allied nations.
func (s *System) CheckTriggers(roster *nation.Roster) []Trigger {
	var triggers []Trigger
	all := roster.All()

	for i, attacker := range all {
		if !attacker.Alive() || attacker.AtWar {
			continue
		}
		// Exhausted nations do not re-engage immediately.
		if attacker.WarExhaustion > 50 {
			continue
		}

		for _, defender := range all[i+1:] {
			if !defender.Alive() || defender.AtWar {
				continue
			}
			if _, allied := defender.Alliances[attacker.ID]; allied {
				continue
			}

			if s.rng.Float64() < s.warProbability(attacker, defender) {
				triggers = append(triggers, Trigger{
					AttackerID: attacker.ID,
					DefenderID: defender.ID,
					Cause:      s.determineCause(attacker, defender),
				})
			}
		}
	}
	return triggers
}

// warProbability combines ideology, resource coveting, power imbalance,
// economic desperation, and the democratic-peace reduction. Capped at
// 15% per step.
func (s *System) warProbability(attacker, defender *nation.Nation) float64 {
	prob := s.cfg.WarBaseProbability

	prob += math.Abs(attacker.Ideology-defender.Ideology) * s.cfg.WarIdeologyFactor

	for _, res := range []string{nation.ResourceOil, nation.ResourceRareEarth} {
		if defender.Resources[res] > attacker.Resources[res]*2 {
			prob += s.cfg.WarResourceFactor
		}
	}

	if attacker.Military.Total() > 2*math.Max(1, defender.Military.Total()) {
		prob += 0.01
	}

	// Poorer nations are more aggressive.
	prob += math.Max(0, (30000-attacker.GDPPerCapita())/30000) * 0.01

	// Democratic peace: pairs of democracies rarely fight at high realism.
	if s.cfg.Realism == config.RealismHigh &&
		attacker.Government == "Democracy" && defender.Government == "Democracy" {
		prob *= 0.2
	}

	return math.Min(0.15, prob)
}

// determineCause picks a casus belli from whichever justifications
// apply, defaulting to a border dispute.
func (s *System) determineCause(attacker, defender *nation.Nation) string {
	var causes []string

	if math.Abs(attacker.Ideology-defender.Ideology) > 60 {
		causes = append(causes, CauseIdeological)
	}
	for _, res := range []string{nation.ResourceOil, nation.ResourceRareEarth} {
		if defender.Resources[res] > attacker.Resources[res]*1.5 {
			causes = append(causes, CauseResources)
			break
		}
	}
	if _, sanctioned := attacker.SanctionsFrom[defender.ID]; sanctioned {
		causes = append(causes, CauseSanctions)
	}
	if len(defender.Alliances) > len(attacker.Alliances)+3 {
		causes = append(causes, CausePreemptive)
	}

	if len(causes) == 0 {
		return CauseBorderDispute
	}
	return causes[s.rng.Intn(len(causes))]
}

// Initiate opens a conflict. distance is the supply-line hex distance
// between the belligerents' territory centroids; pass a value < 0 when
// unknown and the default applies. Returns a human-readable event.
func (s *System) Initiate(t Trigger, distance int, roster *nation.Roster) (string, error) {
	attacker, ok := roster.Get(t.AttackerID)
	if !ok {
		return "", fmt.Errorf("unknown attacker id %d", t.AttackerID)
	}
	defender, ok := roster.Get(t.DefenderID)
	if !ok {
		return "", fmt.Errorf("unknown defender id %d", t.DefenderID)
	}

	if distance < 0 {
		distance = defaultDistance
	}

	attacker.AtWar = true
	defender.AtWar = true

	s.Active = append(s.Active, &War{
		AttackerID:     t.AttackerID,
		DefenderID:     t.DefenderID,
		AttackerAllies: setToSlice(attacker.Alliances),
		DefenderAllies: setToSlice(defender.Alliances),
		Cause:          t.Cause,
		Intensity:      0.5 + s.rng.Float64()*0.5,
		Distance:       distance,
	})

	return fmt.Sprintf("WAR: %s attacks %s over %s", attacker.Name, defender.Name, t.Cause), nil
}

// Resolve advances every active war one step, removing and archiving
// those that terminate. Returns human-readable events.
func (s *System) Resolve(roster *nation.Roster) []string {
	var events []string

	remaining := s.Active[:0]
	for _, war := range s.Active {
		war.Duration++

		attacker, aok := roster.Get(war.AttackerID)
		defender, dok := roster.Get(war.DefenderID)

		// Either side eliminated: terminate and clear flags everywhere.
		if !aok || !dok || !attacker.Alive() || !defender.Alive() {
			s.clearWarFlags(war, roster)
			s.History = append(s.History, war)
			continue
		}

		result := s.resolveCombat(attacker, defender, war)
		if result == "" {
			remaining = append(remaining, war)
			continue
		}

		events = append(events, s.applyOutcome(attacker, defender, war, result, roster))
		s.History = append(s.History, war)
	}
	s.Active = remaining

	return events
}

// resolveCombat applies one step of attrition and reports the outcome,
// or "" while the war continues.
func (s *System) resolveCombat(attacker, defender *nation.Nation, war *War) outcome {
	attackerStrength := s.combatStrength(attacker, true, float64(war.Distance))
	defenderStrength := s.combatStrength(defender, false, 0)

	// Technology and logistics favor the attacker proportionally.
	attackerStrength *= (attacker.Technology + 1) / (defender.Technology + 1)
	attackerStrength *= math.Pow(attacker.GDP/math.Max(1, defender.GDP), 0.3)

	// Exhaustion halves effectiveness at 100.
	attackerStrength *= 1 - attacker.WarExhaustion/200
	defenderStrength *= 1 - defender.WarExhaustion/200

	// Home-field advantage.
	defenderStrength *= 1.3

	if attacker.Military.Nuclear > 10 && s.rng.Float64() < 0.05 {
		s.detonate(attacker, defender, war)
		return nuclearExchange
	}

	// Lanchester square law: casualties scale with the square of the
	// opposing strength.
	attacker.Population = math.Max(0, attacker.Population-defenderStrength*defenderStrength*war.Intensity*0.01)
	defender.Population = math.Max(0, defender.Population-attackerStrength*attackerStrength*war.Intensity*0.01)

	attacker.GDP = s.clampGDP(attacker.GDP * (0.95 + s.rng.Float64()*0.03))
	defender.GDP = s.clampGDP(defender.GDP * (0.90 + s.rng.Float64()*0.05))

	// Democracies tire of war faster; defenders fight harder.
	base := 2 + s.rng.Float64()*3
	attacker.WarExhaustion += base * demoFactor(attacker.Government, 1.5, 1.0)
	defender.WarExhaustion += base * demoFactor(defender.Government, 1.2, 0.8)

	if war.Duration < 3 {
		return "" // minimum war duration
	}
	if war.Duration > 12 || attacker.WarExhaustion > 80 || defender.WarExhaustion > 80 {
		switch {
		case attackerStrength > defenderStrength*1.5:
			return attackerVictory
		case defenderStrength > attackerStrength*1.5:
			return defenderVictory
		default:
			return stalemate
		}
	}
	return ""
}

// combatStrength weights the branches by role: attackers need naval and
// air projection, defenders lean on the army. Attacker strength decays
// with supply-line distance, up to 80% at distance 100.
func (s *System) combatStrength(n *nation.Nation, isAttacker bool, distance float64) float64 {
	var strength float64
	if isAttacker {
		strength = n.Military.Army*0.3 + n.Military.Navy*0.4 + n.Military.Air*0.3
		penalty := math.Max(0, math.Min(0.8, distance/100.0))
		strength *= 1 - penalty
	} else {
		strength = n.Military.Army*0.5 + n.Military.Navy*0.25 + n.Military.Air*0.25
	}

	// Manpower factor on a log scale.
	safePop := math.Max(1.0, n.Population)
	strength *= 1 + math.Log10(safePop/1e6)/10

	return strength
}

// detonate executes a nuclear exchange between both sides.
func (s *System) detonate(attacker, defender *nation.Nation, war *War) {
	s.Detonations += int(attacker.Military.Nuclear/10) + int(defender.Military.Nuclear/10)

	attacker.Population *= 0.3 + s.rng.Float64()*0.2
	defender.Population *= 0.2 + s.rng.Float64()*0.2
	attacker.GDP = s.clampGDP(attacker.GDP * (0.2 + s.rng.Float64()*0.2))
	defender.GDP = s.clampGDP(defender.GDP * (0.1 + s.rng.Float64()*0.2))
	attacker.Stability = 10
	defender.Stability = 10

	war.NuclearWinter = true
}

// applyOutcome ends the war, clears flags on principals and recorded
// allies, and applies the territorial/economic consequences.
func (s *System) applyOutcome(attacker, defender *nation.Nation, war *War, result outcome, roster *nation.Roster) string {
	s.clearWarFlags(war, roster)

	switch result {
	case attackerVictory:
		if s.rng.Float64() < 0.3 {
			// Annexation: the defender ceases to exist.
			attacker.Population += defender.Population * 0.7
			attacker.GDP = s.clampGDP(attacker.GDP + defender.GDP*0.5)
			for res, amount := range defender.Resources {
				attacker.Resources[res] += amount
			}
			defender.Population = 0
			return fmt.Sprintf("WAR END: %s annexes %s after %d months", attacker.Name, defender.Name, war.Duration)
		}

		// Regime change with reparations; defender becomes a subject.
		defender.Government = attacker.Government
		defender.Ideology = attacker.Ideology + s.rng.NormFloat64()*20
		defender.Stability = 30
		attacker.ColonialSubjects[defender.ID] = struct{}{}

		reparations := defender.GDP * 0.1
		defender.GDP = s.clampGDP(defender.GDP - reparations)
		attacker.GDP = s.clampGDP(attacker.GDP + reparations*0.7) // 30% friction
		return fmt.Sprintf("WAR END: %s victory over %s, regime change imposed", attacker.Name, defender.Name)

	case defenderVictory:
		attacker.Stability = math.Max(0, attacker.Stability-20)
		attacker.WarExhaustion = 60

		reparations := attacker.GDP * 0.1
		attacker.GDP = s.clampGDP(attacker.GDP - reparations)
		defender.GDP = s.clampGDP(defender.GDP + reparations*0.7)
		return fmt.Sprintf("WAR END: %s successfully defends against %s", defender.Name, attacker.Name)

	case nuclearExchange:
		return fmt.Sprintf("NUCLEAR WAR: %s and %s exchange nuclear weapons (%d total detonations)", attacker.Name, defender.Name, s.Detonations)

	default: // armistice
		attacker.WarExhaustion = 50
		defender.WarExhaustion = 50
		return fmt.Sprintf("WAR END: %s and %s reach armistice after %d months", attacker.Name, defender.Name, war.Duration)
	}
}

// clearWarFlags resets the war flag on both principals and on every
// recorded ally of either side that is still alive. This cleanup is an
// invariant of war termination, on every path.
func (s *System) clearWarFlags(war *War, roster *nation.Roster) {
	ids := []int{war.AttackerID, war.DefenderID}
	ids = append(ids, war.AttackerAllies...)
	ids = append(ids, war.DefenderAllies...)
	for _, id := range ids {
		if n, ok := roster.Get(id); ok && n.Alive() {
			n.AtWar = false
		}
	}
}

// PurgeDead archives any active war whose principal no longer exists,
// clearing war flags on the survivors. Called after phases that can
// eliminate a nation outside combat resolution.
func (s *System) PurgeDead(roster *nation.Roster) {
	remaining := s.Active[:0]
	for _, war := range s.Active {
		attacker, aok := roster.Get(war.AttackerID)
		defender, dok := roster.Get(war.DefenderID)
		if !aok || !dok || !attacker.Alive() || !defender.Alive() {
			s.clearWarFlags(war, roster)
			s.History = append(s.History, war)
			continue
		}
		remaining = append(remaining, war)
	}
	s.Active = remaining
}

// CheckNuclearWinter reports whether the global detonation count has
// reached the winter threshold.
func (s *System) CheckNuclearWinter() bool {
	return s.Detonations >= 3
}

// ApplyNuclearWinter imposes the one-time global catastrophe: famine,
// collapse, and a permanent reduction of farmland — both current stock
// and the Hubbert baseline, so depletion curves shift with it.
func (s *System) ApplyNuclearWinter(roster *nation.Roster) string {
	for _, n := range roster.All() {
		if !n.Alive() {
			continue
		}

		n.Population *= 0.5 + s.rng.Float64()*0.2
		n.GDP = s.clampGDP(n.GDP * (0.3 + s.rng.Float64()*0.2))
		n.Health = math.Max(0, n.Health-40)
		n.Stability = math.Max(0, n.Stability-30)

		if _, ok := n.Resources[nation.ResourceFarmland]; ok {
			n.Resources[nation.ResourceFarmland] *= 0.3
			if _, ok := n.ResourcesInitial[nation.ResourceFarmland]; ok {
				n.ResourcesInitial[nation.ResourceFarmland] *= 0.3
			}
		}
	}

	return fmt.Sprintf("NUCLEAR WINTER: global cooling and famine, %d warheads detonated", s.Detonations)
}

func (s *System) clampGDP(gdp float64) float64 {
	return math.Max(s.cfg.GDPMin, math.Min(s.cfg.GDPMax, gdp))
}

func demoFactor(government string, democracy, other float64) float64 {
	if government == "Democracy" {
		return democracy
	}
	return other
}

// setToSlice returns the set's members in ascending order, keeping war
// records identical across replays of the same seed.
func setToSlice(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
