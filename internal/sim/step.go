package sim

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/SurfitWasTaken/GeoSim/internal/combat"
	"github.com/SurfitWasTaken/GeoSim/internal/geo"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// exhaustionRecovery is the per-step decay of war exhaustion at peace.
const exhaustionRecovery = 2.0

// StepOnce advances the world one step through the full phase protocol
// and returns the step record. Phase order is fixed; within a phase,
// nations are processed in roster order.
func (w *World) StepOnce() Record {
	w.Step++
	step := w.Step
	var ev []string

	// Phase 1: trade network, production, monetary policy.
	w.economy.UpdateTradeNetwork(w.Roster, w.Grid)
	for _, n := range w.Roster.Living() {
		n.CalculateGDP(w.cfg, w.economy.TradeMultiplier(n))
		n.ManageMonetaryPolicy(w.cfg)
	}

	// Phase 2: international finance.
	w.economy.ProcessFDIFlows(w.Roster)
	w.economy.ProcessColonialRelations(w.Roster)
	w.economy.UpdateExchangeRates(w.Roster)
	for _, n := range w.Roster.Living() {
		if w.economy.SimulateDebtCrisis(n, w.Roster) {
			ev = append(ev, fmt.Sprintf("DEFAULT: sovereign debt crisis in %s", n.Name))
		}
	}

	// Phase 3: national investment.
	for _, n := range w.Roster.Living() {
		n.InvestRD(w.uniform(0.01, 0.04), w.cfg)
		n.BuildMilitary(w.uniform(0.01, 0.05), w.cfg)
		if n.Technology >= w.cfg.TechNuclearThreshold {
			n.Military.Nuclear += 0.5
		}
	}

	// Phase 4: alliance formation and decay.
	ev = append(ev, w.updateAlliances()...)

	// Phase 5: advisors (politics, council, espionage).
	for _, adv := range w.advisors {
		ev = append(ev, adv.Update(w.Roster, step)...)
	}

	// Phase 6: stochastic world events.
	ev = append(ev, w.eventSrc.ProcessEvents(w.Roster, w.economy, step, w.Grid)...)

	// Phase 7: demographics and domestic drift.
	for _, n := range w.Roster.Living() {
		n.UpdateHealth(w.cfg)
		n.UpdatePopulation(w.cfg)
		n.UpdateStability(w.rng)
		if !n.AtWar && n.WarExhaustion > 0 {
			n.WarExhaustion = math.Max(0, n.WarExhaustion-exhaustionRecovery)
		}
	}

	// Phase 8: war declaration and resolution.
	for _, t := range w.Wars.CheckTriggers(w.Roster) {
		msg, err := w.Wars.Initiate(t, w.supplyDistance(t.AttackerID, t.DefenderID), w.Roster)
		if err != nil {
			slog.Warn("war initiation failed", "error", err)
			continue
		}
		ev = append(ev, msg)
	}
	ev = append(ev, w.Wars.Resolve(w.Roster)...)
	if !w.nuclearWinterActive && w.Wars.CheckNuclearWinter() {
		w.nuclearWinterActive = true
		ev = append(ev, w.Wars.ApplyNuclearWinter(w.Roster))
	}

	// Phase 9: arms race catch-up.
	w.processArmsRace()

	// Phase 10: climate and resource extraction.
	ev = append(ev, w.UpdateClimate(step)...)
	w.extractResources()

	// Phase 11: trade-dispute arbitration.
	ev = append(ev, w.arbitrateTradeDispute()...)

	// Phase 12: space programs and migration.
	ev = append(ev, w.updateSpacePrograms()...)
	w.processMigration()

	w.reapDead()

	return Record{
		Step:       step,
		Events:     ev,
		Stats:      w.LivingStats(),
		Nations:    w.snapshotLiving(),
		ActiveWars: w.activeWars(),
	}
}

func (w *World) snapshotLiving() []nation.Snapshot {
	living := w.Roster.Living()
	out := make([]nation.Snapshot, 0, len(living))
	for _, n := range living {
		out = append(out, n.Snapshot())
	}
	return out
}

func (w *World) activeWars() []combat.War {
	out := make([]combat.War, 0, len(w.Wars.Active))
	for _, war := range w.Wars.Active {
		out = append(out, *war)
	}
	return out
}

// supplyDistance is the hex distance between the belligerents' territory
// centroids, or -1 when either side holds no land.
func (w *World) supplyDistance(attackerID, defenderID int) int {
	a, aok := w.Roster.Get(attackerID)
	d, dok := w.Roster.Get(defenderID)
	if !aok || !dok || len(a.Territory) == 0 || len(d.Territory) == 0 {
		return -1
	}
	ac := centroid(a.Territory)
	dc := centroid(d.Territory)
	return w.Grid.Distance(ac.X, ac.Y, dc.X, dc.Y)
}

func centroid(tiles []geo.Coord) geo.Coord {
	var sx, sy int
	for _, t := range tiles {
		sx += t.X
		sy += t.Y
	}
	return geo.Coord{X: sx / len(tiles), Y: sy / len(tiles)}
}

// updateAlliances forms new pacts between compatible neighbors and
// occasionally dissolves distant ones.
func (w *World) updateAlliances() []string {
	var ev []string
	living := w.Roster.Living()

	for i, a := range living {
		for _, b := range living[i+1:] {
			if _, allied := a.Alliances[b.ID]; allied {
				continue
			}
			if len(a.Alliances) >= nation.AllianceCap || len(b.Alliances) >= nation.AllianceCap {
				continue
			}
			// Ideological opposites do not ally.
			if math.Abs(a.Ideology-b.Ideology) > 50 {
				continue
			}

			shared := len(w.economy.TradePartners(a.ID)) + len(w.economy.TradePartners(b.ID))
			prob := w.proximity(a, b)*0.02 + float64(shared)*0.001
			if w.rng.Float64() < prob {
				a.Alliances[b.ID] = struct{}{}
				b.Alliances[a.ID] = struct{}{}
				ev = append(ev, fmt.Sprintf("ALLIANCE: %s and %s form an alliance", a.Name, b.Name))
			}
		}
	}

	// Decay: distant or ideologically estranged alliances fray.
	for _, a := range living {
		for _, id := range sortedAllies(a.Alliances) {
			b, ok := w.Roster.Get(id)
			if !ok || !b.Alive() {
				delete(a.Alliances, id)
				continue
			}
			if a.ID > b.ID {
				continue // each pair checked once
			}
			if w.rng.Float64() >= 0.02 {
				continue
			}
			drifted := math.Abs(a.Ideology-b.Ideology) > 60
			if drifted || w.rng.Float64() < 1-w.proximity(a, b) {
				delete(a.Alliances, b.ID)
				delete(b.Alliances, a.ID)
				ev = append(ev, fmt.Sprintf("ALLIANCE: pact between %s and %s dissolves", a.Name, b.Name))
			}
		}
	}
	return ev
}

// proximity maps centroid distance into (0,1]; adjacent nations score
// near 1, far ones near 0.
func (w *World) proximity(a, b *nation.Nation) float64 {
	d := w.supplyDistance(a.ID, b.ID)
	if d < 0 {
		d = 10
	}
	return 1.0 / (1.0 + float64(d)/10.0)
}

// processArmsRace makes militarily weak nations build up toward a
// sampled regional average.
func (w *World) processArmsRace() {
	living := w.Roster.Living()
	for _, n := range living {
		var others []*nation.Nation
		for _, o := range living {
			if o.ID != n.ID {
				others = append(others, o)
			}
		}
		if len(others) == 0 {
			continue
		}

		sample := len(others)
		if sample > 5 {
			sample = 5
		}
		var total float64
		perm := w.rng.Perm(len(others))
		for _, idx := range perm[:sample] {
			total += others[idx].Military.Total()
		}
		avg := total / float64(sample)

		if n.Military.Total() < 0.7*avg {
			n.BuildMilitary(w.uniform(0.01, 0.03), w.cfg)
		}
	}
}

// arbitrateTradeDispute occasionally settles a dispute between two
// random nations, nudging their output apart.
func (w *World) arbitrateTradeDispute() []string {
	if w.rng.Float64() >= 0.1 {
		return nil
	}
	living := w.Roster.Living()
	if len(living) < 2 {
		return nil
	}
	a := living[w.rng.Intn(len(living))]
	b := living[w.rng.Intn(len(living))]
	if a.ID == b.ID {
		return nil
	}

	winner, loser := a, b
	if w.rng.Float64() < 0.5 {
		winner, loser = b, a
	}
	winner.GDP = math.Min(w.cfg.GDPMax, winner.GDP*1.01)
	loser.GDP = math.Max(w.cfg.GDPMin, loser.GDP*0.99)
	return []string{fmt.Sprintf("ARBITRATION: trade dispute ruled for %s against %s", winner.Name, loser.Name)}
}

// updateSpacePrograms launches programs in tech leaders and pays their
// ongoing aerospace dividend.
func (w *World) updateSpacePrograms() []string {
	var ev []string
	for _, n := range w.Roster.Living() {
		if n.HasSpaceProgram {
			n.Military.Air += 0.5
			continue
		}
		if n.Technology >= w.cfg.TechSpaceThreshold && w.rng.Float64() < 0.1 {
			n.HasSpaceProgram = true
			n.Technology = math.Min(100, n.Technology+5)
			ev = append(ev, fmt.Sprintf("SPACE: %s launches a space program", n.Name))
		}
	}
	return ev
}

// migrationClimateThreshold is the warming level at which climate stress
// alone pushes emigration.
const migrationClimateThreshold = 2.5

// processMigration moves people from unstable, warring, or
// climate-stressed nations toward the most attractive destination.
func (w *World) processMigration() {
	living := w.Roster.Living()
	if len(living) < 2 {
		return
	}

	for _, n := range living {
		push := n.Stability < 40 || n.AtWar || w.ClimateIndex > migrationClimateThreshold
		if !push {
			continue
		}

		emigrants := n.Population * w.uniform(0.001, 0.01)

		var dest *nation.Nation
		var bestScore float64
		for _, o := range living {
			if o.ID == n.ID {
				continue
			}
			score := o.GDPPerCapita() * o.Stability
			if dest == nil || score > bestScore {
				dest, bestScore = o, score
			}
		}
		if dest == nil {
			continue
		}

		n.Population = math.Max(0, n.Population-emigrants)
		dest.Population += emigrants * 0.7 // attrition en route
	}
}

// reapDead retires nations whose population hit zero: war flags off,
// alliances and sanctions purged, territory released, trade and
// financial positions dropped. Runs once per departed nation.
func (w *World) reapDead() {
	for _, n := range w.Roster.All() {
		if n.Alive() {
			continue
		}
		if _, done := w.reaped[n.ID]; done {
			continue
		}
		w.reaped[n.ID] = struct{}{}

		n.AtWar = false
		for _, t := range n.Territory {
			if w.Grid.OwnerAt(t.X, t.Y) == n.ID {
				w.Grid.SetOwner(t.X, t.Y, geo.NoOwner)
			}
		}
		n.Territory = nil

		for _, other := range w.Roster.All() {
			if other.ID == n.ID {
				continue
			}
			delete(other.Alliances, n.ID)
			delete(other.SanctionsActive, n.ID)
			delete(other.SanctionsFrom, n.ID)
			delete(other.ColonialSubjects, n.ID)
			delete(other.RelationsWith, n.ID)
		}
		w.economy.DropNation(n.ID)

		slog.Info("nation collapsed", "nation", n.Name, "step", w.Step)
	}

	w.Wars.PurgeDead(w.Roster)
}

func sortedAllies(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
