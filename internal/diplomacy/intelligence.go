package diplomacy

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// Mission is a covert-operation type.
type Mission string

const (
	MissionStealTech    Mission = "steal_tech"
	MissionSabotage     Mission = "sabotage"
	MissionInciteUnrest Mission = "incite_unrest"
)

var missions = []Mission{MissionStealTech, MissionSabotage, MissionInciteUnrest}

// MissionResult is the structured outcome of an operation. Failure and
// detection are normal branches of the domain, not errors.
type MissionResult struct {
	Mission  Mission
	Success  bool
	Detected bool
}

// Agency runs espionage missions between nations each step.
type Agency struct {
	cfg config.Config
	rng *rand.Rand
}

// NewAgency creates the espionage advisor.
func NewAgency(cfg config.Config, rng *rand.Rand) *Agency {
	return &Agency{cfg: cfg, rng: rng}
}

// Update gives each living nation a small chance to attempt a mission
// against a random living target.
func (a *Agency) Update(roster *nation.Roster, step int) []string {
	var events []string

	for _, actor := range roster.Living() {
		if a.rng.Float64() >= 0.05 {
			continue
		}
		target := a.pickTarget(actor, roster)
		if target == nil {
			continue
		}
		mission := missions[a.rng.Intn(len(missions))]

		result := a.ConductOperation(actor, target, mission)
		if result.Detected {
			events = append(events, fmt.Sprintf("SCANDAL: %s spies caught in %s", actor.Name, target.Name))
			target.RelationsWith[actor.ID] = target.RelationsWith[actor.ID] - 50
		}
	}
	return events
}

// ConductOperation attempts one covert mission and applies its effects.
// Success scales with the tech gap and shrinks against stable,
// high-tech targets; failed missions are detected far more often.
func (a *Agency) ConductOperation(actor, target *nation.Nation, mission Mission) MissionResult {
	prob := 0.5
	prob += (actor.Technology - target.Technology) * 0.015
	defense := (target.Stability + target.Technology) / 200.0
	prob *= 1.0 - defense*0.8

	switch mission {
	case MissionStealTech:
		prob *= 0.6
	case MissionSabotage:
		prob *= 0.5
	case MissionInciteUnrest:
		prob *= 0.4
	}

	success := a.rng.Float64() < clampProb(prob)

	detectProb := 0.7
	if success {
		detectProb = 0.3
	}
	detectProb *= 1.0 - actor.Technology/200.0
	detected := a.rng.Float64() < clampProb(detectProb)

	if success {
		switch mission {
		case MissionStealTech:
			gap := math.Max(0, target.Technology-actor.Technology)
			actor.Technology = math.Min(100, actor.Technology+gap*(0.05+a.rng.Float64()*0.05))
		case MissionSabotage:
			damage := 0.005 + a.rng.Float64()*0.015
			target.GDP = math.Max(a.cfg.GDPMin, target.GDP*(1-damage))
		case MissionInciteUnrest:
			target.Stability = math.Max(0, target.Stability-(5+a.rng.Float64()*10))
		}
	}

	return MissionResult{Mission: mission, Success: success, Detected: detected}
}

func (a *Agency) pickTarget(actor *nation.Nation, roster *nation.Roster) *nation.Nation {
	var candidates []*nation.Nation
	for _, n := range roster.Living() {
		if n.ID != actor.ID {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[a.rng.Intn(len(candidates))]
}

func clampProb(p float64) float64 {
	return math.Max(0.05, math.Min(0.95, p))
}
