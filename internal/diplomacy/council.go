// Package diplomacy provides the per-step advisors around the core
// simulation: the world council, domestic politics, and espionage.
// Advisors mutate nation stability, sanctions, and relations — never
// territory or combat state.
package diplomacy

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// Resolution types the council can vote on.
const (
	ResolutionSanctions    = "sanctions"
	ResolutionAid          = "aid"
	ResolutionCondemnation = "condemnation"
)

// Council is the world body voting on resolutions. The five strongest
// living nations hold veto power.
type Council struct {
	cfg config.Config
	rng *rand.Rand

	securityCouncil map[int]struct{}
	Passed          int
	Vetoed          int
}

// NewCouncil creates the council drawing randomness from rng.
func NewCouncil(cfg config.Config, rng *rand.Rand) *Council {
	return &Council{cfg: cfg, rng: rng, securityCouncil: make(map[int]struct{})}
}

// Update refreshes the security council and occasionally puts a
// resolution to the vote. Returns human-readable events.
func (c *Council) Update(roster *nation.Roster, step int) []string {
	c.updateSecurityCouncil(roster)

	if c.rng.Float64() >= 0.1 {
		return nil
	}

	living := roster.Living()
	if len(living) < 2 {
		return nil
	}
	proposer := living[c.rng.Intn(len(living))]
	target := living[c.rng.Intn(len(living))]
	if target.ID == proposer.ID {
		return nil
	}
	resType := []string{ResolutionSanctions, ResolutionAid, ResolutionCondemnation}[c.rng.Intn(3)]

	passed := c.proposeResolution(proposer, resType, target, roster)
	status := "FAILED/VETOED"
	if passed {
		status = "PASSED"
	}
	return []string{fmt.Sprintf("RESOLUTION: %s against %s proposed by %s - %s", resType, target.Name, proposer.Name, status)}
}

// updateSecurityCouncil grants permanent seats to the five living
// nations strongest by GDP plus militarized weight.
func (c *Council) updateSecurityCouncil(roster *nation.Roster) {
	living := roster.Living()
	sort.SliceStable(living, func(i, j int) bool {
		wi := living[i].GDP + living[i].Military.Total()*1e9
		wj := living[j].GDP + living[j].Military.Total()*1e9
		return wi > wj
	})

	c.securityCouncil = make(map[int]struct{})
	for i, n := range living {
		if i >= 5 {
			break
		}
		c.securityCouncil[n.ID] = struct{}{}
	}
}

// proposeResolution runs the veto check then a general vote, enforcing
// the resolution on success.
func (c *Council) proposeResolution(proposer *nation.Nation, resType string, target *nation.Nation, roster *nation.Roster) bool {
	// Veto: permanent members shield themselves, their allies, and the
	// ideologically aligned from punitive resolutions.
	if resType == ResolutionSanctions || resType == ResolutionCondemnation {
		for _, memberID := range sortedSet(c.securityCouncil) {
			member, ok := roster.Get(memberID)
			if !ok || !member.Alive() {
				continue
			}
			_, allied := member.Alliances[target.ID]
			veto := target.ID == member.ID || allied || math.Abs(member.Ideology-target.Ideology) < 20
			if veto && c.rng.Float64() < 0.9 {
				c.Vetoed++
				return false
			}
		}
	}

	// General vote, simple majority of yes over no.
	votesFor, votesAgainst := 0, 0
	for _, voter := range roster.Living() {
		switch c.castVote(voter, resType, target, proposer) {
		case 1:
			votesFor++
		case -1:
			votesAgainst++
		}
	}
	if votesFor <= (votesFor+votesAgainst)/2 {
		return false
	}

	c.Passed++
	c.enforce(resType, target, roster)
	return true
}

// castVote returns 1 (yes), -1 (no), or 0 (abstain).
func (c *Council) castVote(voter *nation.Nation, resType string, target, proposer *nation.Nation) int {
	score := 0.0
	if _, allied := voter.Alliances[target.ID]; allied {
		score -= 50
	}
	if target.ID == voter.ID {
		score -= 100
	}
	if _, allied := voter.Alliances[proposer.ID]; allied {
		score += 20
	}
	if resType == ResolutionSanctions || resType == ResolutionCondemnation {
		if math.Abs(voter.Ideology-target.Ideology) > 50 {
			score += 30
		} else {
			score -= 20
		}
	}
	score += c.rng.NormFloat64() * 10

	switch {
	case score > 10:
		return 1
	case score < -10:
		return -1
	default:
		return 0
	}
}

func (c *Council) enforce(resType string, target *nation.Nation, roster *nation.Roster) {
	switch resType {
	case ResolutionSanctions:
		for _, n := range roster.Living() {
			if n.ID == target.ID {
				continue
			}
			if _, allied := n.Alliances[target.ID]; allied {
				continue
			}
			n.SanctionsActive[target.ID] = struct{}{}
			target.SanctionsFrom[n.ID] = struct{}{}
		}
	case ResolutionAid:
		target.GDP = math.Min(c.cfg.GDPMax, target.GDP*1.02)
		target.Stability = math.Min(100, target.Stability+3)
	case ResolutionCondemnation:
		target.Stability = math.Max(0, target.Stability-5)
	}
}

func sortedSet[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
