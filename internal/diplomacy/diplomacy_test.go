package diplomacy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

func diploNation(id int, government string) *nation.Nation {
	return nation.New(id, "Diploland", government, 50e6, 1e12, 50, 60, 0, 65,
		nation.NewCurrency("unit", nation.RegimeFloating))
}

func diploRoster(t *testing.T, nations ...*nation.Nation) *nation.Roster {
	t.Helper()
	r := nation.NewRoster()
	for _, n := range nations {
		require.NoError(t, r.Add(n))
	}
	return r
}

func TestPoliticsElections(t *testing.T) {
	cfg := config.Default()

	t.Run("democracies eventually hold elections", func(t *testing.T) {
		p := NewPolitics(cfg, rand.New(rand.NewSource(1)))
		n := diploNation(0, "Democracy")
		roster := diploRoster(t, n)

		held := false
		for step := 5; step < 100 && !held; step++ {
			held = len(p.Update(roster, step)) > 0
		}
		assert.True(t, held)
		assert.Greater(t, n.LastElection, 0)
	})

	t.Run("autocracies never vote", func(t *testing.T) {
		p := NewPolitics(cfg, rand.New(rand.NewSource(1)))
		n := diploNation(0, "Autocracy")
		roster := diploRoster(t, n)

		for step := 5; step < 100; step++ {
			p.Update(roster, step)
		}
		assert.Zero(t, n.LastElection)
	})

	t.Run("collapsed stability risks a coup", func(t *testing.T) {
		p := NewPolitics(cfg, rand.New(rand.NewSource(2)))
		n := diploNation(0, "Democracy")
		roster := diploRoster(t, n)

		couped := false
		for step := 0; step < 200 && !couped; step++ {
			n.Stability = 10 // keep the precondition pinned
			p.Update(roster, step)
			couped = n.Government == "Autocracy"
		}
		assert.True(t, couped, "a 10%%-per-step coup chance should fire within 200 steps")
	})

	t.Run("stable nations do not coup", func(t *testing.T) {
		p := NewPolitics(cfg, rand.New(rand.NewSource(2)))
		n := diploNation(0, "Technocracy")
		n.Stability = 80
		roster := diploRoster(t, n)

		for step := 0; step < 200; step++ {
			p.Update(roster, step)
			n.Stability = 80
		}
		assert.Equal(t, "Technocracy", n.Government)
	})
}

func TestCouncilSanctions(t *testing.T) {
	cfg := config.Default()
	c := NewCouncil(cfg, rand.New(rand.NewSource(3)))

	target := diploNation(0, "Autocracy")
	target.Ideology = 90
	var others []*nation.Nation
	for i := 1; i <= 6; i++ {
		n := diploNation(i, "Democracy")
		n.Ideology = -80 // hostile bloc
		others = append(others, n)
	}
	roster := diploRoster(t, append([]*nation.Nation{target}, others...)...)
	c.updateSecurityCouncil(roster)

	passed := c.proposeResolution(others[0], ResolutionSanctions, target, roster)
	if passed {
		for _, n := range others {
			assert.Contains(t, n.SanctionsActive, target.ID)
		}
		assert.Len(t, target.SanctionsFrom, len(others))
	} else {
		assert.Empty(t, target.SanctionsFrom, "a failed resolution has no effect")
	}
}

func TestCouncilVeto(t *testing.T) {
	cfg := config.Default()
	c := NewCouncil(cfg, rand.New(rand.NewSource(4)))

	// The target is itself the overwhelming top power, so it sits on the
	// security council and shields itself.
	target := diploNation(0, "Autocracy")
	target.GDP = 19e12
	target.Military.Army = 500
	proposer := diploNation(1, "Democracy")
	proposer.Ideology = -90
	target.Ideology = 90
	roster := diploRoster(t, target, proposer)
	c.updateSecurityCouncil(roster)

	vetoed := 0
	for i := 0; i < 50; i++ {
		if !c.proposeResolution(proposer, ResolutionSanctions, target, roster) {
			vetoed++
		}
	}
	assert.Greater(t, vetoed, 35, "self-veto fires 90%% of the time")
}

func TestCouncilAid(t *testing.T) {
	cfg := config.Default()
	c := NewCouncil(cfg, rand.New(rand.NewSource(5)))

	target := diploNation(0, "Democracy")
	target.GDP = 0.5e12
	target.Stability = 40
	roster := diploRoster(t, target)

	gdpBefore, stabBefore := target.GDP, target.Stability
	c.enforce(ResolutionAid, target, roster)

	assert.Greater(t, target.GDP, gdpBefore)
	assert.LessOrEqual(t, target.GDP, cfg.GDPMax)
	assert.Equal(t, stabBefore+3, target.Stability)
}

func TestAgencyOperations(t *testing.T) {
	cfg := config.Default()

	t.Run("steal tech narrows the gap without exceeding it", func(t *testing.T) {
		a := NewAgency(cfg, rand.New(rand.NewSource(6)))
		actor := diploNation(0, "Autocracy")
		actor.Technology = 30
		target := diploNation(1, "Democracy")
		target.Technology = 90

		for i := 0; i < 200; i++ {
			res := a.ConductOperation(actor, target, MissionStealTech)
			if res.Success {
				break
			}
		}
		assert.Greater(t, actor.Technology, 30.0)
		assert.LessOrEqual(t, actor.Technology, 100.0)
	})

	t.Run("sabotage respects the GDP floor", func(t *testing.T) {
		a := NewAgency(cfg, rand.New(rand.NewSource(7)))
		actor := diploNation(0, "Autocracy")
		target := diploNation(1, "Democracy")
		target.GDP = cfg.GDPMin

		for i := 0; i < 50; i++ {
			a.ConductOperation(actor, target, MissionSabotage)
			assert.GreaterOrEqual(t, target.GDP, cfg.GDPMin)
		}
	})

	t.Run("unrest never drives stability negative", func(t *testing.T) {
		a := NewAgency(cfg, rand.New(rand.NewSource(8)))
		actor := diploNation(0, "Autocracy")
		target := diploNation(1, "Democracy")
		target.Stability = 3

		for i := 0; i < 50; i++ {
			a.ConductOperation(actor, target, MissionInciteUnrest)
			assert.GreaterOrEqual(t, target.Stability, 0.0)
		}
	})

	t.Run("detection sours relations", func(t *testing.T) {
		a := NewAgency(cfg, rand.New(rand.NewSource(9)))
		actor := diploNation(0, "Autocracy")
		target := diploNation(1, "Democracy")
		roster := diploRoster(t, actor, target)

		for i := 0; i < 500; i++ {
			a.Update(roster, i)
		}
		// With a 5% attempt rate over 500 steps somebody gets caught.
		soured := target.RelationsWith[actor.ID] < 0 || actor.RelationsWith[target.ID] < 0
		assert.True(t, soured)
	})
}
