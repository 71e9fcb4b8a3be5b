package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/diplomacy"
	"github.com/SurfitWasTaken/GeoSim/internal/econ"
	"github.com/SurfitWasTaken/GeoSim/internal/events"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.NumNations = 8
	cfg.WorldWidth = 40
	cfg.WorldHeight = 40
	cfg.Seed = 42
	return cfg
}

func buildWorld(t *testing.T, cfg config.Config) *World {
	t.Helper()
	rng := rand.New(rand.NewSource(cfg.Seed))
	economy := econ.New(cfg, rng)
	eventSrc := events.New(cfg, rng)
	w, err := NewWorld(cfg, rng, economy, eventSrc,
		diplomacy.NewPolitics(cfg, rng),
		diplomacy.NewCouncil(cfg, rng),
		diplomacy.NewAgency(cfg, rng),
	)
	require.NoError(t, err)
	return w
}

func TestNewWorld(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.WorldWidth = 0
		rng := rand.New(rand.NewSource(1))
		_, err := NewWorld(cfg, rng, econ.New(cfg, rng), events.New(cfg, rng))
		assert.Error(t, err)
	})

	t.Run("spawns every nation with territory and resources", func(t *testing.T) {
		cfg := testConfig()
		w := buildWorld(t, cfg)

		require.Equal(t, cfg.NumNations, w.Roster.Len())
		for _, n := range w.Roster.All() {
			assert.NotEmpty(t, n.Territory, "%s got no land", n.Name)
			assert.NotEmpty(t, n.Resources)
			// Ownership is recorded on the grid.
			for _, tl := range n.Territory {
				assert.Equal(t, n.ID, w.Grid.OwnerAt(tl.X, tl.Y))
			}
			// Hubbert baselines mirror the endowment.
			for res, amount := range n.Resources {
				assert.Equal(t, amount, n.ResourcesInitial[res])
				assert.Zero(t, n.ResourcesExtracted[res])
			}
		}
	})
}

func TestReproducibility(t *testing.T) {
	cfg := testConfig()
	const steps = 25

	run := func() []float64 {
		w := buildWorld(t, cfg)
		gdps := make([]float64, 0, steps)
		for i := 0; i < steps; i++ {
			rec := w.StepOnce()
			gdps = append(gdps, rec.Stats.GlobalGDP)
		}
		return gdps
	}

	first := run()
	second := run()
	assert.Equal(t, first, second,
		"identical seed and config must yield an identical global-GDP sequence")
}

func TestStepInvariants(t *testing.T) {
	cfg := testConfig()
	w := buildWorld(t, cfg)

	for i := 0; i < 40; i++ {
		rec := w.StepOnce()

		assert.Equal(t, i+1, rec.Step)
		assert.Equal(t, len(rec.Nations), rec.Stats.LivingNations)

		for _, s := range rec.Nations {
			assert.GreaterOrEqual(t, s.Population, 0.0, "%s step %d", s.Name, rec.Step)
			assert.GreaterOrEqual(t, s.GDP, cfg.GDPMin, "%s step %d", s.Name, rec.Step)
			assert.LessOrEqual(t, s.GDP, cfg.GDPMax, "%s step %d", s.Name, rec.Step)
			assert.LessOrEqual(t, len(s.Alliances), nation.AllianceCap)
			assert.GreaterOrEqual(t, s.Health, 0.0)
			assert.LessOrEqual(t, s.Health, cfg.HealthMax)
		}

		// Active wars reference living belligerents only.
		for _, war := range rec.ActiveWars {
			a, ok := w.Roster.Get(war.AttackerID)
			require.True(t, ok)
			d, ok := w.Roster.Get(war.DefenderID)
			require.True(t, ok)
			assert.True(t, a.Alive())
			assert.True(t, d.Alive())
		}
	}
}

func TestDeadNationsStayGone(t *testing.T) {
	cfg := testConfig()
	w := buildWorld(t, cfg)
	w.StepOnce()

	victim := w.Roster.All()[0]
	ally := w.Roster.All()[1]
	ally.Alliances[victim.ID] = struct{}{}
	victim.Alliances[ally.ID] = struct{}{}
	victim.Population = 0

	rec := w.StepOnce()

	assert.NotContains(t, ally.Alliances, victim.ID)
	assert.Empty(t, victim.Territory)
	assert.False(t, victim.AtWar)
	for _, s := range rec.Nations {
		assert.NotEqual(t, victim.ID, s.ID)
	}
}

func TestUpdateClimateScenario(t *testing.T) {
	cfg := testConfig()
	cfg.NumNations = 0 // isolate the climate math from emissions
	w := buildWorld(t, cfg)

	w.CumulativeCarbon = 6.0e12
	out := w.UpdateClimate(1)

	// 6.0/3.7 of the budget at 1.5 scaling = about 2.43 degrees.
	assert.InDelta(t, 2.432, w.ClimateIndex, 0.01)

	assert.Contains(t, w.TippingPoints, tippingPermafrost)
	assert.Contains(t, w.TippingPoints, tippingAmazon)
	assert.Contains(t, w.TippingPoints, tippingBudgetExhausted)
	assert.NotContains(t, w.TippingPoints, tippingIceSheets)
	assert.NotEmpty(t, out)

	// The permafrost burst lands in the cumulative total for next step.
	assert.Greater(t, w.CumulativeCarbon, 6.0e12)

	// Tipping points are one-shot: a second pass never re-fires a
	// crossed threshold or re-releases the burst.
	carbonAfter := w.CumulativeCarbon
	again := w.UpdateClimate(2)
	assert.Equal(t, carbonAfter, w.CumulativeCarbon)
	for _, e := range again {
		assert.NotContains(t, e, "permafrost")
		assert.NotContains(t, e, "dieback")
	}
}

func TestHubbertExtraction(t *testing.T) {
	cfg := testConfig()
	cfg.NumNations = 1
	cfg.ResourceDepletionRate = 0.2 // compress the full curve into the run
	w := buildWorld(t, cfg)

	n := w.Roster.All()[0]
	n.Technology = 25
	n.Resources[nation.ResourceOil] = 1000
	n.ResourcesInitial[nation.ResourceOil] = 1000
	n.ResourcesExtracted[nation.ResourceOil] = 0

	const steps = 200
	rates := make([]float64, steps)
	for i := 0; i < steps; i++ {
		before := n.ResourcesExtracted[nation.ResourceOil]
		w.extractResources()
		rates[i] = n.ResourcesExtracted[nation.ResourceOil] - before
	}

	peak := 0
	for i, r := range rates {
		if r > rates[peak] {
			peak = i
		}
	}

	// Production rises, peaks near 40% depletion, then declines. At
	// this depletion rate the peak lands between steps 30 and 50.
	assert.GreaterOrEqual(t, peak, 30, "production ramps up before peaking")
	assert.LessOrEqual(t, peak, 50, "production declines past the peak")

	assert.LessOrEqual(t, n.ResourcesExtracted[nation.ResourceOil], 1000.0,
		"cumulative extraction never exceeds the initial stock")
	assert.GreaterOrEqual(t, n.Resources[nation.ResourceOil], 0.0)
}

func TestNuclearWinterFiresOnce(t *testing.T) {
	cfg := testConfig()
	w := buildWorld(t, cfg)
	w.StepOnce()

	w.Wars.Detonations = 5
	healthBefore := make(map[int]float64)
	for _, n := range w.Roster.Living() {
		healthBefore[n.ID] = n.Health
	}

	w.StepOnce()
	assert.True(t, w.nuclearWinterActive)
	dropped := 0
	for _, n := range w.Roster.Living() {
		if before, ok := healthBefore[n.ID]; ok && n.Health < before-20 {
			dropped++
		}
	}
	assert.Greater(t, dropped, 0, "winter slashes health globally")

	// A later step must not re-apply the catastrophe.
	for _, n := range w.Roster.Living() {
		healthBefore[n.ID] = n.Health
	}
	w.StepOnce()
	for _, n := range w.Roster.Living() {
		assert.Greater(t, n.Health, healthBefore[n.ID]-20.0,
			"no second 40-point winter hit for %s", n.Name)
	}
}

func TestGlobalStats(t *testing.T) {
	cfg := testConfig()
	w := buildWorld(t, cfg)
	rec := w.StepOnce()

	var gdp, pop float64
	for _, s := range rec.Nations {
		gdp += s.GDP
		pop += s.Population
	}
	assert.InDelta(t, gdp, rec.Stats.GlobalGDP, gdp*1e-9)
	assert.InDelta(t, pop, rec.Stats.GlobalPopulation, pop*1e-9)
	assert.Equal(t, len(rec.Nations), rec.Stats.LivingNations)
}
