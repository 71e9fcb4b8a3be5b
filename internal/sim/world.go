// Package sim ties the world together and runs the per-step protocol:
// economy, investment, diplomacy, demographics, war, climate, resource
// extraction, and migration, in a fixed phase order over the currently
// living nations.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/samber/lo"

	"github.com/SurfitWasTaken/GeoSim/internal/combat"
	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/events"
	"github.com/SurfitWasTaken/GeoSim/internal/geo"
	"github.com/SurfitWasTaken/GeoSim/internal/nation"
)

// Economy is the international-economy collaborator consumed by the
// orchestrator.
type Economy interface {
	UpdateTradeNetwork(roster *nation.Roster, grid *geo.Grid)
	TradeMultiplier(n *nation.Nation) float64
	ProcessFDIFlows(roster *nation.Roster)
	ProcessColonialRelations(roster *nation.Roster)
	UpdateExchangeRates(roster *nation.Roster)
	SimulateDebtCrisis(n *nation.Nation, roster *nation.Roster) bool
	TradePartners(nationID int) []int
	GlobalTradeVolume() float64
	DropNation(id int)
}

// EventSource produces stochastic world events each step. The partner
// lookup lets contagion follow trade without coupling to the economy.
type EventSource interface {
	ProcessEvents(roster *nation.Roster, trade events.TradeLinks, step int, grid *geo.Grid) []string
}

// Advisor is a per-step collaborator (politics, council, espionage)
// that mutates nation fields but never territory or combat state.
type Advisor interface {
	Update(roster *nation.Roster, step int) []string
}

// GlobalStats is the aggregate view included in every step record.
type GlobalStats struct {
	LivingNations      int     `json:"living_nations"`
	GlobalGDP          float64 `json:"global_gdp"`
	GlobalPopulation   float64 `json:"global_population"`
	ClimateIndex       float64 `json:"climate_index"`
	NuclearDetonations int     `json:"nuclear_detonations"`
	GlobalTradeVolume  float64 `json:"global_trade_volume"`
}

// Record is the per-step output: the durable, replayable trace any
// downstream consumer relies on.
type Record struct {
	Step       int               `json:"step"`
	Events     []string          `json:"events"`
	Stats      GlobalStats       `json:"global_stats"`
	Nations    []nation.Snapshot `json:"nations"`
	ActiveWars []combat.War      `json:"active_wars"`
}

// World owns the nation roster, the grid, the war system, and the
// external collaborators, and executes the step protocol.
type World struct {
	cfg config.Config
	rng *rand.Rand

	Grid   *geo.Grid
	Roster *nation.Roster
	Wars   *combat.System

	economy  Economy
	eventSrc EventSource
	advisors []Advisor

	Step int

	// Global climate state.
	ClimateIndex     float64
	CumulativeCarbon float64
	TippingPoints    map[string]struct{}

	nuclearWinterActive bool
	reaped              map[int]struct{}
}

// NewWorld builds a fully initialized world: terrain, nations with
// territory and resources. All collaborators must draw from the same
// rng as the world itself; the run is deterministic for a given seed
// and configuration only when every subsystem shares one stream.
func NewWorld(cfg config.Config, rng *rand.Rand, economy Economy, eventSrc EventSource, advisors ...Advisor) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	grid, err := geo.NewGrid(cfg.WorldWidth, cfg.WorldHeight)
	if err != nil {
		return nil, err
	}
	grid.GenerateTerrain(cfg.Seed)

	w := &World{
		cfg:           cfg,
		rng:           rng,
		Grid:          grid,
		Roster:        nation.NewRoster(),
		Wars:          combat.NewSystem(cfg, rng),
		economy:       economy,
		eventSrc:      eventSrc,
		advisors:      advisors,
		TippingPoints: make(map[string]struct{}),
		reaped:        make(map[int]struct{}),
	}

	spawner := nation.NewSpawner(cfg, rng)
	for i := 0; i < cfg.NumNations; i++ {
		n := spawner.Spawn(i)
		if err := w.Roster.Add(n); err != nil {
			return nil, err
		}
	}
	w.placeNations()

	slog.Info("world initialized",
		"nations", w.Roster.Len(),
		"grid", fmt.Sprintf("%dx%d", cfg.WorldWidth, cfg.WorldHeight),
		"seed", cfg.Seed,
	)
	return w, nil
}

// placeNations claims starting territory for every nation, assigns
// terrain-derived resources, and records coastal status.
func (w *World) placeNations() {
	for _, n := range w.Roster.All() {
		for attempts := 0; attempts < 100; attempts++ {
			x := w.rng.Intn(w.Grid.Width)
			y := w.rng.Intn(w.Grid.Height)
			if w.Grid.OwnerAt(x, y) != geo.NoOwner || w.Grid.TerrainAt(x, y) == geo.Ocean {
				continue
			}

			n.Territory = w.claimTiles(x, y, 10, n.ID)
			w.assignResources(n)

			// Hubbert baselines.
			for res, amount := range n.Resources {
				n.ResourcesInitial[res] = amount
				n.ResourcesExtracted[res] = 0
			}
			break
		}
	}

	// Coastal status: any owned tile adjacent to ocean.
	for _, n := range w.Roster.All() {
		n.IsCoastal = false
		for _, t := range n.Territory {
			for _, nb := range w.Grid.Neighbors(t.X, t.Y) {
				if w.Grid.TerrainAt(nb.X, nb.Y) == geo.Ocean {
					n.IsCoastal = true
					break
				}
			}
			if n.IsCoastal {
				break
			}
		}
	}
}

// claimTiles grows a contiguous territory of up to count land tiles by
// BFS from the start cell.
func (w *World) claimTiles(startX, startY, count, nationID int) []geo.Coord {
	claimed := []geo.Coord{{X: startX, Y: startY}}
	w.Grid.SetOwner(startX, startY, nationID)

	queue := []geo.Coord{{X: startX, Y: startY}}
	for len(claimed) < count && len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		neighbors := w.Grid.Neighbors(curr.X, curr.Y)
		w.rng.Shuffle(len(neighbors), func(i, j int) {
			neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
		})

		for _, nb := range neighbors {
			if w.Grid.OwnerAt(nb.X, nb.Y) != geo.NoOwner || w.Grid.TerrainAt(nb.X, nb.Y) == geo.Ocean {
				continue
			}
			w.Grid.SetOwner(nb.X, nb.Y, nationID)
			claimed = append(claimed, nb)
			queue = append(queue, nb)
			if len(claimed) >= count {
				break
			}
		}
	}
	return claimed
}

// assignResources endows a nation based on the terrain it holds.
func (w *World) assignResources(n *nation.Nation) {
	n.Resources = map[string]float64{
		nation.ResourceOil:       0,
		nation.ResourceRareEarth: 0,
		nation.ResourceFarmland:  0,
		nation.ResourceWater:     0,
	}

	for _, t := range n.Territory {
		switch w.Grid.TerrainAt(t.X, t.Y) {
		case geo.Plains:
			n.Resources[nation.ResourceFarmland] += w.uniform(5, 15)
			n.Resources[nation.ResourceWater] += w.uniform(5, 10)
		case geo.Forest:
			n.Resources[nation.ResourceFarmland] += w.uniform(2, 8)
			n.Resources[nation.ResourceWater] += w.uniform(8, 12)
		case geo.Desert:
			n.Resources[nation.ResourceOil] += w.uniform(0, 20)
		case geo.Mountain:
			n.Resources[nation.ResourceRareEarth] += w.uniform(0, 20)
			n.Resources[nation.ResourceWater] += w.uniform(5, 15)
		}
	}
}

func (w *World) uniform(a, b float64) float64 {
	return a + w.rng.Float64()*(b-a)
}

// LivingStats aggregates the global statistics over living nations.
func (w *World) LivingStats() GlobalStats {
	living := w.Roster.Living()
	return GlobalStats{
		LivingNations: len(living),
		GlobalGDP: lo.SumBy(living, func(n *nation.Nation) float64 {
			return n.GDP
		}),
		GlobalPopulation: lo.SumBy(living, func(n *nation.Nation) float64 {
			return n.Population
		}),
		ClimateIndex:       w.ClimateIndex,
		NuclearDetonations: w.Wars.Detonations,
		GlobalTradeVolume:  w.economy.GlobalTradeVolume(),
	}
}
