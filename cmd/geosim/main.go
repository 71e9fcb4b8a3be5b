// Command geosim runs the stochastic geopolitical world simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/diplomacy"
	"github.com/SurfitWasTaken/GeoSim/internal/econ"
	"github.com/SurfitWasTaken/GeoSim/internal/events"
	"github.com/SurfitWasTaken/GeoSim/internal/persistence"
	"github.com/SurfitWasTaken/GeoSim/internal/sim"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to yaml config (defaults apply when empty)")
		dbPath     = flag.String("db", "data/geosim.db", "path to the trace database")
		steps      = flag.Int("steps", 0, "override the configured number of steps")
		seed       = flag.Int64("seed", 0, "override the configured seed")
		verbose    = flag.Bool("verbose", false, "log every world event")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *steps > 0 {
		cfg.NumSteps = *steps
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// One stream drives everything; seed plus config fully determine
	// the run.
	rng := rand.New(rand.NewSource(cfg.Seed))
	economy := econ.New(cfg, rng)
	eventSrc := events.New(cfg, rng)

	world, err := sim.NewWorld(cfg, rng, economy, eventSrc,
		diplomacy.NewPolitics(cfg, rng),
		diplomacy.NewCouncil(cfg, rng),
		diplomacy.NewAgency(cfg, rng),
	)
	if err != nil {
		slog.Error("failed to build world", "error", err)
		os.Exit(1)
	}

	runID, err := db.BeginRun(cfg)
	if err != nil {
		slog.Error("failed to begin run", "error", err)
		os.Exit(1)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("\nSimulating %d nations over %d steps (seed %d).\n\n",
		cfg.NumNations, cfg.NumSteps, cfg.Seed)

	var last sim.Record
	for i := 0; i < cfg.NumSteps; i++ {
		select {
		case sig := <-stopCh:
			slog.Info("received signal, stopping run", "signal", sig)
			i = cfg.NumSteps
			continue
		default:
		}

		last = world.StepOnce()
		if err := db.SaveRecord(runID, last); err != nil {
			slog.Error("failed to save record", "step", last.Step, "error", err)
			os.Exit(1)
		}

		if *verbose {
			for _, e := range last.Events {
				slog.Info("event", "step", last.Step, "what", e)
			}
		}

		if last.Step%10 == 0 || last.Step == cfg.NumSteps {
			slog.Info("progress",
				"step", last.Step,
				"nations", last.Stats.LivingNations,
				"gdp", humanize.SIWithDigits(last.Stats.GlobalGDP, 2, ""),
				"population", humanize.SIWithDigits(last.Stats.GlobalPopulation, 2, ""),
				"warming", fmt.Sprintf("%.2fC", last.Stats.ClimateIndex),
				"wars", len(last.ActiveWars),
			)
		}
	}

	fmt.Printf("\nRun %s complete after %d steps.\n", runID, last.Step)
	fmt.Printf("  Surviving nations:  %d of %d\n", last.Stats.LivingNations, cfg.NumNations)
	fmt.Printf("  Global GDP:         $%s\n", humanize.SIWithDigits(last.Stats.GlobalGDP, 2, ""))
	fmt.Printf("  Global population:  %s\n", humanize.SIWithDigits(last.Stats.GlobalPopulation, 2, ""))
	fmt.Printf("  Warming:            %.2fC over pre-industrial\n", last.Stats.ClimateIndex)
	fmt.Printf("  Nuclear detonations: %d\n", last.Stats.NuclearDetonations)
	fmt.Printf("  Wars fought:        %d\n", len(world.Wars.History))

	if len(last.Nations) > 0 {
		richest, techLeader := last.Nations[0], last.Nations[0]
		for _, s := range last.Nations[1:] {
			if s.GDP > richest.GDP {
				richest = s
			}
			if s.Technology > techLeader.Technology {
				techLeader = s
			}
		}
		fmt.Printf("  Wealthiest:         %s ($%s)\n", richest.Name, humanize.SIWithDigits(richest.GDP, 2, ""))
		fmt.Printf("  Technology leader:  %s (%.1f)\n", techLeader.Name, techLeader.Technology)
	}
}
