// Package config holds the simulation parameters and their yaml loading.
// Parameter defaults are calibrated against published macro data; see
// DESIGN.md for sources.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RealismLevel scales how strictly empirical calibrations are applied.
type RealismLevel string

const (
	RealismLow    RealismLevel = "low"
	RealismMedium RealismLevel = "medium"
	RealismHigh   RealismLevel = "high"
)

// Config is the global simulation configuration.
type Config struct {
	NumNations       int          `yaml:"num_nations"`
	NumSteps         int          `yaml:"num_steps"`
	Seed             int64        `yaml:"seed"`
	Realism          RealismLevel `yaml:"realism"`
	EnableGoldStd    bool         `yaml:"enable_gold_standard"`

	// World geography (hex grid on a torus).
	WorldWidth  int `yaml:"world_width"`
	WorldHeight int `yaml:"world_height"`

	// Population.
	PopMin              float64 `yaml:"pop_min"`
	PopMax              float64 `yaml:"pop_max"`
	PopGrowthBase       float64 `yaml:"pop_growth_base"`
	PopCarryingFactor   float64 `yaml:"pop_carrying_capacity_factor"`
	PopLogisticStrength float64 `yaml:"pop_logistic_strength"`

	// GDP (Solow-Swan inspired).
	GDPMin            float64 `yaml:"gdp_min"`
	GDPMax            float64 `yaml:"gdp_max"`
	CapitalShareAlpha float64 `yaml:"capital_share_alpha"`
	TFPGrowthBase     float64 `yaml:"tfp_growth_base"`
	DepreciationRate  float64 `yaml:"depreciation_rate"`

	// Technology (0-100 scale).
	TechMin              float64 `yaml:"tech_min"`
	TechMax              float64 `yaml:"tech_max"`
	TechRDEfficiency     float64 `yaml:"tech_rd_efficiency"`
	TechNuclearThreshold float64 `yaml:"tech_nuclear_threshold"`
	TechSpaceThreshold   float64 `yaml:"tech_space_threshold"`

	// Military.
	MilitaryGDPCost float64 `yaml:"military_gdp_cost"`

	// Health (0-100 scale).
	HealthMin           float64 `yaml:"health_min"`
	HealthMax           float64 `yaml:"health_max"`
	HealthGDPElasticity float64 `yaml:"health_gdp_elasticity"`
	HealthTechBonus     float64 `yaml:"health_tech_bonus"`

	// Currency and monetary policy.
	InflationTarget        float64 `yaml:"inflation_target"`
	ExchangeRateVolatility float64 `yaml:"exchange_rate_volatility"`

	// Resource extraction (Hubbert curve).
	ResourceDepletionRate float64 `yaml:"resource_depletion_rate"`

	// Climate (IPCC carbon-budget framing).
	ClimateGDPFactor      float64 `yaml:"climate_gdp_factor"`
	ClimateResourceFactor float64 `yaml:"climate_resource_factor"`
	CarbonBudget2C        float64 `yaml:"carbon_budget_2c"`
	ClimateTempScaling    float64 `yaml:"climate_temp_scaling"`

	// Conflict.
	WarBaseProbability float64 `yaml:"war_base_probability"`
	WarIdeologyFactor  float64 `yaml:"war_ideology_factor"`
	WarResourceFactor  float64 `yaml:"war_resource_factor"`

	// Events.
	EventDisasterProb float64 `yaml:"event_disaster_prob"`
	EventPandemicProb float64 `yaml:"event_pandemic_prob"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		NumNations:    20,
		NumSteps:      100,
		Seed:          42,
		Realism:       RealismMedium,
		EnableGoldStd: true,

		WorldWidth:  100,
		WorldHeight: 100,

		PopMin:              1e6,
		PopMax:              200e6,
		PopGrowthBase:       0.012,
		PopCarryingFactor:   1.5,
		PopLogisticStrength: 0.0001,

		GDPMin:            0.1e12,
		GDPMax:            20e12,
		CapitalShareAlpha: 0.33,
		TFPGrowthBase:     0.015,
		DepreciationRate:  0.05,

		TechMin:              10,
		TechMax:              60,
		TechRDEfficiency:     0.15,
		TechNuclearThreshold: 80,
		TechSpaceThreshold:   90,

		MilitaryGDPCost: 0.02,

		HealthMin:           30,
		HealthMax:           85,
		HealthGDPElasticity: 0.15,
		HealthTechBonus:     0.2,

		InflationTarget:        0.02,
		ExchangeRateVolatility: 0.08,

		ResourceDepletionRate: 0.02,

		ClimateGDPFactor:      2e-15,
		ClimateResourceFactor: 0.5,
		CarbonBudget2C:        3.7e12,
		ClimateTempScaling:    1.5,

		WarBaseProbability: 0.02,
		WarIdeologyFactor:  0.001,
		WarResourceFactor:  0.015,

		EventDisasterProb: 0.03,
		EventPandemicProb: 0.005,
	}
}

// Load reads a yaml config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects contract-violating parameters. Everything else is
// tolerated; numeric stability is handled defensively at the call sites.
func (c Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %dx%d", c.WorldWidth, c.WorldHeight)
	}
	if c.NumNations < 0 {
		return fmt.Errorf("num_nations must be non-negative, got %d", c.NumNations)
	}
	if c.CapitalShareAlpha <= 0 || c.CapitalShareAlpha >= 1 {
		return fmt.Errorf("capital_share_alpha must lie in (0,1), got %g", c.CapitalShareAlpha)
	}
	if c.GDPMin <= 0 || c.GDPMax < c.GDPMin {
		return fmt.Errorf("gdp bounds invalid: [%g, %g]", c.GDPMin, c.GDPMax)
	}
	switch c.Realism {
	case RealismLow, RealismMedium, RealismHigh:
	default:
		return fmt.Errorf("realism must be low/medium/high, got %q", c.Realism)
	}
	return nil
}

// RealismMultiplier returns the parameter strictness multiplier for the
// configured realism level.
func (c Config) RealismMultiplier() float64 {
	switch c.Realism {
	case RealismLow:
		return 0.5
	case RealismHigh:
		return 1.0
	default:
		return 0.75
	}
}

// GovernmentProfile carries the per-government-type calibrations.
type GovernmentProfile struct {
	StabilityBase float64
	GrowthBonus   float64
	WarReluctance float64
}

// GovernmentTypes maps each government form to its profile (Polity
// dataset inspired).
var GovernmentTypes = map[string]GovernmentProfile{
	"Democracy":   {StabilityBase: 65, GrowthBonus: 0.01, WarReluctance: 0.7},
	"Autocracy":   {StabilityBase: 50, GrowthBonus: 0.005, WarReluctance: 0.4},
	"Theocracy":   {StabilityBase: 55, GrowthBonus: 0.003, WarReluctance: 0.5},
	"Technocracy": {StabilityBase: 70, GrowthBonus: 0.015, WarReluctance: 0.6},
	"Anarchy":     {StabilityBase: 20, GrowthBonus: -0.01, WarReluctance: 0.2},
}
