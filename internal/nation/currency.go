package nation

import (
	"math"
	"math/rand"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
)

// Regime is a currency's exchange-rate arrangement.
type Regime string

const (
	RegimeFloating Regime = "floating"
	RegimeGold     Regime = "gold"
	RegimePegged   Regime = "pegged"
)

// Exchange rates are kept inside hard sanity bounds.
const (
	rateFloor = 0.001
	rateCeil  = 1000.0
)

// Currency models a national currency across three regimes. Gold and
// pegged regimes can break — irreversibly — to floating under
// balance-of-payments stress.
type Currency struct {
	Name         string  `json:"name"`
	ExchangeRate float64 `json:"exchange_rate"`
	InterestRate float64 `json:"interest_rate"`
	Regime       Regime  `json:"regime"`
	GoldReserves float64 `json:"gold_reserves,omitempty"` // gold regime only
	PegTarget    float64 `json:"peg_target,omitempty"`    // pegged regime only
}

// NewCurrency creates a currency at par under the given regime.
func NewCurrency(name string, regime Regime) *Currency {
	return &Currency{
		Name:         name,
		ExchangeRate: 1.0,
		InterestRate: 0.01,
		Regime:       regime,
	}
}

// UpdateExchangeRate advances the rate one step given the nation's
// balance of payments and its inflation differential against the world.
//
//   - gold: the nominal rate is fixed; reserves drain (or accrue) with
//     the BOP, and exhausting them forces a one-way break to floating
//     with a 30% devaluation.
//   - pegged: the rate holds with small noise; a large BOP imbalance
//     risks a speculative attack that breaks the peg (50% crash).
//   - floating: a geometric random walk with BOP/inflation drift and
//     configured volatility.
//
// The rate is always clamped to [0.001, 1000].
func (c *Currency) UpdateExchangeRate(bop, inflationDiff float64, cfg config.Config, rng *rand.Rand) {
	switch c.Regime {
	case RegimeGold:
		drain := math.Abs(bop) * 0.1
		if bop < 0 {
			c.GoldReserves -= drain
		} else {
			c.GoldReserves += drain
		}
		if c.GoldReserves < 0 {
			c.Regime = RegimeFloating
			c.ExchangeRate *= 0.7
			c.GoldReserves = 0
		}

	case RegimePegged:
		if math.Abs(bop) > 0.1 && rng.Float64() < 0.2 {
			c.Regime = RegimeFloating
			c.ExchangeRate *= 0.5
		} else {
			noise := rng.NormFloat64() * 0.001
			c.ExchangeRate *= 1 + noise
		}

	default: // floating
		drift := bop*0.1 - inflationDiff*0.5
		noise := rng.NormFloat64() * cfg.ExchangeRateVolatility
		c.ExchangeRate *= 1 + drift + noise
	}

	c.ExchangeRate = math.Max(rateFloor, math.Min(rateCeil, c.ExchangeRate))
}
