package nation

import "sort"

// Snapshot is the serialized per-step view of a nation, as written into
// the run trace.
type Snapshot struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Government    string             `json:"government_type"`
	Population    float64            `json:"population"`
	GDP           float64            `json:"gdp"`
	GDPPerCapita  float64            `json:"gdp_per_capita"`
	Technology    float64            `json:"technology"`
	Health        float64            `json:"health"`
	Stability     float64            `json:"stability"`
	Ideology      float64            `json:"ideology"`
	Military      MilitaryPower      `json:"military_power"`
	AtWar         bool               `json:"is_at_war"`
	WarExhaustion float64            `json:"war_exhaustion"`
	Resources     map[string]float64 `json:"resources"`
	Extracted     map[string]float64 `json:"resources_extracted"`
	Currency      Currency           `json:"currency"`
	DebtToGDP     float64            `json:"debt_to_gdp"`
	InflationRate float64            `json:"inflation_rate"`
	TradeBalance  float64            `json:"trade_balance"`
	Alliances     []int              `json:"alliances"`
	SanctionsFrom []int              `json:"sanctions_from"`
	Subjects      []int              `json:"colonial_subjects"`
}

// Snapshot captures the nation's current serializable state. Maps are
// copied so later mutation does not corrupt the trace.
func (n *Nation) Snapshot() Snapshot {
	return Snapshot{
		ID:            n.ID,
		Name:          n.Name,
		Government:    n.Government,
		Population:    n.Population,
		GDP:           n.GDP,
		GDPPerCapita:  n.GDPPerCapita(),
		Technology:    n.Technology,
		Health:        n.Health,
		Stability:     n.Stability,
		Ideology:      n.Ideology,
		Military:      n.Military,
		AtWar:         n.AtWar,
		WarExhaustion: n.WarExhaustion,
		Resources:     copyFloats(n.Resources),
		Extracted:     copyFloats(n.ResourcesExtracted),
		Currency:      *n.Currency,
		DebtToGDP:     max0(n.DebtToGDP),
		InflationRate: n.InflationRate,
		TradeBalance:  n.TradeBalance,
		Alliances:     keysOf(n.Alliances),
		SanctionsFrom: keysOf(n.SanctionsFrom),
		Subjects:      keysOf(n.ColonialSubjects),
	}
}

func copyFloats(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func keysOf(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
