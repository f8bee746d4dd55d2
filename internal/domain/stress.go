package domain

// StressParams define un shock de precio sobre las tres estrategias base.
type StressParams struct {
	Generation  float64 // MWh/año
	BasePrice   float64 // £/MWh
	Strike      float64 // £/MWh (CfD)
	ShockPct    float64 // -20 = caída del 20%
	PPADiscount float64 // £/MWh descontados al precio de mercado en el PPA
}

// StressRow compara una estrategia antes y después del shock.
type StressRow struct {
	Strategy       string
	BaseRevenue    float64
	ShockedRevenue float64
	Delta          float64
	DeltaPct       float64
}

// StressResult es el resultado completo del stress test.
type StressResult struct {
	ShockPct     float64
	ShockedPrice float64
	Rows         []StressRow
	Best         string
	Worst        string
}

// StressTest aplica el shock. El CfD cobra el strike y no se ve afectado;
// PPA y Merchant siguen al precio de mercado.
func StressTest(p StressParams) (StressResult, error) {
	if p.Generation < 0 {
		return StressResult{}, invalidf("generation must be >= 0")
	}
	if p.ShockPct < -100 {
		return StressResult{}, invalidf("shock_pct must be >= -100, got %v", p.ShockPct)
	}

	shocked := p.BasePrice * (1 + p.ShockPct/100)
	revenue := func(price float64) map[string]float64 {
		return map[string]float64{
			StrategyCfD:      p.Strike * p.Generation,
			StrategyPPA:      (price - p.PPADiscount) * p.Generation,
			StrategyMerchant: price * p.Generation,
		}
	}
	base, shock := revenue(p.BasePrice), revenue(shocked)

	res := StressResult{ShockPct: p.ShockPct, ShockedPrice: shocked}
	for i, name := range []string{StrategyCfD, StrategyPPA, StrategyMerchant} {
		row := StressRow{
			Strategy:       name,
			BaseRevenue:    base[name],
			ShockedRevenue: shock[name],
			Delta:          shock[name] - base[name],
		}
		if row.BaseRevenue != 0 {
			row.DeltaPct = 100 * row.Delta / row.BaseRevenue
		}
		res.Rows = append(res.Rows, row)

		if i == 0 || row.ShockedRevenue > shock[res.Best] {
			res.Best = name
		}
		if i == 0 || row.ShockedRevenue < shock[res.Worst] {
			res.Worst = name
		}
	}
	return res, nil
}
