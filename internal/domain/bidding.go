package domain

// BidParams son los supuestos del simulador de pujas CfD.
type BidParams struct {
	BidPrice    float64 // strike ofertado £/MWh
	MarketPrice float64 // precio de mercado esperado £/MWh
	PriceSD     float64 // desviación del precio simulado
	Generation  float64 // MWh/año
	Draws       int     // escenarios de precio
}

// Validate comprueba rangos.
func (p BidParams) Validate() error {
	switch {
	case p.Draws <= 0:
		return invalidf("draws must be > 0, got %d", p.Draws)
	case p.Draws > MaxSampleSize:
		return invalidf("draws exceed %d, got %d", MaxSampleSize, p.Draws)
	case p.PriceSD < 0:
		return invalidf("price_sd must be >= 0")
	case p.Generation < 0:
		return invalidf("generation must be >= 0")
	}
	return nil
}

// BidOutcome resume la distribución de ingresos de una puja.
type BidOutcome struct {
	Params         BidParams
	MeanRevenue    float64
	P10Revenue     float64
	P90Revenue     float64
	WinProbability float64 // 0 – 1, fracción de escenarios con precio <= puja
}
