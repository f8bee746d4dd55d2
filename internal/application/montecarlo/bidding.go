package montecarlo

import (
	"sort"

	"github.com/alejandrodnm/offtake/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// SimulateBid simula el resultado de ofertar un strike en una subasta CfD.
//
// Por escenario: precio ~ Normal(MarketPrice, PriceSD);
//
//	revenue = max(bid - price, 0) × generation
//	win     = price <= bid
func (s *Simulator) SimulateBid(p domain.BidParams, seed uint64) (domain.BidOutcome, error) {
	if err := p.Validate(); err != nil {
		return domain.BidOutcome{}, err
	}

	prices := make([]float64, p.Draws)
	drawBatch(prices, domain.StrategyProfile{Name: "price", MeanValue: p.MarketPrice, Spread: p.PriceSD}, NewSource(seed))

	revenue := make([]float64, p.Draws)
	wins := 0
	for i, price := range prices {
		if price <= p.BidPrice {
			wins++
		}
		if r := (p.BidPrice - price) * p.Generation; r > 0 {
			revenue[i] = r
		}
	}

	out := domain.BidOutcome{
		Params:         p,
		MeanRevenue:    stat.Mean(revenue, nil),
		WinProbability: float64(wins) / float64(p.Draws),
	}
	sort.Float64s(revenue)
	out.P10Revenue = stat.Quantile(0.10, stat.LinInterp, revenue, nil)
	out.P90Revenue = stat.Quantile(0.90, stat.LinInterp, revenue, nil)

	if s.observer != nil {
		s.observer.ObserveBid(p.Draws)
	}
	return out, nil
}
