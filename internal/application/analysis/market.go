package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/alejandrodnm/offtake/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// MarketSnapshot calcula las medias de precio de mercado, strike y generación.
func MarketSnapshot(records []domain.MarketRecord) domain.MarketSnapshot {
	if len(records) == 0 {
		return domain.MarketSnapshot{}
	}
	return domain.MarketSnapshot{
		Records:     len(records),
		MarketPrice: stat.Mean(Column(records, func(r domain.MarketRecord) float64 { return r.MarketPrice }), nil),
		StrikePrice: stat.Mean(Column(records, func(r domain.MarketRecord) float64 { return r.StrikePrice }), nil),
		Generation:  stat.Mean(Column(records, func(r domain.MarketRecord) float64 { return r.Generation }), nil),
	}
}

// ProfilesFromMarket deriva los perfiles CfD / PPA / Merchant del dataset.
//
// Cada trial promedia draws precios Normal(price, volatility), así que el
// precio medio de un trial tiene desviación volatility/√draws:
//
//	CfD      = strike × gen                       (sin exposición a precio)
//	PPA      = (price - ppaDiscount) × gen ± σ × gen
//	Merchant = price × gen                ± σ × gen
func ProfilesFromMarket(s domain.MarketSnapshot, volatility float64, draws int, ppaDiscount float64) ([]domain.StrategyProfile, error) {
	if s.Records == 0 {
		return nil, fmt.Errorf("analysis.ProfilesFromMarket: empty dataset: %w", domain.ErrInvalidArgument)
	}
	if volatility < 0 || draws <= 0 {
		return nil, fmt.Errorf("analysis.ProfilesFromMarket: volatility=%v draws=%d: %w", volatility, draws, domain.ErrInvalidArgument)
	}
	sigma := volatility / math.Sqrt(float64(draws)) * s.Generation
	profiles := []domain.StrategyProfile{
		{Name: domain.StrategyCfD, MeanValue: s.StrikePrice * s.Generation, Spread: 0},
		{Name: domain.StrategyPPA, MeanValue: (s.MarketPrice - ppaDiscount) * s.Generation, Spread: math.Abs(sigma)},
		{Name: domain.StrategyMerchant, MeanValue: s.MarketPrice * s.Generation, Spread: math.Abs(sigma)},
	}
	return profiles, domain.ValidateProfiles(profiles)
}

// SpreadsByTechnology devuelve el spread medio strike vs mercado y vs IMRP por
// tecnología, ordenado ascendente por spread vs mercado.
func SpreadsByTechnology(records []domain.MarketRecord) []domain.TechnologySpread {
	type acc struct {
		market, imrp float64
		n            int
	}
	byTech := map[string]*acc{}
	for _, r := range records {
		a, ok := byTech[r.Technology]
		if !ok {
			a = &acc{}
			byTech[r.Technology] = a
		}
		a.market += r.SpreadVsMarket
		a.imrp += r.SpreadVsIMRP
		a.n++
	}

	out := make([]domain.TechnologySpread, 0, len(byTech))
	for tech, a := range byTech {
		out = append(out, domain.TechnologySpread{
			Technology:     tech,
			SpreadVsMarket: a.market / float64(a.n),
			SpreadVsIMRP:   a.imrp / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SpreadVsMarket != out[j].SpreadVsMarket {
			return out[i].SpreadVsMarket < out[j].SpreadVsMarket
		}
		return out[i].Technology < out[j].Technology
	})
	return out
}

// YearlySpreads devuelve el spread medio strike vs mercado por (año, tecnología).
func YearlySpreads(records []domain.MarketRecord) []domain.YearlySpread {
	type key struct {
		year int
		tech string
	}
	sums := map[key]float64{}
	counts := map[key]int{}
	for _, r := range records {
		k := key{r.Year(), r.Technology}
		sums[k] += r.SpreadVsMarket
		counts[k]++
	}

	out := make([]domain.YearlySpread, 0, len(sums))
	for k, sum := range sums {
		out = append(out, domain.YearlySpread{
			Year:           k.year,
			Technology:     k.tech,
			SpreadVsMarket: sum / float64(counts[k]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Technology < out[j].Technology
	})
	return out
}

// TechnologySummary agrega por tecnología y calcula las métricas de
// eficiencia del subsidio. Ordenado ascendente por £/MWh.
func TechnologySummary(records []domain.MarketRecord) []domain.TechnologySummary {
	byTech := map[string]*domain.TechnologySummary{}
	for _, r := range records {
		s, ok := byTech[r.Technology]
		if !ok {
			s = &domain.TechnologySummary{Technology: r.Technology}
			byTech[r.Technology] = s
		}
		s.Generation += r.Generation
		s.Payments += r.Payments
		s.AvoidedGHG += r.AvoidedGHG
	}

	out := make([]domain.TechnologySummary, 0, len(byTech))
	for _, s := range byTech {
		s.GHGPerMWh = ratio(s.AvoidedGHG, s.Generation)
		s.SubsidyPerMWh = ratio(s.Payments, s.Generation)
		s.SubsidyPerTCO2 = ratio(s.Payments, s.AvoidedGHG)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubsidyPerMWh != out[j].SubsidyPerMWh {
			return out[i].SubsidyPerMWh < out[j].SubsidyPerMWh
		}
		return out[i].Technology < out[j].Technology
	})
	return out
}

// YearlyCashflows suma los pagos CfD por año de liquidación, ascendente.
func YearlyCashflows(records []domain.MarketRecord) []domain.YearlyCashflow {
	byYear := map[int]float64{}
	for _, r := range records {
		byYear[r.Year()] += r.Payments
	}
	out := make([]domain.YearlyCashflow, 0, len(byYear))
	for year, total := range byYear {
		out = append(out, domain.YearlyCashflow{Year: year, Payments: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// CashflowValues devuelve solo los importes, en orden de año.
func CashflowValues(cfs []domain.YearlyCashflow) []float64 {
	out := make([]float64, len(cfs))
	for i, cf := range cfs {
		out[i] = cf.Payments
	}
	return out
}

// AverageStrikeByReference devuelve el strike medio por tipo de referencia,
// ordenado por nombre.
func AverageStrikeByReference(records []domain.MarketRecord) []domain.ReferencePrice {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		sums[r.ReferenceType] += r.StrikePrice
		counts[r.ReferenceType]++
	}
	out := make([]domain.ReferencePrice, 0, len(sums))
	for ref, sum := range sums {
		out = append(out, domain.ReferencePrice{ReferenceType: ref, AvgStrike: sum / float64(counts[ref])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceType < out[j].ReferenceType })
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
