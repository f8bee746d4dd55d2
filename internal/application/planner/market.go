package planner

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/offtake/internal/application/analysis"
	"github.com/alejandrodnm/offtake/internal/domain"
)

// MarketReport carga el dataset y calcula todos los análisis.
func (s *Service) MarketReport(ctx context.Context) (domain.MarketReport, error) {
	records, err := s.loadRecords(ctx)
	if err != nil {
		return domain.MarketReport{}, fmt.Errorf("planner.MarketReport: %w", err)
	}

	rep := domain.MarketReport{
		Snapshot:      analysis.MarketSnapshot(records),
		Columns:       analysis.DescribeColumns(records),
		Spreads:       analysis.SpreadsByTechnology(records),
		YearlySpreads: analysis.YearlySpreads(records),
		Technologies:  analysis.TechnologySummary(records),
		Cashflows:     analysis.YearlyCashflows(records),
		References:    analysis.AverageStrikeByReference(records),
	}

	m := s.cfg.Market
	if rep.Profiles, err = analysis.ProfilesFromMarket(rep.Snapshot, m.Volatility, m.PriceDraws, m.PPADiscount); err != nil {
		return domain.MarketReport{}, fmt.Errorf("planner.MarketReport: %w", err)
	}
	if rep.Finance, err = domain.AnalyzeCashflows(s.cfg.DiscountRate, analysis.CashflowValues(rep.Cashflows)); err != nil {
		return domain.MarketReport{}, fmt.Errorf("planner.MarketReport: %w", err)
	}
	return rep, nil
}

// StrategyROI calcula el ROI de vida útil de cada estrategia con precios del
// dataset: CfD cobra el strike medio, PPA el precio menos descuento y
// Merchant el precio de mercado.
func (s *Service) StrategyROI(ctx context.Context, p domain.ROIParams) ([]domain.ROIResult, error) {
	records, err := s.loadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("planner.StrategyROI: %w", err)
	}
	snap := analysis.MarketSnapshot(records)
	return StrategyROIAt(p, snap.StrikePrice, snap.MarketPrice, s.cfg.Market.PPADiscount, snap.Generation)
}

// StrategyROIAt calcula el ROI por estrategia con precios explícitos.
func StrategyROIAt(p domain.ROIParams, strike, marketPrice, ppaDiscount, annualGen float64) ([]domain.ROIResult, error) {
	prices := []struct {
		label string
		price float64
	}{
		{domain.StrategyCfD, strike},
		{domain.StrategyPPA, marketPrice - ppaDiscount},
		{domain.StrategyMerchant, marketPrice},
	}
	out := make([]domain.ROIResult, 0, len(prices))
	for _, sp := range prices {
		res, err := domain.LifetimeROI(sp.label, p, sp.price, annualGen)
		if err != nil {
			return nil, fmt.Errorf("planner.StrategyROI: %s: %w", sp.label, err)
		}
		out = append(out, res)
	}
	return out, nil
}
