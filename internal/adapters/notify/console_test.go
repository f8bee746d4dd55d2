package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/offtake/internal/adapters/notify"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSweep() domain.Sweep {
	profiles := domain.DefaultProfiles()
	names := domain.ProfileNames(profiles)

	run1 := domain.NewSimulationRun(100, names)
	run1.Counts[domain.StrategyCfD] = 61
	run1.Counts[domain.StrategyPPA] = 4
	run1.Counts[domain.StrategyMerchant] = 35
	run1.MeanValues[domain.StrategyCfD] = 80.12

	run2 := domain.NewSimulationRun(200, names)
	run2.Counts[domain.StrategyCfD] = 129
	run2.Counts[domain.StrategyPPA] = 7
	run2.Counts[domain.StrategyMerchant] = 64
	run2.MeanValues[domain.StrategyMerchant] = 74.5

	return domain.NewSweep(7, profiles, domain.ConvergenceSeries{run1, run2})
}

func TestConsole_NotifySweep_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	sweep := makeSweep()
	require.NoError(t, n.NotifySweep(context.Background(), sweep))

	out := buf.String()
	assert.Contains(t, out, sweep.ID[:8])
	assert.Contains(t, out, "129 (64.5%)")
	assert.Contains(t, out, "61 (61.0%)")
	assert.Contains(t, out, "CfD selected in 64.5% of 200 trials")
}

func TestConsole_NotifySweep_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.NotifySweep(context.Background(), makeSweep()))

	out := buf.String()
	assert.Contains(t, out, "2 steps → CfD 64.5% (n=200)")
	assert.Contains(t, out, "PPA:7")
	assert.Contains(t, out, "Merchant:64")
}

func TestConsole_NotifySweep_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.NotifySweep(context.Background(), domain.Sweep{}))
	assert.Contains(t, buf.String(), "empty sweep")
}

func TestConsole_PrintRun(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintRun(makeSweep().Series[0])

	out := buf.String()
	assert.Contains(t, out, "SIMULATION (n=100)")
	assert.Contains(t, out, "61.0%")
	assert.Contains(t, out, "80.12")
	assert.Contains(t, out, "Dominant: CfD")
}

func TestConsole_PrintRevenue(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintRevenue(makeSweep())

	out := buf.String()
	assert.Contains(t, out, "REVENUE PROJECTION")
	assert.Contains(t, out, "74.50")
	assert.Contains(t, out, "spread 10.00")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintHistory(nil)
	assert.Contains(t, buf.String(), "No archived sweeps")

	buf.Reset()
	sum := makeSweep().Summary()
	sum.CreatedAt = time.Now()
	n.PrintHistory([]domain.SweepSummary{sum})
	assert.Contains(t, buf.String(), sum.ID)
	assert.Contains(t, buf.String(), "64.5%")
}

func TestConsole_PrintBid(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintBid(domain.BidOutcome{
		Params:         domain.BidParams{BidPrice: 70, MarketPrice: 60, PriceSD: 8, Generation: 1000, Draws: 500},
		MeanRevenue:    10123.456,
		P10Revenue:     0,
		P90Revenue:     20000,
		WinProbability: 0.89,
	})

	out := buf.String()
	assert.Contains(t, out, "£70.00/MWh")
	assert.Contains(t, out, "£10123.46")
	assert.Contains(t, out, "89.0%")
}

func TestConsole_PrintStress(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	res, err := domain.StressTest(domain.StressParams{Generation: 100, BasePrice: 50, Strike: 60, ShockPct: -20, PPADiscount: 2})
	require.NoError(t, err)
	n.PrintStress(res)

	out := buf.String()
	assert.Contains(t, out, "shock -20.0% → £40.00/MWh")
	assert.Contains(t, out, "Best under shock: CfD")
	assert.Contains(t, out, "-20.0%")
}

func TestConsole_PrintCashflows(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	a, err := domain.AnalyzeCashflows(0.1, []float64{-100, 110})
	require.NoError(t, err)
	n.PrintCashflows(a, []string{"2025"})

	out := buf.String()
	assert.Contains(t, out, "rate 10.00%")
	assert.Contains(t, out, "2025")
	assert.Contains(t, out, "IRR: 10.00%")

	buf.Reset()
	a, err = domain.AnalyzeCashflows(0.1, []float64{1, 1})
	require.NoError(t, err)
	n.PrintCashflows(a, nil)
	assert.Contains(t, buf.String(), "IRR: n/a")
}

func TestConsole_PrintROI(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintROI([]domain.ROIResult{{Label: "CfD", Revenue: 12000, Cost: 2000, ROI: 5}})
	assert.Contains(t, buf.String(), "500.0%")
}

func TestConsole_PrintMarket(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintMarket(domain.MarketReport{
		Snapshot:     domain.MarketSnapshot{Records: 3, MarketPrice: 50, StrikePrice: 60, Generation: 100},
		Profiles:     domain.DefaultProfiles(),
		Spreads:      []domain.TechnologySpread{{Technology: "Solar PV", SpreadVsMarket: -10, SpreadVsIMRP: -11}},
		Technologies: []domain.TechnologySummary{{Technology: "Solar PV", SubsidyPerMWh: 12.34}},
		Cashflows:    []domain.YearlyCashflow{{Year: 2031, Payments: 5}},
		Finance:      domain.CashflowAnalysis{Rate: 0.06, Cashflows: []float64{5}, Discounted: []float64{5}, NPV: 5},
		References:   []domain.ReferencePrice{{ReferenceType: "IMRP", AvgStrike: 88.8}},
	})

	out := buf.String()
	assert.Contains(t, out, "3 records")
	assert.Contains(t, out, "Solar PV")
	assert.Contains(t, out, "12.34")
	assert.Contains(t, out, "2031")
	assert.Contains(t, out, "88.80")
	assert.Contains(t, out, "NPV: 5.00")
}
