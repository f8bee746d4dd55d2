package notify

import (
	"fmt"

	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintBid imprime el resultado del simulador de pujas CfD.
func (c *Console) PrintBid(o domain.BidOutcome) {
	p := o.Params
	fmt.Fprintln(c.out, "\n=== CfD BID SIMULATION ===")
	fmt.Fprintf(c.out, "  Bid:        £%.2f/MWh\n", p.BidPrice)
	fmt.Fprintf(c.out, "  Market:     £%.2f/MWh ± %.2f\n", p.MarketPrice, p.PriceSD)
	fmt.Fprintf(c.out, "  Generation: %.0f MWh  (%d scenarios)\n", p.Generation, p.Draws)
	fmt.Fprintln(c.out, "  ─────────────────────────────────────────────")
	fmt.Fprintf(c.out, "  Mean revenue: £%.2f\n", o.MeanRevenue)
	fmt.Fprintf(c.out, "  P10 / P90:    £%.2f / £%.2f\n", o.P10Revenue, o.P90Revenue)
	fmt.Fprintf(c.out, "  Win prob:     %.1f%%\n\n", 100*o.WinProbability)
}

// PrintStress imprime la tabla base vs shock por estrategia.
func (c *Console) PrintStress(r domain.StressResult) {
	fmt.Fprintf(c.out, "\n=== PRICE STRESS TEST (shock %+.1f%% → £%.2f/MWh) ===\n", r.ShockPct, r.ShockedPrice)

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Base", "Shocked", "Delta", "Delta %")
	for _, row := range r.Rows {
		table.Append(
			row.Strategy,
			fmt.Sprintf("£%.2f", row.BaseRevenue),
			fmt.Sprintf("£%.2f", row.ShockedRevenue),
			fmt.Sprintf("£%+.2f", row.Delta),
			fmt.Sprintf("%+.1f%%", row.DeltaPct),
		)
	}
	table.Render()
	fmt.Fprintf(c.out, "  Best under shock: %s | Worst: %s\n\n", r.Best, r.Worst)
}

// PrintCashflows imprime cashflows, su valor descontado, NPV e IRR.
// labels es opcional (años); si falta se usa t=0..n.
func (c *Console) PrintCashflows(a domain.CashflowAnalysis, labels []string) {
	fmt.Fprintf(c.out, "\n=== CASHFLOW ANALYSIS (rate %.2f%%) ===\n", 100*a.Rate)

	table := tablewriter.NewWriter(c.out)
	table.Header("t", "Cashflow", "Discounted")
	for i, cf := range a.Cashflows {
		label := fmt.Sprintf("%d", i)
		if i < len(labels) {
			label = labels[i]
		}
		table.Append(label, fmt.Sprintf("%.2f", cf), fmt.Sprintf("%.2f", a.Discounted[i]))
	}
	table.Render()

	fmt.Fprintf(c.out, "  NPV: %.2f\n", a.NPV)
	if a.HasIRR {
		fmt.Fprintf(c.out, "  IRR: %.2f%%\n\n", 100*a.IRR)
	} else {
		fmt.Fprintln(c.out, "  IRR: n/a (no sign change)")
		fmt.Fprintln(c.out)
	}
}

// PrintROI imprime el ROI de vida útil por estrategia.
func (c *Console) PrintROI(results []domain.ROIResult) {
	fmt.Fprintln(c.out, "\n=== LIFETIME ROI ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Revenue", "Cost", "ROI")
	for _, r := range results {
		table.Append(
			r.Label,
			fmt.Sprintf("£%.0f", r.Revenue),
			fmt.Sprintf("£%.0f", r.Cost),
			fmt.Sprintf("%.1f%%", 100*r.ROI),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}
