package notify

import (
	"fmt"

	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintMarket imprime el informe completo del dataset.
func (c *Console) PrintMarket(r domain.MarketReport) {
	s := r.Snapshot
	fmt.Fprintf(c.out, "\n=== MARKET DATASET (%d records) ===\n", s.Records)
	fmt.Fprintf(c.out, "  Avg market price: £%.2f/MWh | Avg strike: £%.2f/MWh | Avg generation: %.0f MWh\n",
		s.MarketPrice, s.StrikePrice, s.Generation)

	if c.compact {
		return
	}

	c.printColumns(r.Columns)
	c.printSpreads(r.Spreads)
	c.printYearlySpreads(r.YearlySpreads)
	c.printTechnologies(r.Technologies)
	c.printReferences(r.References)

	labels := make([]string, len(r.Cashflows))
	for i, cf := range r.Cashflows {
		labels[i] = fmt.Sprintf("%d", cf.Year)
	}
	c.PrintCashflows(r.Finance, labels)

	fmt.Fprintln(c.out, "  Derived profiles:")
	for _, p := range r.Profiles {
		fmt.Fprintf(c.out, "    %-10s mean %.2f  spread %.2f\n", p.Name, p.MeanValue, p.Spread)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printColumns(cols []domain.ColumnDistribution) {
	fmt.Fprintln(c.out, "\n--- Column statistics ---")
	table := tablewriter.NewWriter(c.out)
	table.Header("Column", "Mean", "Std", "Min", "P05", "Median", "P95", "Max")
	for _, col := range cols {
		table.Append(
			col.Column,
			fmt.Sprintf("%.2f", col.Mean),
			fmt.Sprintf("%.2f", col.StdDev),
			fmt.Sprintf("%.2f", col.Min),
			fmt.Sprintf("%.2f", col.P05),
			fmt.Sprintf("%.2f", col.Median),
			fmt.Sprintf("%.2f", col.P95),
			fmt.Sprintf("%.2f", col.Max),
		)
	}
	table.Render()
}

func (c *Console) printSpreads(spreads []domain.TechnologySpread) {
	fmt.Fprintln(c.out, "\n--- Strike spread by technology (£/MWh) ---")
	table := tablewriter.NewWriter(c.out)
	table.Header("Technology", "vs Market", "vs IMRP")
	for _, sp := range spreads {
		table.Append(
			truncate(sp.Technology, 30),
			fmt.Sprintf("%.2f", sp.SpreadVsMarket),
			fmt.Sprintf("%.2f", sp.SpreadVsIMRP),
		)
	}
	table.Render()
}

func (c *Console) printYearlySpreads(rows []domain.YearlySpread) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(c.out, "\n--- Strike vs market spread by year ---")
	table := tablewriter.NewWriter(c.out)
	table.Header("Year", "Technology", "Spread £/MWh")
	for _, r := range rows {
		table.Append(fmt.Sprintf("%d", r.Year), truncate(r.Technology, 30), fmt.Sprintf("%.2f", r.SpreadVsMarket))
	}
	table.Render()
}

func (c *Console) printTechnologies(techs []domain.TechnologySummary) {
	fmt.Fprintln(c.out, "\n--- Subsidy efficiency by technology ---")
	table := tablewriter.NewWriter(c.out)
	table.Header("Technology", "Generation MWh", "Payments £", "tCO2e avoided", "tCO2e/MWh", "£/MWh", "£/tCO2e")
	for _, t := range techs {
		table.Append(
			truncate(t.Technology, 30),
			fmt.Sprintf("%.0f", t.Generation),
			fmt.Sprintf("%.0f", t.Payments),
			fmt.Sprintf("%.0f", t.AvoidedGHG),
			fmt.Sprintf("%.3f", t.GHGPerMWh),
			fmt.Sprintf("%.2f", t.SubsidyPerMWh),
			fmt.Sprintf("%.2f", t.SubsidyPerTCO2),
		)
	}
	table.Render()
}

func (c *Console) printReferences(refs []domain.ReferencePrice) {
	fmt.Fprintln(c.out, "\n--- Average strike by reference type ---")
	table := tablewriter.NewWriter(c.out)
	table.Header("Reference", "Avg strike £/MWh")
	for _, r := range refs {
		table.Append(r.ReferenceType, fmt.Sprintf("%.2f", r.AvgStrike))
	}
	table.Render()
}
