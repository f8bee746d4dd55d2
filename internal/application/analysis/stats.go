package analysis

import (
	"sort"

	"github.com/alejandrodnm/offtake/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Describe calcula estadísticas descriptivas. Devuelve Distribution vacía
// si no hay valores.
func Describe(values []float64) domain.Distribution {
	if len(values) == 0 {
		return domain.Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := domain.Distribution{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		P05:    stat.Quantile(0.05, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P95:    stat.Quantile(0.95, stat.LinInterp, sorted, nil),
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// Column extrae una columna numérica de los registros.
func Column(records []domain.MarketRecord, get func(domain.MarketRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = get(r)
	}
	return out
}

// Columnas descriptibles por nombre (CLI / API).
var columns = map[string]func(domain.MarketRecord) float64{
	"market_price":     func(r domain.MarketRecord) float64 { return r.MarketPrice },
	"strike_price":     func(r domain.MarketRecord) float64 { return r.StrikePrice },
	"generation":       func(r domain.MarketRecord) float64 { return r.Generation },
	"payments":         func(r domain.MarketRecord) float64 { return r.Payments },
	"avoided_ghg":      func(r domain.MarketRecord) float64 { return r.AvoidedGHG },
	"spread_vs_market": func(r domain.MarketRecord) float64 { return r.SpreadVsMarket },
	"spread_vs_imrp":   func(r domain.MarketRecord) float64 { return r.SpreadVsIMRP },
	"subsidy_rate":     domain.MarketRecord.SubsidyRate,
}

// ColumnNames devuelve las columnas soportadas por DescribeColumns, ordenadas.
func ColumnNames() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DescribeColumns describe todas las columnas numéricas del dataset.
func DescribeColumns(records []domain.MarketRecord) []domain.ColumnDistribution {
	out := make([]domain.ColumnDistribution, 0, len(columns))
	for _, name := range ColumnNames() {
		out = append(out, domain.ColumnDistribution{
			Column:       name,
			Distribution: Describe(Column(records, columns[name])),
		})
	}
	return out
}
