package export

// csv.go — exportación tabular de barridos y stress tests.
//
// Las cantidades monetarias pasan por decimal antes de formatearse, así
// 2.675 sale como 2.68 y no como 2.67 por el error de representación de float64.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Money redondea v a 2 decimales (half away from zero) y lo formatea.
func Money(v float64) string {
	return decimal.NewFromFloat(v).Round(moneyPlaces).StringFixed(moneyPlaces)
}

// WriteSelections escribe sample_size,strategy,count: una fila por
// (tamaño de muestra, estrategia) en el orden de la serie.
func WriteSelections(w io.Writer, series domain.ConvergenceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sample_size", "strategy", "count"}); err != nil {
		return fmt.Errorf("export.WriteSelections: header: %w", err)
	}
	for _, row := range series.Rows() {
		if err := cw.Write([]string{
			strconv.Itoa(row.SampleSize),
			row.Strategy,
			strconv.Itoa(row.Count),
		}); err != nil {
			return fmt.Errorf("export.WriteSelections: row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRevenue escribe sample_size,strategy,mean_value.
func WriteRevenue(w io.Writer, series domain.ConvergenceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sample_size", "strategy", "mean_value"}); err != nil {
		return fmt.Errorf("export.WriteRevenue: header: %w", err)
	}
	for _, row := range series.Rows() {
		if err := cw.Write([]string{
			strconv.Itoa(row.SampleSize),
			row.Strategy,
			Money(row.MeanValue),
		}); err != nil {
			return fmt.Errorf("export.WriteRevenue: row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStress escribe una fila por estrategia del stress test.
func WriteStress(w io.Writer, r domain.StressResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"strategy", "base_revenue", "shocked_revenue", "delta", "delta_pct"}); err != nil {
		return fmt.Errorf("export.WriteStress: header: %w", err)
	}
	for _, row := range r.Rows {
		if err := cw.Write([]string{
			row.Strategy,
			Money(row.BaseRevenue),
			Money(row.ShockedRevenue),
			Money(row.Delta),
			Money(row.DeltaPct),
		}); err != nil {
			return fmt.Errorf("export.WriteStress: row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
