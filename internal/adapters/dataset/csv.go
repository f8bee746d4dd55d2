package dataset

// csv.go — lector del dataset CfD procesado.
//
// Las columnas se resuelven por nombre de cabecera: el orden no importa y las
// columnas desconocidas se ignoran. Celdas numéricas vacías cuentan como 0.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
)

const (
	colDate           = "Settlement_Date"
	colTechnology     = "Technology"
	colReference      = "Reference_Type"
	colStrike         = "Strike_Price_GBP_Per_MWh"
	colMarket         = "Market_Reference_Price_GBP_Per_MWh"
	colGeneration     = "CFD_Generation_MWh"
	colPayments       = "CFD_Payments_GBP"
	colAvoidedGHG     = "Avoided_GHG_tonnes_CO2e"
	colSpreadMarket   = "Price_Spread_Strike_vs_Market"
	colSpreadIMRP     = "Price_Spread_Strike_vs_IMRP"
	cancelCheckPeriod = 1024
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// ErrMissingColumn indica que falta una columna obligatoria en la cabecera.
var ErrMissingColumn = errors.New("missing column")

// CSVDataset implementa ports.MarketDataset leyendo un CSV del disco.
type CSVDataset struct {
	path   string
	window domain.DateWindow
}

// NewCSVDataset crea un dataset sobre path filtrado a la ventana dada.
func NewCSVDataset(path string, window domain.DateWindow) *CSVDataset {
	return &CSVDataset{path: path, window: window}
}

// Load lee el fichero completo.
func (d *CSVDataset) Load(ctx context.Context) ([]domain.MarketRecord, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("dataset.Load: open %q: %w", d.path, err)
	}
	defer f.Close()

	records, err := Parse(ctx, f, d.window)
	if err != nil {
		return nil, fmt.Errorf("dataset.Load: %s: %w", d.path, err)
	}
	return records, nil
}

// Parse lee registros desde r. Las filas fuera de window se descartan.
func Parse(ctx context.Context, r io.Reader, window domain.DateWindow) ([]domain.MarketRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse: empty file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("parse: read header: %w", err)
	}
	idx := indexHeader(header)
	if _, ok := idx[colDate]; !ok {
		return nil, fmt.Errorf("parse: %w: %s", ErrMissingColumn, colDate)
	}

	var out []domain.MarketRecord
	for line := 2; ; line++ {
		if line%cancelCheckPeriod == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: line %d: %w", line, err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("parse: line %d: %w", line, err)
		}
		if !window.Contains(rec.SettlementDate) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// BOM de Excel en la primera columna
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		idx[h] = i
	}
	return idx
}

func parseRow(row []string, idx map[string]int) (domain.MarketRecord, error) {
	var rec domain.MarketRecord

	date, err := parseDate(cell(row, idx, colDate))
	if err != nil {
		return rec, err
	}
	rec.SettlementDate = date
	rec.Technology = cell(row, idx, colTechnology)
	rec.ReferenceType = cell(row, idx, colReference)

	numeric := []struct {
		col string
		dst *float64
	}{
		{colStrike, &rec.StrikePrice},
		{colMarket, &rec.MarketPrice},
		{colGeneration, &rec.Generation},
		{colPayments, &rec.Payments},
		{colAvoidedGHG, &rec.AvoidedGHG},
		{colSpreadMarket, &rec.SpreadVsMarket},
		{colSpreadIMRP, &rec.SpreadVsIMRP},
	}
	for _, n := range numeric {
		raw := cell(row, idx, n.col)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", n.col, err)
		}
		*n.dst = v
	}
	return rec, nil
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: unparseable date %q", colDate, raw)
}
