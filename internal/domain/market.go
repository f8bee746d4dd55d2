package domain

import "time"

// MarketRecord es una fila del dataset CfD procesado.
type MarketRecord struct {
	SettlementDate time.Time
	Technology     string
	ReferenceType  string
	StrikePrice    float64 // Strike_Price_GBP_Per_MWh
	MarketPrice    float64 // Market_Reference_Price_GBP_Per_MWh
	Generation     float64 // CFD_Generation_MWh
	Payments       float64 // CFD_Payments_GBP
	AvoidedGHG     float64 // Avoided_GHG_tonnes_CO2e
	SpreadVsMarket float64 // Price_Spread_Strike_vs_Market
	SpreadVsIMRP   float64 // Price_Spread_Strike_vs_IMRP
}

// Year devuelve el año de liquidación.
func (r MarketRecord) Year() int {
	return r.SettlementDate.Year()
}

// SubsidyRate devuelve los pagos CfD por MWh generado (0 si no hubo generación).
func (r MarketRecord) SubsidyRate() float64 {
	if r.Generation == 0 {
		return 0
	}
	return r.Payments / r.Generation
}

// DateWindow es un rango [From, To] inclusivo. Extremos a cero = sin límite.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// Contains devuelve true si t cae dentro de la ventana.
func (w DateWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// MarketSnapshot son las medias del dataset que alimentan los perfiles.
type MarketSnapshot struct {
	Records     int
	MarketPrice float64
	StrikePrice float64
	Generation  float64
}

// Distribution son estadísticas descriptivas de una columna.
type Distribution struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	P05    float64
	Median float64
	P95    float64
	Max    float64
}

// TechnologySpread es el spread medio strike vs referencia por tecnología.
type TechnologySpread struct {
	Technology     string
	SpreadVsMarket float64
	SpreadVsIMRP   float64
}

// YearlySpread es el spread medio strike vs mercado por año y tecnología.
type YearlySpread struct {
	Year           int
	Technology     string
	SpreadVsMarket float64
}

// TechnologySummary agrega generación, pagos y emisiones evitadas.
type TechnologySummary struct {
	Technology     string
	Generation     float64
	Payments       float64
	AvoidedGHG     float64
	GHGPerMWh      float64
	SubsidyPerMWh  float64
	SubsidyPerTCO2 float64
}

// YearlyCashflow son los pagos CfD sumados por año.
type YearlyCashflow struct {
	Year     int
	Payments float64
}

// ReferencePrice es el strike medio por tipo de referencia.
type ReferencePrice struct {
	ReferenceType string
	AvgStrike     float64
}

// ColumnDistribution asocia una distribución con su columna del dataset.
type ColumnDistribution struct {
	Column string
	Distribution
}

// MarketReport agrupa todos los análisis del dataset.
type MarketReport struct {
	Snapshot      MarketSnapshot
	Profiles      []StrategyProfile
	Columns       []ColumnDistribution
	Spreads       []TechnologySpread
	YearlySpreads []YearlySpread
	Technologies  []TechnologySummary
	Cashflows     []YearlyCashflow
	Finance       CashflowAnalysis // NPV / IRR de los pagos anuales
	References    []ReferencePrice
}
