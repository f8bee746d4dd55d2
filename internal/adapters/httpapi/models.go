package httpapi

import (
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// --- requests ---

// ProfileRequest es un perfil de estrategia en el body.
type ProfileRequest struct {
	Name      string  `json:"name" binding:"required"`
	MeanValue float64 `json:"mean_value"`
	Spread    float64 `json:"spread" binding:"gte=0"`
}

// SimulateRequest es el body de POST /api/v1/simulate.
type SimulateRequest struct {
	Profiles   []ProfileRequest `json:"profiles,omitempty" binding:"omitempty,dive"`
	SampleSize int              `json:"sample_size" binding:"lte=10000000"`
	Seed       *uint64          `json:"seed,omitempty"`
}

// SweepRequest es el body de POST /api/v1/sweep. Si sample_sizes está vacío
// se usa step/max_samples, y si también faltan, la configuración del servidor.
type SweepRequest struct {
	Profiles    []ProfileRequest `json:"profiles,omitempty" binding:"omitempty,dive"`
	SampleSizes []int            `json:"sample_sizes,omitempty" binding:"omitempty,max=1000,dive,lte=10000000"`
	Step        int              `json:"step,omitempty" binding:"gte=0,lte=10000000"`
	MaxSamples  int              `json:"max_samples,omitempty" binding:"gte=0,lte=10000000"`
	Seed        *uint64          `json:"seed,omitempty"`
	Save        *bool            `json:"save,omitempty"` // nil = archivar si hay storage
}

// BidRequest es el body de POST /api/v1/bid. Los campos a cero toman el valor
// por defecto del servidor.
type BidRequest struct {
	BidPrice    float64 `json:"bid_price"`
	MarketPrice float64 `json:"market_price"`
	PriceSD     float64 `json:"price_sd" binding:"gte=0"`
	Generation  float64 `json:"generation_mwh" binding:"gte=0"`
	Draws       int     `json:"draws" binding:"gte=0,lte=10000000"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// StressRequest es el body de POST /api/v1/stress.
type StressRequest struct {
	Generation  float64  `json:"generation_mwh" binding:"gte=0"`
	BasePrice   float64  `json:"base_price"`
	Strike      float64  `json:"strike"`
	ShockPct    *float64 `json:"shock_pct,omitempty" binding:"omitempty,gte=-100"`
	PPADiscount *float64 `json:"ppa_discount,omitempty"` // nil = descuento configurado
}

// NPVRequest es el body de POST /api/v1/finance/npv.
type NPVRequest struct {
	Rate      *float64  `json:"rate,omitempty"`
	Cashflows []float64 `json:"cashflows" binding:"required,min=1"`
}

// ROIRequest es el body de POST /api/v1/finance/roi. Sin market_price los
// precios salen del dataset del servidor.
type ROIRequest struct {
	CapexPerMW      float64 `json:"capex_per_mw" binding:"gte=0"`
	CapacityMW      float64 `json:"capacity_mw" binding:"gte=0"`
	OMCostPerMWh    float64 `json:"om_cost_per_mwh" binding:"gte=0"`
	DegradationRate float64 `json:"degradation_rate" binding:"gte=0,lt=1"`
	LifetimeYears   int     `json:"lifetime_years" binding:"gte=0"`
	Strike          float64 `json:"strike"`
	MarketPrice     float64 `json:"market_price"`
	AnnualGen       float64 `json:"annual_generation_mwh" binding:"gte=0"`
}

func toProfiles(in []ProfileRequest) []domain.StrategyProfile {
	out := make([]domain.StrategyProfile, len(in))
	for i, p := range in {
		out[i] = domain.StrategyProfile{Name: p.Name, MeanValue: p.MeanValue, Spread: p.Spread}
	}
	return out
}

// --- responses ---

// ErrorResponse es el sobre de error de la API.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contiene el código y el mensaje del error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProfileResponse es un perfil de estrategia en la respuesta.
type ProfileResponse struct {
	Name      string  `json:"name"`
	MeanValue float64 `json:"mean_value"`
	Spread    float64 `json:"spread"`
}

// StrategyCount es el resultado de una estrategia en un run.
type StrategyCount struct {
	Strategy  string  `json:"strategy"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`
	MeanValue float64 `json:"mean_value"`
}

// RunResponse es un SimulationRun serializado en el orden de los perfiles.
type RunResponse struct {
	SampleSize int             `json:"sample_size"`
	Dominant   string          `json:"dominant"`
	Strategies []StrategyCount `json:"strategies"`
}

// SweepSummaryResponse es un resumen de barrido archivado.
type SweepSummaryResponse struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Seed            uint64    `json:"seed"`
	Steps           int       `json:"steps"`
	FinalSampleSize int       `json:"final_sample_size"`
	Dominant        string    `json:"dominant"`
	DominantShare   float64   `json:"dominant_share"`
}

// SweepResponse es un barrido completo.
type SweepResponse struct {
	SweepSummaryResponse
	Saved    bool              `json:"saved"`
	Profiles []ProfileResponse `json:"profiles"`
	Series   []RunResponse     `json:"series"`
}

func runResponse(run domain.SimulationRun) RunResponse {
	dominant, _ := run.Dominant()
	resp := RunResponse{SampleSize: run.SampleSize, Dominant: dominant}
	for _, name := range run.Order {
		resp.Strategies = append(resp.Strategies, StrategyCount{
			Strategy:  name,
			Count:     run.Counts[name],
			Share:     run.Share(name),
			MeanValue: run.MeanValues[name],
		})
	}
	return resp
}

func summaryResponse(s domain.SweepSummary) SweepSummaryResponse {
	return SweepSummaryResponse{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		Seed:            s.Seed,
		Steps:           s.Steps,
		FinalSampleSize: s.FinalSampleSize,
		Dominant:        s.Dominant,
		DominantShare:   s.DominantShare,
	}
}

func sweepResponse(s domain.Sweep, saved bool) SweepResponse {
	resp := SweepResponse{
		SweepSummaryResponse: summaryResponse(s.Summary()),
		Saved:                saved,
		Profiles:             make([]ProfileResponse, len(s.Profiles)),
		Series:               make([]RunResponse, len(s.Series)),
	}
	for i, p := range s.Profiles {
		resp.Profiles[i] = ProfileResponse{Name: p.Name, MeanValue: p.MeanValue, Spread: p.Spread}
	}
	for i, run := range s.Series {
		resp.Series[i] = runResponse(run)
	}
	return resp
}

// BidResponse es el resultado del simulador de pujas.
type BidResponse struct {
	BidPrice       float64 `json:"bid_price"`
	MarketPrice    float64 `json:"market_price"`
	PriceSD        float64 `json:"price_sd"`
	Generation     float64 `json:"generation_mwh"`
	Draws          int     `json:"draws"`
	MeanRevenue    float64 `json:"mean_revenue"`
	P10Revenue     float64 `json:"p10_revenue"`
	P90Revenue     float64 `json:"p90_revenue"`
	WinProbability float64 `json:"win_probability"`
}

// StressRowResponse es una fila del stress test.
type StressRowResponse struct {
	Strategy       string  `json:"strategy"`
	BaseRevenue    float64 `json:"base_revenue"`
	ShockedRevenue float64 `json:"shocked_revenue"`
	Delta          float64 `json:"delta"`
	DeltaPct       float64 `json:"delta_pct"`
}

// StressResponse es el resultado del stress test.
type StressResponse struct {
	ShockPct     float64             `json:"shock_pct"`
	ShockedPrice float64             `json:"shocked_price"`
	Best         string              `json:"best"`
	Worst        string              `json:"worst"`
	Rows         []StressRowResponse `json:"rows"`
}

// CashflowResponse es el resultado de NPV / IRR.
type CashflowResponse struct {
	Rate       float64   `json:"rate"`
	Cashflows  []float64 `json:"cashflows"`
	Discounted []float64 `json:"discounted"`
	NPV        float64   `json:"npv"`
	IRR        *float64  `json:"irr"` // null si no hay cambio de signo
}

func cashflowResponse(a domain.CashflowAnalysis) CashflowResponse {
	resp := CashflowResponse{Rate: a.Rate, Cashflows: a.Cashflows, Discounted: a.Discounted, NPV: a.NPV}
	if a.HasIRR {
		irr := a.IRR
		resp.IRR = &irr
	}
	return resp
}

// ROIResponse es el ROI de una estrategia.
type ROIResponse struct {
	Strategy string  `json:"strategy"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	ROI      float64 `json:"roi"`
}

// MarketResponse es el resumen del dataset de mercado.
type MarketResponse struct {
	Records     int               `json:"records"`
	MarketPrice float64           `json:"avg_market_price"`
	StrikePrice float64           `json:"avg_strike_price"`
	Generation  float64           `json:"avg_generation_mwh"`
	Profiles    []ProfileResponse `json:"derived_profiles"`
	Cashflows   CashflowResponse  `json:"cashflows"`
	Spreads     []SpreadResponse  `json:"spreads_by_technology"`
}

// SpreadResponse es el spread medio de una tecnología.
type SpreadResponse struct {
	Technology     string  `json:"technology"`
	SpreadVsMarket float64 `json:"spread_vs_market"`
	SpreadVsIMRP   float64 `json:"spread_vs_imrp"`
}
