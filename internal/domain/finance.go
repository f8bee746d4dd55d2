package domain

import (
	"errors"
	"math"
)

const (
	irrLowerBound = -0.9999
	irrUpperMax   = 1e6
	irrTolerance  = 1e-10
	irrMaxIter    = 500
)

// NPV calcula el valor presente neto. El primer cashflow (t=0) no se descuenta.
func NPV(rate float64, cashflows []float64) (float64, error) {
	dcf, err := DiscountedCashflows(rate, cashflows)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range dcf {
		total += v
	}
	return total, nil
}

// DiscountedCashflows devuelve cf_t / (1+rate)^t para cada t.
func DiscountedCashflows(rate float64, cashflows []float64) ([]float64, error) {
	if rate <= -1 || math.IsNaN(rate) {
		return nil, invalidf("discount rate must be > -1, got %v", rate)
	}
	out := make([]float64, len(cashflows))
	for t, cf := range cashflows {
		out[t] = cf / math.Pow(1+rate, float64(t))
	}
	return out, nil
}

// IRR devuelve la tasa que anula el NPV, por bisección.
// Devuelve ErrNoIRR si los cashflows no cambian de signo o la raíz no queda
// acotada en (-0.9999, 1e6].
func IRR(cashflows []float64) (float64, error) {
	if len(cashflows) < 2 {
		return 0, invalidf("irr needs at least 2 cashflows")
	}
	var pos, neg bool
	for _, cf := range cashflows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	if !pos || !neg {
		return 0, ErrNoIRR
	}

	f := func(r float64) float64 {
		v, _ := NPV(r, cashflows)
		return v
	}

	lo, hi := irrLowerBound, 1.0
	flo, fhi := f(lo), f(hi)
	for flo*fhi > 0 && hi < irrUpperMax {
		hi *= 2
		fhi = f(hi)
	}
	if flo*fhi > 0 {
		return 0, ErrNoIRR
	}

	for i := 0; i < irrMaxIter && hi-lo > irrTolerance; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if fmid == 0 {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, nil
}

// ROIParams son los supuestos de ciclo de vida de un proyecto.
type ROIParams struct {
	CapexPerMW      float64
	CapacityMW      float64
	OMCostPerMWh    float64
	DegradationRate float64 // anual, 0.01 = 1%
	LifetimeYears   int
}

// Validate comprueba rangos.
func (p ROIParams) Validate() error {
	switch {
	case p.CapexPerMW < 0:
		return invalidf("capex_per_mw must be >= 0")
	case p.CapacityMW < 0:
		return invalidf("capacity_mw must be >= 0")
	case p.OMCostPerMWh < 0:
		return invalidf("om_cost_per_mwh must be >= 0")
	case p.DegradationRate < 0 || p.DegradationRate >= 1:
		return invalidf("degradation_rate must be in [0, 1), got %v", p.DegradationRate)
	case p.LifetimeYears <= 0:
		return invalidf("lifetime_years must be > 0")
	}
	return nil
}

// ROIResult es el resultado de LifetimeROI.
type ROIResult struct {
	Label   string
	Revenue float64
	Cost    float64
	ROI     float64 // (revenue - cost) / cost
}

// LifetimeROI calcula el ROI a lo largo de la vida del activo.
//
//	output_y = annualGen × (1 - degradation)^(y-1)
//	revenue  = Σ avgPrice × output_y
//	cost     = capex × capacity + Σ om × output_y
func LifetimeROI(label string, p ROIParams, avgPrice, annualGen float64) (ROIResult, error) {
	if err := p.Validate(); err != nil {
		return ROIResult{}, err
	}
	if annualGen < 0 {
		return ROIResult{}, invalidf("annual generation must be >= 0")
	}

	res := ROIResult{Label: label, Cost: p.CapexPerMW * p.CapacityMW}
	for year := 1; year <= p.LifetimeYears; year++ {
		output := annualGen * math.Pow(1-p.DegradationRate, float64(year-1))
		res.Revenue += avgPrice * output
		res.Cost += p.OMCostPerMWh * output
	}
	if res.Cost <= 0 {
		return ROIResult{}, invalidf("total cost is zero, roi undefined")
	}
	res.ROI = (res.Revenue - res.Cost) / res.Cost
	return res, nil
}

// CashflowAnalysis agrupa NPV e IRR de una serie de cashflows.
type CashflowAnalysis struct {
	Rate       float64
	Cashflows  []float64
	Discounted []float64
	NPV        float64
	IRR        float64
	HasIRR     bool // false si los cashflows no cambian de signo
}

// AnalyzeCashflows calcula NPV a rate e IRR. La ausencia de IRR no es un
// error: se indica con HasIRR = false.
func AnalyzeCashflows(rate float64, cashflows []float64) (CashflowAnalysis, error) {
	dcf, err := DiscountedCashflows(rate, cashflows)
	if err != nil {
		return CashflowAnalysis{}, err
	}
	a := CashflowAnalysis{
		Rate:       rate,
		Cashflows:  append([]float64(nil), cashflows...),
		Discounted: dcf,
	}
	for _, v := range dcf {
		a.NPV += v
	}

	irr, err := IRR(cashflows)
	switch {
	case err == nil:
		a.IRR, a.HasIRR = irr, true
	case errors.Is(err, ErrNoIRR), errors.Is(err, ErrInvalidArgument):
	default:
		return CashflowAnalysis{}, err
	}
	return a, nil
}
