package httpapi

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/alejandrodnm/offtake/internal/adapters/export"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// simulate maneja POST /api/v1/simulate.
func (s *Server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profiles, err := s.profiles(c, req.Profiles)
	if err != nil {
		writeError(c, err)
		return
	}
	run, err := s.svc.Simulate(profiles, req.SampleSize, s.seed(req.Seed))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runResponse(run))
}

// sweep maneja POST /api/v1/sweep.
func (s *Server) sweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profiles, err := s.profiles(c, req.Profiles)
	if err != nil {
		writeError(c, err)
		return
	}

	sizes := req.SampleSizes
	if len(sizes) == 0 && req.Step > 0 {
		maxSamples := req.MaxSamples
		if maxSamples == 0 {
			maxSamples = s.svc.Config().MaxSamples
		}
		if sizes, err = domain.StepSizes(req.Step, maxSamples); err != nil {
			writeError(c, err)
			return
		}
	}

	save := s.svc.HasArchive()
	if req.Save != nil {
		save = *req.Save
	}

	sweep, err := s.svc.RunSweep(c.Request.Context(), planner.SweepRequest{
		Profiles: profiles,
		Sizes:    sizes,
		Seed:     s.seed(req.Seed),
		Save:     save,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sweepResponse(sweep, save))
}

// listSweeps maneja GET /api/v1/sweeps?limit=N.
func (s *Server) listSweeps(c *gin.Context) {
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, domain.ErrInvalidArgument)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	sums, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]SweepSummaryResponse, len(sums))
	for i, sum := range sums {
		out[i] = summaryResponse(sum)
	}
	c.JSON(http.StatusOK, gin.H{"sweeps": out})
}

// getSweep maneja GET /api/v1/sweeps/:id.
func (s *Server) getSweep(c *gin.Context) {
	sweep, err := s.svc.GetSweep(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sweepResponse(sweep, true))
}

// sweepCSV maneja GET /api/v1/sweeps/:id/csv?kind=selections|revenue.
func (s *Server) sweepCSV(c *gin.Context) {
	sweep, err := s.svc.GetSweep(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	switch c.DefaultQuery("kind", "selections") {
	case "selections":
		err = export.WriteSelections(&buf, sweep.Series)
	case "revenue":
		err = export.WriteRevenue(&buf, sweep.Series)
	default:
		badRequest(c, domain.ErrInvalidArgument)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sweep-`+sweep.ID+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// bid maneja POST /api/v1/bid.
func (s *Server) bid(c *gin.Context) {
	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d := s.opts.Defaults.Bid
	p := domain.BidParams{
		BidPrice:    orDefault(req.BidPrice, d.BidPrice),
		MarketPrice: orDefault(req.MarketPrice, d.MarketPrice),
		PriceSD:     orDefault(req.PriceSD, d.PriceSD),
		Generation:  orDefault(req.Generation, d.Generation),
		Draws:       req.Draws,
	}
	if p.Draws == 0 {
		p.Draws = d.Draws
	}

	out, err := s.svc.SimulateBid(p, s.seed(req.Seed))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BidResponse{
		BidPrice:       out.Params.BidPrice,
		MarketPrice:    out.Params.MarketPrice,
		PriceSD:        out.Params.PriceSD,
		Generation:     out.Params.Generation,
		Draws:          out.Params.Draws,
		MeanRevenue:    out.MeanRevenue,
		P10Revenue:     out.P10Revenue,
		P90Revenue:     out.P90Revenue,
		WinProbability: out.WinProbability,
	})
}

// stress maneja POST /api/v1/stress. Con ?format=csv devuelve CSV.
func (s *Server) stress(c *gin.Context) {
	var req StressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d := s.opts.Defaults.Stress
	p := domain.StressParams{
		Generation:  orDefault(req.Generation, d.Generation),
		BasePrice:   orDefault(req.BasePrice, d.BasePrice),
		Strike:      orDefault(req.Strike, d.Strike),
		ShockPct:    d.ShockPct,
		PPADiscount: d.PPADiscount,
	}
	if req.ShockPct != nil {
		p.ShockPct = *req.ShockPct
	}
	if req.PPADiscount != nil {
		p.PPADiscount = *req.PPADiscount
	}

	res, err := s.svc.Stress(p)
	if err != nil {
		writeError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := export.WriteStress(&buf, res); err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	resp := StressResponse{ShockPct: res.ShockPct, ShockedPrice: res.ShockedPrice, Best: res.Best, Worst: res.Worst}
	for _, row := range res.Rows {
		resp.Rows = append(resp.Rows, StressRowResponse(row))
	}
	c.JSON(http.StatusOK, resp)
}

// npv maneja POST /api/v1/finance/npv.
func (s *Server) npv(c *gin.Context) {
	var req NPVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rate := s.svc.Config().DiscountRate
	if req.Rate != nil {
		rate = *req.Rate
	}
	a, err := domain.AnalyzeCashflows(rate, req.Cashflows)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cashflowResponse(a))
}

// roi maneja POST /api/v1/finance/roi.
func (s *Server) roi(c *gin.Context) {
	var req ROIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d := s.opts.Defaults.ROI
	p := domain.ROIParams{
		CapexPerMW:      orDefault(req.CapexPerMW, d.CapexPerMW),
		CapacityMW:      orDefault(req.CapacityMW, d.CapacityMW),
		OMCostPerMWh:    orDefault(req.OMCostPerMWh, d.OMCostPerMWh),
		DegradationRate: orDefault(req.DegradationRate, d.DegradationRate),
		LifetimeYears:   req.LifetimeYears,
	}
	if p.LifetimeYears == 0 {
		p.LifetimeYears = d.LifetimeYears
	}

	var (
		results []domain.ROIResult
		err     error
	)
	if req.MarketPrice != 0 {
		gen := orDefault(req.AnnualGen, s.opts.Defaults.AnnualGeneration)
		strike := orDefault(req.Strike, req.MarketPrice)
		results, err = planner.StrategyROIAt(p, strike, req.MarketPrice, s.svc.Config().Market.PPADiscount, gen)
	} else {
		results, err = s.svc.StrategyROI(c.Request.Context(), p)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]ROIResponse, len(results))
	for i, r := range results {
		out[i] = ROIResponse{Strategy: r.Label, Revenue: r.Revenue, Cost: r.Cost, ROI: r.ROI}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// market maneja GET /api/v1/market.
func (s *Server) market(c *gin.Context) {
	rep, err := s.svc.MarketReport(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := MarketResponse{
		Records:     rep.Snapshot.Records,
		MarketPrice: rep.Snapshot.MarketPrice,
		StrikePrice: rep.Snapshot.StrikePrice,
		Generation:  rep.Snapshot.Generation,
		Cashflows:   cashflowResponse(rep.Finance),
	}
	for _, p := range rep.Profiles {
		resp.Profiles = append(resp.Profiles, ProfileResponse{Name: p.Name, MeanValue: p.MeanValue, Spread: p.Spread})
	}
	for _, sp := range rep.Spreads {
		resp.Spreads = append(resp.Spreads, SpreadResponse(sp))
	}
	c.JSON(http.StatusOK, resp)
}

// --- helpers ---

func (s *Server) profiles(c *gin.Context, in []ProfileRequest) ([]domain.StrategyProfile, error) {
	if len(in) > 0 {
		return toProfiles(in), nil
	}
	return s.svc.Profiles(c.Request.Context())
}

func (s *Server) seed(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return s.svc.Config().Seed
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
