package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alejandrodnm/offtake/internal/adapters/httpapi"
	"github.com/alejandrodnm/offtake/internal/adapters/storage"
	"github.com/alejandrodnm/offtake/internal/application/montecarlo"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/alejandrodnm/offtake/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticDataset []domain.MarketRecord

func (d staticDataset) Load(context.Context) ([]domain.MarketRecord, error) {
	return d, nil
}

func defaults() httpapi.Defaults {
	return httpapi.Defaults{
		Bid:              domain.BidParams{BidPrice: 80, MarketPrice: 60, PriceSD: 8, Generation: 1000, Draws: 500},
		Stress:           domain.StressParams{Generation: 100, BasePrice: 70, Strike: 100, ShockPct: -20, PPADiscount: 2},
		ROI:              domain.ROIParams{CapexPerMW: 1000, CapacityMW: 1, OMCostPerMWh: 5, DegradationRate: 0, LifetimeYears: 2},
		AnnualGeneration: 100,
	}
}

func plannerConfig() planner.Config {
	return planner.Config{
		Seed:         1,
		Step:         100,
		MaxSamples:   300,
		Market:       planner.MarketConfig{Volatility: 10, PriceDraws: 25, PPADiscount: 2},
		DiscountRate: 0.06,
	}
}

func newTestServer(t *testing.T, withStore bool, opts httpapi.Options) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sim := montecarlo.New(montecarlo.Config{Workers: 2}, m)

	var svc *planner.Service
	if withStore {
		store, err := storage.NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		svc = planner.New(plannerConfig(), sim, store, nil, nil)
	} else {
		svc = planner.New(plannerConfig(), sim, nil, nil, nil)
	}

	opts.Defaults = defaults()
	return httpapi.NewServer(svc, m, reg, opts).Handler(), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, true, httpapi.Options{})

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["archive"])
	assert.Equal(t, false, body["dataset"])
}

func TestSimulate(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 500, "seed": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	run := decode[httpapi.RunResponse](t, w)
	assert.Equal(t, 500, run.SampleSize)
	require.Len(t, run.Strategies, 3)
	total := 0
	for _, s := range run.Strategies {
		total += s.Count
	}
	assert.Equal(t, 500, total)
	assert.Equal(t, domain.StrategyCfD, run.Strategies[0].Strategy)

	// determinista por semilla
	again := decode[httpapi.RunResponse](t, do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 500, "seed": 3}`))
	assert.Equal(t, run, again)
}

func TestSimulate_CustomProfilesTieBreak(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	body := `{"sample_size": 50, "profiles": [
		{"name": "A", "mean_value": 100, "spread": 0},
		{"name": "B", "mean_value": 100, "spread": 0}]}`
	w := do(t, h, http.MethodPost, "/api/v1/simulate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	run := decode[httpapi.RunResponse](t, w)
	assert.Equal(t, "A", run.Dominant)
	assert.Equal(t, 50, run.Strategies[0].Count)
	assert.Equal(t, 0, run.Strategies[1].Count)
}

func TestSimulate_InvalidArguments(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	cases := map[string]string{
		"zero sample size": `{"sample_size": 0}`,
		"duplicate names":  `{"sample_size": 10, "profiles": [{"name":"A"},{"name":"A"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/simulate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_ARGUMENT", decode[httpapi.ErrorResponse](t, w).Error.Code)
		})
	}

	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 10, "profiles": [{"name":"A","spread":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[httpapi.ErrorResponse](t, w).Error.Code)

	w = do(t, h, http.MethodPost, "/api/v1/simulate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulateAndSweep_OversizeRejected(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	cases := []struct {
		path string
		body string
	}{
		{"/api/v1/simulate", `{"sample_size": 20000000}`},
		{"/api/v1/sweep", `{"sample_sizes": [10, 20000000]}`},
		{"/api/v1/sweep", `{"step": 1, "max_samples": 2000000000}`},
		{"/api/v1/sweep", `{"step": 1, "max_samples": 5000}`},
	}
	for _, tc := range cases {
		w := do(t, h, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
	}
}

func TestSweep_SaveAndRetrieve(t *testing.T) {
	h, _ := newTestServer(t, true, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/sweep", `{"seed": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sweep := decode[httpapi.SweepResponse](t, w)
	assert.True(t, sweep.Saved)
	require.Len(t, sweep.Series, 3)
	assert.Equal(t, 100, sweep.Series[0].SampleSize)
	assert.Equal(t, 300, sweep.Series[2].SampleSize)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps/"+sweep.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[httpapi.SweepResponse](t, w)
	assert.Equal(t, sweep.Series, got.Series)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]httpapi.SweepSummaryResponse](t, w)
	require.Len(t, list["sweeps"], 1)
	assert.Equal(t, sweep.ID, list["sweeps"][0].ID)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps/"+sweep.ID+"/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "sample_size,strategy,count\n100,CfD,"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	w = do(t, h, http.MethodGet, "/api/v1/sweeps/"+sweep.ID+"/csv?kind=revenue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "sample_size,strategy,mean_value\n"))
}

func TestSweep_ExplicitSizesNoStore(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/sweep", `{"sample_sizes": [10, 20, 5]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sweep := decode[httpapi.SweepResponse](t, w)
	assert.False(t, sweep.Saved)
	require.Len(t, sweep.Series, 3)
	assert.Equal(t, 5, sweep.Series[2].SampleSize)

	w = do(t, h, http.MethodPost, "/api/v1/sweep", `{"step": 50, "max_samples": 120}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[httpapi.SweepResponse](t, w).Series, 2)

	w = do(t, h, http.MethodPost, "/api/v1/sweep", `{"sample_sizes": [10], "save": true}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSweep_Errors(t *testing.T) {
	h, _ := newTestServer(t, true, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/sweep", `{"sample_sizes": [10, 0]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[httpapi.ErrorResponse](t, w).Error.Code)

	w = do(t, h, http.MethodGet, "/api/v1/sweeps?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBid(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/bid", `{"bid_price": 70, "seed": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[httpapi.BidResponse](t, w)
	assert.Equal(t, 70.0, out.BidPrice)
	assert.Equal(t, 60.0, out.MarketPrice) // default
	assert.Equal(t, 500, out.Draws)
	assert.Greater(t, out.WinProbability, 0.5)
	assert.LessOrEqual(t, out.P10Revenue, out.P90Revenue)
}

func TestStress(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/stress", `{"shock_pct": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[httpapi.StressResponse](t, w)
	assert.Equal(t, 0.0, out.ShockPct)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "CfD", out.Best)

	w = do(t, h, http.MethodPost, "/api/v1/stress?format=csv", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CfD,10000.00,10000.00,0.00,0.00")

	w = do(t, h, http.MethodPost, "/api/v1/stress", `{"shock_pct": -150}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStress_PPADiscount(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	ppaBase := func(body string) float64 {
		t.Helper()
		w := do(t, h, http.MethodPost, "/api/v1/stress", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		for _, row := range decode[httpapi.StressResponse](t, w).Rows {
			if row.Strategy == domain.StrategyPPA {
				return row.BaseRevenue
			}
		}
		t.Fatal("no PPA row")
		return 0
	}

	assert.InDelta(t, 6800, ppaBase(`{}`), 1e-9) // descuento por defecto
	assert.InDelta(t, 7000, ppaBase(`{"ppa_discount": 0}`), 1e-9)
	assert.InDelta(t, 6500, ppaBase(`{"ppa_discount": 5}`), 1e-9)
}

func TestFinanceNPV(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/finance/npv", `{"rate": 0.1, "cashflows": [-100, 110]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[httpapi.CashflowResponse](t, w)
	assert.InDelta(t, 0.0, out.NPV, 1e-9)
	require.NotNil(t, out.IRR)
	assert.InDelta(t, 0.1, *out.IRR, 1e-6)

	w = do(t, h, http.MethodPost, "/api/v1/finance/npv", `{"cashflows": [1, 2]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[httpapi.CashflowResponse](t, w).IRR)

	w = do(t, h, http.MethodPost, "/api/v1/finance/npv", `{"cashflows": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/finance/npv", `{"rate": -1, "cashflows": [1]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinanceROI(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodPost, "/api/v1/finance/roi", `{"strike": 60, "market_price": 50}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[map[string][]httpapi.ROIResponse](t, w)
	require.Len(t, out["results"], 3)
	assert.InDelta(t, 12000, out["results"][0].Revenue, 1e-9)
	assert.InDelta(t, 5.0, out["results"][0].ROI, 1e-9)

	// sin precios y sin dataset
	w = do(t, h, http.MethodPost, "/api/v1/finance/roi", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMarket_NoDataset(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodGet, "/api/v1/market", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NOT_CONFIGURED", decode[httpapi.ErrorResponse](t, w).Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 10}`)
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `offtake_http_requests_total{code="200",route="/api/v1/simulate"} 1`)
	assert.Contains(t, w.Body.String(), `offtake_simulations_total{kind="run"} 1`)
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{RatePerSec: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 1}`).Code)
	w := do(t, h, http.MethodPost, "/api/v1/simulate", `{"sample_size": 1}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode[httpapi.ErrorResponse](t, w).Error.Code)

	// /health no está limitado
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{CORSOrigins: []string{"https://dash.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/simulate", bytes.NewBufferString(`{"sample_size": 1}`))
	req.Header.Set("Origin", "https://other.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoRoute(t *testing.T) {
	h, _ := newTestServer(t, false, httpapi.Options{})

	w := do(t, h, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarket_WithDataset(t *testing.T) {
	reg := prometheus.NewRegistry()
	sim := montecarlo.New(montecarlo.Config{Workers: 1}, nil)
	ds := staticDataset{
		{Technology: "Wind", StrikePrice: 60, MarketPrice: 50, Generation: 100, Payments: -100, SpreadVsMarket: 10},
		{Technology: "Wind", StrikePrice: 60, MarketPrice: 50, Generation: 100, Payments: 300, SpreadVsMarket: 10},
	}
	ds[1].SettlementDate = ds[1].SettlementDate.AddDate(1, 0, 0)
	svc := planner.New(plannerConfig(), sim, nil, ds, nil)
	h := httpapi.NewServer(svc, nil, reg, httpapi.Options{Defaults: defaults()}).Handler()

	w := do(t, h, http.MethodGet, "/api/v1/market", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[httpapi.MarketResponse](t, w)
	assert.Equal(t, 2, out.Records)
	assert.InDelta(t, 50, out.MarketPrice, 1e-9)
	require.Len(t, out.Profiles, 3)
	assert.InDelta(t, 6000, out.Profiles[0].MeanValue, 1e-9)
	require.Len(t, out.Spreads, 1)
	require.NotNil(t, out.Cashflows.IRR)

	// ROI con precios del dataset
	w = do(t, h, http.MethodPost, "/api/v1/finance/roi", `{}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
