package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/offtake/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, uint64(1), cfg.Simulation.Seed)
	assert.Equal(t, 100, cfg.Simulation.Step)
	assert.Equal(t, 1000, cfg.Simulation.MaxSamples)
	assert.Equal(t, 10.0, cfg.Market.Volatility)
	assert.Equal(t, 25, cfg.Market.PriceDraws)
	assert.Equal(t, 0.06, cfg.Finance.DiscountRate)
	assert.Equal(t, 1000, cfg.Bidding.Draws)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  seed: 99
  step: 50
  max_samples: 200
  profiles:
    - { name: A, mean: 10, spread: 1 }
market:
  dataset: data.csv
log:
  format: json
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 50, cfg.Simulation.Step)
	assert.Equal(t, 200, cfg.Simulation.MaxSamples)
	require.Len(t, cfg.Simulation.Profiles, 1)
	assert.Equal(t, "A", cfg.Simulation.Profiles[0].Name)
	assert.Equal(t, "data.csv", cfg.Market.Dataset)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level) // default
}

func TestLoad_ExplicitZerosKept(t *testing.T) {
	path := writeConfig(t, `
simulation:
  seed: 0
market:
  volatility: 0
  ppa_discount: 0
finance:
  discount_rate: 0
  degradation_rate: 0
bidding:
  market_price: 0
stress:
  shock_pct: 0
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), cfg.Simulation.Seed)
	assert.Equal(t, 0.0, cfg.Market.Volatility)
	assert.Equal(t, 0.0, cfg.Market.PPADiscount)
	assert.Equal(t, 0.0, cfg.Finance.DiscountRate)
	assert.Equal(t, 0.0, cfg.Finance.DegradationRate)
	assert.Equal(t, 0.0, cfg.Bidding.MarketPrice)
	assert.Equal(t, 0.0, cfg.Stress.ShockPct)

	// keys ausentes conservan el default
	assert.Equal(t, 100, cfg.Simulation.Step)
	assert.Equal(t, 25, cfg.Market.PriceDraws)
	assert.Equal(t, 80.0, cfg.Bidding.BidPrice)
	assert.Equal(t, -20.0, config.Default().Stress.ShockPct)
}

func TestLoad_ExplicitZeroStepRejected(t *testing.T) {
	_, err := config.Load(writeConfig(t, "simulation: { step: 0 }"))
	assert.Error(t, err)
}

func TestLoad_ZeroSeedFromEnv(t *testing.T) {
	t.Setenv("OFFTAKE_SEED", "0")

	cfg, err := config.Load(writeConfig(t, "simulation: { seed: 42 }"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.Simulation.Seed)
}

func TestLoad_BurstDerivedFromRate(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "api: { rate_per_sec: 5 }"))
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.API.Burst)

	cfg, err = config.Load(writeConfig(t, "api: { rate_per_sec: 5, burst: 2 }"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.API.Burst)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OFFTAKE_SEED", "18446744073709551615")
	t.Setenv("OFFTAKE_DB", ":memory:")
	t.Setenv("OFFTAKE_ADDR", "127.0.0.1:9999")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ^uint64(0), cfg.Simulation.Seed)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "127.0.0.1:9999", cfg.API.Addr)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("OFFTAKE_WORKERS", "many")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "OFFTAKE_WORKERS")
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"max below step":   "simulation: { step: 100, max_samples: 50 }",
		"negative spread":  "simulation: { profiles: [ { name: A, mean: 1, spread: -1 } ] }",
		"unnamed profile":  "simulation: { profiles: [ { mean: 1, spread: 1 } ] }",
		"bad log level":    "log: { level: verbose }",
		"bad date":         "market: { from: 01/01/2025 }",
		"degradation >= 1": "finance: { degradation_rate: 1.5 }",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDateWindow(t *testing.T) {
	cfg := config.Default()

	from, to, err := cfg.DateWindow()
	require.NoError(t, err)
	assert.Equal(t, 2025, from.Year())
	assert.Equal(t, 2060, to.Year())

	cfg.Market.From, cfg.Market.To = "", ""
	from, to, err = cfg.DateWindow()
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Simulation.Profiles, 3)
	assert.Equal(t, "offtake.db", cfg.Storage.DSN)
}
