package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config es la configuración completa de offtake.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Market     MarketConfig     `yaml:"market"`
	Finance    FinanceConfig    `yaml:"finance"`
	Bidding    BiddingConfig    `yaml:"bidding"`
	Stress     StressConfig     `yaml:"stress"`
	Storage    StorageConfig    `yaml:"storage"`
	API        APIConfig        `yaml:"api"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controla el simulador de selección de estrategias.
type SimulationConfig struct {
	Seed       uint64          `yaml:"seed"`
	Workers    int             `yaml:"workers" validate:"gte=0"` // 0 = NumCPU
	Step       int             `yaml:"step" validate:"gt=0"`
	MaxSamples int             `yaml:"max_samples" validate:"gtefield=Step,lte=10000000"`
	Profiles   []ProfileConfig `yaml:"profiles" validate:"dive"`
}

// ProfileConfig es un perfil de estrategia en YAML.
type ProfileConfig struct {
	Name   string  `yaml:"name" validate:"required"`
	Mean   float64 `yaml:"mean"`
	Spread float64 `yaml:"spread" validate:"gte=0"`
}

// MarketConfig controla el dataset CfD y la derivación de perfiles.
type MarketConfig struct {
	Dataset        string  `yaml:"dataset"` // CSV procesado; vacío = sin dataset
	From           string  `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string  `yaml:"to" validate:"omitempty,datetime=2006-01-02"`
	Volatility     float64 `yaml:"volatility" validate:"gte=0"`
	PriceDraws     int     `yaml:"price_draws" validate:"gt=0"`
	PPADiscount    float64 `yaml:"ppa_discount"`
	DeriveProfiles bool    `yaml:"derive_profiles"`
}

// FinanceConfig son los supuestos de NPV y ROI.
type FinanceConfig struct {
	DiscountRate     float64 `yaml:"discount_rate" validate:"gt=-1"`
	CapexPerMW       float64 `yaml:"capex_per_mw" validate:"gte=0"`
	CapacityMW       float64 `yaml:"capacity_mw" validate:"gte=0"`
	OMCostPerMWh     float64 `yaml:"om_cost_per_mwh" validate:"gte=0"`
	DegradationRate  float64 `yaml:"degradation_rate" validate:"gte=0,lt=1"`
	AssetLifeYears   int     `yaml:"asset_life_years" validate:"gt=0"`
	AnnualGeneration float64 `yaml:"annual_generation_mwh" validate:"gte=0"` // si no hay dataset
}

// BiddingConfig son los valores por defecto del simulador de pujas.
type BiddingConfig struct {
	BidPrice      float64 `yaml:"bid_price"`
	MarketPrice   float64 `yaml:"market_price"`
	PriceSD       float64 `yaml:"price_sd" validate:"gte=0"`
	GenerationMWh float64 `yaml:"generation_mwh" validate:"gte=0"`
	Draws         int     `yaml:"draws" validate:"gt=0"`
}

// StressConfig son los valores por defecto del stress test.
type StressConfig struct {
	GenerationMWh float64 `yaml:"generation_mwh" validate:"gte=0"`
	BasePrice     float64 `yaml:"base_price"`
	Strike        float64 `yaml:"strike"`
	ShockPct      float64 `yaml:"shock_pct" validate:"gte=-100"`
}

// StorageConfig controla dónde se archivan los barridos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// APIConfig controla el servidor HTTP.
type APIConfig struct {
	Addr        string   `yaml:"addr" validate:"required"`
	RatePerSec  float64  `yaml:"rate_per_sec" validate:"gte=0"` // 0 = sin límite
	Burst       int      `yaml:"burst" validate:"gte=0"`
	CORSOrigins []string `yaml:"cors_origins"`
	ReleaseMode bool     `yaml:"release_mode"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default devuelve la configuración por defecto, sin archivo.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{Seed: 1, Step: 100, MaxSamples: 1000},
		Market: MarketConfig{
			From:        "2025-01-01",
			To:          "2060-12-31",
			Volatility:  10,
			PriceDraws:  25,
			PPADiscount: 2,
		},
		Finance: FinanceConfig{
			DiscountRate:     0.06,
			CapexPerMW:       1_000_000,
			CapacityMW:       100,
			OMCostPerMWh:     15,
			DegradationRate:  0.01,
			AssetLifeYears:   25,
			AnnualGeneration: 250_000,
		},
		Bidding: BiddingConfig{
			BidPrice:      80,
			MarketPrice:   60,
			PriceSD:       8,
			GenerationMWh: 300_000,
			Draws:         1000,
		},
		Stress: StressConfig{
			GenerationMWh: 250_000,
			BasePrice:     70,
			Strike:        100,
			ShockPct:      -20,
		},
		API: APIConfig{Addr: ":8080"},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// El YAML se decodifica sobre Default(): solo las keys ausentes toman el
// valor por defecto, un cero explícito se respeta. path vacío = solo
// defaults + entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	deriveBurst(&cfg.API)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Validate comprueba rangos y formatos con las tags validate.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// DateWindow devuelve la ventana [from, to] del dataset. Un extremo vacío no limita.
func (c *Config) DateWindow() (from, to time.Time, err error) {
	if c.Market.From != "" {
		if from, err = time.Parse(dateLayout, c.Market.From); err != nil {
			return from, to, fmt.Errorf("config.DateWindow: from: %w", err)
		}
	}
	if c.Market.To != "" {
		if to, err = time.Parse(dateLayout, c.Market.To); err != nil {
			return from, to, fmt.Errorf("config.DateWindow: to: %w", err)
		}
	}
	return from, to, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("OFFTAKE_DATASET"); v != "" {
		cfg.Market.Dataset = v
	}
	if v := os.Getenv("OFFTAKE_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("OFFTAKE_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("OFFTAKE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OFFTAKE_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("OFFTAKE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OFFTAKE_WORKERS: %w", err)
		}
		cfg.Simulation.Workers = n
	}
	return nil
}

// deriveBurst da un burst al rate limiter cuando solo se configuró el rate:
// con burst 0 el limiter rechazaría todas las peticiones.
func deriveBurst(api *APIConfig) {
	if api.Burst <= 0 && api.RatePerSec > 0 {
		api.Burst = int(api.RatePerSec) + 1
	}
}
