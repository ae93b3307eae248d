package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/basisbt/internal/backtest"
	"github.com/alejandrodnm/basisbt/internal/domain"
	"github.com/alejandrodnm/basisbt/internal/optimize"
)

// Config es la configuración completa del backtester.
type Config struct {
	Strategy  StrategyConfig  `yaml:"strategy"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// StrategyConfig son los parámetros de la estrategia de base.
type StrategyConfig struct {
	EntryThreshold    float64 `yaml:"entry_threshold"`     // base mensualizada mínima para entrar
	StopLossThreshold float64 `yaml:"stop_loss_threshold"` // por debajo, stop
	ExitThreshold     float64 `yaml:"exit_threshold"`      // por encima, salida completa
	HoldingDays       int     `yaml:"holding_days"`        // máximo de días en posición
	AnnualFundingRate float64 `yaml:"annual_funding_rate"` // coste de financiar el lado spot
	InitialCapital    float64 `yaml:"initial_capital"`
	PositionSize      float64 `yaml:"position_size"` // unidades del subyacente por trade
}

// OptimizerConfig controla el grid search.
type OptimizerConfig struct {
	Workers     int   `yaml:"workers"` // 0 = NumCPU
	TopN        int   `yaml:"top_n"`
	Entry       Range `yaml:"entry"`
	StopLoss    Range `yaml:"stop_loss"`
	Exit        Range `yaml:"exit"`
	HoldingDays []int `yaml:"holding_days"`
}

// Range es un rango cerrado [min, max] muestreado con paso step.
type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

func (r Range) empty() bool {
	return r.Step <= 0 || r.Max < r.Min
}

// StorageConfig controla dónde se persiste el histórico de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Si path está vacío se usan solo los defaults (más overrides de
// entorno). Los valores del entorno sobreescriben los del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Backtest traduce la sección strategy a la configuración del motor.
func (c *Config) Backtest() backtest.Config {
	return backtest.Config{
		Thresholds: domain.Thresholds{
			Entry:    c.Strategy.EntryThreshold,
			StopLoss: c.Strategy.StopLossThreshold,
			Exit:     c.Strategy.ExitThreshold,
		},
		HoldingDays:       c.Strategy.HoldingDays,
		AnnualFundingRate: c.Strategy.AnnualFundingRate,
		InitialCapital:    c.Strategy.InitialCapital,
		PositionSize:      c.Strategy.PositionSize,
	}
}

// Grid traduce la sección optimizer al espacio de búsqueda. Las secciones
// sin configurar caen al grid por defecto.
func (c *Config) Grid() optimize.Grid {
	grid := optimize.DefaultGrid()
	if !c.Optimizer.Entry.empty() {
		grid.Entry = optimize.Frange(c.Optimizer.Entry.Min, c.Optimizer.Entry.Max, c.Optimizer.Entry.Step)
	}
	if !c.Optimizer.StopLoss.empty() {
		grid.StopLoss = optimize.Frange(c.Optimizer.StopLoss.Min, c.Optimizer.StopLoss.Max, c.Optimizer.StopLoss.Step)
	}
	if !c.Optimizer.Exit.empty() {
		grid.Exit = optimize.Frange(c.Optimizer.Exit.Min, c.Optimizer.Exit.Max, c.Optimizer.Exit.Step)
	}
	if len(c.Optimizer.HoldingDays) > 0 {
		grid.HoldingDays = c.Optimizer.HoldingDays
	}
	return grid
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BASISBT_DB"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := backtest.DefaultConfig()
	if cfg.Strategy.EntryThreshold <= 0 {
		cfg.Strategy.EntryThreshold = def.Thresholds.Entry
	}
	if cfg.Strategy.StopLossThreshold <= 0 {
		cfg.Strategy.StopLossThreshold = def.Thresholds.StopLoss
	}
	if cfg.Strategy.ExitThreshold <= 0 {
		cfg.Strategy.ExitThreshold = def.Thresholds.Exit
	}
	if cfg.Strategy.HoldingDays <= 0 {
		cfg.Strategy.HoldingDays = def.HoldingDays
	}
	if cfg.Strategy.AnnualFundingRate <= 0 {
		cfg.Strategy.AnnualFundingRate = def.AnnualFundingRate
	}
	if cfg.Strategy.InitialCapital <= 0 {
		cfg.Strategy.InitialCapital = def.InitialCapital
	}
	if cfg.Strategy.PositionSize <= 0 {
		cfg.Strategy.PositionSize = def.PositionSize
	}
	if cfg.Optimizer.TopN <= 0 {
		cfg.Optimizer.TopN = 20
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "basisbt.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza combinaciones de umbrales sin sentido antes de arrancar.
func (c *Config) validate() error {
	s := c.Strategy
	if s.EntryThreshold <= s.StopLossThreshold {
		return fmt.Errorf("entry_threshold (%.4f) debe ser > stop_loss_threshold (%.4f)",
			s.EntryThreshold, s.StopLossThreshold)
	}
	if s.ExitThreshold <= s.EntryThreshold {
		return fmt.Errorf("exit_threshold (%.4f) debe ser > entry_threshold (%.4f)",
			s.ExitThreshold, s.EntryThreshold)
	}
	return nil
}
