package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de polyhedge.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Storage StorageConfig `yaml:"storage"`
	Report  ReportConfig  `yaml:"report"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
	DataBase  string `yaml:"data_base"`
}

// FetchConfig controla la paginación de la Data API.
type FetchConfig struct {
	PageLimit int   `yaml:"page_limit"`
	MaxPages  int   `yaml:"max_pages"` // límite de seguridad contra loops infinitos
	Verify    *bool `yaml:"verify"`    // página extra para confirmar que no faltan trades
	Workers   int   `yaml:"workers"`   // usuarios en paralelo en el comando batch
}

// StorageConfig controla dónde se persiste el histórico de análisis.
type StorageConfig struct {
	DSN     string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
	Enabled *bool  `yaml:"enabled"`
}

// ReportConfig controla el render de fechas y los ficheros por defecto.
type ReportConfig struct {
	Timezone    string `yaml:"timezone"` // nombre IANA, p.ej. "Europe/Madrid"
	TradesFile  string `yaml:"trades_file"`
	ResultsFile string `yaml:"results_file"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si el YAML no existe se usan los defaults. Las variables de entorno
// sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Location devuelve la zona horaria del reporte.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Report.Timezone, err)
	}
	return loc, nil
}

// VerifyEnabled indica si hay que verificar que la descarga está completa.
func (c *Config) VerifyEnabled() bool {
	return c.Fetch.Verify == nil || *c.Fetch.Verify
}

// StorageEnabled indica si se guarda el histórico de análisis.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Enabled == nil || *c.Storage.Enabled
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
	if v := os.Getenv("DATA_API_BASE"); v != "" {
		cfg.API.DataBase = v
	}
	if v := os.Getenv("REPORT_TIMEZONE"); v != "" {
		cfg.Report.Timezone = v
	}
	if v, err := strconv.Atoi(os.Getenv("FETCH_PAGE_LIMIT")); err == nil && v > 0 {
		cfg.Fetch.PageLimit = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.Fetch.PageLimit <= 0 {
		cfg.Fetch.PageLimit = 5000
	}
	if cfg.Fetch.MaxPages <= 0 {
		cfg.Fetch.MaxPages = 1000
	}
	if cfg.Fetch.Workers <= 0 {
		cfg.Fetch.Workers = 4
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyhedge.db"
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "UTC"
	}
	if cfg.Report.TradesFile == "" {
		cfg.Report.TradesFile = "trades.json"
	}
	if cfg.Report.ResultsFile == "" {
		cfg.Report.ResultsFile = "analysis_results.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
