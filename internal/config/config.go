package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"

	GroupByID       = "id"
	GroupByDateTime = "fecha"
)

type Config struct {
	HTTPPort        string
	SpreadsheetID   string
	CredentialsFile string
	SheetsBackend   string // google | xlsx
	XLSXPath        string // libro de trabajo del backend xlsx
	CajaFile        string
	AdminUser       string
	AdminPassword   string
	JWTSecret       string
	CORSOrigins     string
	DatabaseDSN     string // DSN de postgres o ruta de archivo sqlite
	LogLevel        string
	SheetsRPS       float64
	SalesGroupKey   string // id | fecha
	LowStockLimit   int
}

// field: default value
var defaults = map[string]any{
	"PORT":                    "3001",
	"GOOGLE_CREDENTIALS_FILE": "credentials.json",
	"XLSX_PATH":               "almacen.xlsx",
	"CAJA_FILE":               "caja.json",
	"FRONTEND_URL":            "http://localhost:5173",
	"DATABASE_DSN":            "almacen.db",
	"LOG_LEVEL":               "INFO",
	"SHEETS_RPS":              1.0,
	"SALES_GROUP_KEY":         GroupByID,
	"STOCK_MINIMO":            5,
}

var envKeys = []string{
	"PORT", "SPREADSHEET_ID", "GOOGLE_CREDENTIALS_FILE", "SHEETS_BACKEND",
	"XLSX_PATH", "CAJA_FILE", "ADMIN_USER", "ADMIN_PASSWORD", "JWT_SECRET",
	"FRONTEND_URL", "DATABASE_DSN", "LOG_LEVEL", "SHEETS_RPS",
	"SALES_GROUP_KEY", "STOCK_MINIMO",
}

// Load lee .env (si existe) y luego las variables de entorno.
// Las variables de entorno tienen prioridad sobre el archivo.
func Load() (*Config, error) {
	// .env es opcional, en producción las variables vienen del entorno
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	for key, def := range defaults {
		v.SetDefault(key, def)
	}

	cfg := &Config{
		HTTPPort:        v.GetString("PORT"),
		SpreadsheetID:   strings.TrimSpace(v.GetString("SPREADSHEET_ID")),
		CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
		SheetsBackend:   strings.ToLower(strings.TrimSpace(v.GetString("SHEETS_BACKEND"))),
		XLSXPath:        v.GetString("XLSX_PATH"),
		CajaFile:        v.GetString("CAJA_FILE"),
		AdminUser:       strings.TrimSpace(v.GetString("ADMIN_USER")),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		CORSOrigins:     v.GetString("FRONTEND_URL"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		LogLevel:        strings.ToUpper(v.GetString("LOG_LEVEL")),
		SheetsRPS:       v.GetFloat64("SHEETS_RPS"),
		SalesGroupKey:   strings.ToLower(v.GetString("SALES_GROUP_KEY")),
		LowStockLimit:   v.GetInt("STOCK_MINIMO"),
	}

	if cfg.SheetsBackend == "" {
		if cfg.SpreadsheetID != "" {
			cfg.SheetsBackend = BackendGoogle
		} else {
			cfg.SheetsBackend = BackendXLSX
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET no definido")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET debe tener al menos 32 caracteres")
	}
	if c.AdminUser == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USER y ADMIN_PASSWORD son obligatorios")
	}

	switch c.SheetsBackend {
	case BackendGoogle:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID es obligatorio con SHEETS_BACKEND=google")
		}
	case BackendXLSX:
		if c.XLSXPath == "" {
			return fmt.Errorf("XLSX_PATH no puede estar vacío")
		}
	default:
		return fmt.Errorf("SHEETS_BACKEND inválido %q (google|xlsx)", c.SheetsBackend)
	}

	switch c.SalesGroupKey {
	case GroupByID, GroupByDateTime:
	default:
		return fmt.Errorf("SALES_GROUP_KEY inválido %q (id|fecha)", c.SalesGroupKey)
	}

	if c.SheetsRPS <= 0 {
		return fmt.Errorf("SHEETS_RPS debe ser positivo")
	}
	if c.CajaFile == "" {
		return fmt.Errorf("CAJA_FILE no puede estar vacío")
	}
	return nil
}

// Origins devuelve FRONTEND_URL como lista separada por comas, sin espacios.
func (c *Config) Origins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
