package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends de almacenamiento soportados.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory" // desarrollo y demos; no persiste entre reinicios
)

// Políticas de descuento de stock en ventas de farmacia.
const (
	DeductionPolicyQueue  = "queue"  // registra la falla en la cola de conciliación y continúa
	DeductionPolicyStrict = "strict" // detiene el descuento en la primera línea fallida
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Ledger   LedgerConfig
	Pharmacy PharmacyConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Storage  string // postgres | memory
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de validación de tokens.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig parámetros del libro de stock.
type LedgerConfig struct {
	NearExpiryDays     int  // horizonte de próximo vencimiento
	RecentTransactions int  // movimientos por ítem en GetStockItems
	BlockExpiredIssue  bool // rechazar salidas que tomen lotes vencidos
}

// NearExpiryHorizon devuelve el horizonte como duración.
func (c LedgerConfig) NearExpiryHorizon() time.Duration {
	return time.Duration(c.NearExpiryDays) * 24 * time.Hour
}

// PharmacyConfig integración farmacia -> libro de stock.
type PharmacyConfig struct {
	DeductionPolicy string
	RetryBatchSize  int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde .env / config.env).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "stock-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Storage:  strings.ToLower(getString(v, "STORAGE_DRIVER", StoragePostgres)),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "stock_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "stock-ledger"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Ledger: LedgerConfig{
			NearExpiryDays:     getInt(v, "LEDGER_NEAR_EXPIRY_DAYS", 30),
			RecentTransactions: getInt(v, "LEDGER_RECENT_TRANSACTIONS", 20),
			BlockExpiredIssue:  getBool(v, "LEDGER_BLOCK_EXPIRED_ISSUE", false),
		},
		Pharmacy: PharmacyConfig{
			DeductionPolicy: strings.ToLower(getString(v, "PHARMACY_DEDUCTION_POLICY", DeductionPolicyQueue)),
			RetryBatchSize:  getInt(v, "PHARMACY_RETRY_BATCH_SIZE", 50),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.App.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER inválido %q", c.App.Storage)
	}
	switch c.Pharmacy.DeductionPolicy {
	case DeductionPolicyQueue, DeductionPolicyStrict:
	default:
		return fmt.Errorf("config: PHARMACY_DEDUCTION_POLICY inválido %q", c.Pharmacy.DeductionPolicy)
	}
	if c.Ledger.NearExpiryDays <= 0 {
		return fmt.Errorf("config: LEDGER_NEAR_EXPIRY_DAYS debe ser positivo")
	}
	if c.Ledger.RecentTransactions <= 0 {
		return fmt.Errorf("config: LEDGER_RECENT_TRANSACTIONS debe ser positivo")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}
