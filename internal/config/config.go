package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string `yaml:"port"`   // サーバーポート（8080）
	GoEnv string `yaml:"go_env"` // dev/prod

	BackendURL     string        `yaml:"backend_url"`     // バックエンドAPIのURL（/api は自動で付く）
	BackendTimeout time.Duration `yaml:"backend_timeout"` // バックエンド呼び出しのタイムアウト

	SessionSecret string `yaml:"session_secret"` // セッションcookie署名シークレット
	CookieSecure  bool   `yaml:"cookie_secure"`

	StoreDriver      string `yaml:"store_driver"` // postgres/sqlite
	DatabaseURL      string `yaml:"database_url"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	SQLitePath       string `yaml:"sqlite_path"`

	PageSize         int           `yaml:"page_size"`
	SaleThreshold    int64         `yaml:"sale_threshold"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	SessionCacheSize int           `yaml:"session_cache_size"`
	RelatedLimit     int           `yaml:"related_limit"`

	Locale      string `yaml:"locale"`
	PriceSymbol string `yaml:"price_symbol"`
	LoginPath   string `yaml:"login_path"`
}

// Loadは .env → 環境変数 → YAML（path指定時）の順に読み込む
func Load(path string) (Config, error) {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv は環境変数だけから組み立てる（未設定はデフォルト）
func FromEnv() (Config, error) {
	var errs []error
	atoi := func(key string, def int) int {
		v, err := intEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		v, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	secure, err := boolEnv("COOKIE_SECURE", false)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		BackendURL:     os.Getenv("BACKEND_URL"),
		BackendTimeout: dur("BACKEND_TIMEOUT", 10*time.Second),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  secure,

		StoreDriver:      getenv("STORE_DRIVER", DriverSQLite),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     atoi("POSTGRES_PORT", 5432),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getenv("SQLITE_PATH", "storefront.db"),

		PageSize:         atoi("PAGE_SIZE", 30),
		SaleThreshold:    int64(atoi("SALE_THRESHOLD", 3000000)),
		SearchDebounce:   dur("SEARCH_DEBOUNCE", 450*time.Millisecond),
		SessionCacheSize: atoi("SESSION_CACHE_SIZE", 1024),
		RelatedLimit:     atoi("RELATED_LIMIT", 8),

		Locale:      getenv("LOCALE", "id"),
		PriceSymbol: getenv("PRICE_SYMBOL", "Rp"),
		LoginPath:   getenv("LOGIN_PATH", "/login"),
	}

	if len(errs) > 0 {
		return Config{}, errs[0]
	}
	return cfg, nil
}

// YAMLに書かれた項目だけ上書きする
func overlayYAML(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate は必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	switch c.StoreDriver {
	case DriverPostgres:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite driver")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s", DriverPostgres, DriverSQLite)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.SaleThreshold < 1 {
		return fmt.Errorf("SALE_THRESHOLD must be positive")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	if c.SessionCacheSize < 1 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive")
	}
	if c.RelatedLimit < 0 {
		return fmt.Errorf("RELATED_LIMIT must not be negative")
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.GoEnv == "dev"
}

// PostgresDSN は DATABASE_URL を優先する
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
