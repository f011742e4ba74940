package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Env        string `yaml:"env" validate:"oneof=dev stage prod"`
	HTTPServer `yaml:"http_server"`
	ShortURL   `yaml:"short_url"`
	History    `yaml:"history"`
	Storage    `yaml:"storage"`
	Postgres   `yaml:"postgres"`
	SQLite     `yaml:"sqlite"`
	Redis      `yaml:"redis"`
	Log        `yaml:"log"`
	RateLimit  `yaml:"rate_limit"`
	CORS       `yaml:"cors"`
}

// ErrCredentialedWildcard is returned when credentialed CORS requests are
// enabled together with a wildcard origin.
var ErrCredentialedWildcard = errors.New("cors credentials require explicit origins")

type HTTPServer struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ShortURL controls how short links are displayed. BaseURL defaults to the
// origin of the incoming request when empty.
type ShortURL struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,http_url"`
	Prefix  string `yaml:"prefix"`
}

var defaultShortURL = ShortURL{
	Prefix: "go",
}

type History struct {
	StorageKey  string `yaml:"storage_key" validate:"required"`
	Limit       int    `yaml:"limit" validate:"min=1"`
	MaxAttempts int    `yaml:"max_attempts" validate:"min=1"`
}

var defaultHistory = History{
	StorageKey:  "url-shortener-history",
	Limit:       10,
	MaxAttempts: 100,
}

type Storage struct {
	Driver string `yaml:"driver" validate:"oneof=memory redis postgres sqlite"`
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type SQLite struct {
	Path string `yaml:"path"`
}

var defaultSQLite = SQLite{
	Path: "data/online-tools.db",
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
}

type Log struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	OutputPath string `yaml:"output_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

var defaultLog = Log{
	Level:      "info",
	MaxSize:    100,
	MaxBackups: 3,
	MaxAge:     28,
}

// RateLimit configures the per-client token bucket. A zero RPS disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps" validate:"min=0"`
	Burst int     `yaml:"burst" validate:"min=0"`
}

var defaultRateLimit = RateLimit{
	RPS:   10,
	Burst: 20,
}

// CORS lists the origins allowed to call the API from a browser. Credentials
// (the session cookie) are only sent cross-origin when AllowCredentials is
// set, which requires explicit origins.
type CORS struct {
	AllowedOrigins   []string `yaml:"allowed_origins" validate:"min=1"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

var defaultCORS = CORS{
	AllowedOrigins: []string{"https://*", "http://*"},
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	if cfg.CORS.AllowCredentials && slices.ContainsFunc(cfg.CORS.AllowedOrigins, func(origin string) bool {
		return strings.Contains(origin, "*")
	}) {
		return nil, fmt.Errorf("%s: invalid config: %w", op, ErrCredentialedWildcard)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.HTTPServer = defaultHTTPServer
	cfg.ShortURL = defaultShortURL
	cfg.History = defaultHistory
	cfg.Storage = Storage{Driver: StorageMemory}
	cfg.Postgres = defaultPostgres
	cfg.SQLite = defaultSQLite
	cfg.Redis = defaultRedis
	cfg.Log = defaultLog
	cfg.RateLimit = defaultRateLimit
	cfg.CORS = CORS{
		AllowedOrigins: slices.Clone(defaultCORS.AllowedOrigins),
	}
}
