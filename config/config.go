package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database   DatabaseConfigs   `toml:"database"`
	ApiServer  APIServerConfigs  `toml:"api_server"`
	Auth       AuthConfigs       `toml:"auth"`
	Ticket     TicketConfigs     `toml:"ticket"`
	Storage    S3Configs         `toml:"storage"`
	File       FileConfigs       `toml:"file"`
	Redis      RedisConfigs      `toml:"redis"`
	Cache      CacheConfigs      `toml:"cache"`
	Search     SearchConfigs     `toml:"search"`
	Prometheus PrometheusConfigs `toml:"prometheus"`
}

type DatabaseConfigs struct {
	// Driver is mysql or sqlite.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// DSN takes precedence over the split fields when set.
	DSN string `toml:"dsn"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
	BcryptCost  int          `toml:"bcrypt_cost"`
}

type TokenConfigs struct {
	Name       string   `toml:"name"`
	Expiration Duration `toml:"expiration"`
}

type TicketConfigs struct {
	// QRSecret signs ticket QR payloads. It must differ from the auth token
	// secret in production.
	QRSecret string `toml:"qr_secret"`
	QRSize   int    `toml:"qr_size"`

	// FallbackPrices are used for a tier whose price is not set on the event,
	// keyed by group type. Zero means no fallback.
	FallbackPrices map[string]int64 `toml:"fallback_prices"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
	Bucket         string `toml:"bucket"`
}

type FileConfigs struct {
	MaxSize     int64 `toml:"max_size"`
	PreviewSize uint  `toml:"preview_size"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type SearchConfigs struct {
	// IndexDir keeps bleve indexes on disk. Empty means in-memory indexes.
	IndexDir string `toml:"index_dir"`
}

type CacheConfigs struct {
	StatisticTTL Duration `toml:"statistic_ttl"`
}

type PrometheusConfigs struct {
	Enable bool   `toml:"enable"`
	Path   string `toml:"path"`
}

// Duration lets TOML files write durations as strings like "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "INFO",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "campus.db",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: Duration{24 * time.Hour},
			},
			BcryptCost: 10,
		},
		Ticket: TicketConfigs{
			QRSize:         256,
			FallbackPrices: map[string]int64{},
		},
		File: FileConfigs{
			MaxSize:     5 << 20,
			PreviewSize: 480,
		},
		Cache: CacheConfigs{
			StatisticTTL: Duration{time.Minute},
		},
		Prometheus: PrometheusConfigs{
			Enable: true,
			Path:   "/metrics",
		},
	}
}

// Load reads a TOML file on top of Default. An empty path returns the
// defaults.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Configs) IsProduction() bool {
	return c.Env == "production"
}
