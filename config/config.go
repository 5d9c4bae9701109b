package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/go-pg/pg/v10"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Assets   AssetsConfig
}

type AppConfig struct {
	Host      string
	Port      int
	PublicDir string `toml:"public_dir"`
	Timezone  string
	BodyLimit string `toml:"body_limit"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the peer address is the client.
	TrustedProxies []string `toml:"trusted_proxies"`
}

type StoreConfig struct {
	Backend   string
	DataDir   string        `toml:"data_dir"`
	IOTimeout time.Duration `toml:"io_timeout"`
}

// DatabaseConfig is used by the postgres backend only. URL, when set, takes
// precedence over the individual pg.Options keys.
type DatabaseConfig struct {
	pg.Options
	URL        string
	LogQueries bool `toml:"log_queries"`
}

type AuthConfig struct {
	Password     string
	PasswordHash string  `toml:"password_hash"`
	RateLimit    float64 `toml:"rate_limit"`
	RateBurst    int     `toml:"rate_burst"`
}

type AssetsConfig struct {
	UploadDir string `toml:"upload_dir"`
	MaxSize   int64  `toml:"max_size"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	return Config{
		App: AppConfig{
			Host:      "0.0.0.0",
			Port:      3000,
			PublicDir: "./public",
			Timezone:  "Asia/Tokyo",
			BodyLimit: "6M",
		},
		Store: StoreConfig{
			Backend:   BackendFile,
			DataDir:   "./public/data",
			IOTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Options: pg.Options{
				Addr:       "localhost:5432",
				User:       "postgres",
				Database:   "sitecontent",
				MaxRetries: 3,
				PoolSize:   5,
			},
		},
		Auth: AuthConfig{
			RateLimit: 1,
			RateBurst: 10,
		},
		Assets: AssetsConfig{
			UploadDir: "./public/assets/uploads",
			MaxSize:   5 << 20,
		},
	}
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Decode(path)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Decode is Load without validation, for callers that still override keys.
func Decode(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if cfg.Database.URL != "" {
		opt, err := pg.ParseURL(cfg.Database.URL)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse database URL: %w", err)
		}
		opt.MaxRetries = cfg.Database.MaxRetries
		opt.PoolSize = cfg.Database.PoolSize
		opt.MaxConnAge = cfg.Database.MaxConnAge
		cfg.Database.Options = *opt
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendFile, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendPostgres, c.Store.Backend))
	}

	if c.Store.Backend == BackendFile && c.Store.DataDir == "" {
		errs = append(errs, errors.New("store.data_dir is required for the file backend"))
	}
	if c.Store.IOTimeout <= 0 {
		errs = append(errs, errors.New("store.io_timeout must be positive"))
	}
	if c.App.Port <= 0 {
		errs = append(errs, errors.New("app.port must be positive"))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("app.timezone: %w", err))
	}
	if _, err := c.TrustedProxyNets(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		errs = append(errs, errors.New("auth.password or auth.password_hash is required"))
	}
	if c.Auth.RateLimit <= 0 || c.Auth.RateBurst <= 0 {
		errs = append(errs, errors.New("auth.rate_limit and auth.rate_burst must be positive"))
	}
	if c.Assets.UploadDir == "" {
		errs = append(errs, errors.New("assets.upload_dir is required"))
	}
	if c.Assets.MaxSize <= 0 {
		errs = append(errs, errors.New("assets.max_size must be positive"))
	}

	return errors.Join(errs...)
}

// Location returns the configured time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

// TrustedProxyNets parses app.trusted_proxies. A bare address is taken as a
// single host.
func (c Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.App.TrustedProxies))
	for _, cidr := range c.App.TrustedProxies {
		if !strings.Contains(cidr, "/") {
			if ip := net.ParseIP(cidr); ip != nil && ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}

		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("app.trusted_proxies: %w", err)
		}
		nets = append(nets, ipNet)
	}

	return nets, nil
}
