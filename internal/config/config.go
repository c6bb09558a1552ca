package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr  string
	DB          DBSettings
	TrustProxy  bool
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int
}

// DBSettings holds the connection parameters for the record store.
type DBSettings struct {
	Type     string // postgres | sqlite
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSL      bool
	Path     string // sqlite only
}

func Default() Config {
	return Config{
		ListenAddr: ":4000",
		DB: DBSettings{
			Type: "postgres",
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Name: "postgres",
			Path: "healthlog.db",
		},
		CORSOrigins: []string{"*"},
		RateLimit:   100,
		RateBurst:   200,
	}
}

// Load reads an optional .env file from the working directory and then
// overlays environment variables on top of Default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := Default()

	if port := os.Getenv("PORT"); port != "" {
		p, err := parsePort("PORT", port)
		if err != nil {
			return nil, err
		}
		cfg.ListenAddr = ":" + strconv.Itoa(p)
	}

	if v := os.Getenv("DB_TYPE"); v != "" {
		v = strings.ToLower(v)
		if v != "postgres" && v != "sqlite" {
			return nil, fmt.Errorf("DB_TYPE: unsupported value %q", v)
		}
		cfg.DB.Type = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := parsePort("DB_PORT", v)
		if err != nil {
			return nil, err
		}
		cfg.DB.Port = p
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DB.User = v
	}
	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DB.Name = v
	}
	cfg.DB.SSL = parseBool(os.Getenv("DB_SSL"))
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DB.Path = v
	}

	cfg.TrustProxy = parseBool(os.Getenv("TRUST_PROXY"))

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS: invalid value %q", v)
		}
		cfg.RateLimit = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_BURST: invalid value %q", v)
		}
		cfg.RateBurst = burst
	}

	return &cfg, nil
}

func parsePort(key, v string) (int, error) {
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return 0, fmt.Errorf("%s: invalid port %q", key, v)
	}
	return p, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
