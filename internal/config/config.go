package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Yahoo struct {
	Endpoint              string `json:"endpoint"`
	UserAgent             string `json:"user_agent"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	CacheMaxItems         int    `json:"cache_max_items"`
}

type Portfolio struct {
	DBPath          string   `json:"db_path"`
	PollIntervalSec int      `json:"poll_interval_sec"`
	WatchSymbols    []string `json:"watch_symbols"`
}

type Log struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

type Config struct {
	Server    Server    `json:"server"`
	Yahoo     Yahoo     `json:"yahoo"`
	Portfolio Portfolio `json:"portfolio"`
	Log       Log       `json:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Yahoo: Yahoo{
			Endpoint:             "https://query1.finance.yahoo.com",
			UserAgent:            "stockfolio/1.0",
			MaxRequestsPerMinute: 30,
			Burst:                5,
			CacheTTLSeconds:      15,
			CacheMaxItems:        1000,
		},
		Portfolio: Portfolio{
			DBPath:          "data/stockfolio.db",
			PollIntervalSec: 60,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := envInt("REQUEST_TIMEOUT_SEC"); v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := os.Getenv("YAHOO_ENDPOINT"); v != "" {
		cfg.Yahoo.Endpoint = v
	}
	if v := os.Getenv("YAHOO_USER_AGENT"); v != "" {
		cfg.Yahoo.UserAgent = v
	}
	if v := envInt("YAHOO_MAX_RPM"); v >= 0 {
		cfg.Yahoo.MaxRequestsPerMinute = v
	}
	if v := envInt("YAHOO_MIN_INTERVAL_SEC"); v >= 0 {
		cfg.Yahoo.MinRequestIntervalSec = v
	}
	if v := envInt("YAHOO_BURST"); v > 0 {
		cfg.Yahoo.Burst = v
	}
	if v := envInt("CACHE_TTL_SEC"); v >= 0 {
		cfg.Yahoo.CacheTTLSeconds = v
	}
	if v := envInt("CACHE_MAX_ITEMS"); v > 0 {
		cfg.Yahoo.CacheMaxItems = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Portfolio.DBPath = v
	}
	if v := envInt("POLL_INTERVAL_SEC"); v > 0 {
		cfg.Portfolio.PollIntervalSec = v
	}
	if v := os.Getenv("WATCH_SYMBOLS"); v != "" {
		cfg.Portfolio.WatchSymbols = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Log.Pretty = true
		case "0", "false", "no", "n":
			cfg.Log.Pretty = false
		}
	}
}

// envInt returns the parsed value, or -1 when the variable is unset or
// not a number.
func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return -1
	}
	x := -1
	fmt.Sscanf(v, "%d", &x)
	return x
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
