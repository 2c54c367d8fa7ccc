package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "LIVESESSION"

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	LogLevel     string        `mapstructure:"log_level"`
	PublicOrigin string        `mapstructure:"public_origin"`
	Secret       string        `mapstructure:"secret"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Relay        RelayConfig   `mapstructure:"relay"`
	Store        StoreConfig   `mapstructure:"store"`
	ICEServers   []ICEServer   `mapstructure:"ice_servers"`
	Metrics      MetricsConfig `mapstructure:"metrics"`
}

type RelayConfig struct {
	// RateLimit is inbound messages per second per connection, 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// KickSlow closes connections whose send queue is full instead of dropping frames.
	KickSlow bool `mapstructure:"kick_slow"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var ErrInvalid = errors.New("invalid config")

// Load reads config/config.<CONFIG_ENV>.yaml (or the --config flag), then
// LIVESESSION_* env vars, then explicitly set flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	fileName := ""
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
		if f := flags.Lookup("config"); f != nil {
			fileName = f.Value.String()
		}
	}
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("store", cfg.Store.Driver).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 4000)
	v.SetDefault("log_level", "info")
	v.SetDefault("public_origin", "")
	v.SetDefault("secret", "change-me")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("relay.rate_limit", 50.0)
	v.SetDefault("relay.rate_burst", 100)
	v.SetDefault("relay.kick_slow", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.postgres.dsn", "postgres://localhost:5432/live_sessions?sslmode=disable")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("metrics.enabled", true)
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("%w: ping_period %s must be less than pong_wait %s", ErrInvalid, c.PingPeriod, c.PongWait)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("%w: send_buffer %d", ErrInvalid, c.SendBuffer)
	}
	switch c.Store.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("%w: store.driver %q", ErrInvalid, c.Store.Driver)
	}
	return nil
}
