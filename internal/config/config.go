package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	// AllowedOrigins enables CORS on the REST views when non-empty.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	RoundDuration  time.Duration `mapstructure:"round_duration"`
	CountdownDelay time.Duration `mapstructure:"countdown_delay"`
	RoomIDAttempts int           `mapstructure:"room_id_attempts"`

	SendBuffer int     `mapstructure:"send_buffer"`
	RateLimit  float64 `mapstructure:"rate_limit"`
	RateBurst  int     `mapstructure:"rate_burst"`

	Venues VenuesConfig `mapstructure:"venues"`
}

// VenuesConfig points the OpenStreetMap venue lookup at its upstreams.
type VenuesConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	NominatimURL string        `mapstructure:"nominatim_url"`
	OverpassURL  string        `mapstructure:"overpass_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	RadiusM      int           `mapstructure:"radius_m"`
	Limit        int           `mapstructure:"limit"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName over the defaults. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "bukber-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{})

	v.SetDefault("round_duration", "10m")
	v.SetDefault("countdown_delay", "4s")
	v.SetDefault("room_id_attempts", 32)

	v.SetDefault("send_buffer", 32)
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_burst", 40)

	v.SetDefault("venues.enabled", true)
	v.SetDefault("venues.nominatim_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("venues.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("venues.user_agent", "BukberChampionshipServer/1.0")
	v.SetDefault("venues.radius_m", 10000)
	v.SetDefault("venues.limit", 10)
	v.SetDefault("venues.timeout", "20s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
