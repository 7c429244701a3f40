package shared

import (
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	APIBase    string
	APIRPS     int
	APITimeout time.Duration

	RedisAddr string
	RedisPass string
	RedisDB   int
	StateTTL  time.Duration

	MySQLDSN string

	CookieMaxAge int
	CookieSecure bool
	PageSize     int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("API_RPS", 10)
	v.SetDefault("API_TIMEOUT_SECONDS", 20)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STATE_TTL_SECONDS", 3600)
	v.SetDefault("MYSQL_DSN", "")
	v.SetDefault("COOKIE_MAX_AGE_SECONDS", 86400)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("PAGE_SIZE", 5)
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var pe *fs.PathError
		if !errors.As(err, &pe) {
			log.Warn().Err(err).Msg("ignoring unreadable .env")
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from v with environment overrides applied.
func FromViper(v *viper.Viper) Config {
	defaults(v)
	v.AutomaticEnv()

	c := Config{
		AppEnv:       v.GetString("APP_ENV"),
		HTTPAddr:     v.GetString("HTTP_ADDR"),
		MetricsAddr:  v.GetString("METRICS_ADDR"),
		APIBase:      v.GetString("API_BASE_URL"),
		APIRPS:       v.GetInt("API_RPS"),
		APITimeout:   time.Duration(v.GetInt("API_TIMEOUT_SECONDS")) * time.Second,
		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisPass:    v.GetString("REDIS_PASSWORD"),
		RedisDB:      v.GetInt("REDIS_DB"),
		StateTTL:     time.Duration(v.GetInt("STATE_TTL_SECONDS")) * time.Second,
		MySQLDSN:     v.GetString("MYSQL_DSN"),
		CookieMaxAge: v.GetInt("COOKIE_MAX_AGE_SECONDS"),
		CookieSecure: v.GetBool("COOKIE_SECURE"),
		PageSize:     v.GetInt("PAGE_SIZE"),
	}
	if c.PageSize <= 0 {
		c.PageSize = 5
	}
	if c.APIBase == "" {
		log.Warn().Msg("API_BASE_URL is empty")
	}
	return c
}
