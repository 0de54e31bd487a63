package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Rules   RulesConfig
	Session SessionConfig
	Cache   CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

// RulesConfig parameterizes the enrichment rules. The forecast suffix and
// period length are deliberately configuration, not constants.
type RulesConfig struct {
	ForecastSuffix string
	PeriodDays     int
	Workers        int
}

type SessionConfig struct {
	MaxSessions int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

// PeriodLength converts the configured period days to a duration.
func (r RulesConfig) PeriodLength() time.Duration {
	return time.Duration(r.PeriodDays) * 24 * time.Hour
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_LOG_LEVEL", "info")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SERVER_MAX_UPLOAD_MB", 32)
		viper.SetDefault("RULES_FORECAST_SUFFIX", "-25")
		viper.SetDefault("RULES_PERIOD_DAYS", 7)
		viper.SetDefault("RULES_WORKERS", 0)
		viper.SetDefault("SESSION_MAX_SESSIONS", 32)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 60)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("SERVER_LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				MaxUploadMB:    viper.GetInt64("SERVER_MAX_UPLOAD_MB"),
			},
			Rules: RulesConfig{
				ForecastSuffix: viper.GetString("RULES_FORECAST_SUFFIX"),
				PeriodDays:     viper.GetInt("RULES_PERIOD_DAYS"),
				Workers:        viper.GetInt("RULES_WORKERS"),
			},
			Session: SessionConfig{
				MaxSessions: viper.GetInt("SESSION_MAX_SESSIONS"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
		}
	})

	return instance
}
