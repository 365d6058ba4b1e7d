package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
// IMDB serves a reduced, script-hostile page to unknown agents, so we present a
// current desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

// DefaultAcceptLanguage pins responses to English so titles and rating markup
// stay stable across locales.
const DefaultAcceptLanguage = "en-US,en;q=0.9"

// DefaultIMDBBaseURL is the production IMDB origin.
const DefaultIMDBBaseURL = "https://www.imdb.com"

type Config struct {
	IMDBBaseURL           string `mapstructure:"imdb_base_url"`
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	AcceptLanguage        string `mapstructure:"accept_language"`
	FetchConcurrency      int    `mapstructure:"fetch_concurrency"` // Parallel season page fetches
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Heatmap struct {
		WidthInches  float64 `mapstructure:"width_inches"`
		HeightInches float64 `mapstructure:"height_inches"`
		CacheSize    int     `mapstructure:"cache_size"` // Rendered image LRU entries
	} `mapstructure:"heatmap"`
	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	// Set the global log level
	zerolog.SetGlobalLevel(level)

	// Update logger with the configured level
	logger = logger.Level(level)

	globalConfig = config
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetDefault("imdb_base_url", DefaultIMDBBaseURL)
	viper.SetDefault("client_timeout", "30s")
	viper.SetDefault("fetch_concurrency", 4)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.address", "localhost")
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("cache.provider", "memory")
	viper.SetDefault("cache.size", 256)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("heatmap.width_inches", 8.0)
	viper.SetDefault("heatmap.height_inches", 8.0)
	viper.SetDefault("heatmap.cache_size", 64)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.AcceptLanguage == "" {
		config.AcceptLanguage = DefaultAcceptLanguage
	}
	if config.IMDBBaseURL == "" {
		config.IMDBBaseURL = DefaultIMDBBaseURL
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
