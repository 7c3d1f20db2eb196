package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	ProviderYouTube = "youtube"
	ProviderScript  = "script"
)

type Config struct {
	// Server settings
	ServerPort      string        `json:"server_port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Debug           bool          `json:"debug"`
	Production      bool          `json:"production"`
	Version         string        `json:"version"`

	// Logging
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`

	Middleware MiddlewareConfig `json:"middleware"`
	CORS       CORSConfig       `json:"cors"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`

	Transcript TranscriptConfig `json:"transcript"`
	Cache      CacheConfig      `json:"cache"`
	Archive    ArchiveConfig    `json:"archive"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// TranscriptConfig selects and tunes the caption provider.
type TranscriptConfig struct {
	Provider    string        `json:"provider"`
	Languages   []string      `json:"languages"`
	BaseURL     string        `json:"base_url"`
	HTTPTimeout time.Duration `json:"http_timeout"`
	UserAgent   string        `json:"user_agent"`
	ScriptPath  string        `json:"script_path"`
}

type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	DBPath  string        `json:"db_path"`
	TTL     time.Duration `json:"ttl"`
}

type ArchiveConfig struct {
	Enabled   bool   `json:"enabled"`
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	PathStyle bool   `json:"path_style"`
}

func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: false,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: true,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "12345"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Debug:           getEnvAsBool("DEBUG", false),
		Production:      os.Getenv("ENV") == "production",
		Version:         getEnv("VERSION", "1.0.0"),

		LogDir:   getEnv("LOG_DIR", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", false),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		Transcript: TranscriptConfig{
			Provider:    getEnv("TRANSCRIPT_PROVIDER", ProviderYouTube),
			Languages:   getEnvAsStringSlice("TRANSCRIPT_LANGUAGES", []string{"en"}),
			BaseURL:     getEnv("YOUTUBE_BASE_URL", "https://www.youtube.com"),
			HTTPTimeout: getEnvAsDuration("YOUTUBE_HTTP_TIMEOUT", 30*time.Second),
			UserAgent: getEnv(
				"YOUTUBE_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
			),
			ScriptPath: getEnv("TRANSCRIPT_SCRIPT_PATH", "youtube_transcript_api"),
		},

		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", false),
			DBPath:  getEnv("CACHE_DB_PATH", "./data/transcripts.db"),
			TTL:     getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		},

		Archive: ArchiveConfig{
			Enabled:   getEnvAsBool("ARCHIVE_ENABLED", false),
			AccessKey: getEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: getEnv("SPACES_SECRET_KEY", ""),
			Region:    getEnv("SPACES_REGION", "nyc3"),
			Endpoint:  getEnv("SPACES_ENDPOINT", "https://nyc3.digitaloceanspaces.com"),
			Bucket:    getEnv("SPACES_BUCKET", ""),
			PathStyle: getEnvAsBool("SPACES_PATH_STYLE", false),
		},

		Middleware: defaultDevConfig(),
	}

	if cfg.Production {
		cfg.Middleware = defaultProdConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validateServer(c); err != nil {
		return err
	}

	if err := validateTranscript(c); err != nil {
		return err
	}

	if err := validateStorage(c); err != nil {
		return err
	}

	return nil
}

func validateServer(c *Config) error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return errors.Wrapf(err, "server port %q is not a number", c.ServerPort)
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	return nil
}

func validateTranscript(c *Config) error {
	switch c.Transcript.Provider {
	case ProviderYouTube:
		if c.Transcript.BaseURL == "" {
			return errors.New("youtube base url is required")
		}
		if c.Transcript.HTTPTimeout <= 0 {
			return errors.New("youtube http timeout must be positive")
		}
	case ProviderScript:
		if c.Transcript.ScriptPath == "" {
			return errors.New("transcript script path is required")
		}
	default:
		return errors.Errorf("unknown transcript provider %q", c.Transcript.Provider)
	}
	if len(c.Transcript.Languages) == 0 {
		return errors.New("at least one transcript language is required")
	}
	return nil
}

func validateStorage(c *Config) error {
	if c.Cache.Enabled {
		if c.Cache.DBPath == "" {
			return errors.New("cache database path is required")
		}
		if err := os.MkdirAll(filepath.Dir(c.Cache.DBPath), 0755); err != nil {
			return errors.Wrap(err, "failed to create cache directory")
		}
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return errors.New("archive bucket is required when archiving is enabled")
	}
	if c.LogDir != "" {
		if err := os.MkdirAll(c.LogDir, 0755); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
