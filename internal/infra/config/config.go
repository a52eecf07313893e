package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog backends.
const (
	CatalogFile   = "file"
	CatalogMongo  = "mongo"
	CatalogSQLite = "sqlite"
)

// Window cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string
	GRPCAddr string

	PMS PMS

	CatalogBackend string
	CatalogPath    string
	MongoURI       string
	MongoDB        string
	SQLitePath     string

	WindowCacheBackend string
	RedisAddr          string
	WindowCacheTTL     time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ImagesDir   string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	ExtraBedRate       int64
	WindowsResultLimit int
}

// PMS holds the upstream calendar API settings.
type PMS struct {
	BaseURL          string
	HotelCode        string
	Username         string
	Password         string
	Timeout          time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	RateLimit        float64
	RateBurst        int
	ExpectedVersion  string
	TokenTTL         time.Duration
	FetchConcurrency int
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:         os.Getenv("GRPC_ADDR"),
		CatalogBackend:   strings.ToLower(getEnv("CATALOG_BACKEND", CatalogFile)),
		CatalogPath:      getEnv("CATALOG_PATH", "data/rooms.json"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "roomfinder"),
		SQLitePath:       getEnv("SQLITE_PATH", "data/rooms.db"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		ImagesDir:        getEnv("IMAGES_DIR", "data/room_pictures"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         getEnv("S3_BUCKET", "roomfinder"),
		PMS: PMS{
			BaseURL:         strings.TrimRight(getEnv("PMS_BASE_URL", "https://pms-api.hoteliers.guru/api"), "/"),
			HotelCode:       os.Getenv("PMS_HOTEL_CODE"),
			Username:        os.Getenv("PMS_USERNAME"),
			Password:        os.Getenv("PMS_PASSWORD"),
			ExpectedVersion: getEnv("PMS_EXPECTED_VERSION", "1.61"),
		},
	}
	cfg.WindowCacheBackend = strings.ToLower(os.Getenv("WINDOW_CACHE_BACKEND"))
	if cfg.WindowCacheBackend == "" {
		cfg.WindowCacheBackend = CacheMemory
		if cfg.RedisAddr != "" {
			cfg.WindowCacheBackend = CacheRedis
		}
	}
	if _, set := os.LookupEnv("GRPC_ADDR"); !set {
		cfg.GRPCAddr = ":9090"
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.PMS.Timeout, err = parseDurationEnv("PMS_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PMS.RetryMaxAttempts, err = parseIntEnv("PMS_RETRY_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.PMS.RetryBaseDelay, err = parseDurationEnv("PMS_RETRY_BASE_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PMS.RetryMaxDelay, err = parseDurationEnv("PMS_RETRY_MAX_DELAY", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PMS.RateLimit, err = parseFloatEnv("PMS_RATE_LIMIT", 5); err != nil {
		return Config{}, err
	}
	if cfg.PMS.RateBurst, err = parseIntEnv("PMS_RATE_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.PMS.TokenTTL, err = parseDurationEnv("PMS_TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PMS.FetchConcurrency, err = parseIntEnv("PMS_FETCH_CONCURRENCY", 3); err != nil {
		return Config{}, err
	}
	if cfg.WindowCacheTTL, err = parseDurationEnv("WINDOW_CACHE_TTL", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	extraBed, err := parseIntEnv("EXTRA_BED_RATE", 700)
	if err != nil {
		return Config{}, err
	}
	cfg.ExtraBedRate = int64(extraBed)
	if cfg.WindowsResultLimit, err = parseIntEnv("WINDOWS_RESULT_LIMIT", 5); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CatalogBackend {
	case CatalogFile:
		if c.CatalogPath == "" {
			return fmt.Errorf("CATALOG_PATH is required for the file catalog")
		}
	case CatalogMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo catalog")
		}
	case CatalogSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite catalog")
		}
	default:
		return fmt.Errorf("invalid CATALOG_BACKEND %q: want file, mongo or sqlite", c.CatalogBackend)
	}
	switch c.WindowCacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis window cache")
		}
	case CacheMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo window cache")
		}
	default:
		return fmt.Errorf("invalid WINDOW_CACHE_BACKEND %q: want memory, redis or mongo", c.WindowCacheBackend)
	}
	if c.PMS.RetryMaxAttempts < 1 {
		return fmt.Errorf("PMS_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.PMS.RetryMaxDelay < c.PMS.RetryBaseDelay {
		return fmt.Errorf("PMS_RETRY_MAX_DELAY must not be below PMS_RETRY_BASE_DELAY")
	}
	if c.PMS.Timeout <= 0 {
		return fmt.Errorf("PMS_TIMEOUT must be positive")
	}
	if c.PMS.RateBurst < 1 {
		return fmt.Errorf("PMS_RATE_BURST must be at least 1")
	}
	if c.PMS.FetchConcurrency < 1 {
		return fmt.Errorf("PMS_FETCH_CONCURRENCY must be at least 1")
	}
	if c.ExtraBedRate < 0 {
		return fmt.Errorf("EXTRA_BED_RATE cannot be negative")
	}
	if c.WindowsResultLimit < 1 {
		return fmt.Errorf("WINDOWS_RESULT_LIMIT must be at least 1")
	}
	return nil
}

// PMSConfigured reports whether login credentials are present.
func (c Config) PMSConfigured() bool {
	return c.PMS.HotelCode != "" && c.PMS.Username != "" && c.PMS.Password != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", key, err)
	}
	return f, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
