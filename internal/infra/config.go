package infra

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"bloodlink/internal/middleware"
)

// Remote backends.
const (
	RemoteHTTP     = "http"
	RemotePostgres = "postgres"
	RemoteMongo    = "mongo"
	RemoteNone     = "none"
)

// Local key-value backends.
const (
	LocalFile   = "file"
	LocalSQLite = "sqlite"
	LocalRedis  = "redis"
	LocalMemory = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	RemoteBackend string
	RemoteAPIURL  string
	RemoteTimeout time.Duration
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	LocalBackend   string
	LocalDataDir   string
	SQLitePath     string
	RedisURL       string
	RedisPrefix    string
	SessionSecret  string
	SessionSecure  bool
	GeoIPDBPath    string
	AllowedOrigins []string

	// SessionSecretGenerated is set when no secret was configured and a
	// random one was created; sessions then do not survive a restart.
	SessionSecretGenerated bool

	SeedAdminUsername        string
	SeedAdminPassword        string
	OTPTTL                   time.Duration
	OTPEcho                  bool
	RequireEmailVerification bool
	ActivityCap              int
	ActivityRecent           int
	LockoutThreshold         int
	LockoutWindow            time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	// TrustedProxies lists the peers whose X-Forwarded-For header is honoured.
	// Empty means client addresses always come from the socket.
	TrustedProxies []netip.Prefix
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv:                   appEnv,
		Port:                     getEnv("PORT", "8080"),
		RemoteBackend:            strings.ToLower(getEnv("REMOTE_BACKEND", RemoteHTTP)),
		RemoteAPIURL:             getEnv("REMOTE_API_URL", "http://localhost:3000"),
		RemoteTimeout:            time.Second * time.Duration(getEnvInt("REMOTE_TIMEOUT_SECONDS", 5)),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		MongoURI:                 os.Getenv("MONGODB_URI"),
		MongoDatabase:            getEnv("MONGODB_DATABASE", "bloodlink"),
		LocalBackend:             strings.ToLower(getEnv("LOCAL_BACKEND", LocalFile)),
		LocalDataDir:             getEnv("LOCAL_DATA_DIR", "./data"),
		SQLitePath:               getEnv("SQLITE_PATH", "./data/bloodlink.db"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		RedisPrefix:              getEnv("REDIS_PREFIX", "bloodlink:"),
		SessionSecret:            os.Getenv("SESSION_SECRET"),
		SessionSecure:            getEnvBool("SESSION_SECURE", appEnv == "production"),
		GeoIPDBPath:              os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:           getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SeedAdminUsername:        getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword:        getEnv("SEED_ADMIN_PASSWORD", "123"),
		OTPTTL:                   time.Minute * time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)),
		OTPEcho:                  getEnvBool("OTP_ECHO", appEnv == "development"),
		RequireEmailVerification: getEnvBool("REQUIRE_EMAIL_VERIFICATION", false),
		ActivityCap:              getEnvInt("ACTIVITY_LOG_CAP", 100),
		ActivityRecent:           getEnvInt("ACTIVITY_RECENT", 10),
		LockoutThreshold:         getEnvInt("LOCKOUT_THRESHOLD", 5),
		LockoutWindow:            time.Minute * time.Duration(getEnvInt("LOCKOUT_WINDOW_MINUTES", 5)),
		HTTPReadTimeout:          time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:         time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:          time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:          getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.RemoteBackend {
	case RemoteHTTP, RemoteNone:
	case RemotePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for REMOTE_BACKEND=postgres")
		}
	case RemoteMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required for REMOTE_BACKEND=mongo")
		}
	default:
		return nil, fmt.Errorf("unknown REMOTE_BACKEND %q", cfg.RemoteBackend)
	}

	switch cfg.LocalBackend {
	case LocalFile, LocalSQLite, LocalMemory:
	case LocalRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for LOCAL_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown LOCAL_BACKEND %q", cfg.LocalBackend)
	}

	trusted, err := middleware.ParseTrustedProxies(getEnvList("TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = trusted

	if cfg.ActivityCap <= 0 || cfg.LockoutThreshold <= 0 {
		return nil, fmt.Errorf("ACTIVITY_LOG_CAP and LOCKOUT_THRESHOLD must be positive")
	}

	if cfg.SessionSecret == "" {
		if appEnv == "production" {
			return nil, fmt.Errorf("SESSION_SECRET is required")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.SessionSecretGenerated = true
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
