package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SeedFile          string        // path to seed.yaml applied to empty stores (optional)
	ReconcileInterval time.Duration // interval between quota recounts (default: 1h)

	// Artifact storage / download links
	PublicDomain   string // public domain serving uploaded artifacts (ex: dl.example.com)
	DefaultIconURL string // icon used when an entry does not provide one
	MaxUploadBytes int64  // APK upload size cap (default: 1 GiB)
	S3Bucket       string // empty => uploads disabled
	S3Endpoint     string // R2/MinIO endpoint URL (optional for plain AWS)
	S3Region       string
	S3AccessKey    string
	S3Secret       string
	S3PathStyle    bool

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => refuse to boot without a password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("APPSTORE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("APPSTORE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("APPSTORE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("APPSTORE_PRETTY_LOG", false),

		// Bootstrap & maintenance
		SeedFile:          getenv("APPSTORE_SEED_FILE", ""),
		ReconcileInterval: mustDuration("APPSTORE_RECONCILE_INTERVAL", time.Hour),

		// Artifact storage
		PublicDomain:   requireEnv("APPSTORE_PUBLIC_DOMAIN"),
		DefaultIconURL: getenv("APPSTORE_DEFAULT_ICON_URL", ""),
		MaxUploadBytes: getenvInt64("APPSTORE_MAX_UPLOAD_BYTES", 1<<30),
		S3Bucket:       getenv("APPSTORE_S3_BUCKET", ""),
		S3Endpoint:     getenv("APPSTORE_S3_ENDPOINT", ""),
		S3Region:       getenv("APPSTORE_S3_REGION", "auto"),
		S3AccessKey:    getenv("APPSTORE_S3_ACCESS_KEY_ID", ""),
		S3Secret:       getenv("APPSTORE_S3_SECRET_ACCESS_KEY", ""),
		S3PathStyle:    mustBool("APPSTORE_S3_PATH_STYLE", false),

		// Redis settings
		RedisAddr:             requireEnv("APPSTORE_REDIS_ADDR"),
		RedisUser:             getenv("APPSTORE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("APPSTORE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("APPSTORE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("APPSTORE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("APPSTORE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("APPSTORE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("APPSTORE_TRUST_PROXY", true),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: APPSTORE_REDIS_PASSWORD is required when APPSTORE_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.S3Bucket != "" && cfg.S3AccessKey == "" {
		panic("❌ FATAL: APPSTORE_S3_ACCESS_KEY_ID is required when APPSTORE_S3_BUCKET is set")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.S3Secret = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
