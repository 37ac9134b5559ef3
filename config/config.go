package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Zoom     ZoomConfig
	Google   GoogleConfig
	Drive    DriveConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Log      LogConfig
	Upstream UpstreamConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// ZoomConfig holds meeting provider credentials. Server-to-server OAuth
// (AccountID/ClientID/ClientSecret) is the primary mode; APIKey/APISecret is
// the legacy JWT-app mode kept for accounts that never migrated. OAuth wins
// when both are set.
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIKey       string
	APISecret    string
	OAuthBaseURL string // default https://zoom.us
	APIBaseURL   string // default https://api.zoom.us/v2
	MaxRetries   int    // transient retry attempts per API call
}

// GoogleConfig holds calendar service OAuth settings. A static AccessToken
// short-circuits the refresh flow (useful for short-lived deployments and
// tests); otherwise ClientID/ClientSecret/RefreshToken drive a token source.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	CalendarID   string // default "primary"
}

// DriveConfig toggles the Drive-backed recording store. Reuses GoogleConfig
// credentials; the OAuth scope must include drive.readonly.
type DriveConfig struct {
	Enabled bool
}

// RedisConfig holds the optional shared token-cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds credentials for the optional S3-backed recording store.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	RecordingsBucket     string
	PresignExpireMinutes int
}

// LogConfig holds log output settings. Empty FilePath logs to stdout.
type LogConfig struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// UpstreamConfig holds settings applied to every external call.
type UpstreamConfig struct {
	TimeoutSec int
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Zoom: ZoomConfig{
			AccountID:    getEnv("ZOOM_ACCOUNT_ID", ""),
			ClientID:     getEnv("ZOOM_CLIENT_ID", ""),
			ClientSecret: getEnv("ZOOM_CLIENT_SECRET", ""),
			APIKey:       getEnv("ZOOM_API_KEY", ""),
			APISecret:    getEnv("ZOOM_API_SECRET", ""),
			OAuthBaseURL: getEnv("ZOOM_OAUTH_BASE_URL", "https://zoom.us"),
			APIBaseURL:   getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us/v2"),
			MaxRetries:   getEnvInt("ZOOM_MAX_RETRIES", 3),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
			AccessToken:  getEnv("GOOGLE_ACCESS_TOKEN", ""),
			CalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),
		},
		Drive: DriveConfig{
			Enabled: getEnv("DRIVE_RECORDINGS_ENABLED", "") == "1",
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			RecordingsBucket:     getEnv("AWS_S3_RECORDINGS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 60),
		},
		Log: LogConfig{
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
		Upstream: UpstreamConfig{
			TimeoutSec: getEnvInt("UPSTREAM_TIMEOUT_SEC", 15),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
