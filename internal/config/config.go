package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity Provider
	IdentityAPIURL string
	IdentityAPIKey string

	// Voice SDK
	VoiceAPIURL       string
	VoiceAPIKey       string
	VoiceWorkflowID   string
	VoiceDialTimeout  time.Duration
	SpeakingThreshold float64

	// Session
	SessionMaxAge time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Retention
	TranscriptRetentionDays int
	DraftRetentionDays      int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// sessionMaxAgeDefault はセッションCookieの有効期間。発行時に固定される。
const sessionMaxAgeDefault = 5 * 24 * time.Hour

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.IdentityAPIURL = os.Getenv("IDENTITY_API_URL")
	if cfg.IdentityAPIURL == "" {
		missing = append(missing, "IDENTITY_API_URL")
	}

	cfg.IdentityAPIKey = os.Getenv("IDENTITY_API_KEY")
	if cfg.IdentityAPIKey == "" {
		missing = append(missing, "IDENTITY_API_KEY")
	}

	cfg.VoiceAPIURL = os.Getenv("VOICE_API_URL")
	if cfg.VoiceAPIURL == "" {
		missing = append(missing, "VOICE_API_URL")
	}

	cfg.VoiceAPIKey = os.Getenv("VOICE_API_KEY")
	if cfg.VoiceAPIKey == "" {
		missing = append(missing, "VOICE_API_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	// ワークフローIDは未設定でも起動できる（設定フローが無効になるだけ）
	cfg.VoiceWorkflowID = getEnvString("VOICE_WORKFLOW_ID", "")
	cfg.VoiceDialTimeout = getEnvDuration("VOICE_DIAL_TIMEOUT", 10*time.Second)
	cfg.SpeakingThreshold = getEnvFloat("SPEAKING_THRESHOLD", 0.1)
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", sessionMaxAgeDefault)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.TranscriptRetentionDays = getEnvInt("TRANSCRIPT_RETENTION_DAYS", 180)
	cfg.DraftRetentionDays = getEnvInt("DRAFT_RETENTION_DAYS", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
