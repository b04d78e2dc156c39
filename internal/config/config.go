// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// DatabaseURLが空の場合、永続ストアなしのインメモリモードで動作する。
	DatabaseURL string

	// Content
	ContentDir string

	// Storage
	// StoreTimeoutは永続ストア呼び出し1回あたりの上限時間。
	// 超過時はそのリクエストに限りインメモリフォールバックへ縮退する。
	StoreTimeout time.Duration

	// Rate Limit（req/min/IP）
	RateLimitGeneral   int
	RateLimitSubscribe int

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// すべての項目にデフォルト値があるため、エラーは返さない。
func Load() *Config {
	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ContentDir:         getEnvString("CONTENT_DIR", "content/blog"),
		StoreTimeout:       getEnvDuration("STORE_TIMEOUT", 3*time.Second),
		RateLimitGeneral:   getEnvInt("RATE_LIMIT_GENERAL", 120),
		RateLimitSubscribe: getEnvInt("RATE_LIMIT_SUBSCRIBE", 5),
		ServerPort:         getEnvString("SERVER_PORT", "8080"),
		BaseURL:            getEnvString("BASE_URL", "http://localhost:8080"),
		CORSAllowedOrigin:  getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}
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
