package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env             string        `validate:"oneof=development production test"`
	AppSecret       string        `validate:"required,min=8"`
	DatabaseURL     string        `validate:"required"`
	TMDBAPIKey      string        `validate:"required"`
	TMDBBaseURL     string        `validate:"required,url"`
	ProviderTimeout time.Duration `validate:"gt=0"`
	SessionTTL      time.Duration `validate:"gte=0"`
	CookieSecure    bool
	Port            string `validate:"required,numeric"`
	SiteName        string
	TemplatesDir    string
	StaticDir       string
	LogLevel        string `validate:"oneof=trace debug info warn error"`
	LogFile         string
}

// Load 加载配置
func Load() *Config {
	timeoutSeconds, err := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "15"))
	if err != nil || timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}
	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "0"))
	if err != nil || ttlHours < 0 {
		ttlHours = 0
	}

	appSecret := getEnv("APP_SECRET", getEnv("SESSION_SECRET", defaultSecret))
	env := getEnv("APP_ENV", "development")

	if env == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:             env,
		AppSecret:       appSecret,
		DatabaseURL:     getEnv("DATABASE_URL", "watchlist.db"),
		TMDBAPIKey:      getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:     strings.TrimRight(getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
		ProviderTimeout: time.Duration(timeoutSeconds) * time.Second,
		SessionTTL:      time.Duration(ttlHours) * time.Hour,
		CookieSecure:    getEnv("COOKIE_SECURE", "false") == "true",
		Port:            getEnv("PORT", "5000"),
		SiteName:        getEnv("SITE_NAME", "CineMatch"),
		TemplatesDir:    getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:       getEnv("STATIC_DIR", "./web/static"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:         getEnv("LOG_FILE", ""),
	}
}

// Validate 校验配置是否完整
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	return nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
