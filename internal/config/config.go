package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PlannerModeHTTP = "http"
	PlannerModeLLM  = "llm"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Planner  PlannerConfig
	AI       AIConfig
	Rates    RatesConfig
	Catalog  CatalogConfig
	Budget   BudgetConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// AuthConfig описывает проверку токенов внешнего сервиса учетных записей.
type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	RateLimitPerMinute int
	RateLimitBurst     int
}

type PlannerConfig struct {
	Mode               string
	BaseURL            string
	Timeout            time.Duration
	CacheTTL           time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type AIConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

type RatesConfig struct {
	APIURL  string
	TTL     time.Duration
	Timeout time.Duration
}

type CatalogConfig struct {
	Path string
}

// BudgetConfig - доли категорий бюджета.
type BudgetConfig struct {
	Accommodation float64
	Food          float64
	Activities    float64
	Transport     float64
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		CORSOrigins:  parseCSVEnv("CORS_ORIGINS"),
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "travel"),
		Password:        getEnv("DB_PASSWORD", "travel"),
		Name:            getEnv("DB_NAME", "travel_planner"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	rateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 20)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "travel-identity"),
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	plannerTimeout, err := parseDurationEnv("PLANNER_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	plannerCacheTTL, err := parseDurationEnv("PLANNER_CACHE_TTL", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	plannerRateLimitPerMinute, err := parseIntEnv("PLANNER_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	plannerRateLimitBurst, err := parseIntEnv("PLANNER_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Planner = PlannerConfig{
		Mode:               strings.ToLower(getEnv("PLANNER_MODE", PlannerModeHTTP)),
		BaseURL:            getEnv("PLANNER_BASE_URL", "http://localhost:9091"),
		Timeout:            plannerTimeout,
		CacheTTL:           plannerCacheTTL,
		RateLimitPerMinute: plannerRateLimitPerMinute,
		RateLimitBurst:     plannerRateLimitBurst,
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 40*time.Second)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(getEnv("AI_PROVIDER", "openai"))
	defaultBaseURL, defaultModel := "", "gpt-4o-mini"
	switch aiProvider {
	case "groq":
		defaultBaseURL, defaultModel = "https://api.groq.com/openai/v1", "llama-3.1-8b-instant"
	case "gemini":
		defaultBaseURL, defaultModel = "https://generativelanguage.googleapis.com/v1beta", "gemini-1.5-flash"
	}

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && aiProvider == "gemini" {
		aiAPIKey = getEnv("GEMINI_API_KEY", "")
	}

	cfg.AI = AIConfig{
		Provider:        aiProvider,
		APIKey:          aiAPIKey,
		BaseURL:         getEnv("AI_BASE_URL", defaultBaseURL),
		Model:           getEnv("AI_MODEL", defaultModel),
		Timeout:         aiTimeout,
		MaxOutputTokens: aiMaxOutputTokens,
	}

	ratesTTL, err := parseDurationEnv("RATES_TTL", 10*time.Minute)
	if err != nil {
		return cfg, err
	}

	ratesTimeout, err := parseDurationEnv("RATES_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Rates = RatesConfig{
		APIURL:  getEnv("RATES_API_URL", "https://api.exchangerate-api.com/v4"),
		TTL:     ratesTTL,
		Timeout: ratesTimeout,
	}

	cfg.Catalog = CatalogConfig{Path: getEnv("CATALOG_PATH", "")}

	weights := [4]float64{}
	for i, entry := range []struct {
		key      string
		fallback float64
	}{
		{"BUDGET_WEIGHT_ACCOMMODATION", 0.40},
		{"BUDGET_WEIGHT_FOOD", 0.25},
		{"BUDGET_WEIGHT_ACTIVITIES", 0.25},
		{"BUDGET_WEIGHT_TRANSPORT", 0.10},
	} {
		weights[i], err = parseFloatEnv(entry.key, entry.fallback)
		if err != nil {
			return cfg, err
		}
	}

	cfg.Budget = BudgetConfig{
		Accommodation: weights[0],
		Food:          weights[1],
		Activities:    weights[2],
		Transport:     weights[3],
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.Planner.Mode {
	case PlannerModeHTTP:
		if c.Planner.BaseURL == "" {
			return fmt.Errorf("PLANNER_BASE_URL is required in http mode")
		}
	case PlannerModeLLM:
		switch c.AI.Provider {
		case "openai", "groq", "gemini":
		default:
			return fmt.Errorf("AI_PROVIDER must be openai, groq or gemini")
		}
		if c.AI.APIKey == "" {
			return fmt.Errorf("AI_API_KEY is required in llm mode")
		}
	default:
		return fmt.Errorf("PLANNER_MODE must be %q or %q", PlannerModeHTTP, PlannerModeLLM)
	}

	sum := c.Budget.Accommodation + c.Budget.Food + c.Budget.Activities + c.Budget.Transport
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("BUDGET_WEIGHT_* must sum to 1, got %.4f", sum)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	if parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%s must be a non-negative number", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
