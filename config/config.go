package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	LogLevel string

	// Browser
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	BrowserLang    string
	ChromeBin      string
	EdgeBin        string

	// Scraping
	MaxCompetitors       int
	ReviewsPerCompetitor int
	SelectorWaitTimeout  time.Duration
	PageSettleDelay      time.Duration
	TabSettleDelay       time.Duration
	DetailSettleDelay    time.Duration
	ScrollDelay          time.Duration
	MaxRetries           int
	RateLimitMs          int

	// Budgets
	ListingTimeout time.Duration
	RunTimeout     time.Duration

	// Sentiment
	SentimentModel     string
	SentimentModelDir  string
	SentimentUseGPU    bool
	OnnxLibraryPath    string
	DetectLanguages    []string
	NarrativeProvider  string
	GoogleAIAPIKey     string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	NarrativeMaxTokens int

	// Exports
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	CSVOutputPath    string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Headless:       getEnvBool("HEADLESS", true),
		ViewportWidth:  getEnvInt("VIEWPORT_WIDTH", 1920),
		ViewportHeight: getEnvInt("VIEWPORT_HEIGHT", 1080),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"),
		BrowserLang: getEnv("BROWSER_LANG", "en-US"),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		EdgeBin:     getEnv("EDGE_BIN", ""),

		MaxCompetitors:       getEnvInt("MAX_COMPETITORS", 5),
		ReviewsPerCompetitor: getEnvInt("REVIEWS_PER_COMPETITOR", 100),
		SelectorWaitTimeout:  getEnvDuration("SELECTOR_WAIT_TIMEOUT", 20*time.Second),
		PageSettleDelay:      getEnvDuration("PAGE_SETTLE_DELAY", 10*time.Second),
		TabSettleDelay:       getEnvDuration("TAB_SETTLE_DELAY", 5*time.Second),
		DetailSettleDelay:    getEnvDuration("DETAIL_SETTLE_DELAY", 3*time.Second),
		ScrollDelay:          getEnvDuration("SCROLL_DELAY", 2*time.Second),
		MaxRetries:           getEnvInt("MAX_RETRIES", 3),
		RateLimitMs:          getEnvInt("RATE_LIMIT_MS", 2000),

		ListingTimeout: getEnvDuration("LISTING_TIMEOUT", 5*time.Minute),
		RunTimeout:     getEnvDuration("RUN_TIMEOUT", 0),

		SentimentModel:     getEnv("SENTIMENT_MODEL", "tabularisai/multilingual-sentiment-analysis"),
		SentimentModelDir:  getEnv("SENTIMENT_MODEL_DIR", "./models/onnx"),
		SentimentUseGPU:    getEnvBool("SENTIMENT_USE_GPU", true),
		OnnxLibraryPath:    getEnv("ONNX_LIBRARY_PATH", ""),
		DetectLanguages:    getEnvList("DETECT_LANGUAGES", []string{"en", "ar"}),
		NarrativeProvider:  getEnv("NARRATIVE_PROVIDER", "gemini"),
		GoogleAIAPIKey:     getEnv("GOOGLE_AI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		NarrativeMaxTokens: getEnvInt("NARRATIVE_MAX_TOKENS", 1500),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "sentiment_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		CSVOutputPath:    getEnv("CSV_OUTPUT_PATH", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// PostgresEnabled reports whether a PostgreSQL export target is configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}

// NarrativeAPIKey returns the credential for the selected narrative provider.
func (c *Config) NarrativeAPIKey() string {
	if strings.EqualFold(c.NarrativeProvider, "openai") {
		return c.OpenAIAPIKey
	}
	return c.GoogleAIAPIKey
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or bare milliseconds ("1500").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
