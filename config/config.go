package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the server and the CLIs read from the environment.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Remote fetch proxy (server side talks to ScraperAPI, client side talks to the proxy endpoint)
	ScraperAPIKey     string        `envconfig:"SCRAPER_API_KEY"`
	ScraperAPIURL     string        `envconfig:"SCRAPER_API_URL" default:"https://api.scraperapi.com/"`
	ProxyEndpoint     string        `envconfig:"PROXY_ENDPOINT" default:"http://localhost:8080/api/scrape"`
	ProxyPageTimeout  time.Duration `envconfig:"PROXY_PAGE_TIMEOUT" default:"90s"`
	ProxyImageTimeout time.Duration `envconfig:"PROXY_IMAGE_TIMEOUT" default:"30s"`
	ProxyRateLimit    float64       `envconfig:"PROXY_RATE_LIMIT" default:"5"`
	ProxyBurst        int           `envconfig:"PROXY_BURST" default:"5"`
	ResolveShortLinks bool          `envconfig:"RESOLVE_SHORT_LINKS" default:"true"`

	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiTextModel  string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-2.5-flash"`
	GeminiImageModel string `envconfig:"GEMINI_IMAGE_MODEL" default:"gemini-2.5-flash-image"`

	RetryMax          int           `envconfig:"RETRY_MAX" default:"3"`
	RetryInitialDelay time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"1s"`
	RetryFactor       float64       `envconfig:"RETRY_FACTOR" default:"2"`

	DefaultLanguage  string `envconfig:"DEFAULT_LANGUAGE" default:"fr"`
	SessionCapacity  int    `envconfig:"SESSION_CAPACITY" default:"200"`
	ChromeRasterizer bool   `envconfig:"CHROME_RASTERIZER" default:"false"`

	ShopifyAPIVersion string `envconfig:"SHOPIFY_API_VERSION" default:"2024-04"`

	SettingsBackend string `envconfig:"SETTINGS_BACKEND" default:"file"`
	SettingsFile    string `envconfig:"SETTINGS_FILE" default:"settings.json"`
	SettingsSecret  string `envconfig:"SETTINGS_SECRET"`
	LedgerBackend   string `envconfig:"LEDGER_BACKEND" default:"memory"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017/"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"pagegen"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Image hosting; enhanced images stay inline data URLs when the bucket is empty
	AWSRegion     string        `envconfig:"AWS_REGION" default:"ap-south-1"`
	AWSBucketName string        `envconfig:"AWS_BUCKET_NAME"`
	S3PresignTTL  time.Duration `envconfig:"S3_PRESIGN_TTL" default:"24h"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	NotifyFrom     string `envconfig:"NOTIFY_FROM" default:"no-reply@pagegen.local"`
	NotifyEmail    string `envconfig:"NOTIFY_EMAIL"`
}

var (
	settingsBackends = map[string]bool{"memory": true, "file": true, "redis": true, "mongo": true}
	ledgerBackends   = map[string]bool{"memory": true, "mongo": true}
)

// LoadConfig loads environment variables from .env file and the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work at runtime.
func (c *Config) Validate() error {
	if c.ProxyPageTimeout <= 0 || c.ProxyImageTimeout <= 0 {
		return fmt.Errorf("proxy timeouts must be positive")
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("RETRY_MAX must not be negative, got %d", c.RetryMax)
	}
	if c.RetryFactor < 1 {
		return fmt.Errorf("RETRY_FACTOR must be at least 1, got %v", c.RetryFactor)
	}
	if c.SessionCapacity < 1 {
		return fmt.Errorf("SESSION_CAPACITY must be at least 1, got %d", c.SessionCapacity)
	}
	if !settingsBackends[c.SettingsBackend] {
		return fmt.Errorf("unknown SETTINGS_BACKEND %q", c.SettingsBackend)
	}
	if !ledgerBackends[c.LedgerBackend] {
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	return nil
}
