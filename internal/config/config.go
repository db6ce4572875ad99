package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port            int           `envconfig:"PORT" default:"3000"`
	Environment     string        `envconfig:"ENV" default:"development"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`

	// Database
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"frontdesk"`

	// Embedding extractor
	ExtractorType      string        `envconfig:"EXTRACTOR_TYPE" default:"deepface"`
	DeepFaceURL        string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel      string        `envconfig:"DEEPFACE_MODEL" default:"Dlib"`
	DeepFaceDetector   string        `envconfig:"DEEPFACE_DETECTOR" default:"opencv"`
	DeepFaceTimeout    time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`
	DeepFaceRetries    int           `envconfig:"DEEPFACE_RETRIES" default:"3"`
	EmbeddingDimension int           `envconfig:"EMBEDDING_DIMENSION" default:"128"`

	// Images
	UploadDir           string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxImageSize        int64         `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`
	OrphanSweepInterval time.Duration `envconfig:"ORPHAN_SWEEP_INTERVAL" default:"1h"`
	OrphanGracePeriod   time.Duration `envconfig:"ORPHAN_GRACE_PERIOD" default:"15m"`

	// Security
	APIKey             string `envconfig:"API_KEY" required:"true"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	// Webhooks; an empty URL disables outbound delivery
	WebhookURL          string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret       string        `envconfig:"WEBHOOK_SECRET"`
	WebhookMaxAttempts  int           `envconfig:"WEBHOOK_MAX_ATTEMPTS" default:"5"`
	WebhookPollInterval time.Duration `envconfig:"WEBHOOK_POLL_INTERVAL" default:"5s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %d", c.MaxImageSize)
	}
	if c.WebhookURL != "" && c.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}
	return nil
}

// WebhooksEnabled reports whether events are delivered to WEBHOOK_URL
func (c *Config) WebhooksEnabled() bool {
	return c.WebhookURL != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
