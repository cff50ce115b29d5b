package gemini

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Gemini client.
type Config struct {
	APIKey        string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL       string        // default https://generativelanguage.googleapis.com/v1beta
	Model         string        // e.g., "gemini-2.0-flash"
	Timeout       time.Duration // http client timeout
	MaxRetries    int           // total attempts on 429 responses
	RetryBaseWait time.Duration // first backoff step, doubles per attempt
	HTTPClient    *http.Client  // injectable for tests
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryBaseWait <= 0 {
		cfg.RetryBaseWait = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		log:        logger,
	}
}
