// Package kis provides a client for the Korea Investment & Securities Open API.
package kis

import (
	"time"

	"chart_backend/internal/shared/envconfig"
)

// Config holds configuration for the KIS Open API client.
type Config struct {
	AppKey            string        // Application key issued by the provider
	AppSecret         string        // Application secret issued by the provider
	BaseURL           string        // Base URL (e.g., "https://openapi.koreainvestment.com:9443")
	Timeout           time.Duration // HTTP request timeout
	MaxRetries        uint64        // Retries for transient network failures
	RetryDelay        time.Duration // Fixed delay between retries
	RequestsPerSecond float64       // Upstream request budget; 0 means unlimited
}

// LoadConfig loads KIS configuration from environment variables.
func LoadConfig() Config {
	return Config{
		AppKey:            envconfig.String("KIS_APP_KEY", ""),
		AppSecret:         envconfig.String("KIS_APP_SECRET", ""),
		BaseURL:           envconfig.String("KIS_BASE_URL", "https://openapi.koreainvestment.com:9443"),
		Timeout:           envconfig.Duration("KIS_TIMEOUT", 10*time.Second),
		MaxRetries:        uint64(max(envconfig.Int("KIS_MAX_RETRIES", 3), 0)),
		RetryDelay:        envconfig.Duration("KIS_RETRY_DELAY", time.Second),
		RequestsPerSecond: envconfig.Float("KIS_REQUESTS_PER_SECOND", 15),
	}
}
