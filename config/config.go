package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Port the HTTP API listens on
	Port string `env:"PORT" envDefault:"5250"`

	// DatabasePath is the sqlite file backing caches and history
	DatabasePath string `env:"DATABASE_PATH" envDefault:"database/hauswert.db"`

	Geocoder struct {
		// BaseURL of the Nominatim-compatible geocoding service
		BaseURL string `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`

		// TimeoutSeconds for a single geocoding call
		TimeoutSeconds int `env:"GEOCODER_TIMEOUT" envDefault:"10"`
	}

	Sources struct {
		// Base URLs of the external data services; an empty URL means the
		// source is unconfigured and resolves to absent
		LandValueURLTemplate string `env:"LAND_VALUE_URL_TEMPLATE"`
		MarketStatsURL       string `env:"MARKET_STATS_URL"`
		PriceIndexURL        string `env:"PRICE_INDEX_URL"`
		CostIndexURL         string `env:"COST_INDEX_URL"`
		RegionalReferenceURL string `env:"REGIONAL_REFERENCE_URL"`

		// Per-branch timeouts in seconds, reflecting source reliability
		LandValueTimeout  int `env:"LAND_VALUE_TIMEOUT" envDefault:"20"`
		MarketTimeout     int `env:"MARKET_TIMEOUT" envDefault:"15"`
		PriceIndexTimeout int `env:"PRICE_INDEX_TIMEOUT" envDefault:"5"`
		CostIndexTimeout  int `env:"COST_INDEX_TIMEOUT" envDefault:"5"`
		RegionalTimeout   int `env:"REGIONAL_TIMEOUT" envDefault:"10"`

		// Cache lifetimes
		LandValueTTLDays  int `env:"LAND_VALUE_TTL_DAYS" envDefault:"180"`
		MarketTTLDays     int `env:"MARKET_TTL_DAYS" envDefault:"90"`
		PriceIndexTTLDays int `env:"PRICE_INDEX_TTL_DAYS" envDefault:"30"`
		CostIndexTTLDays  int `env:"COST_INDEX_TTL_DAYS" envDefault:"90"`

		// Maximum requests per second against any single external service
		RequestsPerSec int `env:"SOURCE_REQUESTS_PER_SEC" envDefault:"5"`

		// Maximum retries per HTTP call before the source resolves absent
		MaxRetries int `env:"SOURCE_MAX_RETRIES" envDefault:"2"`
	}

	Advisory struct {
		// APIKey enables the advisory backend; empty means unavailable
		APIKey string `env:"ADVISORY_API_KEY"`

		// Model name passed to the chat completion API
		Model string `env:"ADVISORY_MODEL" envDefault:"gpt-4o"`

		// TimeoutSeconds bounds a single advisory call
		TimeoutSeconds int `env:"ADVISORY_TIMEOUT" envDefault:"30"`

		// TTLHours for the input-signature opinion cache
		TTLHours int `env:"ADVISORY_TTL_HOURS" envDefault:"24"`
	}

	CachePersistence struct {
		// Seconds to accumulate dirty entries before a batched write
		DebounceSeconds int `env:"CACHE_FLUSH_DEBOUNCE" envDefault:"10"`

		// Maximum number of retries for a failed flush
		MaxRetries int `env:"CACHE_FLUSH_RETRIES" envDefault:"3"`

		// Delay between flush retries in seconds
		RetryDelay int `env:"CACHE_FLUSH_RETRY_DELAY" envDefault:"5"`

		// Minutes between periodic expiry sweeps
		SweepIntervalMinutes int `env:"CACHE_SWEEP_INTERVAL" envDefault:"60"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
