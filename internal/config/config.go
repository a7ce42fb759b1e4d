package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// maxImageKeys is the highest credential slot scanned from the environment
// (GEMINI_API_KEY0 .. GEMINI_API_KEY7).
const maxImageKeys = 8

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Redis (run progress store)
	RedisURL    string
	RunTTLHours int

	// Text generation. OpenAI is used when its key is set, Gemini otherwise.
	OpenAIKey string

	// Image generation credential pool. Index i serves prompt i; key 0 also
	// backs Gemini text generation and the speech passthrough.
	GeminiKeys       []string
	ImageAspectRatio string

	// Script shape
	SegmentCount          int
	DefaultSegmentSeconds float64

	// Object storage
	StorageURL        string
	StorageServiceKey string
	StorageBucket     string
	StoragePrefix     string

	// Render service
	RenderAPIURL          string
	RenderAPIKey          string
	RenderPollIntervalMs  int
	RenderMaxPollAttempts int

	// Narration track (optional third timeline track)
	NarrationEnabled bool
	NarrationVoice   string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:               getEnv("API_PORT", "8080"),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		RunTTLHours:           getEnvInt("RUN_TTL_HOURS", 24),
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		GeminiKeys:            loadGeminiKeys(),
		ImageAspectRatio:      getEnv("IMAGE_ASPECT_RATIO", "9:16"),
		SegmentCount:          getEnvInt("SEGMENT_COUNT", 10),
		DefaultSegmentSeconds: getEnvFloat("DEFAULT_SEGMENT_SECONDS", 4),
		StorageURL:            getEnv("STORAGE_URL", ""),
		StorageServiceKey:     getEnv("STORAGE_SERVICE_KEY", ""),
		StorageBucket:         getEnv("STORAGE_BUCKET", "edureel-assets"),
		StoragePrefix:         getEnv("STORAGE_PREFIX", "uploads"),
		RenderAPIURL:          getEnv("RENDER_API_URL", ""),
		RenderAPIKey:          getEnv("RENDER_API_KEY", ""),
		RenderPollIntervalMs:  getEnvInt("RENDER_POLL_INTERVAL_MS", 500),
		RenderMaxPollAttempts: getEnvInt("RENDER_MAX_POLL_ATTEMPTS", 120),
		NarrationEnabled:      getEnvBool("NARRATION_ENABLED", false),
		NarrationVoice:        getEnv("NARRATION_VOICE", "Joanna"),
	}

	// Validate required fields
	if len(cfg.GeminiKeys) == 0 {
		return nil, fmt.Errorf("at least GEMINI_API_KEY0 is required")
	}

	if cfg.StorageURL == "" || cfg.StorageServiceKey == "" {
		return nil, fmt.Errorf("STORAGE_URL and STORAGE_SERVICE_KEY are required")
	}

	if cfg.RenderAPIURL == "" || cfg.RenderAPIKey == "" {
		return nil, fmt.Errorf("RENDER_API_URL and RENDER_API_KEY are required")
	}

	if cfg.SegmentCount <= 0 {
		return nil, fmt.Errorf("SEGMENT_COUNT must be positive")
	}

	return cfg, nil
}

// loadGeminiKeys collects GEMINI_API_KEY0..7 into the credential pool.
// Gaps are tolerated — an unset slot is skipped, so the pool stays dense
// and indexable 0..K-1.
func loadGeminiKeys() []string {
	var keys []string
	for i := 0; i < maxImageKeys; i++ {
		if key := os.Getenv(fmt.Sprintf("GEMINI_API_KEY%d", i)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
