package config

import (
	"os"
	"strconv"
	"time"
)

// ChatConfig points at the external agent backend the widget talks to.
type ChatConfig struct {
	// BackendURL is the base URL of the agent backend.
	BackendURL string
	// RelayPath is the URL substring the interceptor uses to recognize
	// chat traffic.
	RelayPath string
}

// SearchConfig points at the video-search collaborator.
type SearchConfig struct {
	Endpoint string
	Limit    int
	CacheTTL time.Duration
}

// PanelConfig tunes the panel registries.
type PanelConfig struct {
	// ApplyDelay is the simulated latency before an update is applied,
	// kept for a consistent loading UX signal.
	ApplyDelay time.Duration
	// HotActivityPageSize is the fixed client-side page size.
	HotActivityPageSize int
}

type Config struct {
	ServerPort string
	Chat       ChatConfig
	Search     SearchConfig
	Panels     PanelConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnvOrDefault("SERVER_PORT", "8093"),
		Chat: ChatConfig{
			BackendURL: getEnvOrDefault("CHAT_BACKEND_URL", "http://localhost:8000"),
			RelayPath:  getEnvOrDefault("CHAT_RELAY_PATH", "/copilotkit_remote"),
		},
		Search: SearchConfig{
			Endpoint: getEnvOrDefault("VIDEO_SEARCH_ENDPOINT", "http://localhost:8000/api/search/videos"),
			Limit:    getEnvIntOrDefault("VIDEO_SEARCH_LIMIT", 3),
			CacheTTL: getEnvDurationOrDefault("VIDEO_SEARCH_CACHE_TTL", 5*time.Minute),
		},
		Panels: PanelConfig{
			ApplyDelay:          getEnvDurationOrDefault("PANEL_APPLY_DELAY", 300*time.Millisecond),
			HotActivityPageSize: getEnvIntOrDefault("HOT_ACTIVITY_PAGE_SIZE", 5),
		},
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
