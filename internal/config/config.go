package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host string
	Port string
	Env  string

	// Ollama engine
	OllamaURL         string
	OllamaModel       string
	OllamaTimeoutSecs int
	OllamaTemperature float64

	// Web search
	SearchURL         string
	SearchAPIKey      string
	SearchTimeoutSecs int

	// Assembly limits
	AttachMaxBytes       int
	SearchResultMaxBytes int

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment. Every value has a default:
// the backend must boot on a fresh machine with no configuration at all.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Host:                 getEnvOrDefault("HOST", "127.0.0.1"),
		Port:                 getEnvOrDefault("PORT", "8000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		OllamaURL:            getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:          getEnvOrDefault("OLLAMA_MODEL", "deepseek-r1:7b"),
		OllamaTimeoutSecs:    getEnvAsIntOrDefault("OLLAMA_TIMEOUT_SECONDS", 120),
		OllamaTemperature:    getEnvAsFloatOrDefault("OLLAMA_TEMPERATURE", 0.7),
		SearchURL:            getEnvOrDefault("SEARCH_URL", "https://ollama.com/api/web_search"),
		SearchAPIKey:         getEnvOrDefault("SEARCH_API_KEY", ""),
		SearchTimeoutSecs:    getEnvAsIntOrDefault("SEARCH_TIMEOUT_SECONDS", 15),
		AttachMaxBytes:       getEnvAsIntOrDefault("ATTACH_MAX_BYTES", 131072),
		SearchResultMaxBytes: getEnvAsIntOrDefault("SEARCH_RESULT_MAX_BYTES", 16384),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:              getEnvOrDefault("LOG_FILE", ""),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
