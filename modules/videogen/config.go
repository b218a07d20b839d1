package videogen

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config - Veo driver settings
type Config struct {
	Model            string
	PollInterval     time.Duration
	Timeout          time.Duration
	ExpectedDuration time.Duration
}

var veoConfig *Config

// LoadConfig - load driver settings from environment variables
func LoadConfig() *Config {
	if veoConfig != nil {
		return veoConfig
	}

	model := os.Getenv("VEO_MODEL")
	if model == "" {
		model = "veo-2.0-generate-001"
	}

	veoConfig = &Config{
		Model:            model,
		PollInterval:     envSeconds("VEO_POLL_SECONDS", 10),
		Timeout:          envSeconds("VEO_TIMEOUT_SECONDS", 300),
		ExpectedDuration: envSeconds("VEO_EXPECTED_SECONDS", 180),
	}

	log.Printf("✅ [Veo] Config loaded - Model: %s, Poll: %v, Timeout: %v",
		veoConfig.Model, veoConfig.PollInterval, veoConfig.Timeout)
	return veoConfig
}

// GetConfig - return driver settings
func GetConfig() *Config {
	if veoConfig == nil {
		return LoadConfig()
	}
	return veoConfig
}

// envSeconds - integer seconds environment variable with default
func envSeconds(key string, defaultSeconds int) time.Duration {
	if str := os.Getenv(key); str != "" {
		if parsed, err := strconv.Atoi(str); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
