package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the server needs
type Config struct {
	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Gemini / Veo API
	GeminiAPIKey string
	VeoModel     string

	// Prompt enhancement (optional, extra keys rotate on 429)
	PromptModel    string
	ExtraAPIKeys   []string
	EnhancePrompts bool

	// Server
	Port string
}

var globalConfig *Config

// LoadConfig - load environment variables (reads .env when present)
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	useTLS := true
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	enhance := false
	if enhStr := os.Getenv("ENHANCE_PROMPTS"); enhStr != "" {
		if parsed, err := strconv.ParseBool(enhStr); err == nil {
			enhance = parsed
		}
	}

	var extraKeys []string
	if key := os.Getenv("GEMINI_API_KEY_2"); key != "" {
		extraKeys = append(extraKeys, key)
	}
	if key := os.Getenv("GEMINI_API_KEY_3"); key != "" {
		extraKeys = append(extraKeys, key)
	}

	globalConfig = &Config{
		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),

		// Gemini / Veo
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		VeoModel:     getEnv("VEO_MODEL", "veo-2.0-generate-001"),

		// Prompt enhancement
		PromptModel:    getEnv("PROMPT_MODEL", "gemini-1.5-flash"),
		ExtraAPIKeys:   extraKeys,
		EnhancePrompts: enhance,

		// Server
		Port: getEnv("PORT", "8080"),
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   Supabase: %s", globalConfig.SupabaseURL)
	log.Printf("   Veo model: %s", globalConfig.VeoModel)
	log.Printf("   Prompt enhancement: %v (%s)", globalConfig.EnhancePrompts, globalConfig.PromptModel)

	return globalConfig, nil
}

// GetConfig - return the loaded configuration
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - required environment variables
func (c *Config) validate() error {
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// getEnv - environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// AllAPIKeys - primary key first, then any extra rotation keys
func (c *Config) AllAPIKeys() []string {
	return append([]string{c.GeminiAPIKey}, c.ExtraAPIKeys...)
}

// GetRedisAddr - Redis connection address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
