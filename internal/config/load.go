package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envFile is loaded before the environment is read. Variables already
// present in the process environment win over file values.
const envFile = ".env.local"

// Load configuration from environment variables and optionally a local
// dotenv file. Environment variables take precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing dotenv file is the normal case in deployed environments.
	_ = godotenv.Load(envFile)

	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.data_dir", ".")
	v.SetDefault("groq.api_keys", []string{})
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("youtube.api_keys", []string{})
	v.SetDefault("process.force_regenerate_solutions", true)

	// Explicitly bind environment variables. The key pools accept more
	// than one variable name; the first one that is set wins.
	bindEnvs := []struct {
		key     string
		envVars []string
	}{
		{"server.port", []string{"SERVER_PORT"}},
		{"server.log_level", []string{"LOG_LEVEL"}},
		{"server.data_dir", []string{"DATA_DIR"}},
		{"groq.api_keys", []string{"GROQ_API_KEYS"}},
		{"groq.model", []string{"GROQ_MODEL"}},
		{"youtube.api_keys", []string{"YOUTUBE_API_KEYS", "YOUTUBE_API_KEY"}},
		{"process.force_regenerate_solutions", []string{"FORCE_REGENERATE_SOLUTIONS"}},
	}

	for _, env := range bindEnvs {
		err := v.BindEnv(append([]string{env.key}, env.envVars...)...)
		if err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", env.key, err)
		}
	}

	// Unmarshal and validate
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Groq.APIKeys = cleanKeys(cfg.Groq.APIKeys)
	cfg.YouTube.APIKeys = cleanKeys(cfg.YouTube.APIKeys)

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// cleanKeys trims surrounding whitespace from each entry and drops the
// blanks, so "k1, k2 ,," yields exactly two usable keys.
func cleanKeys(keys []string) []string {
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			cleaned = append(cleaned, key)
		}
	}
	return cleaned
}
