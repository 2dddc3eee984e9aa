package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Groq    GroqConfig    `mapstructure:"groq" validate:"required"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Process ProcessConfig `mapstructure:"process"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// DataDir is where snapshot files are read and written.
	DataDir string `mapstructure:"data_dir" validate:"required"`
}

// GroqConfig contains all completion-provider related settings.
type GroqConfig struct {
	// APIKeys is the rotation pool, loaded from a comma-separated list.
	// An empty pool is allowed at startup; calls fail until keys exist.
	APIKeys []string `mapstructure:"api_keys"`
	Model   string   `mapstructure:"model" validate:"required"`
}

// YouTubeConfig contains all video-search related settings.
type YouTubeConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// ProcessConfig contains settings that steer the enrichment pipeline.
type ProcessConfig struct {
	// ForceRegenerateSolutions rewrites solutions even for questions
	// that already carry one.
	ForceRegenerateSolutions bool `mapstructure:"force_regenerate_solutions"`
}
