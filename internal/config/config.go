package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"gradscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Server    ServerConfig
	Dashboard DashboardConfig
	Profiling ProfilingConfig
	Log       LogConfig
}

// DataConfig describes where the graduates table comes from
type DataConfig struct {
	Source         string `validate:"oneof=file postgres"`
	File           string `validate:"required_if=Source file"`
	DatabaseURL    string `validate:"required_if=Source postgres"`
	Table          string `validate:"required_if=Source postgres"`
	LenientNumbers bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// DashboardConfig selects the dashboard variant and its option policy
type DashboardConfig struct {
	Variant      string `validate:"required"`
	OptionPolicy string `validate:"omitempty,oneof=base chained"`
}

// ProfilingConfig holds the ops server settings (pprof, metrics, health)
type ProfilingConfig struct {
	Port    string `validate:"required_if=Enabled true"`
	Enabled bool
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string `validate:"omitempty,oneof=json console"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:      *loadDataConfig(),
		Server:    *loadServerConfig(),
		Dashboard: *loadDashboardConfig(),
		Profiling: *loadProfilingConfig(),
		Log:       *loadLogConfig(),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks struct tags and returns a CONFIG_INVALID error listing the offending fields
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return errors.ConfigInvalid("invalid settings: " + strings.Join(fields, ", "))
		}
		return errors.Wrap(err, "validating configuration")
	}
	return nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:         getEnvOrDefault("DATA_SOURCE", "file"),
		File:           getEnvOrDefault("DATA_FILE", "data/raw_graduates.csv"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		Table:          getEnvOrDefault("DATA_TABLE", "graduates"),
		LenientNumbers: getEnvBoolOrDefault("LENIENT_NUMBERS", false),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Variant:      getEnvOrDefault("DASHBOARD_VARIANT", "overview"),
		OptionPolicy: getEnvOrDefault("OPTION_POLICY", ""),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
