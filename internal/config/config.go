package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration for a pipeline run.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	SCM      SCMConfig      `mapstructure:"scm"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// CompilerConfig holds bicep compiler settings
type CompilerConfig struct {
	Path           string `mapstructure:"path"`
	Version        string `mapstructure:"version"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SCMConfig holds pull request host settings. The token is read from the
// environment only, never from the config file.
type SCMConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Repository string `mapstructure:"repository"`
	Extension  string `mapstructure:"extension"`
}

// AnalyzerConfig holds remote analysis settings
type AnalyzerConfig struct {
	Remote         bool   `mapstructure:"remote"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// OutputConfig holds display settings
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Load reads configuration from file (--config or ~/.iacscan/config.yaml),
// environment (IACSCAN_*), and defaults, in the usual viper precedence.
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".iacscan"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("IACSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("compiler.version", "0.30.23")
	viper.SetDefault("compiler.timeout_seconds", 60)

	viper.SetDefault("scm.extension", ".bicep")

	viper.SetDefault("analyzer.remote", true)
	viper.SetDefault("analyzer.timeout_seconds", 30)

	viper.SetDefault("output.format", "table")
}

// CompileTimeout returns the compiler deadline as a duration.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.Compiler.TimeoutSeconds) * time.Second
}

// AnalyzeTimeout returns the remote analysis deadline as a duration.
func (c *Config) AnalyzeTimeout() time.Duration {
	return time.Duration(c.Analyzer.TimeoutSeconds) * time.Second
}

// SCMToken returns the host API token from the environment.
func (c *Config) SCMToken() string {
	if token := os.Getenv("IACSCAN_SCM_TOKEN"); token != "" {
		return token
	}
	// Azure Pipelines exposes the job token here.
	return os.Getenv("SYSTEM_ACCESSTOKEN")
}
