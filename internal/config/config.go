package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Storage   StorageConfig
	Generator GeneratorConfig
	Templates TemplateConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in the production environment.
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// UploadConfig holds limits applied to incoming documents.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload cap in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// StorageConfig holds the scratch directories shared with the generator.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// GeneratorConfig describes how the external generator is launched.
type GeneratorConfig struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TemplateConfig holds template selection settings. An empty Allowed list
// accepts any template name.
type TemplateConfig struct {
	Default string   `mapstructure:"default"`
	Allowed []string `mapstructure:"allowed"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the IDCARD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IDCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "3m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("upload.max_file_size_mb", 5)

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "generated")

	// Generator defaults match the bundled generate_id.py script
	v.SetDefault("generator.command", "python3")
	v.SetDefault("generator.args", "generate_id.py")
	v.SetDefault("generator.dir", "")
	v.SetDefault("generator.timeout", "2m")

	v.SetDefault("templates.default", "Template 1")
	v.SetDefault("templates.allowed", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:3001,http://127.0.0.1:3001")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	envBindings := map[string]string{
		"server.port":             "IDCARD_SERVER_PORT",
		"server.read_timeout":     "IDCARD_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "IDCARD_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout": "IDCARD_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":      "IDCARD_SERVER_ENVIRONMENT",
		"upload.max_file_size_mb": "IDCARD_UPLOAD_MAX_FILE_SIZE_MB",
		"storage.upload_dir":      "IDCARD_STORAGE_UPLOAD_DIR",
		"storage.output_dir":      "IDCARD_STORAGE_OUTPUT_DIR",
		"generator.command":       "IDCARD_GENERATOR_COMMAND",
		"generator.args":          "IDCARD_GENERATOR_ARGS",
		"generator.dir":           "IDCARD_GENERATOR_DIR",
		"generator.timeout":       "IDCARD_GENERATOR_TIMEOUT",
		"templates.default":       "IDCARD_TEMPLATES_DEFAULT",
		"templates.allowed":       "IDCARD_TEMPLATES_ALLOWED",
		"cors.allowed_origins":    "IDCARD_CORS_ALLOWED_ORIGINS",
		"log.level":               "IDCARD_LOG_LEVEL",
		"log.format":              "IDCARD_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if IDCARD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("IDCARD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Storage = StorageConfig{
		UploadDir: v.GetString("storage.upload_dir"),
		OutputDir: v.GetString("storage.output_dir"),
	}
	// Generator args are whitespace separated, e.g. "-u generate_id.py"
	cfg.Generator = GeneratorConfig{
		Command: v.GetString("generator.command"),
		Args:    strings.Fields(v.GetString("generator.args")),
		Dir:     v.GetString("generator.dir"),
		Timeout: v.GetDuration("generator.timeout"),
	}
	cfg.Templates = TemplateConfig{
		Default: strings.TrimSpace(v.GetString("templates.default")),
		Allowed: splitComma(v.GetString("templates.allowed")),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitComma(v.GetString("cors.allowed_origins")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Upload.MaxFileSizeMB <= 0 {
		return errors.New("upload.max_file_size_mb must be positive")
	}
	if strings.TrimSpace(c.Generator.Command) == "" {
		return errors.New("generator.command must be set")
	}
	if c.Storage.UploadDir == "" || c.Storage.OutputDir == "" {
		return errors.New("storage.upload_dir and storage.output_dir must be set")
	}
	if c.Templates.Default == "" {
		return errors.New("templates.default must not be empty")
	}
	// The response is written after the generator exits, so the generator has to
	// finish inside the connection's write deadline.
	if c.Server.WriteTimeout > 0 {
		if c.Generator.Timeout <= 0 {
			return errors.New("generator.timeout must be set when server.write_timeout is set")
		}
		if c.Generator.Timeout >= c.Server.WriteTimeout {
			return fmt.Errorf("generator.timeout (%s) must be shorter than server.write_timeout (%s)",
				c.Generator.Timeout, c.Server.WriteTimeout)
		}
	}
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
