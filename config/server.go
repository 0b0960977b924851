package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Server is the configuration of "proptrans serve".
type Server struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Provider  ProviderConfig  `yaml:"provider"`
	Translate TranslateConfig `yaml:"translate"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig holds HTTP listener settings.
type HTTPConfig struct {
	Host            string        `yaml:"host"             env:"PROPTRANS_HTTP_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PROPTRANS_HTTP_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"PROPTRANS_HTTP_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"PROPTRANS_HTTP_WRITE_TIMEOUT"    env-default:"10m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"PROPTRANS_HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PROPTRANS_HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// ProviderConfig selects and configures the translation backend.
type ProviderConfig struct {
	ID           string        `yaml:"id"            env:"PROPTRANS_PROVIDER"            env-default:"cloudflare"`
	BaseURL      string        `yaml:"base_url"      env:"PROPTRANS_PROVIDER_BASE_URL"`
	APIKey       string        `yaml:"api_key"       env:"PROPTRANS_API_KEY"`
	AccountID    string        `yaml:"account_id"    env:"PROPTRANS_CF_ACCOUNT_ID"`
	Model        string        `yaml:"model"         env:"PROPTRANS_MODEL"`
	Proxy        string        `yaml:"proxy"         env:"PROPTRANS_PROXY"`
	Timeout      time.Duration `yaml:"timeout"       env:"PROPTRANS_PROVIDER_TIMEOUT"    env-default:"60s"`
	MaxRetries   int           `yaml:"max_retries"   env:"PROPTRANS_PROVIDER_MAX_RETRIES" env-default:"0"`
	SystemPrompt string        `yaml:"system_prompt" env:"PROPTRANS_SYSTEM_PROMPT"`
}

// TranslateConfig tunes the orchestrator.
type TranslateConfig struct {
	BatchSize  int    `yaml:"batch_size"  env:"PROPTRANS_BATCH_SIZE"  env-default:"100"`
	SourceLang string `yaml:"source_lang" env:"PROPTRANS_SOURCE_LANG" env-default:"en"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"PROPTRANS_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"PROPTRANS_LOG_FORMAT" env-default:"json"`
}

// ServerConfigEnv names the variable holding the server config file path.
const ServerConfigEnv = "PROPTRANS_CONFIG"

// DefaultServerConfigPath is read when ServerConfigEnv is unset.
const DefaultServerConfigPath = "./proptrans-server.yaml"

// LoadServer reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML path comes from PROPTRANS_CONFIG (fallback DefaultServerConfigPath).
// If the file does not exist and PROPTRANS_CONFIG was not set explicitly,
// configuration is loaded from ENV + defaults only.
func LoadServer() (*Server, error) {
	var cfg Server

	path := os.Getenv(ServerConfigEnv)
	explicitPath := path != ""
	if !explicitPath {
		path = DefaultServerConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that tags cannot express.
func (c *Server) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be in 1..65535 (got %d)", c.HTTP.Port)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("translate.batch_size must be > 0 (got %d)", c.Translate.BatchSize)
	}
	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider.max_retries must be >= 0 (got %d)", c.Provider.MaxRetries)
	}
	if c.Provider.ID == "" {
		return fmt.Errorf("provider.id is required")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

// Addr returns the listen address.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}
