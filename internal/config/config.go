// Package config loads AppDNA service configuration from .appdna/config.json
// with APPDNA_-prefixed environment overrides. A missing config file yields
// the defaults, so a bare checkout works without any setup.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigDirName is the dot-directory holding config, journal, and policy files.
const ConfigDirName = ".appdna"

// Config represents the complete AppDNA model service configuration.
type Config struct {
	Version   int    `json:"version" mapstructure:"version"`
	ModelFile string `json:"modelFile" mapstructure:"modelFile"`

	DataBridge    BridgeConfig        `json:"dataBridge" mapstructure:"dataBridge"`
	CommandBridge CommandBridgeConfig `json:"commandBridge" mapstructure:"commandBridge"`
	Backup        BackupConfig        `json:"backup" mapstructure:"backup"`
	Cache         CacheConfig         `json:"cache" mapstructure:"cache"`
	Journal       JournalConfig       `json:"journal" mapstructure:"journal"`
	Logging       LoggingConfig       `json:"logging" mapstructure:"logging"`
}

// BridgeConfig contains a single bridge listener's bind address.
type BridgeConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// Addr returns the host:port listen address.
func (b BridgeConfig) Addr() string {
	return net.JoinHostPort(b.Host, fmt.Sprintf("%d", b.Port))
}

// CommandBridgeConfig contains the command bridge's bind address plus its
// optional bearer-token authorization settings.
type CommandBridgeConfig struct {
	Host string     `json:"host" mapstructure:"host"`
	Port int        `json:"port" mapstructure:"port"`
	Auth AuthConfig `json:"auth" mapstructure:"auth"`
}

// Addr returns the host:port listen address.
func (b CommandBridgeConfig) Addr() string {
	return net.JoinHostPort(b.Host, fmt.Sprintf("%d", b.Port))
}

// AuthConfig controls bearer-token verification on the command bridge.
// Disabled by default to preserve the legacy unauthenticated wire behavior.
type AuthConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	TokenHash string `json:"tokenHash" mapstructure:"tokenHash"`
	TokenFile string `json:"tokenFile" mapstructure:"tokenFile"`
}

// BackupConfig controls model-file backups taken before each save.
type BackupConfig struct {
	Enabled  bool `json:"enabled" mapstructure:"enabled"`
	Keep     int  `json:"keep" mapstructure:"keep"`
	Compress bool `json:"compress" mapstructure:"compress"`
}

// CacheConfig contains in-memory cache sizing.
type CacheConfig struct {
	ObjectLookupSize int `json:"objectLookupSize" mapstructure:"objectLookupSize"`
}

// JournalConfig controls the SQLite mutation journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		ModelFile: "app-dna.json",
		DataBridge: BridgeConfig{
			Host: "127.0.0.1",
			Port: 3001,
		},
		CommandBridge: CommandBridgeConfig{
			Host: "127.0.0.1",
			Port: 3002,
			Auth: AuthConfig{
				Enabled: false,
			},
		},
		Backup: BackupConfig{
			Enabled:  true,
			Keep:     5,
			Compress: true,
		},
		Cache: CacheConfig{
			ObjectLookupSize: 512,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(ConfigDirName, "journal.db"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.appdna/config.json. A .env file
// in the root is applied first, best-effort, so APPDNA_* overrides work in
// development without exporting them.
func LoadConfig(root string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(root, ".env"))

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("modelFile", defaults.ModelFile)
	v.SetDefault("dataBridge.host", defaults.DataBridge.Host)
	v.SetDefault("dataBridge.port", defaults.DataBridge.Port)
	v.SetDefault("commandBridge.host", defaults.CommandBridge.Host)
	v.SetDefault("commandBridge.port", defaults.CommandBridge.Port)
	v.SetDefault("commandBridge.auth.enabled", defaults.CommandBridge.Auth.Enabled)
	v.SetDefault("commandBridge.auth.tokenHash", "")
	v.SetDefault("commandBridge.auth.tokenFile", "")
	v.SetDefault("backup.enabled", defaults.Backup.Enabled)
	v.SetDefault("backup.keep", defaults.Backup.Keep)
	v.SetDefault("backup.compress", defaults.Backup.Compress)
	v.SetDefault("cache.objectLookupSize", defaults.Cache.ObjectLookupSize)
	v.SetDefault("journal.enabled", defaults.Journal.Enabled)
	v.SetDefault("journal.path", defaults.Journal.Path)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDirName))

	v.SetEnvPrefix("APPDNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file means defaults; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.appdna/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid. The bridges must never bind
// to a non-loopback interface; both ports must be valid and distinct.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.ModelFile == "" {
		return &ConfigError{Field: "modelFile", Message: "model file path must not be empty"}
	}
	if err := validatePort("dataBridge.port", c.DataBridge.Port); err != nil {
		return err
	}
	if err := validatePort("commandBridge.port", c.CommandBridge.Port); err != nil {
		return err
	}
	if c.DataBridge.Port == c.CommandBridge.Port {
		return &ConfigError{Field: "commandBridge.port", Message: "data and command bridges must use distinct ports"}
	}
	if err := validateLoopbackHost("dataBridge.host", c.DataBridge.Host); err != nil {
		return err
	}
	if err := validateLoopbackHost("commandBridge.host", c.CommandBridge.Host); err != nil {
		return err
	}
	if c.Backup.Keep < 0 {
		return &ConfigError{Field: "backup.keep", Message: "backup keep count must not be negative"}
	}
	if c.Cache.ObjectLookupSize <= 0 {
		return &ConfigError{Field: "cache.objectLookupSize", Message: "object lookup cache size must be positive"}
	}
	return nil
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ConfigError{Field: field, Message: fmt.Sprintf("port %d out of range 1-65535", port)}
	}
	return nil
}

// validateLoopbackHost rejects any host that could expose a bridge beyond
// the local machine.
func validateLoopbackHost(field, host string) error {
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("%q is not a valid host", host)}
	}
	if !ip.IsLoopback() {
		return &ConfigError{Field: field, Message: fmt.Sprintf("%q is not a loopback address; bridges bind to localhost only", host)}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
