package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	// Start with defaults
	_loaded = &defaultConfig

	// Try to load from config file and merge over defaults
	configFile := os.Getenv("GOODNIGHT_CONFIG_FILE")
	if configFile == "" {
		configFile = "goodnight.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	}

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
}

func LoadDefault() {
	config := defaultConfig
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Postgres: postgresConfig{
			postgresConfigCommon: postgresConfigCommon{
				User:               "postgres",
				Password:           "postgres",
				Host:               "localhost",
				Port:               5432,
				Database:           "goodnight",
				MaxOpenConnections: 10,
			},
		},
		Replica: replicaConfig{
			Enabled: false,
		},
	},
}

type Common struct {
	Log      logConfig      `yaml:"log"`
	Http     httpConfig     `yaml:"http"`
	Postgres postgresConfig `yaml:"postgres"`
	Replica  replicaConfig  `yaml:"replica"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type postgresConfigCommon struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

func (c postgresConfigCommon) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

type postgresConfig struct {
	postgresConfigCommon `yaml:",inline"`
}

// replicaConfig describes the optional read replica. Read-heavy endpoints
// (history listing, friends feed) are served from the replica when enabled;
// the storage router falls back to the primary when it is unreachable.
type replicaConfig struct {
	Enabled              bool `yaml:"enabled"`
	postgresConfigCommon `yaml:",inline"`
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

func Replica() replicaConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Replica
}

// Get returns the full configuration
func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	// Override with environment variables if present
	if dbHost := os.Getenv("GOODNIGHT_DB_HOST"); dbHost != "" {
		_loaded.Common.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("GOODNIGHT_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("GOODNIGHT_DB_USER"); dbUser != "" {
		_loaded.Common.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("GOODNIGHT_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("GOODNIGHT_DB_NAME"); dbName != "" {
		_loaded.Common.Postgres.Database = dbName
	}

	if replicaEnabled := os.Getenv("GOODNIGHT_REPLICA_ENABLED"); replicaEnabled != "" {
		if enabled, err := strconv.ParseBool(replicaEnabled); err == nil {
			_loaded.Common.Replica.Enabled = enabled
		}
	}
	if replicaHost := os.Getenv("GOODNIGHT_REPLICA_HOST"); replicaHost != "" {
		_loaded.Common.Replica.Host = replicaHost
	}
	if replicaPort := os.Getenv("GOODNIGHT_REPLICA_PORT"); replicaPort != "" {
		if port, err := strconv.Atoi(replicaPort); err == nil {
			_loaded.Common.Replica.Port = port
		}
	}
	if replicaUser := os.Getenv("GOODNIGHT_REPLICA_USER"); replicaUser != "" {
		_loaded.Common.Replica.User = replicaUser
	}
	if replicaPassword := os.Getenv("GOODNIGHT_REPLICA_PASSWORD"); replicaPassword != "" {
		_loaded.Common.Replica.Password = replicaPassword
	}
	if replicaName := os.Getenv("GOODNIGHT_REPLICA_NAME"); replicaName != "" {
		_loaded.Common.Replica.Database = replicaName
	}

	if httpHost := os.Getenv("GOODNIGHT_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("GOODNIGHT_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	if logLevel := os.Getenv("GOODNIGHT_LOG_LEVEL"); logLevel != "" {
		_loaded.Common.Log.Level = logLevel
	}
}
