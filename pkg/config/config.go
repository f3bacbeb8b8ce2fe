package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Collector CollectorConfig `mapstructure:"collector"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port    int           `mapstructure:"port" default:"8000"`
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AgentConfig configures the local capture agent. Buffer and queue
// capacities are fixed by the pipeline and are not configurable here.
type AgentConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	UserID          string        `mapstructure:"user_id"`
	StoragePath     string        `mapstructure:"storage_path"`
	SyncInterval    time.Duration `mapstructure:"sync_interval"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// CollectorConfig points the agent at the remote collector API.
type CollectorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// If CONFIG_FILE environment variable is set, use it
	if envConfigFile := os.Getenv("CONFIG_FILE"); envConfigFile != "" {
		configPath = envConfigFile
	}

	// Initialize viper
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	// If configPath is provided, use it directly
	if configPath != "" {
		dir := filepath.Dir(configPath)
		file := filepath.Base(configPath)
		ext := filepath.Ext(file)
		name := strings.TrimSuffix(file, ext)

		v.AddConfigPath(dir)
		v.SetConfigName(name)
	} else {
		// Fallback to default locations
		_, filename, _, _ := runtime.Caller(0)
		pkgConfigDir := filepath.Dir(filename)
		projectRoot := filepath.Join(pkgConfigDir, "..", "..")

		v.AddConfigPath(pkgConfigDir)
		v.AddConfigPath(projectRoot)
		v.AddConfigPath(filepath.Join(projectRoot, "pkg", "config"))
		v.SetConfigName("config")
	}

	// A missing config file is fine; defaults plus env cover the agent case
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error loading config file: %v", err)
		}
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Override with environment variables if they exist
	envVars := map[string]string{
		"database.host":          "DB_HOST",
		"database.port":          "DB_PORT",
		"database.user":          "DB_USER",
		"database.password":      "DB_PASSWORD",
		"database.name":          "DB_NAME",
		"database.sslmode":       "DB_SSLMODE",
		"server.mode":            "SERVER_MODE",
		"server.timeout":         "SERVER_TIMEOUT",
		"redis.host":             "REDIS_HOST",
		"redis.port":             "REDIS_PORT",
		"redis.password":         "REDIS_PASSWORD",
		"redis.db":               "REDIS_DB",
		"agent.listen_addr":      "AGENT_LISTEN_ADDR",
		"agent.user_id":          "AGENT_USER_ID",
		"agent.storage_path":     "AGENT_STORAGE_PATH",
		"agent.sync_interval":    "AGENT_SYNC_INTERVAL",
		"agent.refresh_interval": "AGENT_REFRESH_INTERVAL",
		"collector.base_url":     "COLLECTOR_URL",
		"collector.timeout":      "COLLECTOR_TIMEOUT",
		"logging.level":          "LOG_LEVEL",
		"logging.format":         "LOG_FORMAT",
	}

	for configKey, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			// Handle special cases for type conversion
			switch envVar {
			case "DB_PORT", "REDIS_PORT", "REDIS_DB":
				if intVal, err := strconv.Atoi(value); err == nil {
					v.Set(configKey, intVal)
				}
			case "SERVER_TIMEOUT", "AGENT_SYNC_INTERVAL", "AGENT_REFRESH_INTERVAL", "COLLECTOR_TIMEOUT":
				if d, err := time.ParseDuration(value); err == nil {
					v.Set(configKey, d)
				}
			default:
				v.Set(configKey, value)
			}
		}
	}

	// Unmarshal config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("agent.listen_addr", "127.0.0.1:8420")
	v.SetDefault("agent.user_id", "default-user")
	v.SetDefault("agent.storage_path", "digital-twin.db")
	v.SetDefault("agent.sync_interval", 5*time.Minute)
	v.SetDefault("agent.refresh_interval", 30*time.Second)
	v.SetDefault("collector.base_url", "http://localhost:8000")
	v.SetDefault("collector.timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")
}
