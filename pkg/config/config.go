package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Graph    GraphConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	HTTPPort    int           `mapstructure:"http_port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
}

// GraphConfig holds the Microsoft Graph credentials and endpoints used by the
// SharePoint provisioner. TenantID/ClientID/ClientSecret come from the Azure
// app registration; the URLs are overridable for tests.
type GraphConfig struct {
	TenantID         string        `mapstructure:"tenant_id"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	BaseURL          string        `mapstructure:"base_url"`
	LoginURL         string        `mapstructure:"login_url"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	ProvisionTimeout time.Duration `mapstructure:"provision_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/housingpipeline/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PIPELINE")
	viper.AutomaticEnv()

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("redis.stats_ttl", "1m")
	viper.SetDefault("graph.base_url", "https://graph.microsoft.com/v1.0")
	viper.SetDefault("graph.login_url", "https://login.microsoftonline.com")
	viper.SetDefault("graph.poll_interval", "30s")
	viper.SetDefault("graph.provision_timeout", "10m")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// WriteTimeout is the HTTP response write deadline. It doubles the read
// timeout but never drops below the provisioning budget plus slack, so the
// create-site response can still be written after a full site wait.
func (c *Config) WriteTimeout() time.Duration {
	timeout := c.Server.ReadTimeout * 2
	if floor := c.Graph.ProvisionTimeout + 30*time.Second; timeout < floor {
		return floor
	}
	return timeout
}

// Configured reports whether all Graph credentials are present.
func (c *GraphConfig) Configured() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// Missing returns the names of unset Graph credential settings.
func (c *GraphConfig) Missing() []string {
	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "graph.tenant_id")
	}
	if c.ClientID == "" {
		missing = append(missing, "graph.client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "graph.client_secret")
	}
	return missing
}
