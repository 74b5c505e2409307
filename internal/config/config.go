package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the API server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type StorageConfig struct {
	Root           string `mapstructure:"root"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DefaultJWTSecret signs tokens when nothing else is configured. It is
// public, so tokens signed with it can be forged.
const DefaultJWTSecret = "development-insecure-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8008)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.path", "taskbuddy.db")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.issuer", "taskbuddy-api")
	v.SetDefault("auth.audience", "taskbuddy-clients")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("storage.root", "uploads")
	v.SetDefault("storage.public_base_url", "/files")
	v.SetDefault("storage.max_upload_bytes", 5<<20)

	v.SetDefault("cache.ttl", 5*time.Minute)
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// defaults are static; this only fails on a programming error
		panic(err)
	}
	return cfg
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the
// working directory is loaded into the environment first if present.
// An empty path searches ./config.yaml and /etc/taskbuddy/config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TASKBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names kept from the earlier JWT setup
	_ = v.BindEnv("auth.jwt_secret", "TASKBUDDY_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.issuer", "TASKBUDDY_AUTH_ISSUER", "JWT_ISSUER")
	_ = v.BindEnv("auth.audience", "TASKBUDDY_AUTH_AUDIENCE", "JWT_AUDIENCE")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/taskbuddy")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Printf("Using config file %s", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// comma-separated origins from the environment arrive as one element
	if len(cfg.Server.AllowedOrigins) == 1 && strings.Contains(cfg.Server.AllowedOrigins[0], ",") {
		cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the server cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	return nil
}

// InsecureDefaults lists settings still at values unfit for production.
func (c *Config) InsecureDefaults() []string {
	var out []string
	if c.Auth.JWTSecret == DefaultJWTSecret {
		out = append(out, "auth.jwt_secret is the built-in development secret; set TASKBUDDY_AUTH_JWT_SECRET or JWT_SECRET")
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
