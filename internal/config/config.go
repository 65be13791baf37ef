package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	JWTSecret           string `yaml:"jwtSecret"`
	TokenTTL            string `yaml:"tokenTTL"`
	DefaultUserPassword string `yaml:"defaultUserPassword"`
	LoginRateLimit      int    `yaml:"loginRateLimit"`
	LoginRateWindow     string `yaml:"loginRateWindow"`
}

// TTL parses the configured token lifetime, defaulting to 24h.
func (a Auth) TTL() time.Duration {
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// RateWindow parses the login rate-limit window, defaulting to 1m.
func (a Auth) RateWindow() time.Duration {
	d, err := time.ParseDuration(a.LoginRateWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// Load reads the YAML config at path, then applies environment
// overrides. A missing file is not fatal; defaults support local
// development out of the box.
func Load(path string) (Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err == nil {
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(&config); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	// Secrets are overridable from the environment; the baked-in
	// defaults are for development only.
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("DEFAULT_USER_PASSWORD"); v != "" {
		config.Auth.DefaultUserPassword = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		config.Server.PostgresDsn = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Server.RedisAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.ListenAddr = ":" + v
	}

	return config, nil
}

func defaults() Config {
	return Config{
		Server: Server{
			ListenAddr:  ":8000",
			PostgresDsn: "host=localhost user=postgres password=postgres dbname=saas_app port=5432 sslmode=disable",
			RedisAddr:   "localhost:6379",
		},
		Auth: Auth{
			JWTSecret:           "changeme_secret",
			TokenTTL:            "24h",
			DefaultUserPassword: "password",
			LoginRateLimit:      10,
			LoginRateWindow:     "1m",
		},
	}
}
