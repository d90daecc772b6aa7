package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	Auth      AuthConfig      `yaml:"auth"`
	Minio     MinioConfig     `yaml:"minio"`
	Parser    ParserConfig    `yaml:"parser"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CORSConfig restricts browser access to the single front-end origin.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// AuthConfig validates tokens issued by the auth provider. An empty secret
// disables authentication.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type MinioConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	Bucket          string `yaml:"bucket"`
	UseSSL          bool   `yaml:"use_ssl"`
	SummariesPrefix string `yaml:"summaries_prefix"`
	ExpireMinutes   int    `yaml:"expire_minutes"`
}

// ParserConfig locates the extraction services. Any URL may be left empty;
// the pipeline treats an unconfigured service as a failed call.
type ParserConfig struct {
	PrimaryURL        string        `yaml:"primary_url"`
	PrimaryToken      string        `yaml:"primary_token"`
	ImageConverterURL string        `yaml:"image_converter_url"`
	VisionURL         string        `yaml:"vision_url"`
	VisionToken       string        `yaml:"vision_token"`
	Timeout           time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // postgres, sqlite, memory
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	MaxContracts    int           `yaml:"max_contracts"` // memory driver only, 0 = unlimited
}

// RateLimitConfig bounds requests per client IP. Zero means the default of
// 100 per window; a negative Requests disables limiting.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Load reads the YAML file at path, applies environment overrides and fills
// in defaults. A missing file is not an error: the service can run from
// environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Parser.PrimaryURL, "PRIMARY_PARSER_URL")
	setString(&c.Parser.PrimaryToken, "PRIMARY_PARSER_TOKEN")
	setString(&c.Parser.ImageConverterURL, "IMAGE_CONVERTER_URL")
	setString(&c.Parser.VisionURL, "VISION_PARSER_URL")
	setString(&c.Parser.VisionToken, "VISION_PARSER_TOKEN")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.CORS.AllowedOrigin, "CORS_ORIGIN")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "contracts"
	}
	if c.Minio.SummariesPrefix == "" {
		c.Minio.SummariesPrefix = "summaries"
	}
	if c.Minio.ExpireMinutes == 0 {
		c.Minio.ExpireMinutes = 60
	}
	if c.Parser.Timeout == 0 {
		c.Parser.Timeout = 60 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = "contractflow.db"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 1
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = 30 * time.Minute
	}
	if c.Database.DialTimeout == 0 {
		c.Database.DialTimeout = 5 * time.Second
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
