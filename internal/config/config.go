package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	Documents DocumentsConfig `json:"documents"`
	Requests  RequestsConfig  `json:"requests"`
	AWS       AWSConfig       `json:"aws"`
	Search    SearchConfig    `json:"search"`
	Reminders RemindersConfig `json:"reminders"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	User         string        `json:"user"`
	Password     string        `json:"password"`
	DBName       string        `json:"db_name"`
	SSLMode      string        `json:"ssl_mode"`
	MaxConns     int           `json:"max_connections"`
	MaxIdleConns int           `json:"max_idle_conns"`
	MaxLifetime  time.Duration `json:"max_lifetime"`
}

// SecurityConfig holds token issuance settings
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// DocumentsConfig controls where voucher PDFs and attachments land
type DocumentsConfig struct {
	Root     string `json:"root"`
	S3Bucket string `json:"s3_bucket"`
}

// RequestsConfig controls reference number allocation
type RequestsConfig struct {
	ReferencePrefix string `json:"reference_prefix"`
	ReferenceStart  int64  `json:"reference_start"`
}

// AWSConfig holds the shared AWS settings for SES and SNS
type AWSConfig struct {
	Region       string `json:"region"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	EmailFrom    string `json:"email_from"`
	EventTopic   string `json:"event_topic_arn"`
	EmailEnabled bool   `json:"email_enabled"`
}

// SearchConfig points at the optional Elasticsearch cluster
type SearchConfig struct {
	Addresses []string `json:"addresses"`
	Enabled   bool     `json:"enabled"`
}

// RemindersConfig schedules the stale-pending sweep
type RemindersConfig struct {
	CronSpec string        `json:"cron_spec"`
	MaxAge   time.Duration `json:"max_age"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "payment_portal",
			SSLMode: "disable",
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Documents: DocumentsConfig{
			Root: "data",
		},
		Requests: RequestsConfig{
			ReferencePrefix: "ONLINE",
			ReferenceStart:  100,
		},
		AWS: AWSConfig{
			Region: "eu-west-1",
		},
		Reminders: RemindersConfig{
			CronSpec: "0 8 * * *",
			MaxAge:   72 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if config.Security.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}
	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if root := os.Getenv("DOCUMENTS_ROOT"); root != "" {
		config.Documents.Root = root
	}
	if bucket := os.Getenv("DOCUMENTS_S3_BUCKET"); bucket != "" {
		config.Documents.S3Bucket = bucket
	}
	if prefix := os.Getenv("REFERENCE_PREFIX"); prefix != "" {
		config.Requests.ReferencePrefix = prefix
	}
	if start := os.Getenv("REFERENCE_START"); start != "" {
		if n, err := strconv.ParseInt(start, 10, 64); err == nil {
			config.Requests.ReferenceStart = n
		}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		config.AWS.EmailFrom = from
		config.AWS.EmailEnabled = true
	}
	if topic := os.Getenv("EVENT_TOPIC_ARN"); topic != "" {
		config.AWS.EventTopic = topic
	}
	if addrs := os.Getenv("ELASTICSEARCH_ADDRESSES"); addrs != "" {
		config.Search.Addresses = strings.Split(addrs, ",")
		config.Search.Enabled = true
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
