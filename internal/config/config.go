package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Credentials  CredentialsConfig  `yaml:"credentials"`
	Redis        RedisConfig        `yaml:"redis"`
	SendGrid     SendGridConfig     `yaml:"sendgrid"`
	Twilio       TwilioConfig       `yaml:"twilio"`
	Firebase     FirebaseConfig     `yaml:"firebase"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	Notification NotificationConfig `yaml:"notification"`
	Log          LogConfig          `yaml:"log"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Booking      BookingConfig      `yaml:"booking"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
}

// ServerConfig contains listener settings for the HTTP and gRPC surfaces
type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
	// MetricsPort serves /metrics on its own listener when set; otherwise /metrics is on the HTTP port.
	MetricsPort            int      `yaml:"metrics_port"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// CredentialsConfig holds the key for pickup/return tokens
type CredentialsConfig struct {
	Secret string `yaml:"secret"`
}

// RedisConfig configures the availability cache; an empty address disables it
type RedisConfig struct {
	Addr                   string `yaml:"addr"`
	Password               string `yaml:"password"`
	DB                     int    `yaml:"db"`
	AvailabilityTTLSeconds int    `yaml:"availability_ttl_seconds"`
}

type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	OpsEmail  string `yaml:"ops_email"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type MQTTConfig struct {
	Broker                string `yaml:"broker"`
	ClientID              string `yaml:"client_id"`
	TopicPrefix           string `yaml:"topic_prefix"`
	QoS                   byte   `yaml:"qos"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
}

type NotificationConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PickupReminders string `yaml:"pickup_reminders"`
	ReturnReminders string `yaml:"return_reminders"`
	FlagOverdue     string `yaml:"flag_overdue"`
}

// BookingConfig contains calendar rules
type BookingConfig struct {
	MaxWindowDays int    `yaml:"max_window_days"`
	Timezone      string `yaml:"timezone"`
}

// RateLimitConfig throttles credential confirmation per client
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Secrets
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
	if val := os.Getenv("CREDENTIAL_SECRET"); val != "" {
		c.Credentials.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Notification channels
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("TWILIO_ACCOUNT_SID"); val != "" {
		c.Twilio.AccountSID = val
	}
	if val := os.Getenv("TWILIO_AUTH_TOKEN"); val != "" {
		c.Twilio.AuthToken = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Firebase.CredentialsFile = val
	}
	if val := os.Getenv("MQTT_BROKER"); val != "" {
		c.MQTT.Broker = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Credential validation
	if len(c.Credentials.Secret) < 32 {
		return fmt.Errorf("credential secret must be at least 32 characters")
	}

	// Booking
	if c.Booking.MaxWindowDays == 0 {
		c.Booking.MaxWindowDays = 90
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.Timezone, err)
	}

	// Channel defaults
	if c.Redis.AvailabilityTTLSeconds == 0 {
		c.Redis.AvailabilityTTLSeconds = 300
	}
	if c.Notification.TimeoutSeconds == 0 {
		c.Notification.TimeoutSeconds = 10
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "agrirent"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "agrirent-backend"
	}
	if c.MQTT.ConnectTimeoutSeconds == 0 {
		c.MQTT.ConnectTimeoutSeconds = 5
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos: %d", c.MQTT.QoS)
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}

	// Scheduler defaults
	if c.Scheduler.PickupReminders == "" {
		c.Scheduler.PickupReminders = "0 0 17 * * *" // 5 PM, day before pickup
	}
	if c.Scheduler.ReturnReminders == "" {
		c.Scheduler.ReturnReminders = "0 0 8 * * *" // 8 AM on the last held day
	}
	if c.Scheduler.FlagOverdue == "" {
		c.Scheduler.FlagOverdue = "0 0 2 * * *" // 2 AM
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Location is the timezone calendar days are counted in. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) AvailabilityTTL() time.Duration {
	return time.Duration(c.Redis.AvailabilityTTLSeconds) * time.Second
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}
