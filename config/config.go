package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Xendit   XenditConfig   `yaml:"xendit"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationsTopic  string   `yaml:"reservations_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type XenditConfig struct {
	BaseURL                string `yaml:"base_url"`
	SecretKey              string `yaml:"secret_key"`
	InvoiceDurationSeconds int    `yaml:"invoice_duration_seconds"`
	KioskSuccessURL        string `yaml:"kiosk_success_url"`
	KioskFailureURL        string `yaml:"kiosk_failure_url"`
	WebsiteSuccessURL      string `yaml:"website_success_url"`
	WebsiteFailureURL      string `yaml:"website_failure_url"`
}

type BookingConfig struct {
	PendingTTLMinutes  int `yaml:"pending_ttl_minutes"`
	SlotLockTTLSeconds int `yaml:"slot_lock_ttl_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Secrets come from the environment when set, so the config file can be
	// committed without them.
	if v := os.Getenv("XENDIT_SECRET_KEY"); v != "" {
		cfg.Xendit.SecretKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}

	return &cfg, nil
}
