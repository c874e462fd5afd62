package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	Payment Payment `yaml:"payment"`
}

type Server struct {
	Address string `yaml:"address"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type Payment struct {
	SecretKey string `yaml:"secret_key"`
	Currency  string `yaml:"currency"`

	// OrderTax is the flat per-order add-on applied at checkout
	OrderTax float64 `yaml:"order_tax"`

	PendingOrderTTLMinutes int `yaml:"pending_order_ttl_minutes"`
	OTPTTLMinutes          int `yaml:"otp_ttl_minutes"`
}

func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Payment.Currency == "" {
		c.Payment.Currency = "myr"
	}
	if c.Payment.OrderTax == 0 {
		c.Payment.OrderTax = 2.40
	}
	if c.Payment.PendingOrderTTLMinutes == 0 {
		c.Payment.PendingOrderTTLMinutes = 60
	}
	if c.Payment.OTPTTLMinutes == 0 {
		c.Payment.OTPTTLMinutes = 10
	}
}
