package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string `yaml:"mode"`
	PollSeconds int    `yaml:"poll_seconds"`

	Gateway struct {
		MDAddress string `yaml:"md_address"`
		TDAddress string `yaml:"td_address"`
		BrokerID  string `yaml:"broker_id"`
		UserID    string `yaml:"user_id"`
		// Password comes from GATEWAY_PASSWORD, never from the file.
		AppID       string `yaml:"app_id"`
		AuthCode    string `yaml:"auth_code"`
		ProductInfo string `yaml:"product_info"`
	} `yaml:"gateway"`

	Universe []string `yaml:"universe"`

	Timeouts struct {
		ConnectSeconds int `yaml:"connect_seconds"`
		LoginSeconds   int `yaml:"login_seconds"`
		QuerySeconds   int `yaml:"query_seconds"`
	} `yaml:"timeouts"`

	Query struct {
		MinIntervalMillis int `yaml:"min_interval_millis"`
	} `yaml:"query"`

	Reconnect struct {
		BaseDelaySeconds int `yaml:"base_delay_seconds"`
		MaxDelaySeconds  int `yaml:"max_delay_seconds"`
		MaxAttempts      int `yaml:"max_attempts"`
	} `yaml:"reconnect"`
}

// Password reads the trading password from the environment so it never lands
// in a config file or log.
func (c *Config) Password() string {
	return os.Getenv("GATEWAY_PASSWORD")
}

func (c *Config) Validate() error {
	if c.Mode != "MOCK" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'MOCK' or 'LIVE'", c.Mode)
	}
	if c.Mode == "LIVE" {
		if c.Gateway.MDAddress == "" || c.Gateway.TDAddress == "" {
			return errors.New("gateway.md_address and gateway.td_address are required in LIVE mode")
		}
		if c.Gateway.BrokerID == "" || c.Gateway.UserID == "" {
			return errors.New("gateway.broker_id and gateway.user_id are required in LIVE mode")
		}
		if c.Password() == "" {
			return errors.New("GATEWAY_PASSWORD must be set in LIVE mode")
		}
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must not be negative, got %d", c.Reconnect.MaxAttempts)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.Timeouts.ConnectSeconds == 0 {
		c.Timeouts.ConnectSeconds = 30
	}
	if c.Timeouts.LoginSeconds == 0 {
		c.Timeouts.LoginSeconds = 10
	}
	if c.Timeouts.QuerySeconds == 0 {
		c.Timeouts.QuerySeconds = 5
	}
	if c.Query.MinIntervalMillis == 0 {
		c.Query.MinIntervalMillis = 1000
	}
	if c.Reconnect.BaseDelaySeconds == 0 {
		c.Reconnect.BaseDelaySeconds = 1
	}
	if c.Reconnect.MaxDelaySeconds == 0 {
		c.Reconnect.MaxDelaySeconds = 60
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = 5
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
