package config

import (
	"errors"
	"fmt"
	"os"

	"vinr.eu/secretsdemo/internal/errs"
)

const (
	ModeLocal  = "local"
	ModeServer = "server"

	// EnvPrefix is checked before the bare variable name, so SECRETSDEMO_AWS_REGION wins over AWS_REGION.
	EnvPrefix = "SECRETSDEMO"

	DefaultSecretID      = "service/test/infra/iduck"
	DefaultRegion        = "ap-southeast-1"
	DefaultLocalEndpoint = "http://localhost:4566"
)

var (
	ErrInvalidMode = errors.New("config: MODE must be 'local' or 'server'")
)

type Config struct {
	Mode            string
	SecretID        string
	Region          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	LogLevel        string
}

func Load() (*Config, error) {
	cfg := &Config{
		Mode:            getEnv("MODE", ModeLocal),
		SecretID:        DefaultSecretID,
		Region:          DefaultRegion,
		EndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.applyDefaultsAndValidate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaultsAndValidate() error {
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
	if c.Mode != ModeLocal && c.Mode != ModeServer {
		return errs.WrapMsg(ErrInvalidMode, fmt.Sprintf("got %q", c.Mode))
	}

	if c.Mode == ModeLocal {
		if c.EndpointURL == "" {
			c.EndpointURL = DefaultLocalEndpoint
		}
		if c.AccessKeyID == "" {
			c.AccessKeyID = "test"
		}
		if c.SecretAccessKey == "" {
			c.SecretAccessKey = "test"
		}
	}

	return nil
}

// String never prints credentials.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Mode=%s SecretID=%s Region=%s EndpointURL=%s LogLevel=%s",
		c.Mode, c.SecretID, c.Region, c.EndpointURL, c.LogLevel,
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		return v
	}
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
