// Package config loads runtime settings from regwatch.yml and the
// environment. Environment variables override file values so deployments
// can keep credentials out of the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	// Agency restricts fetches to one agency; empty means both HHS and CMS.
	Agency string `yaml:"agency,omitempty"`

	// DaysBack is the default lookback window in days.
	DaysBack int `yaml:"daysBack,omitempty"`

	// FetchURL and ComparatorURL point at remote capability agents. When
	// empty, the agents are spawned in-process.
	FetchURL      string `yaml:"fetchUrl,omitempty"`
	ComparatorURL string `yaml:"comparatorUrl,omitempty"`

	SMTP  SMTPConfig  `yaml:"smtp,omitempty"`
	Email EmailConfig `yaml:"email,omitempty"`
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// EmailConfig holds notification addressing.
type EmailConfig struct {
	To string `yaml:"to,omitempty"`
}

// ConfigurationError reports an invalid or incomplete configuration.
// It is raised before any workflow starts; the process refuses to run
// rather than degrade mid-flight.
type ConfigurationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Load reads regwatch.yml or regwatch.yaml from dir, then applies
// environment overrides. A missing file is not an error; the environment
// alone can carry a full configuration.
func Load(dir string) (*Config, error) {
	cfg := &Config{}
	for _, name := range []string{"regwatch.yml", "regwatch.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigurationError{Field: name, Err: err}
		}
		break
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv() {
	setString(&c.Agency, "REGWATCH_AGENCY")
	setString(&c.FetchURL, "REGWATCH_FETCH_URL")
	setString(&c.ComparatorURL, "REGWATCH_COMPARATOR_URL")
	setString(&c.SMTP.Host, "SMTP_SERVER")
	setString(&c.SMTP.Username, "SMTP_USER")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.Email.To, "COMPLIANCE_EMAIL_TO")

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("REGWATCH_DAYS_BACK"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.DaysBack = days
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ValidateForEmail checks that the settings required for SMTP delivery
// are present. Callers running with email disabled skip this.
func (c *Config) ValidateForEmail() error {
	if c.SMTP.Username == "" {
		return &ConfigurationError{Field: "smtp.username", Err: fmt.Errorf("required for email delivery (set SMTP_USER)")}
	}
	if c.SMTP.Password == "" {
		return &ConfigurationError{Field: "smtp.password", Err: fmt.Errorf("required for email delivery (set SMTP_PASSWORD)")}
	}
	return nil
}
