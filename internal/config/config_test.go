package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, cfg.Agency)
	assert.Zero(t, cfg.DaysBack)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "regwatch.yml", `
agency: CMS
daysBack: 14
fetchUrl: http://fetch.internal:8001
comparatorUrl: http://comparator.internal:8002
smtp:
  host: mail.corp.example
  port: 2525
  username: alerts@corp.example
  password: hunter2
email:
  to: compliance@corp.example
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "CMS", cfg.Agency)
	assert.Equal(t, 14, cfg.DaysBack)
	assert.Equal(t, "http://fetch.internal:8001", cfg.FetchURL)
	assert.Equal(t, "http://comparator.internal:8002", cfg.ComparatorURL)
	assert.Equal(t, "mail.corp.example", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "alerts@corp.example", cfg.SMTP.Username)
	assert.Equal(t, "compliance@corp.example", cfg.Email.To)
}

func TestLoad_YamlExtensionFallback(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "regwatch.yaml", "agency: HHS\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "HHS", cfg.Agency)
}

func TestLoad_MalformedYAMLIsConfigurationError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "regwatch.yml", "agency: [unclosed\n")

	cfg, err := Load(dir)
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "regwatch.yml", cfgErr.Field)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "regwatch.yml", `
agency: HHS
smtp:
  host: mail.corp.example
  username: file-user@corp.example
`)

	t.Setenv("REGWATCH_AGENCY", "CMS")
	t.Setenv("SMTP_SERVER", "smtp.gmail.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "env-user@corp.example")
	t.Setenv("SMTP_PASSWORD", "env-secret")
	t.Setenv("COMPLIANCE_EMAIL_TO", "env-compliance@corp.example")
	t.Setenv("REGWATCH_DAYS_BACK", "7")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "CMS", cfg.Agency)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "env-user@corp.example", cfg.SMTP.Username)
	assert.Equal(t, "env-secret", cfg.SMTP.Password)
	assert.Equal(t, "env-compliance@corp.example", cfg.Email.To)
	assert.Equal(t, 7, cfg.DaysBack)
}

func TestLoad_IgnoresNonNumericPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, cfg.SMTP.Port)
}

func TestValidateForEmail(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateForEmail()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "smtp.username", cfgErr.Field)

	cfg.SMTP.Username = "alerts@corp.example"
	err = cfg.ValidateForEmail()
	require.Error(t, err)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "smtp.password", cfgErr.Field)

	cfg.SMTP.Password = "secret"
	assert.NoError(t, cfg.ValidateForEmail())
}
