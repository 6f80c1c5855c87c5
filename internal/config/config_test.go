// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "enroll-cli", cfg.Logger.ServiceName)
	assert.Equal(t, "https://mailsac.com", cfg.Mailbox.URL)
	assert.Equal(t, 60*time.Second, cfg.Mailbox.MaxWait)
	assert.Equal(t, 3*time.Second, cfg.Mailbox.PollInterval)
	assert.Equal(t, "mailsac.com", cfg.Identity.MailDomain)
	assert.Equal(t, 3*time.Second, cfg.App.SettleWait)
	assert.Equal(t, "html", cfg.Report.Format)
	assert.False(t, cfg.Browser.Headless)
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, NewDefaultConfig().Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max wait",
			mutate:  func(c *Config) { c.Mailbox.MaxWait = 0 },
			wantErr: "mailbox.max_wait",
		},
		{
			name:    "negative poll interval",
			mutate:  func(c *Config) { c.Mailbox.PollInterval = -time.Second },
			wantErr: "mailbox.poll_interval",
		},
		{
			name:    "missing mailbox url",
			mutate:  func(c *Config) { c.Mailbox.URL = "" },
			wantErr: "mailbox.url",
		},
		{
			name:    "missing mail domain",
			mutate:  func(c *Config) { c.Identity.MailDomain = "" },
			wantErr: "identity.mail_domain",
		},
		{
			name:    "mail domain with at sign",
			mutate:  func(c *Config) { c.Identity.MailDomain = "foo@bar.com" },
			wantErr: "must not contain '@'",
		},
		{
			name:    "unknown report format",
			mutate:  func(c *Config) { c.Report.Format = "pdf" },
			wantErr: "report.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// -- Viper Integration Tests --

func TestNewConfigFromViper(t *testing.T) {
	yml := []byte(`
mailbox:
  max_wait: 90s
  poll_interval: 5s
identity:
  mail_domain: example.test
report:
  format: json
`)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(yml)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Mailbox.MaxWait)
	assert.Equal(t, 5*time.Second, cfg.Mailbox.PollInterval)
	assert.Equal(t, "example.test", cfg.Identity.MailDomain)
	assert.Equal(t, "json", cfg.Report.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://mailsac.com", cfg.Mailbox.URL)
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("report.format", "pdf")

	cfg, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}
