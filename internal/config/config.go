// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration for a single enrollment run.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// AppConfig describes the target desktop application and its control timeouts.
type AppConfig struct {
	// LaunchCommand is the key sequence handed to the host backend to start
	// the application (the original flow opens it through the start menu).
	LaunchCommand string `mapstructure:"launch_command" yaml:"launch_command"`
	// MainWindowTitle and AccountWindowTitle are regular expressions matched
	// against native window titles.
	MainWindowTitle    string        `mapstructure:"main_window_title" yaml:"main_window_title"`
	AccountWindowTitle string        `mapstructure:"account_window_title" yaml:"account_window_title"`
	WindowTimeout      time.Duration `mapstructure:"window_timeout" yaml:"window_timeout"`
	ControlTimeout     time.Duration `mapstructure:"control_timeout" yaml:"control_timeout"`
	// SettleWait is the fixed pause after submitting the signup form; the
	// account window navigates asynchronously and exposes no readiness signal.
	SettleWait time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	// Bridge is the executable used by the UIA backend to reach the
	// accessibility tree (a PowerShell UI Automation helper on Windows).
	Bridge string `mapstructure:"bridge" yaml:"bridge"`
}

// MailboxConfig tunes the disposable-mailbox polling flow.
type MailboxConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	MaxWait      time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// LookupTimeout bounds the waits for the mailbox lookup field and the
	// check-mail button on the landing page.
	LookupTimeout time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`
	// BodyTimeout bounds the wait for the opened message body, separately
	// from the per-attempt poll timeout.
	BodyTimeout time.Duration `mapstructure:"body_timeout" yaml:"body_timeout"`
}

// IdentityConfig controls synthetic identity generation.
type IdentityConfig struct {
	MailDomain string `mapstructure:"mail_domain" yaml:"mail_domain"`
	Password   string `mapstructure:"password" yaml:"-"`
}

// BrowserConfig holds settings for the headless browser session.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Args     []string `mapstructure:"args" yaml:"args"`
}

// ReportConfig selects the rendered report output.
type ReportConfig struct {
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "enroll-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- App --
	v.SetDefault("app.launch_command", "{VK_LWIN}HP Smart{ENTER}")
	v.SetDefault("app.main_window_title", `.*HP Smart.*`)
	v.SetDefault("app.account_window_title", `.*HP account.*`)
	v.SetDefault("app.window_timeout", "60s")
	v.SetDefault("app.control_timeout", "10s")
	v.SetDefault("app.settle_wait", "3s")
	v.SetDefault("app.bridge", "powershell")

	// -- Mailbox --
	v.SetDefault("mailbox.url", "https://mailsac.com")
	v.SetDefault("mailbox.max_wait", "60s")
	v.SetDefault("mailbox.poll_interval", "3s")
	v.SetDefault("mailbox.lookup_timeout", "10s")
	v.SetDefault("mailbox.body_timeout", "60s")

	// -- Identity --
	v.SetDefault("identity.mail_domain", "mailsac.com")
	v.SetDefault("identity.password", "SecurePassword123")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.args", []string{})

	// -- Report --
	v.SetDefault("report.output", "automation_report.html")
	v.SetDefault("report.format", "html")
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Unreachable with defaults only, but fail loudly rather than return junk.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Mailbox.MaxWait <= 0 {
		return fmt.Errorf("mailbox.max_wait must be a positive duration")
	}
	if c.Mailbox.PollInterval <= 0 {
		return fmt.Errorf("mailbox.poll_interval must be a positive duration")
	}
	if c.Mailbox.URL == "" {
		return fmt.Errorf("mailbox.url is a required configuration field")
	}
	if c.Identity.MailDomain == "" {
		return fmt.Errorf("identity.mail_domain is a required configuration field")
	}
	if strings.Contains(c.Identity.MailDomain, "@") {
		return fmt.Errorf("identity.mail_domain must not contain '@'")
	}
	switch c.Report.Format {
	case "html", "json":
	default:
		return fmt.Errorf("report.format must be 'html' or 'json', got %q", c.Report.Format)
	}
	return nil
}
