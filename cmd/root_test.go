// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidhawk9x/enroll-cli/internal/config"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

func TestRunCmd_FlagBindings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	runCmd := newRunCmd()
	require.NoError(t, runCmd.ParseFlags([]string{
		"--output", "out/report.json",
		"--format", "json",
		"--mail-domain", "example.test",
		"--max-wait", "15s",
		"--poll-interval", "1s",
		"--headless",
	}))
	require.NoError(t, runCmd.PreRunE(runCmd, nil))

	assert.Equal(t, "out/report.json", viper.GetString("report.output"))
	assert.Equal(t, "json", viper.GetString("report.format"))
	assert.Equal(t, "example.test", viper.GetString("identity.mail_domain"))
	assert.Equal(t, "15s", viper.GetDuration("mailbox.max_wait").String())
	assert.Equal(t, "1s", viper.GetDuration("mailbox.poll_interval").String())
	assert.True(t, viper.GetBool("browser.headless"))
}

func TestRunCmd_DefaultsSurviveBinding(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	runCmd := newRunCmd()
	require.NoError(t, runCmd.ParseFlags(nil))
	require.NoError(t, runCmd.PreRunE(runCmd, nil))

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	require.NoError(t, err)
	assert.Equal(t, "automation_report.html", cfg.Report.Output)
	assert.Equal(t, "html", cfg.Report.Format)
	assert.Equal(t, "mailsac.com", cfg.Identity.MailDomain)
}
