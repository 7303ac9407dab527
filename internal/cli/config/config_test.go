package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edumetric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "server URL")
	flags.Duration("timeout", 0, "request timeout")
	flags.StringP("output", "o", "", "output format")
	flags.BoolP("verbose", "v", false, "verbose")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultUIPort, cfg.UI.Port)
	assert.Equal(t, DefaultBatchMode, cfg.Batch.Mode)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `api:
  base_url: http://analytics.example.edu:9000
  timeout: 5s
ui:
  port: 9999
alert:
  mentor_email: mentor@example.edu
  rules_file: rules.star
batch:
  mode: analytics
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://analytics.example.edu:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 9999, cfg.UI.Port)
	assert.Equal(t, "mentor@example.edu", cfg.Alert.MentorEmail)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rules.star"), cfg.Alert.RulesFile)
	assert.Equal(t, "analytics", cfg.Batch.Mode)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "edumetric.yaml"), []byte("ui:\n  port: 7000\n"), 0600))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.UI.Port)
	assert.Equal(t, root, cfg.ProjectRoot)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://from-file:5000\n  timeout: 5s\n")

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("EDUMETRIC_API_BASE_URL", "http://from-env:5000")
		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "http://from-env:5000", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout, "unset flags keep the file value")
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("EDUMETRIC_API_BASE_URL", "http://from-env:5000")
		flags := testFlags()
		require.NoError(t, flags.Set("api-url", "http://from-flag:5000"))
		require.NoError(t, flags.Set("timeout", "2s"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "http://from-flag:5000", cfg.API.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	})
}

func TestLoadConfig_DotEnv(t *testing.T) {
	path := writeConfig(t, "output: text\n")
	dotenv := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("EDUMETRIC_UI_SESSION_SECRET=from-dotenv\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("EDUMETRIC_UI_SESSION_SECRET") })

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.UI.SessionSecret)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"empty base url", "api:\n  base_url: \"\"\n", "api.base_url is required"},
		{"zero timeout", "api:\n  timeout: 0s\n", "api.timeout must be positive"},
		{"unknown batch mode", "batch:\n  mode: merge\n", "batch.mode must be one of"},
		{"unknown output", "output: html\n", "output must be one of"},
		{"username without hash", "ui:\n  username: hod\n", "ui.password_hash is required"},
		{"bad yaml", "api: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"EDUMETRIC_API_BASE_URL":      "api.base_url",
		"EDUMETRIC_UI_PASSWORD_HASH":  "ui.password_hash",
		"EDUMETRIC_BATCH_WATCH_DIR":   "batch.watch_dir",
		"EDUMETRIC_ALERT_RULES_FILE":  "alert.rules_file",
		"EDUMETRIC_OUTPUT":            "output",
		"EDUMETRIC_APIARY_SOMETHINGS": "apiary_somethings",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultBaseURL, GetConfig(ctx).API.BaseURL)
	assert.NotNil(t, GetLogger(ctx))

	cfg := Default()
	cfg.Verbose = true
	assert.Same(t, cfg, GetConfig(WithConfig(ctx, cfg)))
}
