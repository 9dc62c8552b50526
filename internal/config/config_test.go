package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/var/lib/docvault"},
		Search: SearchConfig{FacetTopN: 10},
		RateLimit: RateLimitConfig{
			RedeemRPS:   5,
			RedeemBurst: 10,
		},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "sandbox"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Search.FacetTopN = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimit.RedeemBurst = 0
	assert.Error(t, cfg.Validate())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("DOCVAULT_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "DOCVAULT_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "DOCVAULT_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "DOCVAULT_TEST_UNSET", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "DOCVAULT_TEST_UNSET", false))
	assert.True(t, getBoolConfigValue("1", "DOCVAULT_TEST_UNSET", false))
	assert.False(t, getBoolConfigValue("no", "DOCVAULT_TEST_UNSET", true))
	assert.True(t, getBoolConfigValue("", "DOCVAULT_TEST_UNSET", true))
}

func TestGetIntConfigValue(t *testing.T) {
	assert.Equal(t, 42, getIntConfigValue("42", "DOCVAULT_TEST_UNSET", 7))
	assert.Equal(t, 7, getIntConfigValue("", "DOCVAULT_TEST_UNSET", 7))
	assert.Equal(t, 7, getIntConfigValue("not-a-number", "DOCVAULT_TEST_UNSET", 7))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nDOCVAULT_TEST_FILE_VAL=hello\nDOCVAULT_TEST_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0600))

	t.Setenv("DOCVAULT_TEST_FILE_VAL", "")
	os.Unsetenv("DOCVAULT_TEST_FILE_VAL")
	t.Setenv("DOCVAULT_TEST_QUOTED", "")
	os.Unsetenv("DOCVAULT_TEST_QUOTED")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("DOCVAULT_TEST_FILE_VAL"))
	assert.Equal(t, "world", os.Getenv("DOCVAULT_TEST_QUOTED"))
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("/already/abs", "")
	require.NoError(t, err)
	assert.Equal(t, "/already/abs", got)
}

func TestDatabasePath(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, filepath.Join("/var/lib/docvault", "docvault.db"), cfg.DatabasePath())
}
