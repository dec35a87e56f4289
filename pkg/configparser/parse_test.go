package configparser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type nestedConfig struct {
	Port    string        `env:"TESTCFG_PORT" default:"3000"`
	Rate    int           `env:"TESTCFG_RATE" default:"5"`
	Timeout time.Duration `env:"TESTCFG_TIMEOUT" default:"3s"`
}

type testConfig struct {
	Name     string  `env:"TESTCFG_NAME" default:"tracking-service"`
	Enabled  bool    `env:"TESTCFG_ENABLED" default:"true"`
	Latitude float64 `env:"TESTCFG_LAT" default:"-26.20"`

	Server nestedConfig
}

func TestParseEnv_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	require.Equal(t, "tracking-service", cfg.Name)
	require.True(t, cfg.Enabled)
	require.Equal(t, -26.20, cfg.Latitude)
	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, 5, cfg.Server.Rate)
	require.Equal(t, 3*time.Second, cfg.Server.Timeout)
}

func TestParseEnv_EnvironmentWinsOverDefault(t *testing.T) {
	t.Setenv("TESTCFG_NAME", "other-service")
	t.Setenv("TESTCFG_RATE", "50")
	t.Setenv("TESTCFG_TIMEOUT", "250ms")

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	require.Equal(t, "other-service", cfg.Name)
	require.Equal(t, 50, cfg.Server.Rate)
	require.Equal(t, 250*time.Millisecond, cfg.Server.Timeout)
}

func TestParseEnv_MalformedValue(t *testing.T) {
	t.Setenv("TESTCFG_RATE", "not-a-number")

	var cfg testConfig
	err := ParseEnv(&cfg)

	require.Error(t, err)
	require.Contains(t, err.Error(), "TESTCFG_RATE")
}

func TestParseEnv_RequiresStructPointer(t *testing.T) {
	var cfg testConfig
	require.Error(t, ParseEnv(cfg))
	require.Error(t, ParseEnv(42))
}
