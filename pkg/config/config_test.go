package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCfg struct {
	Name string `mapstructure:"name"`
	HTTP struct {
		Rate  float64 `mapstructure:"rate"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"http"`
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := []byte("name: p2p-service\nhttp:\n  rate: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p2p-test.yaml"), content, 0644))

	var cfg testCfg
	_, err := Load("p2p-test", &cfg,
		WithPaths(dir),
		WithDefaults(map[string]interface{}{"http.burst": 100}),
	)
	require.NoError(t, err)

	assert.Equal(t, "p2p-service", cfg.Name)
	assert.Equal(t, 50.0, cfg.HTTP.Rate)
	assert.Equal(t, 100, cfg.HTTP.Burst, "文件里没有的字段走默认值")
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p2p-env.yaml"), []byte("name: from-file\n"), 0644))
	t.Setenv("P2P_ENV_NAME", "from-env")

	var cfg testCfg
	_, err := Load("p2p-env", &cfg, WithPaths(dir))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testCfg
	_, err := Load("does-not-exist", &cfg, WithPaths(t.TempDir()))
	assert.Error(t, err)
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "P2P_SERVICE", EnvPrefix("p2p-service"))
}
