package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarml/rdcnn/internal/backend/cpu"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	assert.Equal(t, DefaultNumConvLayers, cfg.NumConvLayers)
	assert.Equal(t, DefaultNumFilters, cfg.NumFilters)
	assert.Equal(t, DefaultFilterSize, cfg.FilterSize)
	require.NotNil(t, cfg.Padding)
	assert.Equal(t, [2]int{1, 1}, *cfg.Padding)
	assert.True(t, cfg.BatchNorm())
	assert.Equal(t, [3]int{2, 1024, 128}, cfg.InputSize)
	assert.NoError(t, cfg.Validate())

	mag := DefaultMagConfig()
	assert.Equal(t, 1, mag.Channels())
}

func TestConfig_WithDefaultsCopiesPointers(t *testing.T) {
	padding := [2]int{2, 2}
	enabled := false
	cfg := Config{Padding: &padding, UseBatchNorm: &enabled}

	resolved := cfg.WithDefaults()
	padding[0] = 7
	enabled = true

	assert.Equal(t, [2]int{2, 2}, *resolved.Padding)
	assert.False(t, resolved.BatchNorm())
}

func TestRICNN_ConfigIsACopy(t *testing.T) {
	model, err := NewRICNN(smallConfig(1), cpu.New())
	require.NoError(t, err)

	cfg := model.Config()
	cfg.Padding[0] = 5
	*cfg.UseBatchNorm = false

	again := model.Config()
	assert.Equal(t, [2]int{1, 1}, *again.Padding)
	assert.True(t, again.BatchNorm())
	assert.Equal(t, smallConfig(1).WithDefaults(), again)
}

func TestConfig_PaddingFollowsFilterSize(t *testing.T) {
	cfg := Config{FilterSize: [2]int{7, 4}}.WithDefaults()
	assert.Equal(t, [2]int{3, 2}, *cfg.Padding)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
num_conv_layers: 4
num_filters: 8
filter_size: [5, 3]
use_batch_norm: false
input_size: [1, 64, 32]
seed: 9
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.NumConvLayers)
	assert.Equal(t, 8, cfg.NumFilters)
	assert.Equal(t, [2]int{5, 3}, cfg.FilterSize)
	assert.Nil(t, cfg.Padding)
	require.NotNil(t, cfg.UseBatchNorm)
	assert.False(t, *cfg.UseBatchNorm)
	assert.Equal(t, [3]int{1, 64, 32}, cfg.InputSize)
	assert.Equal(t, int64(9), cfg.Seed)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("num_layers: 4\n"))
	assert.Error(t, err, "unknown keys must be rejected")

	_, err = ParseConfig([]byte("filter_size: [3, 3, 3]\n"))
	assert.Error(t, err)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := DefaultMagConfig()
	cfg.Seed = 3

	data, err := cfg.YAML()
	require.NoError(t, err)

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_filters: 32\npadding: [0, 0]\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.NumFilters)
	assert.Equal(t, [2]int{0, 0}, *cfg.Padding)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
