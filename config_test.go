package assetgo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
workers: 4
memory_limit_bytes: 1048576
io_limit_bytes_per_sec: 4096
log_level: debug
log_format: json
max_texture_dimension: 2048
source:
  kind: minio
  endpoint: localhost:9000
  bucket: assets
  prefix: game/
cache:
  block_size: 65536
  memory_bytes: 8388608
`))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimitBytes)
	assert.Equal(t, int64(4096), cfg.IOLimitBytesPerSec)
	assert.Equal(t, 2048, cfg.MaxTextureDimension)
	assert.Equal(t, SourceMinIO, cfg.Source.Kind)
	assert.Equal(t, "game/", cfg.Source.Prefix)
	assert.True(t, cfg.Cache.Enabled())
	assert.Len(t, cfg.Options(), 4)

	o := applyOptions(cfg.Options())
	assert.Equal(t, 4, o.workers)
	assert.Equal(t, int64(4096), o.ioLimit)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, cfg.Source.Kind)
	assert.Equal(t, ".", cfg.Source.Root)
	assert.False(t, cfg.Cache.Enabled())
}

func TestParseConfig_Strict(t *testing.T) {
	_, err := ParseConfig([]byte("workers: 2\nthreads: 8\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative workers", "workers: -1"},
		{"unknown source", "source: {kind: ftp}"},
		{"minio without bucket", "source: {kind: minio, endpoint: x}"},
		{"s3 without bucket", "source: {kind: s3}"},
		{"local without root", "source: {kind: local, root: ''}"},
		{"bad level", "log_level: loud"},
		{"bad format", "log_format: xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  kind: memory\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SourceMemory, cfg.Source.Kind)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
