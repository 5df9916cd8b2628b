package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTOML_Full(t *testing.T) {
	content := `
version = 1
include = ["**/*.go"]
exclude = ["**/vendor/**"]

[project]
root = "."
name = "demo"

[search]
max_files_per_dir = 10
max_results_per_dir = 2
max_total_results = 30
batch_size = 5
progress_interval_ms = 50
early_results_interval_ms = 75
max_file_size = 2048
default_timeout_sec = 5
max_timeout_sec = 60
priority_dirs = ["cmd"]

[watch]
debounce_ms = 20
target = "files"
`
	cfg, err := parseTOML([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 10, cfg.Search.MaxFilesPerDir)
	assert.Equal(t, 2, cfg.Search.MaxResultsPerDir)
	assert.Equal(t, 30, cfg.Search.MaxTotalResults)
	assert.Equal(t, 5, cfg.Search.BatchSize)
	assert.Equal(t, 50, cfg.Search.ProgressIntervalMs)
	assert.Equal(t, 75, cfg.Search.EarlyResultsIntervalMs)
	assert.Equal(t, int64(2048), cfg.Search.MaxFileSize)
	assert.Equal(t, 5, cfg.Search.DefaultTimeoutSec)
	assert.Equal(t, 60, cfg.Search.MaxTimeoutSec)
	assert.Equal(t, []string{"cmd"}, cfg.Search.PriorityDirs)
	assert.Equal(t, 20, cfg.Watch.DebounceMs)
	assert.Equal(t, "files", cfg.Watch.Target)
	assert.Equal(t, []string{"**/*.go"}, cfg.Include)
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Exclude)
	assert.Empty(t, cfg.Warnings)
}

func TestParseTOML_PartialKeepsDefaults(t *testing.T) {
	cfg, err := parseTOML([]byte("[search]\nbatch_size = 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Search.BatchSize)
	assert.Equal(t, DefaultMaxTotalResults, cfg.Search.MaxTotalResults)
	assert.Equal(t, DefaultPriorityDirs, cfg.Search.PriorityDirs)
}

func TestParseTOML_UnknownKeys(t *testing.T) {
	cfg, err := parseTOML([]byte("[search]\nbatch_sise = 3\nmax_total_results = 12\n"))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Search.MaxTotalResults)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], `did you mean "batch_size"`)
}

func TestParseTOML_BadSize(t *testing.T) {
	_, err := parseTOML([]byte("[search]\nmax_file_size = \"huge\"\n"))
	assert.Error(t, err)

	_, err = parseTOML([]byte("[search]\nmax_file_size = 1.5\n"))
	assert.Error(t, err)
}

func TestParseTOML_SyntaxError(t *testing.T) {
	_, err := parseTOML([]byte("[search\n"))
	assert.Error(t, err)
}

func TestMarshalTOML_RoundTrip(t *testing.T) {
	cfg := Default("/work/demo")
	cfg.Search.BatchSize = 11
	cfg.Exclude = []string{"**/dist/**"}

	data, err := MarshalTOML(cfg)
	require.NoError(t, err)

	parsed, err := parseTOML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Search, parsed.Search)
	assert.Equal(t, cfg.Watch, parsed.Watch)
	assert.Equal(t, cfg.Exclude, parsed.Exclude)
	assert.Equal(t, "/work/demo", parsed.Project.Root)
}
