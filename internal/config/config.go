package config

import (
	"os"
	"path/filepath"
	"time"
)

// Search engine limits. The defaults keep large trees responsive: results
// stream early and traversal stops once enough has been found.
const (
	DefaultMaxFilesPerDir         = 300
	DefaultMaxResultsPerDir       = 20
	DefaultMaxTotalResults        = 300
	DefaultBatchSize              = 50
	DefaultProgressIntervalMs     = 250
	DefaultEarlyResultsIntervalMs = 500
	DefaultMaxFileSize            = 10 * 1024 * 1024
	DefaultTimeoutSec             = 45
	DefaultMinTimeoutSec          = 1
	DefaultMaxTimeoutSec          = 3600
	DefaultWatchDebounceMs        = 300
)

// DefaultPriorityDirs are conventional source roots that get traversed first.
var DefaultPriorityDirs = []string{"src", "lib", "app", "components", "pages"}

const (
	// KDLFileName is the project (and global, in $HOME) config file name
	KDLFileName = ".dirsearch.kdl"
	// TOMLFileName is the alternative project config file name
	TOMLFileName = ".dirsearch.toml"
)

type Config struct {
	Version int
	Project Project
	Search  Search
	Watch   Watch
	Include []string
	Exclude []string

	// Warnings collects non-fatal problems found while parsing, such as unknown keys
	Warnings []string
}

type Project struct {
	Root string
	Name string
}

type Search struct {
	MaxFilesPerDir         int   // Files examined per directory pass before the rest are dropped
	MaxResultsPerDir       int   // File results kept per directory
	MaxTotalResults        int   // Global cap; reaching it curtails the search
	BatchSize              int   // Pending results that force an early-results flush
	ProgressIntervalMs     int   // Progress event cadence
	EarlyResultsIntervalMs int   // Early-results flush cadence
	MaxFileSize            int64 // Files above this size are never scanned
	DefaultTimeoutSec      int   // Used when the caller passes no timeout
	MaxTimeoutSec          int   // Upper clamp for caller supplied timeouts
	PriorityDirs           []string
}

type Watch struct {
	DebounceMs int
	// Target limits reported events. See WatchTargets.
	Target string
}

// WatchTargets lists the accepted watch targets: the two groups, "all", and
// each individual event kind.
var WatchTargets = []string{
	"all", "files", "folders",
	"file-created", "file-deleted", "file-modified", "file-renamed",
	"folder-created", "folder-deleted", "folder-renamed",
}

// ProgressInterval returns the progress cadence as a duration
func (s Search) ProgressInterval() time.Duration {
	return time.Duration(s.ProgressIntervalMs) * time.Millisecond
}

// EarlyResultsInterval returns the early-results cadence as a duration
func (s Search) EarlyResultsInterval() time.Duration {
	return time.Duration(s.EarlyResultsIntervalMs) * time.Millisecond
}

// ClampTimeout maps a caller supplied timeout onto the configured bounds.
// Zero or negative selects the default.
func (s Search) ClampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Duration(s.DefaultTimeoutSec) * time.Second
	}
	if d < DefaultMinTimeoutSec*time.Second {
		return DefaultMinTimeoutSec * time.Second
	}
	if maxTimeout := time.Duration(s.MaxTimeoutSec) * time.Second; s.MaxTimeoutSec > 0 && d > maxTimeout {
		return maxTimeout
	}
	return d
}

// DefaultSearch returns the built-in search limits
func DefaultSearch() Search {
	return Search{
		MaxFilesPerDir:         DefaultMaxFilesPerDir,
		MaxResultsPerDir:       DefaultMaxResultsPerDir,
		MaxTotalResults:        DefaultMaxTotalResults,
		BatchSize:              DefaultBatchSize,
		ProgressIntervalMs:     DefaultProgressIntervalMs,
		EarlyResultsIntervalMs: DefaultEarlyResultsIntervalMs,
		MaxFileSize:            DefaultMaxFileSize,
		DefaultTimeoutSec:      DefaultTimeoutSec,
		MaxTimeoutSec:          DefaultMaxTimeoutSec,
		PriorityDirs:           append([]string(nil), DefaultPriorityDirs...),
	}
}

// Default returns a config rooted at root with built-in values.
// No directories are excluded by default.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Search: DefaultSearch(),
		Watch: Watch{
			DebounceMs: DefaultWatchDebounceMs,
			Target:     "all",
		},
		Include: []string{},
		Exclude: []string{},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot resolves configuration for rootDir. A non-empty path names an
// explicit config file and skips discovery.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	// Determine search directory for config files
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	if abs, err := filepath.Abs(searchDir); err == nil {
		searchDir = abs
	}

	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if rootDir != "" {
			cfg.Project.Root = searchDir
		}
		return cfg, nil
	}

	// Step 1: Load global base config from ~/.dirsearch.kdl (if exists)
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config, KDL first then TOML
	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err != nil {
		return nil, err
	} else if kdlCfg != nil {
		projectConfig = kdlCfg
	} else if tomlCfg, err := LoadTOML(searchDir); err != nil {
		return nil, err
	} else if tomlCfg != nil {
		projectConfig = tomlCfg
	}

	// Step 3: Merge configs (project overrides base, but preserve base exclusions)
	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		// Use base config but update project root
		baseConfig.Project.Root = searchDir
		baseConfig.Project.Name = filepath.Base(searchDir)
		return baseConfig, nil
	}

	return Default(searchDir), nil
}

// LoadFile loads an explicit config file, choosing the format by extension
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if filepath.Ext(path) == ".toml" {
		cfg, err := parseTOML(content)
		if err != nil {
			return nil, err
		}
		resolveRoot(cfg, dir)
		return cfg, nil
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir)
	return cfg, nil
}

// resolveRoot makes the project root absolute, relative to the directory
// holding the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg == nil {
		return
	}
	if cfg.Project.Root != "" {
		root := cfg.Project.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(configDir, root)
		}
		cfg.Project.Root = filepath.Clean(root)
	} else if abs, err := filepath.Abs(configDir); err == nil {
		cfg.Project.Root = abs
	} else {
		cfg.Project.Root = configDir
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base exclusions are preserved
func mergeConfigs(base, project *Config) *Config {
	// Start with a copy of the project config
	merged := *project

	// Merge exclusions: combine base and project exclusions
	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	// Merge inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	// Priority dirs follow the same rule as inclusions
	if len(project.Search.PriorityDirs) == 0 && len(base.Search.PriorityDirs) > 0 {
		merged.Search.PriorityDirs = base.Search.PriorityDirs
	}

	return &merged
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrence order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
