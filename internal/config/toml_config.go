package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/dirsearch/internal/debug"
)

// tomlFile mirrors the on-disk TOML layout. Pointer fields distinguish
// "absent" from zero so absent keys keep their defaults.
type tomlFile struct {
	Version *int         `toml:"version"`
	Project *tomlProject `toml:"project"`
	Search  *tomlSearch  `toml:"search"`
	Watch   *tomlWatch   `toml:"watch"`
	Include []string     `toml:"include"`
	Exclude []string     `toml:"exclude"`
}

type tomlProject struct {
	Root *string `toml:"root"`
	Name *string `toml:"name"`
}

type tomlSearch struct {
	MaxFilesPerDir         *int     `toml:"max_files_per_dir"`
	MaxResultsPerDir       *int     `toml:"max_results_per_dir"`
	MaxTotalResults        *int     `toml:"max_total_results"`
	BatchSize              *int     `toml:"batch_size"`
	ProgressIntervalMs     *int     `toml:"progress_interval_ms"`
	EarlyResultsIntervalMs *int     `toml:"early_results_interval_ms"`
	MaxFileSize            any      `toml:"max_file_size"` // integer bytes or "10MiB"
	DefaultTimeoutSec      *int     `toml:"default_timeout_sec"`
	MaxTimeoutSec          *int     `toml:"max_timeout_sec"`
	PriorityDirs           []string `toml:"priority_dirs"`
}

type tomlWatch struct {
	DebounceMs *int    `toml:"debounce_ms"`
	Target     *string `toml:"target"`
}

// LoadTOML attempts to load configuration from .dirsearch.toml file
func LoadTOML(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, TOMLFileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}

	resolveRoot(cfg, projectRoot)
	debug.LogConfig("loaded %s (root=%s)\n", tomlPath, cfg.Project.Root)
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	cfg := Default("")

	var file tomlFile
	strict := toml.NewDecoder(bytes.NewReader(content)).DisallowUnknownFields()
	if err := strict.Decode(&file); err != nil {
		var missing *toml.StrictMissingError
		if !stderrors.As(err, &missing) {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
		for _, de := range missing.Errors {
			key := de.Key()
			section, name := "", ""
			if len(key) > 0 {
				name = key[len(key)-1]
			}
			if len(key) > 1 {
				section = strings.Join(key[:len(key)-1], ".")
			}
			cfg.warnUnknown(section, name, knownKeysFor(section))
		}
		// Unknown keys are warnings; decode again leniently
		file = tomlFile{}
		if err := toml.Unmarshal(content, &file); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	if err := file.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func knownKeysFor(section string) []string {
	switch section {
	case "":
		return topLevelKeys
	case "project":
		return projectKeys
	case "search":
		return searchKeys
	case "watch":
		return watchKeys
	}
	return nil
}

func (f *tomlFile) apply(cfg *Config) error {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setInt(&cfg.Version, f.Version)
	if p := f.Project; p != nil {
		setString(&cfg.Project.Root, p.Root)
		setString(&cfg.Project.Name, p.Name)
	}
	if s := f.Search; s != nil {
		setInt(&cfg.Search.MaxFilesPerDir, s.MaxFilesPerDir)
		setInt(&cfg.Search.MaxResultsPerDir, s.MaxResultsPerDir)
		setInt(&cfg.Search.MaxTotalResults, s.MaxTotalResults)
		setInt(&cfg.Search.BatchSize, s.BatchSize)
		setInt(&cfg.Search.ProgressIntervalMs, s.ProgressIntervalMs)
		setInt(&cfg.Search.EarlyResultsIntervalMs, s.EarlyResultsIntervalMs)
		setInt(&cfg.Search.DefaultTimeoutSec, s.DefaultTimeoutSec)
		setInt(&cfg.Search.MaxTimeoutSec, s.MaxTimeoutSec)
		if s.PriorityDirs != nil {
			cfg.Search.PriorityDirs = s.PriorityDirs
		}
		switch v := s.MaxFileSize.(type) {
		case nil:
		case int64:
			cfg.Search.MaxFileSize = v
		case string:
			sz, err := parseSize(v)
			if err != nil {
				return fmt.Errorf("search.max_file_size: %w", err)
			}
			cfg.Search.MaxFileSize = sz
		default:
			return fmt.Errorf("search.max_file_size: unsupported value %v (%T)", v, v)
		}
	}
	if w := f.Watch; w != nil {
		setInt(&cfg.Watch.DebounceMs, w.DebounceMs)
		setString(&cfg.Watch.Target, w.Target)
	}
	if f.Include != nil {
		cfg.Include = f.Include
	}
	if f.Exclude != nil {
		cfg.Exclude = f.Exclude
	}
	return nil
}

// MarshalTOML renders cfg in the .dirsearch.toml layout
func MarshalTOML(cfg *Config) ([]byte, error) {
	s := cfg.Search
	w := cfg.Watch
	file := tomlFile{
		Version: &cfg.Version,
		Project: &tomlProject{Root: &cfg.Project.Root, Name: &cfg.Project.Name},
		Search: &tomlSearch{
			MaxFilesPerDir:         &s.MaxFilesPerDir,
			MaxResultsPerDir:       &s.MaxResultsPerDir,
			MaxTotalResults:        &s.MaxTotalResults,
			BatchSize:              &s.BatchSize,
			ProgressIntervalMs:     &s.ProgressIntervalMs,
			EarlyResultsIntervalMs: &s.EarlyResultsIntervalMs,
			MaxFileSize:            s.MaxFileSize,
			DefaultTimeoutSec:      &s.DefaultTimeoutSec,
			MaxTimeoutSec:          &s.MaxTimeoutSec,
			PriorityDirs:           s.PriorityDirs,
		},
		Watch:   &tomlWatch{DebounceMs: &w.DebounceMs, Target: &w.Target},
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
	return toml.Marshal(file)
}
