package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return dserrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		return dserrors.NewConfigError("search", "", err)
	}

	if err := v.validateWatchConfig(&cfg.Watch); err != nil {
		return dserrors.NewConfigError("watch", cfg.Watch.Target, err)
	}

	var errs []error
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, dserrors.NewConfigError("exclude", pattern, doublestar.ErrBadPattern))
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, dserrors.NewConfigError("include", pattern, doublestar.ErrBadPattern))
		}
	}
	return dserrors.NewMultiError(errs).ErrOrNil()
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}

	info, err := os.Stat(project.Root)
	if err != nil {
		return fmt.Errorf("project root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", project.Root)
	}

	return nil
}

// validateSearchConfig validates search configuration
func (v *Validator) validateSearchConfig(search *Search) error {
	positive := []struct {
		name  string
		value int
	}{
		{"MaxFilesPerDir", search.MaxFilesPerDir},
		{"MaxResultsPerDir", search.MaxResultsPerDir},
		{"MaxTotalResults", search.MaxTotalResults},
		{"BatchSize", search.BatchSize},
		{"ProgressIntervalMs", search.ProgressIntervalMs},
		{"EarlyResultsIntervalMs", search.EarlyResultsIntervalMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	if search.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", search.MaxFileSize)
	}

	if search.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", search.MaxFileSize)
	}

	if search.MaxTimeoutSec < DefaultMinTimeoutSec || search.MaxTimeoutSec > DefaultMaxTimeoutSec {
		return fmt.Errorf("MaxTimeoutSec must be between %d and %d, got %d",
			DefaultMinTimeoutSec, DefaultMaxTimeoutSec, search.MaxTimeoutSec)
	}

	if search.DefaultTimeoutSec < DefaultMinTimeoutSec || search.DefaultTimeoutSec > search.MaxTimeoutSec {
		return fmt.Errorf("DefaultTimeoutSec must be between %d and %d, got %d",
			DefaultMinTimeoutSec, search.MaxTimeoutSec, search.DefaultTimeoutSec)
	}

	for _, dir := range search.PriorityDirs {
		if dir == "" || filepath.Base(dir) != dir {
			return fmt.Errorf("priority directory %s must be a plain directory name", strconv.Quote(dir))
		}
	}

	return nil
}

// validateWatchConfig validates watch configuration
func (v *Validator) validateWatchConfig(watch *Watch) error {
	if watch.DebounceMs < 0 {
		return fmt.Errorf("DebounceMs cannot be negative, got %d", watch.DebounceMs)
	}

	if slices.Contains(WatchTargets, watch.Target) {
		return nil
	}
	if s := suggestKey(watch.Target, WatchTargets); s != "" {
		return fmt.Errorf("unknown target %s, did you mean %s?", strconv.Quote(watch.Target), strconv.Quote(s))
	}
	return fmt.Errorf("target must be one of %s; got %s", strings.Join(WatchTargets, ", "), strconv.Quote(watch.Target))
}

// setSmartDefaults fills zero values left by partial config files
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Project.Name == "" && cfg.Project.Root != "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}

	if cfg.Search.DefaultTimeoutSec == 0 {
		cfg.Search.DefaultTimeoutSec = DefaultTimeoutSec
	}

	if cfg.Search.MaxTimeoutSec == 0 {
		cfg.Search.MaxTimeoutSec = DefaultMaxTimeoutSec
	}

	if cfg.Search.PriorityDirs == nil {
		cfg.Search.PriorityDirs = append([]string(nil), DefaultPriorityDirs...)
	}

	if cfg.Watch.Target == "" {
		cfg.Watch.Target = "all"
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
