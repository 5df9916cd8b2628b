package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/dirsearch/internal/debug"
)

// Known keys per section, used for unknown-key suggestions
var (
	topLevelKeys = []string{"version", "project", "search", "watch", "include", "exclude"}
	projectKeys  = []string{"root", "name"}
	searchKeys   = []string{
		"max_files_per_dir", "max_results_per_dir", "max_total_results", "batch_size",
		"progress_interval_ms", "early_results_interval_ms", "max_file_size",
		"default_timeout_sec", "max_timeout_sec", "priority_dirs",
	}
	watchKeys = []string{"debounce_ms", "target"}
)

// LoadKDL attempts to load configuration from .dirsearch.kdl file
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, KDLFileName)

	// Check if .dirsearch.kdl exists
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	resolveRoot(cfg, projectRoot)
	debug.LogConfig("loaded %s (root=%s)\n", kdlPath, cfg.Project.Root)
	return cfg, nil
}

// parseKDL reads a dirsearch KDL document on top of the built-in defaults
func parseKDL(content string) (*Config, error) {
	cfg := Default("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch name := nodeName(n); name {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				switch nodeName(cn) {
				case "root":
					assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				case "name":
					assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
				default:
					cfg.warnUnknown("project", nodeName(cn), projectKeys)
				}
			}
		case "search":
			for _, cn := range n.Children {
				parseSearchNode(cfg, cn)
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "target":
					if s, ok := firstStringArg(cn); ok {
						cfg.Watch.Target = s
					}
				default:
					cfg.warnUnknown("watch", nodeName(cn), watchKeys)
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Replace default exclusions if exclude block is present
			cfg.Exclude = collectStringArgs(n)
		default:
			cfg.warnUnknown("", name, topLevelKeys)
		}
	}

	return cfg, nil
}

func parseSearchNode(cfg *Config, cn *document.Node) {
	switch nodeName(cn) {
	case "max_files_per_dir":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.MaxFilesPerDir = v
		}
	case "max_results_per_dir":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.MaxResultsPerDir = v
		}
	case "max_total_results":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.MaxTotalResults = v
		}
	case "batch_size":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.BatchSize = v
		}
	case "progress_interval_ms":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.ProgressIntervalMs = v
		}
	case "early_results_interval_ms":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.EarlyResultsIntervalMs = v
		}
	case "max_file_size":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.MaxFileSize = int64(v)
		}
		if s, ok := firstStringArg(cn); ok {
			if sz, err := parseSize(s); err == nil {
				cfg.Search.MaxFileSize = sz
			} else {
				cfg.warnf("search.max_file_size: %v", err)
			}
		}
	case "default_timeout_sec":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.DefaultTimeoutSec = v
		}
	case "max_timeout_sec":
		if v, ok := firstIntArg(cn); ok {
			cfg.Search.MaxTimeoutSec = v
		}
	case "priority_dirs":
		cfg.Search.PriorityDirs = collectStringArgs(cn)
	default:
		cfg.warnUnknown("search", nodeName(cn), searchKeys)
	}
}

// Helper functions leveraging kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// If no arguments, collect from children (for block format like exclude { "pattern" })
	// In KDL block format, strings are child nodes where the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GiB"
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}

func (c *Config) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	log.Printf("WARNING: %s", msg)
}

func (c *Config) warnUnknown(section, key string, known []string) {
	qualified := key
	if section != "" {
		qualified = section + "." + key
	}
	if s := suggestKey(key, known); s != "" {
		c.warnf("unknown config key %q, did you mean %q?", qualified, s)
		return
	}
	c.warnf("unknown config key %q", qualified)
}

// MarshalKDL renders cfg in the .dirsearch.kdl layout read by parseKDL
func MarshalKDL(cfg *Config) []byte {
	var sb strings.Builder
	s := cfg.Search

	fmt.Fprintf(&sb, "version %d\n\n", cfg.Version)

	sb.WriteString("project {\n")
	fmt.Fprintf(&sb, "    root %s\n", strconv.Quote(cfg.Project.Root))
	fmt.Fprintf(&sb, "    name %s\n", strconv.Quote(cfg.Project.Name))
	sb.WriteString("}\n\n")

	sb.WriteString("search {\n")
	fmt.Fprintf(&sb, "    max_files_per_dir %d\n", s.MaxFilesPerDir)
	fmt.Fprintf(&sb, "    max_results_per_dir %d\n", s.MaxResultsPerDir)
	fmt.Fprintf(&sb, "    max_total_results %d\n", s.MaxTotalResults)
	fmt.Fprintf(&sb, "    batch_size %d\n", s.BatchSize)
	fmt.Fprintf(&sb, "    progress_interval_ms %d\n", s.ProgressIntervalMs)
	fmt.Fprintf(&sb, "    early_results_interval_ms %d\n", s.EarlyResultsIntervalMs)
	fmt.Fprintf(&sb, "    max_file_size %s\n", strconv.Quote(humanize.IBytes(uint64(s.MaxFileSize))))
	fmt.Fprintf(&sb, "    default_timeout_sec %d\n", s.DefaultTimeoutSec)
	fmt.Fprintf(&sb, "    max_timeout_sec %d\n", s.MaxTimeoutSec)
	if len(s.PriorityDirs) > 0 {
		fmt.Fprintf(&sb, "    priority_dirs %s\n", quoteAll(s.PriorityDirs))
	}
	sb.WriteString("}\n\n")

	sb.WriteString("watch {\n")
	fmt.Fprintf(&sb, "    debounce_ms %d\n", cfg.Watch.DebounceMs)
	fmt.Fprintf(&sb, "    target %s\n", strconv.Quote(cfg.Watch.Target))
	sb.WriteString("}\n")

	if len(cfg.Include) > 0 {
		fmt.Fprintf(&sb, "\ninclude %s\n", quoteAll(cfg.Include))
	}
	if len(cfg.Exclude) > 0 {
		fmt.Fprintf(&sb, "\nexclude %s\n", quoteAll(cfg.Exclude))
	}
	return []byte(sb.String())
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, " ")
}
