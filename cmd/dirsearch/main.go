package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/internal/debug"
	"github.com/standardbeagle/dirsearch/internal/version"

	"github.com/urfave/cli/v2"
)

// Exit codes
const (
	exitError = 1
	exitUsage = 2
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(exitError)
	}
}

// newApp builds the CLI. Output goes to stdout/stderr so tests can capture it.
func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "dirsearch",
		Usage:                  "Depth-first content search with streaming results",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		ExitErrHandler:         func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); default discovers .dirsearch.kdl/.dirsearch.toml in the root",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root (overrides config)",
			},
			&cli.StringFlag{
				Name:  "debug-log",
				Usage: "Write debug output to `FILE`, also in MCP mode (\"auto\" creates one under the temp dir)",
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("debug-log"); path != "" {
				if path == "auto" {
					path = ""
				}
				logPath, err := debug.InitDebugLogFile(path)
				if err != nil {
					return cli.Exit(err.Error(), exitUsage)
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", logPath)
				return nil
			}
			if debug.IsDebugEnabled() {
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search file contents under a directory",
				ArgsUsage: "<pattern> [path]",
				// -sw style flag groups
				UseShortOptionHandling: true,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "regex",
						Aliases: []string{"E"},
						Usage:   "Treat pattern as a regular expression (RE2 syntax)",
					},
					&cli.BoolFlag{
						Name:    "case-sensitive",
						Aliases: []string{"s"},
						Usage:   "Match case exactly",
					},
					&cli.BoolFlag{
						Name:    "word-regexp",
						Aliases: []string{"w"},
						Usage:   "Match only whole words",
					},
					&cli.IntFlag{
						Name:    "timeout",
						Aliases: []string{"t"},
						Usage:   fmt.Sprintf("Time limit in seconds (default from config, clamped to [%d, max_timeout_sec])", config.DefaultMinTimeoutSec),
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output the search response as JSON",
					},
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "One path:line:content row per match",
					},
					&cli.BoolFlag{
						Name:    "progress",
						Aliases: []string{"p"},
						Usage:   "Report progress on stderr while searching",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Re-run the search whenever files under the path change",
					},
					&cli.BoolFlag{
						Name:  "relative",
						Usage: "Print paths relative to the searched directory",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "Skip paths matching glob patterns (e.g., --exclude '**/node_modules/**')",
					},
					&cli.StringSliceFlag{
						Name:  "include",
						Usage: "Only scan files matching glob patterns (e.g., --include '**/*.go')",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Show debug information",
					},
				},
				Action: searchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve start_search/cancel_search over MCP (stdio)",
				Action: mcpCommand,
			},
			{
				Name:      "watch",
				Usage:     "Print file and folder change events",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Event filter: all, files, folders or a single kind such as file-created",
					},
					&cli.IntFlag{
						Name:  "debounce",
						Usage: "Debounce window in milliseconds (default from config)",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "Skip paths matching glob patterns",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "One JSON object per event",
					},
				},
				Action: watchCommand,
			},
			{
				Name:  "config",
				Usage: "Manage configuration",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write a config file with the default values to the project root",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "format",
								Usage: "kdl or toml",
								Value: "kdl",
							},
							&cli.BoolFlag{
								Name:    "force",
								Aliases: []string{"f"},
								Usage:   "Overwrite an existing file",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:  "show",
						Usage: "Print the effective configuration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "format",
								Usage: "kdl or toml",
								Value: "kdl",
							},
						},
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Check the configuration and report problems",
						Action: configValidateCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					fmt.Fprintf(c.App.Writer, "build: %s\n", version.BuildID())
					return nil
				},
			},
		},
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootFlag := c.String("root")
	if rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		rootFlag = absRoot
	}

	cfg, err := config.LoadWithRoot(c.String("config"), rootFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlag != "" {
		cfg.Project.Root = rootFlag
	}

	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludeFlags...))
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = config.DeduplicatePatterns(append(cfg.Include, includeFlags...))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintln(c.App.ErrWriter, "warning:", w)
	}
	return cfg, nil
}

// resolveTarget picks the directory argument at index i, falling back to the project root
func resolveTarget(c *cli.Context, i int, cfg *config.Config) (string, error) {
	target := c.Args().Get(i)
	if target == "" {
		target = cfg.Project.Root
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
