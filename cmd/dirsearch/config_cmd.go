package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/dirsearch/internal/config"
)

// marshalConfig renders cfg as kdl or toml
func marshalConfig(cfg *config.Config, format string) ([]byte, string, error) {
	switch format {
	case "kdl", "":
		return config.MarshalKDL(cfg), config.KDLFileName, nil
	case "toml":
		data, err := config.MarshalTOML(cfg)
		return data, config.TOMLFileName, err
	default:
		return nil, "", cli.Exit(fmt.Sprintf("unknown format %q (kdl or toml)", format), exitUsage)
	}
}

// configInitCommand writes the default configuration next to the project root
func configInitCommand(c *cli.Context) error {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg := config.Default(root)
	// Stored relative so the file keeps working when the tree moves
	cfg.Project.Root = "."

	data, name, err := marshalConfig(cfg, c.String("format"))
	if err != nil {
		return err
	}

	path := filepath.Join(root, name)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", path), exitError)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

// configShowCommand prints the effective configuration after discovery and overrides
func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	data, _, err := marshalConfig(cfg, c.String("format"))
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

// configValidateCommand loads and validates the configuration
func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitError)
	}

	fmt.Fprintf(c.App.Writer, "Configuration OK (root %s", cfg.Project.Root)
	if n := len(cfg.Warnings); n > 0 {
		fmt.Fprintf(c.App.Writer, ", %d warning(s)", n)
	}
	fmt.Fprintln(c.App.Writer, ")")
	return nil
}
