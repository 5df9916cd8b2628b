package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/internal/display"
	"github.com/standardbeagle/dirsearch/internal/watch"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

// watchCommand prints change events under a directory until interrupted
func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	root, err := resolveTarget(c, 0, cfg)
	if err != nil {
		return err
	}

	opts := watch.OptionsFromConfig(cfg)
	if target := c.String("target"); target != "" {
		if !slices.Contains(config.WatchTargets, target) {
			return cli.Exit(fmt.Sprintf("invalid --target %q (valid: %s)", target, strings.Join(config.WatchTargets, ", ")), exitUsage)
		}
		opts.Target = target
	}
	if ms := c.Int("debounce"); ms > 0 {
		opts.Debounce = time.Duration(ms) * time.Millisecond
	}

	w, err := watch.New(root, opts)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext(c.Context)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	events := make(chan watch.Event, 64)
	w.SetCallback(func(batch []watch.Event) {
		for _, ev := range batch {
			select {
			case events <- ev:
			case <-gctx.Done():
				return
			}
		}
	})

	out := c.App.Writer
	asJSON := c.Bool("json")
	rf := display.NewResultFormatter(display.FormatterOptions{Color: !asJSON && isColorWriter(out)})
	enc := json.NewEncoder(out)

	if err := w.Start(); err != nil {
		return err
	}
	g.Go(func() error {
		<-gctx.Done()
		return w.Stop()
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				if asJSON {
					if err := enc.Encode(ev); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, rf.FormatEvent(string(ev.Kind), pathutil.ToRelative(ev.Path, w.Root())))
			}
		}
	})

	fmt.Fprintln(c.App.ErrWriter, rf.Faint(fmt.Sprintf("watching %s for %s events, press Ctrl-C to stop", w.Root(), targetLabel(opts.Target))))
	return g.Wait()
}

func targetLabel(target string) string {
	if target == "" {
		return "all"
	}
	return target
}
