package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/dirsearch/internal/debug"
	"github.com/standardbeagle/dirsearch/internal/display"
	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
	"github.com/standardbeagle/dirsearch/internal/search"
	"github.com/standardbeagle/dirsearch/internal/types"
	"github.com/standardbeagle/dirsearch/internal/watch"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

// Signal registration, replaced in tests
var (
	notifyInterrupt = func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt, syscall.SIGTERM) }
	stopInterrupt   = func(c chan<- os.Signal) { signal.Stop(c) }
)

// searchCommand runs one search, or keeps re-running it on change with --watch
func searchCommand(c *cli.Context) error {
	pattern := c.Args().First()
	if pattern == "" {
		return cli.Exit("a search pattern is required: dirsearch search <pattern> [path]", exitUsage)
	}

	// --debug-log keeps its file; -v only adds stderr output without one
	if c.Bool("verbose") && c.String("debug-log") == "" {
		debug.EnableDebug = "true"
		debug.SetDebugOutput(c.App.ErrWriter)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	root, err := resolveTarget(c, 1, cfg)
	if err != nil {
		return err
	}
	root = pathutil.Normalize(root)

	format := "text"
	switch {
	case c.Bool("json"):
		format = "json"
	case c.Bool("compact"):
		format = "compact"
	}

	r := &searchRunner{
		engine: search.NewEngine(search.OptionsFromConfig(cfg)),
		req: search.SearchRequest{
			Root: root,
			Query: types.SearchQuery{
				Pattern:         pattern,
				IsRegex:         c.Bool("regex"),
				IsCaseSensitive: c.Bool("case-sensitive"),
				IsWholeWord:     c.Bool("word-regexp"),
			},
			Timeout: cfg.Search.ClampTimeout(time.Duration(c.Int("timeout")) * time.Second),
		},
		out:    c.App.Writer,
		errOut: c.App.ErrWriter,
		formatter: display.NewResultFormatter(display.FormatterOptions{
			Format:    format,
			Color:     format != "json" && isColorWriter(c.App.Writer),
			ShowStats: format == "text",
		}),
		status: display.NewResultFormatter(display.FormatterOptions{
			Color: isColorWriter(c.App.ErrWriter),
		}),
		progress: c.Bool("progress"),
		relative: c.Bool("relative"),
	}

	debug.LogSearch("cli: %q in %s (timeout %s)\n", pattern, root, r.req.Timeout)

	if c.Bool("watch") {
		return r.watch(c.Context, watch.OptionsFromConfig(cfg))
	}
	return r.runInterruptible(c.Context)
}

// searchRunner executes a search request and prints its response
type searchRunner struct {
	engine    *search.Engine
	req       search.SearchRequest
	out       io.Writer
	errOut    io.Writer
	formatter *display.ResultFormatter
	status    *display.ResultFormatter
	progress  bool
	relative  bool
}

func (r *searchRunner) run(ctx context.Context) error {
	var observer search.Observer = search.NopObserver{}
	if r.progress {
		observer = search.ObserverFuncs{Progress: func(p types.SearchProgress) {
			fmt.Fprintln(r.errOut, r.status.FormatProgress(p))
		}}
	}

	resp, err := r.engine.StartSearch(ctx, r.req, observer)
	if err != nil {
		if dserrors.IsConfigError(err) {
			return cli.Exit(err.Error(), exitUsage)
		}
		return err
	}

	if r.relative {
		resp.Results = pathutil.ToRelativeResults(resp.Results, r.req.Root)
	}
	fmt.Fprint(r.out, r.formatter.Format(resp))
	return nil
}

// runInterruptible runs the search once. An interrupt cancels it through the
// engine's cancel slot, so the partial results are still printed.
func (r *searchRunner) runInterruptible(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	notifyInterrupt(sigs)
	defer stopInterrupt(sigs)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigs:
			r.interrupt(cancel)
		case <-done:
		}
	}()

	return r.run(ctx)
}

// interrupt stops the running search. A signal that lands before the session
// is installed finds the slot empty; cancelling the run context covers that
// case because the search checks it before its first directory.
func (r *searchRunner) interrupt(cancel context.CancelFunc) {
	if !r.engine.CancelSearch() {
		cancel()
	}
	fmt.Fprintln(r.errOut, "interrupted, printing partial results")
}

// watch runs the search, then runs it again after every batch of changes
// until interrupted. A change arriving mid-search cancels that search first.
func (r *searchRunner) watch(parent context.Context, opts watch.Options) error {
	ctx, cancel := interruptContext(parent)
	defer cancel()

	w, err := watch.New(r.req.Root, opts)
	if err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	w.SetCallback(func(events []watch.Event) {
		debug.LogWatch("%d changes, restarting search\n", len(events))
		r.engine.CancelSearch()
		select {
		case trigger <- struct{}{}:
		default:
		}
	})

	// Watches are in place before the first run so no change is missed
	if err := w.Start(); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return w.Stop()
	})
	g.Go(func() error {
		if err := r.run(gctx); err != nil {
			return err
		}
		fmt.Fprintln(r.errOut, r.status.Faint("watching for changes, press Ctrl-C to stop"))
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-trigger:
				fmt.Fprintln(r.out)
				if err := r.run(gctx); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

// interruptContext is cancelled on the first interrupt or when parent is done
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	notifyInterrupt(sigs)
	go func() {
		defer stopInterrupt(sigs)
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func isColorWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && display.ColorEnabled(f)
}
