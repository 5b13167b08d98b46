package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/locator"
	"github.com/pthm/hxview/lib/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "find":
		err = runFind(args)
	case "render":
		err = runRender(args)
	case "serve":
		err = runServe(args)
	case "version":
		fmt.Printf("hxview version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hxview - server-side views for Go

Usage:
  hxview <command> [options] [arguments]

Commands:
  find <kind> <name>        Resolve a view, layout, css or js name
  render <source> [layout]  Render a view to stdout
  serve                     Run a development server
  version                   Print version
  help                      Show this help

Options:
  --config <file>           Configuration file (default hxview.yaml)
  --arg key=value           Template argument, repeatable (render)
  --layout <name>           Layout for every page (serve)
  --verbose                 Log at debug level

Examples:
  hxview find view users/show
  hxview render --arg title=Home home main
  hxview serve --layout main`)
}

type options struct {
	config  string
	layout  string
	verbose bool
	args    hxview.Args
}

func parseOptions(args []string) (options, []string, error) {
	opts := options{config: "hxview.yaml", args: hxview.Args{}}
	var rest []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s needs a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--config":
			v, err := next()
			if err != nil {
				return opts, nil, err
			}
			opts.config = v
		case "--layout":
			v, err := next()
			if err != nil {
				return opts, nil, err
			}
			opts.layout = v
		case "--arg":
			value, err := next()
			if err != nil {
				return opts, nil, err
			}
			k, v, ok := strings.Cut(value, "=")
			if !ok {
				return opts, nil, fmt.Errorf("--arg %q is not key=value", value)
			}
			opts.args[k] = v
		case "--verbose":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "--") {
				return opts, nil, fmt.Errorf("unknown option %s", arg)
			}
			rest = append(rest, arg)
		}
	}
	return opts, rest, nil
}

func (o options) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runFind(args []string) error {
	opts, rest, err := parseOptions(args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return errors.New("usage: hxview find <kind> <name>")
	}
	kind, err := locator.ParseKind(rest[0])
	if err != nil {
		return err
	}

	cfg, err := hxview.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	loc, err := cfg.Locator()
	if err != nil {
		return err
	}

	exts := hxview.DefaultExtensions
	switch {
	case kind == locator.KindCSS:
		exts = []string{"css", "scss"}
	case kind == locator.KindJS:
		exts = []string{"js"}
	case len(cfg.Extensions) > 0:
		exts = cfg.Extensions
	}

	if p, ok := loc.Find(rest[1], kind, exts, false); ok {
		fmt.Println(p)
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s %q not found, searched:\n", kind, rest[1])
	for _, p := range loc.LastSearchedPaths() {
		fmt.Fprintf(os.Stderr, "  %s\n", p)
	}
	os.Exit(2)
	return nil
}

func runRender(args []string) error {
	opts, rest, err := parseOptions(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New("usage: hxview render <source> [layout]")
	}

	cfg, err := hxview.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	v := engine.NewView(nil).SetSource(rest[0]).AddArguments(opts.args)
	if len(rest) == 2 {
		v.SetLayout(rest[1])
	}

	ctx := hxview.LoggingContext(context.Background(), opts.logger())
	html, err := v.Render(ctx)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(html)
	return err
}

func runServe(args []string) error {
	opts, _, err := parseOptions(args)
	if err != nil {
		return err
	}
	log := opts.logger()

	cfg, err := hxview.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	loc, err := cfg.Locator()
	if err != nil {
		return err
	}
	engine := hxview.NewEngine(loc, cfg.Options()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := watch.New()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, r := range loc.Roots() {
		if r.Dir == "" {
			continue
		}
		if err := w.Add(r.Dir); err != nil {
			return fmt.Errorf("watching %s: %w", r.Dir, err)
		}
	}
	go w.Run(ctx, func(name string) {
		if p, ok := loc.PathFor(name); ok {
			engine.Invalidate(p)
			log.Debug("source changed", "path", p)
		}
	}, func(err error) {
		log.Warn("watch error", "error", err)
	})

	var handler http.Handler = engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
		source := strings.Trim(strings.TrimPrefix(r.URL.Path, cfg.WebRoot), "/")
		if source == "" {
			source = "index"
		}
		args := hxview.Args{"path": r.URL.Path}
		for k := range r.URL.Query() {
			args[k] = r.URL.Query().Get(k)
		}
		return v.SetSource(source).SetLayout(opts.layout).AddArguments(args).ServeResponse(w, r)
	})

	store, err := cfg.SessionStore()
	if err != nil {
		return err
	}
	if store != nil {
		handler = store.Middleware(handler)
	}

	inner := handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r.WithContext(hxview.LoggingContext(r.Context(), log)))
	})

	srv := &http.Server{
		Addr:           cfg.Addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving", "addr", cfg.Addr, "roots", len(loc.Roots()))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
