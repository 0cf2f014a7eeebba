// Package main is the entry point for ToolView.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pralaynaskar/ToolView-sub001/internal/app"
	"github.com/pralaynaskar/ToolView-sub001/internal/config"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
	"github.com/pralaynaskar/ToolView-sub001/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app.Options

	tool  string
	list  bool
	apply string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	switch {
	case opts.list:
		if err := listTools(os.Stdout, application.Registry()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0

	case opts.apply != "":
		if err := applyTool(os.Stdin, os.Stdout, application, opts.apply); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, tool.ErrNotFound) {
				return 2
			}
			return 1
		}
		return 0
	}

	term, err := ui.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		if _, ok := <-signals; ok {
			application.Shutdown()
		}
	}()

	if err := application.Run(context.Background(), term, opts.tool); err != nil {
		if errors.Is(err, app.ErrShutdown) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// listTools prints the catalog grouped by category.
func listTools(w io.Writer, reg *tool.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range []tool.Category{tool.CategoryText, tool.CategoryGenerator, tool.CategoryScript} {
		tools := reg.ByCategory(c)
		if len(tools) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s:\n", strings.ToUpper(c.String()))
		for _, t := range tools {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Slug, t.Name, t.Description)
		}
	}
	return tw.Flush()
}

// applyTool runs one tool over r and writes the result to w. A single
// trailing newline on the input is dropped and one is added to the output.
func applyTool(r io.Reader, w io.Writer, application *app.Application, slug string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	input := strings.TrimSuffix(string(data), "\n")

	out, err := application.Apply(slug, input)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func parseFlags() cliOptions {
	var opts cliOptions
	var noWatch bool
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.PrefsPath, "prefs", "", "Path to preferences file")
	flag.StringVar(&opts.ScriptsDir, "scripts", "", "Directory of Lua script tools")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log file (\"-\" for stderr)")
	flag.IntVar(&opts.MaxHistory, "max-history", 0, "Maximum undo steps per tool (0 uses the config value)")
	flag.BoolVar(&noWatch, "no-watch", false, "Do not reload preferences when the file changes")
	flag.StringVar(&opts.tool, "tool", "", "Tool to open first")
	flag.StringVar(&opts.tool, "t", "", "Tool to open first (shorthand)")
	flag.BoolVar(&opts.list, "list", false, "List available tools and exit")
	flag.StringVar(&opts.apply, "apply", "", "Run the named tool over standard input and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ToolView - text tools with undo and redo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: toolview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  toolview                         Open the tool browser\n")
		fmt.Fprintf(os.Stderr, "  toolview -t slugify              Start on the slugify tool\n")
		fmt.Fprintf(os.Stderr, "  toolview -list                   List tools\n")
		fmt.Fprintf(os.Stderr, "  echo hi | toolview -apply upper-case\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("ToolView %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if err := checkLogLevel(opts.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.MaxHistory < 0 {
		fmt.Fprintf(os.Stderr, "Error: -max-history must not be negative\n")
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %s\n", strings.Join(flag.Args(), " "))
		os.Exit(1)
	}

	opts.WatchPrefs = !noWatch && !opts.list && opts.apply == ""
	return opts
}

// checkLogLevel accepts an empty level, which keeps the configured one.
func checkLogLevel(level string) error {
	if level == "" || config.ValidLevel(level) {
		return nil
	}
	return fmt.Errorf("invalid log level %q (must be one of %s)", level, strings.Join(config.LogLevels, ", "))
}
