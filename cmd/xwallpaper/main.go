package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/1broseidon/xwallpaper/internal/app"
	"github.com/1broseidon/xwallpaper/internal/config"
)

var version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "render":
			os.Exit(runRender(args[1:]))
		case "outputs":
			os.Exit(runOutputs(args[1:]))
		case "mcp":
			os.Exit(runMCP(args[1:]))
		case "ctl":
			os.Exit(runCtl(args[1:]))
		case "help", "-h", "--help":
			printMainUsage(os.Stdout)
			os.Exit(0)
		}
	}
	os.Exit(runSet(args))
}

func printMainUsage(w io.Writer) {
	fmt.Fprint(w, config.Usage)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render -o <file> -size WxH [-monitor NAME=WxH+X+Y]... -- [options]")
	fmt.Fprintln(w, "                      Compose the wallpaper into an image file")
	fmt.Fprintln(w, "  outputs             List screens and RandR outputs")
	fmt.Fprintln(w, "  ctl status|redraw   Query or redraw a running --daemon")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
}

// newLogger returns the process logger: warnings only unless debug is set.
func newLogger(debug bool) *slog.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "xwallpaper",
		ReportTimestamp: term.IsTerminal(int(os.Stderr.Fd())),
	})
	return slog.New(handler)
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "xwallpaper: %v\n", err)
	return 1
}

// parseWallpaperArgs parses the wallpaper options, printing usage on
// command line errors. It returns nil and an exit code when parsing ended
// the run.
func parseWallpaperArgs(args []string) (*config.Config, int) {
	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stdout, config.Usage)
			return nil, 0
		}
		if errors.Is(err, config.ErrUsage) {
			fmt.Fprintf(os.Stderr, "xwallpaper: %v\n", err)
			fmt.Fprint(os.Stderr, config.Usage)
			return nil, 1
		}
		return nil, fail(err)
	}
	if cfg.Version {
		fmt.Fprintf(os.Stdout, "xwallpaper %s\n", version)
		return nil, 0
	}
	return cfg, 0
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}

func runSet(args []string) int {
	cfg, code := parseWallpaperArgs(args)
	if cfg == nil {
		return code
	}
	logger := newLogger(cfg.Debug)
	for _, f := range cfg.Files {
		logger.Debug("configuration loaded", "file", f)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := app.Set(ctx, cfg, logger); err != nil {
		return fail(err)
	}
	return 0
}
