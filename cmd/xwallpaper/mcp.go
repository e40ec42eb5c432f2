package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/xwallpaper/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xwallpaper mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	display := fs.String("display", "", "X display to connect to")
	debug := fs.Bool("debug", false, "log diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fmt.Fprintln(os.Stdout, "Usage: xwallpaper mcp serve [--display <display>] [--debug]")
			fmt.Fprintln(os.Stdout, "")
			fmt.Fprintln(os.Stdout, "Start the MCP server on stdio with the tools list_outputs and")
			fmt.Fprintln(os.Stdout, "set_wallpaper.")
			return 0
		}
		fmt.Fprintf(os.Stderr, "xwallpaper: %v\n", err)
		return 2
	}

	server := mcp.NewServer(*display, newLogger(*debug))

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil {
		return fail(fmt.Errorf("MCP server error: %w", err))
	}
	return 0
}
