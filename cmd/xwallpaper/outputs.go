package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/1broseidon/xwallpaper/internal/app"
)

func runOutputs(args []string) int {
	fs := flag.NewFlagSet("outputs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	display := fs.String("display", "", "X display to connect to")
	jsonOut := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fmt.Fprintln(os.Stdout, "Usage: xwallpaper outputs [--display <display>] [--json]")
			return 0
		}
		fmt.Fprintf(os.Stderr, "xwallpaper: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: xwallpaper outputs [--display <display>] [--json]")
		return 2
	}

	screens, err := app.ListOutputs(*display, newLogger(false))
	if err != nil {
		return fail(err)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(screens); err != nil {
			return fail(err)
		}
		return 0
	}
	printOutputs(os.Stdout, screens)
	return 0
}

func printOutputs(w io.Writer, screens []app.ScreenInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range screens {
		randr := "randr"
		if !s.RandR {
			randr = "no randr"
		}
		fmt.Fprintf(tw, "screen %d\t%dx%d\tdepth %d\t%s\n", s.Index, s.Width, s.Height, s.Depth, randr)
		for _, o := range s.Outputs {
			fmt.Fprintf(tw, "  %s\t%dx%d+%d+%d\t\t\n", o.Name, o.Width, o.Height, o.X, o.Y)
		}
	}
	tw.Flush()
}
