package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/xwallpaper/internal/app"
	"github.com/1broseidon/xwallpaper/internal/ipc"
)

const ctlUsage = "Usage: xwallpaper ctl [--display <display>] <status|redraw>"

func runCtl(args []string) int {
	fs := flag.NewFlagSet("ctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	display := fs.String("display", "", "X display of the daemon")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fmt.Fprintln(os.Stdout, ctlUsage)
			return 0
		}
		fmt.Fprintf(os.Stderr, "xwallpaper: %v\n", err)
		fmt.Fprintln(os.Stderr, ctlUsage)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, ctlUsage)
		return 2
	}

	client, err := app.Control(*display)
	if err != nil {
		return fail(err)
	}
	switch fs.Arg(0) {
	case "status":
		status, err := client.GetStatus()
		if err != nil {
			return fail(err)
		}
		printStatus(os.Stdout, status)
	case "redraw":
		if err := client.Redraw(); err != nil {
			return fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "xwallpaper: unknown ctl command %q\n", fs.Arg(0))
		fmt.Fprintln(os.Stderr, ctlUsage)
		return 2
	}
	return 0
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "pid:     %d\n", s.PID)
	fmt.Fprintf(w, "display: %s\n", s.Display)
	fmt.Fprintf(w, "screens: %d\n", len(s.Screens))
	fmt.Fprintf(w, "renders: %d\n", s.Renders)
	fmt.Fprintf(w, "uptime:  %ds\n", s.UptimeSeconds)
	if len(s.Files) > 0 {
		fmt.Fprintf(w, "files:   %s\n", strings.Join(s.Files, ", "))
	}
}
