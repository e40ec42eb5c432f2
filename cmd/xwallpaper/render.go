package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/xwallpaper/internal/app"
	"github.com/1broseidon/xwallpaper/internal/outputs"
	"github.com/1broseidon/xwallpaper/internal/placement"
)

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xwallpaper render -o <file> -size WxH [-monitor NAME=WxH+X+Y]... -- [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Compose the wallpaper for an imaginary screen and write it to an image")
	fmt.Fprintln(w, "file. The format follows the file extension. Options after -- are the")
	fmt.Fprintln(w, "wallpaper options; only those for screen 0 apply.")
}

func runRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "output image file")
	size := fs.String("size", "", "screen size WxH")
	var monitors []outputs.Info
	fs.Func("monitor", "RandR output NAME=WxH+X+Y (repeatable)", func(v string) error {
		m, err := app.ParseMonitor(v)
		if err != nil {
			return err
		}
		monitors = append(monitors, m)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRenderUsage(os.Stdout)
			return 0
		}
		fmt.Fprintf(os.Stderr, "xwallpaper: %v\n\n", err)
		printRenderUsage(os.Stderr)
		return 2
	}
	if *out == "" || *size == "" {
		fmt.Fprintln(os.Stderr, "xwallpaper: render needs -o and -size")
		fmt.Fprintln(os.Stderr, "")
		printRenderUsage(os.Stderr)
		return 2
	}
	box, err := placement.ParseBox(*size)
	if err != nil || box.X != 0 || box.Y != 0 {
		fmt.Fprintf(os.Stderr, "xwallpaper: invalid size %q\n", *size)
		return 2
	}

	cfg, code := parseWallpaperArgs(fs.Args())
	if cfg == nil {
		return code
	}
	logger := newLogger(cfg.Debug)

	drawn, err := app.Render(cfg, app.RenderSpec{
		Path:     *out,
		Width:    box.Width,
		Height:   box.Height,
		Monitors: monitors,
	}, logger)
	if err != nil {
		return fail(err)
	}
	logger.Debug("render written", "file", *out, "regions", drawn)
	return 0
}
