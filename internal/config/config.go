// Package config turns the command line and optional YAML files into the
// ordered list of wallpaper options plus global switches.
package config

import (
	"errors"
	"fmt"

	"github.com/1broseidon/xwallpaper/internal/outputs"
	"github.com/1broseidon/xwallpaper/internal/placement"
)

// ErrUsage marks command line errors that should print the usage text.
var ErrUsage = errors.New("usage error")

// AnyScreen matches every X screen.
const AnyScreen = -1

// Option places one file on one target.
type Option struct {
	File string
	Mode placement.Mode
	// Output is "" for the whole screen, outputs.AllName for every output,
	// or a RandR output name.
	Output string
	Screen int
	Trim   *placement.Box

	// autoOutput marks file entries without an output; they target every
	// output once RandR is known to stay enabled.
	autoOutput bool
}

// MatchesScreen reports whether the option applies to screen n.
func (o Option) MatchesScreen(n int) bool {
	return o.Screen == AnyScreen || o.Screen == n
}

// Config is the parsed invocation.
type Config struct {
	Options []Option

	Daemon bool
	Debug  bool
	// ReuseAtoms allows drawing into the pixmap published by a previous run.
	ReuseAtoms bool
	// Atoms and Root select where the result is published.
	Atoms bool
	Root  bool
	// RandR is false after --no-randr.
	RandR   bool
	Filter  placement.Filter
	Display string
	Version bool

	// Files lists the YAML files that were loaded, in load order.
	Files []string

	explicitOutputs int
}

// New returns the defaults: publish to both atoms and root, reuse the
// previous pixmap, RandR enabled.
func New() *Config {
	return &Config{
		ReuseAtoms: true,
		Atoms:      true,
		Root:       true,
		RandR:      true,
	}
}

// Clear reports whether the invocation removes the wallpaper instead of
// setting one.
func (c *Config) Clear() bool {
	return len(c.Options) == 0
}

// NativeTile reports whether the only option tiles the whole screen, in
// which case the X server can repeat the image itself.
func (c *Config) NativeTile() bool {
	return len(c.Options) == 1 && c.Options[0].Mode == placement.Tile && c.Options[0].Output == ""
}

// add appends o, or replaces an earlier option for the same named output
// and screen. Options without a file are dropped.
func (c *Config) add(o Option) {
	if o.File == "" {
		return
	}
	for i, existing := range c.Options {
		if existing.Output != "" && existing.Output == o.Output && existing.Screen == o.Screen {
			c.Options[i] = o
			return
		}
	}
	c.Options = append(c.Options, o)
}

func (c *Config) setDaemon() error {
	if !c.RandR {
		return usageErrorf("--daemon requires RandR")
	}
	c.Daemon = true
	return nil
}

func (c *Config) disableRandR() error {
	if c.explicitOutputs > 0 {
		return usageErrorf("--no-randr conflicts with --output")
	}
	if c.Daemon {
		return usageErrorf("--daemon requires RandR")
	}
	c.RandR = false
	return nil
}

func (c *Config) disableAtoms() error {
	if !c.Root {
		return usageErrorf("--no-atoms conflicts with --no-root")
	}
	c.Atoms = false
	return nil
}

func (c *Config) disableRoot() error {
	if !c.Atoms {
		return usageErrorf("--no-root conflicts with --no-atoms")
	}
	c.Root = false
	return nil
}

// finish applies the end-of-arguments rules to the pending option.
func (c *Config) finish(last Option) error {
	pending := c.Options
	c.Options = nil
	for _, o := range pending {
		if o.autoOutput && c.RandR {
			o.Output = outputs.AllName
		}
		o.autoOutput = false
		c.add(o)
	}

	if c.RandR && last.Output == "" {
		last.Output = outputs.AllName
	}
	c.add(last)

	if !c.Atoms {
		c.ReuseAtoms = false
	}
	if len(c.Options) == 0 && c.ReuseAtoms {
		return usageErrorf("no wallpaper given")
	}
	return nil
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
