package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/1broseidon/xwallpaper/internal/placement"
)

// Usage is the synopsis printed on usage errors.
const Usage = `usage: xwallpaper [--screen <screen>] [--clear] [--daemon] [--debug]
  [--no-atoms] [--no-randr] [--no-root] [--trim widthxheight[+x+y]]
  [--output <output>] [--center <file>] [--focus <file>]
  [--maximize <file>] [--stretch <file>] [--tile <file>] [--zoom <file>]
  [--filter fast|nearest|bilinear|best] [--display <display>]
  [--config <file>] [--version]
`

var errVersion = errors.New("version requested")

// parser carries the option being assembled while flags are visited in
// command line order.
type parser struct {
	cfg  *Config
	last Option
	err  error
}

func (p *parser) fail(err error) error {
	if p.err == nil {
		p.err = err
	}
	return err
}

// Parse interprets the wallpaper command line. Options are order dependent:
// --screen, --output and --trim modify the option that the next mode flag
// completes. With no arguments at all the default configuration file is
// loaded when it exists.
func Parse(args []string) (*Config, error) {
	p := &parser{cfg: New(), last: Option{Screen: AnyScreen}}

	if len(args) == 0 {
		if path, err := DefaultConfigPath(); err == nil {
			if exists, err := pathExists(path); err == nil && exists {
				if err := p.loadFile(path); err != nil {
					return nil, err
				}
			}
		}
	}

	fs := p.flagSet()
	if err := fs.Parse(args); err != nil {
		switch {
		case errors.Is(p.err, errVersion):
			return p.cfg, nil
		case p.err != nil:
			return nil, p.err
		case errors.Is(err, flag.ErrHelp):
			return nil, fmt.Errorf("%w: %w", ErrUsage, flag.ErrHelp)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
	}
	if fs.NArg() > 0 {
		return nil, usageErrorf("illegal argument: %s", fs.Arg(0))
	}
	if err := p.cfg.finish(p.last); err != nil {
		return nil, err
	}
	return p.cfg, nil
}

func (p *parser) flagSet() *flag.FlagSet {
	cfg := p.cfg
	fs := flag.NewFlagSet("xwallpaper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	boolFlag := func(name, usage string, fn func() error) {
		fs.BoolFunc(name, usage, func(v string) error {
			if on, err := strconv.ParseBool(v); err != nil || !on {
				return p.fail(usageErrorf("--%s takes no value", name))
			}
			if err := fn(); err != nil {
				return p.fail(err)
			}
			return nil
		})
	}
	valueFlag := func(name, usage string, fn func(string) error) {
		fs.Func(name, usage, func(v string) error {
			if err := fn(v); err != nil {
				return p.fail(err)
			}
			return nil
		})
	}

	boolFlag("daemon", "keep running and react to screen changes", cfg.setDaemon)
	boolFlag("debug", "print diagnostics", func() error { cfg.Debug = true; return nil })
	boolFlag("clear", "do not reuse the previous wallpaper pixmap", func() error { cfg.ReuseAtoms = false; return nil })
	boolFlag("no-atoms", "do not publish the pixmap in root properties", cfg.disableAtoms)
	boolFlag("no-root", "do not set the root window background", cfg.disableRoot)
	boolFlag("no-randr", "ignore RandR outputs", cfg.disableRandR)
	boolFlag("version", "print version and exit", func() error {
		cfg.Version = true
		return errVersion
	})

	valueFlag("screen", "restrict following options to screen `n`", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("failed to parse screen number: %s", v)
		}
		p.last.Screen = n
		return nil
	})
	valueFlag("output", "apply following options to RandR `output`", func(v string) error {
		if !cfg.RandR {
			return usageErrorf("--output requires RandR")
		}
		cfg.add(p.last)
		cfg.explicitOutputs++
		p.last.Trim = nil
		p.last.Output = v
		return nil
	})
	valueFlag("trim", "use only the `box` WxH[+X+Y] of the image", func(v string) error {
		box, err := placement.ParseBox(v)
		if err != nil {
			return usageErrorf("invalid trim box: %s", v)
		}
		p.last.Trim = &box
		return nil
	})
	valueFlag("filter", "resampling `filter`", func(v string) error {
		f, err := placement.ParseFilter(v)
		if err != nil {
			return usageErrorf("%v", err)
		}
		cfg.Filter = f
		return nil
	})
	valueFlag("display", "X `display` to connect to", func(v string) error {
		cfg.Display = v
		return nil
	})
	valueFlag("config", "load options from YAML `file`", p.loadFile)

	for _, mode := range placement.Modes() {
		valueFlag(mode.String(), "place `file` in "+mode.String()+" mode", func(v string) error {
			p.last.Mode = mode
			p.last.File = v
			return nil
		})
	}
	return fs
}
