package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xwallpaper/internal/config"
	"github.com/1broseidon/xwallpaper/internal/outputs"
	"github.com/1broseidon/xwallpaper/internal/placement"
)

func (s *Server) handleListOutputs(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	screens, err := s.listFn(ctx)
	if err != nil {
		return nil, ListOutputsOutput{}, err
	}
	out := ListOutputsOutput{Screens: make([]ScreenInfo, 0, len(screens))}
	for _, screen := range screens {
		info := ScreenInfo{
			Index:   screen.Index,
			Width:   int(screen.Width),
			Height:  int(screen.Height),
			Depth:   screen.Depth,
			RandR:   screen.RandR,
			Outputs: make([]OutputInfo, 0, len(screen.Outputs)),
		}
		for _, region := range screen.Outputs {
			info.Outputs = append(info.Outputs, OutputInfo{
				Name:   region.Name,
				X:      int(region.X),
				Y:      int(region.Y),
				Width:  int(region.Width),
				Height: int(region.Height),
			})
		}
		out.Screens = append(out.Screens, info)
	}
	s.logger.Debug("list_outputs", "screens", len(out.Screens))
	return nil, out, nil
}

func (s *Server) handleSetWallpaper(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetWallpaperInput) (*mcpsdk.CallToolResult, SetWallpaperOutput, error) {
	cliArgs, err := buildArgs(args)
	if err != nil {
		return nil, SetWallpaperOutput{}, err
	}
	cfg, err := config.Parse(cliArgs)
	if err != nil {
		return nil, SetWallpaperOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setFn(ctx, cfg); err != nil {
		return nil, SetWallpaperOutput{}, err
	}

	out := SetWallpaperOutput{Cleared: cfg.Clear(), Applied: make([]AppliedOption, 0, len(cfg.Options))}
	for _, o := range cfg.Options {
		applied := AppliedOption{File: o.File, Mode: o.Mode.String(), Output: o.Output}
		if o.Screen != config.AnyScreen {
			n := o.Screen
			applied.Screen = &n
		}
		if o.Trim != nil {
			applied.Trim = o.Trim.String()
		}
		out.Applied = append(out.Applied, applied)
	}
	s.logger.Debug("set_wallpaper", "options", len(out.Applied), "cleared", out.Cleared)
	return nil, out, nil
}

// buildArgs turns the tool input into a command line so that both surfaces
// share one option semantics.
func buildArgs(in SetWallpaperInput) ([]string, error) {
	var args []string
	if in.Clear {
		args = append(args, "--clear")
	}
	if in.NoRandR {
		args = append(args, "--no-randr")
	}
	if in.NoAtoms {
		args = append(args, "--no-atoms")
	}
	if in.NoRoot {
		args = append(args, "--no-root")
	}
	if in.Filter != "" {
		args = append(args, "--filter", in.Filter)
	}
	if in.NoRandR && len(in.Wallpapers) > 1 {
		return nil, errors.New("no_randr takes a single wallpaper per call")
	}
	for i, w := range in.Wallpapers {
		if w.File == "" {
			return nil, fmt.Errorf("wallpapers[%d]: file is required", i)
		}
		if !filepath.IsAbs(w.File) {
			return nil, fmt.Errorf("wallpapers[%d]: file must be an absolute path", i)
		}
		mode, err := placement.ParseMode(w.Mode)
		if err != nil {
			return nil, fmt.Errorf("wallpapers[%d]: %w", i, err)
		}
		// Every entry starts a fresh pending option, otherwise it would
		// inherit the output and trim of the entry before it.
		switch {
		case w.Output != "" && in.NoRandR:
			return nil, fmt.Errorf("wallpapers[%d]: output needs RandR", i)
		case w.Output != "":
			args = append(args, "--output", w.Output)
		case !in.NoRandR:
			args = append(args, "--output", outputs.AllName)
		}
		if w.Screen != nil {
			args = append(args, "--screen", strconv.Itoa(*w.Screen))
		}
		if w.Trim != "" {
			args = append(args, "--trim", w.Trim)
		}
		args = append(args, "--"+mode.String(), w.File)
	}
	if len(in.Wallpapers) == 0 && !in.Clear {
		return nil, errors.New("no wallpaper given")
	}
	return args, nil
}
