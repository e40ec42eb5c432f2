// Package mcp exposes wallpaper operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xwallpaper/internal/app"
	"github.com/1broseidon/xwallpaper/internal/config"
)

const (
	ServerName    = "xwallpaper"
	ServerVersion = "0.1.0"
)

// ListFunc reports the screens of the display.
type ListFunc func(ctx context.Context) ([]app.ScreenInfo, error)

// SetFunc applies a parsed configuration.
type SetFunc func(ctx context.Context, cfg *config.Config) error

// Server is the MCP server for wallpaper control.
type Server struct {
	mcpServer *mcpsdk.Server
	logger    *slog.Logger

	// mu serializes tool calls; the X connection and image cache are not
	// shared between concurrent renders.
	mu     sync.Mutex
	listFn ListFunc
	setFn  SetFunc
}

// NewServer creates a server talking to the given X display.
func NewServer(display string, logger *slog.Logger) *Server {
	return newServer(
		func(ctx context.Context) ([]app.ScreenInfo, error) {
			return app.ListOutputs(display, logger)
		},
		func(ctx context.Context, cfg *config.Config) error {
			cfg.Display = display
			return app.Set(ctx, cfg, logger)
		},
		logger,
	)
}

func newServer(listFn ListFunc, setFn SetFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		logger: logger,
		listFn: listFn,
		setFn:  setFn,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List the X screens with their size and depth, and the connected RandR outputs of each screen with their geometry. Output names can be passed to set_wallpaper.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_wallpaper",
		Description: "Set the desktop wallpaper. Each entry places one image on an output (or on every output) using a placement mode. Images are decoded once even when used on several outputs. With no wallpapers and clear set, the wallpaper is removed.",
	}, s.handleSetWallpaper)
}
