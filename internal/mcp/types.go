package mcp

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct{}

// OutputInfo describes one connected output.
type OutputInfo struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ScreenInfo describes one X screen.
type ScreenInfo struct {
	Index   int          `json:"index"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Depth   int          `json:"depth"`
	RandR   bool         `json:"randr"`
	Outputs []OutputInfo `json:"outputs"`
}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Screens []ScreenInfo `json:"screens"`
}

// WallpaperInput places one image.
type WallpaperInput struct {
	File   string `json:"file" jsonschema:"Absolute path of the image (PNG, JPEG, WEBP, XPM or farbfeld)"`
	Mode   string `json:"mode" jsonschema:"Placement mode: center, focus, maximize, stretch, tile or zoom"`
	Output string `json:"output,omitempty" jsonschema:"RandR output name, or all (default: every output)"`
	Screen *int   `json:"screen,omitempty" jsonschema:"X screen number; applies to this and the following wallpapers"`
	Trim   string `json:"trim,omitempty" jsonschema:"Use only part of the image: WIDTHxHEIGHT[+X+Y]"`
}

// SetWallpaperInput is the input for the set_wallpaper tool.
type SetWallpaperInput struct {
	Wallpapers []WallpaperInput `json:"wallpapers,omitempty" jsonschema:"Images to place, in order; later entries for the same output replace earlier ones"`
	Clear      bool             `json:"clear,omitempty" jsonschema:"Do not reuse the previous wallpaper pixmap; with no wallpapers the wallpaper is removed"`
	NoRandR    bool             `json:"no_randr,omitempty" jsonschema:"Ignore RandR outputs and treat each screen as a single area; takes one wallpaper without an output"`
	NoAtoms    bool             `json:"no_atoms,omitempty" jsonschema:"Do not publish the wallpaper in root window properties"`
	NoRoot     bool             `json:"no_root,omitempty" jsonschema:"Do not set the root window background"`
	Filter     string           `json:"filter,omitempty" jsonschema:"Resampling filter: fast, nearest, bilinear or best (default: by screen depth)"`
}

// AppliedOption reports one option as it was applied.
type AppliedOption struct {
	File   string `json:"file"`
	Mode   string `json:"mode"`
	Output string `json:"output,omitempty"`
	Screen *int   `json:"screen,omitempty"`
	Trim   string `json:"trim,omitempty"`
}

// SetWallpaperOutput is the output for the set_wallpaper tool.
type SetWallpaperOutput struct {
	Cleared bool            `json:"cleared"`
	Applied []AppliedOption `json:"applied"`
}
