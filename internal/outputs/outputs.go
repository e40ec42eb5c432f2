// Package outputs models the regions of a screen that options can target.
package outputs

import (
	"fmt"
	"image"
)

// AllName selects every connected output of a screen.
const AllName = "all"

// Region is a rectangle of a screen. An empty Name denotes the whole screen.
type Region struct {
	Name   string
	X      int16
	Y      int16
	Width  uint16
	Height uint16
}

// Rect returns the region as an image rectangle in screen coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

func (r Region) String() string {
	name := r.Name
	if name == "" {
		name = "screen"
	}
	return fmt.Sprintf("%s %dx%d+%d+%d", name, r.Width, r.Height, r.X, r.Y)
}

// Info is the raw description of one RandR output.
type Info struct {
	Name      string
	Connected bool
	HasCrtc   bool
	X         int16
	Y         int16
	Width     uint16
	Height    uint16
}

// Layout lists the usable regions of one screen.
type Layout struct {
	Outputs []Region
	Screen  Region
	RandR   bool
}

// Build assembles a layout from the screen size and the RandR outputs.
// Disconnected outputs and outputs without a CRTC are left out. With randr
// false the output list is ignored.
func Build(width, height uint16, infos []Info, randr bool) Layout {
	layout := Layout{
		Screen: Region{Width: width, Height: height},
		RandR:  randr,
	}
	if !randr {
		return layout
	}
	for _, info := range infos {
		if !info.Connected || !info.HasCrtc {
			continue
		}
		layout.Outputs = append(layout.Outputs, Region{
			Name:   info.Name,
			X:      info.X,
			Y:      info.Y,
			Width:  info.Width,
			Height: info.Height,
		})
	}
	return layout
}

// All returns the regions covered by the "all" target. Without RandR the
// whole screen is the only output.
func (l Layout) All() []Region {
	if !l.RandR {
		return []Region{l.Screen}
	}
	return l.Outputs
}

// Lookup finds a region by name. The empty name is the whole screen.
func (l Layout) Lookup(name string) (Region, bool) {
	if name == "" {
		return l.Screen, true
	}
	for _, r := range l.Outputs {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// Regions lists every output followed by the whole screen.
func (l Layout) Regions() []Region {
	out := make([]Region, 0, len(l.Outputs)+1)
	out = append(out, l.Outputs...)
	return append(out, l.Screen)
}

// Resolve expands a target name into regions: "all" yields All, anything
// else at most one region.
func (l Layout) Resolve(name string) ([]Region, bool) {
	if name == AllName {
		return l.All(), true
	}
	r, ok := l.Lookup(name)
	if !ok {
		return nil, false
	}
	return []Region{r}, true
}
