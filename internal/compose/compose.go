// Package compose renders the option list of one invocation onto the
// regions of each screen.
package compose

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
	"github.com/1broseidon/xwallpaper/internal/config"
	"github.com/1broseidon/xwallpaper/internal/decode"
	"github.com/1broseidon/xwallpaper/internal/imagecache"
	"github.com/1broseidon/xwallpaper/internal/outputs"
	"github.com/1broseidon/xwallpaper/internal/placement"
	"github.com/1broseidon/xwallpaper/internal/safemath"
)

// ErrTrim reports a trim box that does not fit its image.
var ErrTrim = errors.New("smaller than trim box")

// Target is one screen that composed regions are handed to.
type Target interface {
	// Layout describes the regions of the screen.
	Layout() (outputs.Layout, error)
	// Depth is the screen depth in bits; it selects the default filter.
	Depth() int
	// Put receives the composed pixels for one region.
	Put(region outputs.Region, img *image.RGBA) error
}

// Job is an option bound to its opened image.
type Job struct {
	config.Option
	Entry *imagecache.Entry
	Image *bitmap.Bitmap
}

// Renderer holds the jobs of one invocation. It can render any number of
// times; images are decoded once.
type Renderer struct {
	jobs   []Job
	chain  *decode.Chain
	filter placement.Filter
	logger *slog.Logger
}

// NewRenderer opens every option's file through cache. Files are opened up
// front so that a missing file fails before anything is drawn.
func NewRenderer(opts []config.Option, cache *imagecache.Cache, chain *decode.Chain, filter placement.Filter, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Renderer{chain: chain, filter: filter, logger: logger}
	for _, o := range opts {
		entry, err := cache.Open(o.File)
		if err != nil {
			return nil, err
		}
		r.jobs = append(r.jobs, Job{Option: o, Entry: entry})
	}
	return r, nil
}

// Jobs returns the options in render order.
func (r *Renderer) Jobs() []Job {
	return r.jobs
}

// Load decodes every image and checks trim boxes against image sizes.
func (r *Renderer) Load() error {
	for i := range r.jobs {
		job := &r.jobs[i]
		if job.Image != nil {
			continue
		}
		r.logger.Debug("loading image", "file", job.File)
		bm, err := job.Entry.Load(r.chain)
		if err != nil {
			return err
		}
		r.logger.Debug("image decoded", "file", job.File, "decoder", job.Entry.Decoder(), "width", bm.Width, "height", bm.Height)
		if job.Trim != nil && !job.Trim.Fits(bm.Width, bm.Height) {
			return fmt.Errorf("%s is %w", job.File, ErrTrim)
		}
		job.Image = bm
	}
	return nil
}

// NativeTile returns the image to hand to the X server for native tiling:
// a single screen-wide tile option.
func (r *Renderer) NativeTile() (*bitmap.Bitmap, bool) {
	if len(r.jobs) != 1 {
		return nil, false
	}
	job := r.jobs[0]
	if job.Mode != placement.Tile || job.Output != "" || job.Image == nil {
		return nil, false
	}
	return job.Image, true
}

// FilterForDepth picks the resampling filter for a screen depth.
func FilterForDepth(depth int) placement.Filter {
	if depth == 30 {
		return placement.FilterNearest
	}
	return placement.FilterBest
}

// RenderScreen composes every option that applies to screen n onto target.
// Options naming an unknown or disconnected output are skipped with a
// warning. It returns the number of regions drawn.
func (r *Renderer) RenderScreen(n int, target Target) (int, error) {
	if err := r.Load(); err != nil {
		return 0, err
	}
	layout, err := target.Layout()
	if err != nil {
		return 0, err
	}
	for _, region := range layout.Regions() {
		r.logger.Debug("output detected", "screen", n, "region", region.String())
	}

	filter := r.filter
	if filter == placement.FilterAuto {
		filter = FilterForDepth(target.Depth())
	}

	drawn := 0
	for _, job := range r.jobs {
		if !job.MatchesScreen(n) {
			continue
		}
		regions, ok := layout.Resolve(job.Output)
		if !ok {
			r.logger.Warn("output was not found/disconnected, ignoring", "output", job.Output, "screen", n)
			continue
		}
		for _, region := range regions {
			img, err := r.composeRegion(job, region, filter)
			if err != nil {
				return drawn, err
			}
			if err := target.Put(region, img); err != nil {
				return drawn, fmt.Errorf("put %s: %w", region, err)
			}
			drawn++
		}
	}
	return drawn, nil
}

func (r *Renderer) composeRegion(job Job, region outputs.Region, filter placement.Filter) (*image.RGBA, error) {
	w, h := int(region.Width), int(region.Height)
	stride, err := safemath.Mul(w, 4)
	if err != nil {
		return nil, err
	}
	pix, err := safemath.Bytes(h, stride)
	if err != nil {
		return nil, err
	}
	img := &image.RGBA{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)}

	req := placement.Request{
		Trim:   job.Trim,
		Mode:   job.Mode,
		Width:  w,
		Height: h,
		Filter: filter,
	}
	if job.Mode != placement.Tile {
		req.SourceWidth, req.SourceHeight = job.Image.Width, job.Image.Height
		t := placement.Plan(req)
		tx, ty := t.Translate()
		r.logger.Debug("composing",
			"file", job.File,
			"region", region.String(),
			"mode", job.Mode.String(),
			"window", t.Window.String(),
			"scale_x", t.ScaleX,
			"scale_y", t.ScaleY,
			"translate_x", tx,
			"translate_y", ty,
			"filter", t.Filter.String(),
		)
	} else {
		r.logger.Debug("tiling", "file", job.File, "region", region.String())
	}
	if err := placement.Compose(img, job.Image, req); err != nil {
		return nil, fmt.Errorf("%s: %w", job.File, err)
	}
	return img, nil
}
