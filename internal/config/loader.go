package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xwallpaper/internal/placement"
)

// Source locates a value inside a YAML file.
type Source struct {
	File   string
	Line   int
	Column int
}

// ValidationError reports a semantically invalid configuration value.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one YAML file before it is applied. Unset scalars stay nil so
// later files only override what they mention.
type RawConfig struct {
	Include    IncludeList       `yaml:"include"`
	Daemon     *bool             `yaml:"daemon"`
	Debug      *bool             `yaml:"debug"`
	Clear      *bool             `yaml:"clear"`
	Atoms      *bool             `yaml:"atoms"`
	Root       *bool             `yaml:"root"`
	RandR      *bool             `yaml:"randr"`
	Filter     *placement.Filter `yaml:"filter"`
	Display    *string           `yaml:"display"`
	Wallpapers []RawWallpaper    `yaml:"wallpapers"`
}

// RawWallpaper is one entry of the wallpapers list.
type RawWallpaper struct {
	File   string         `yaml:"file"`
	Mode   placement.Mode `yaml:"mode"`
	Output string         `yaml:"output"`
	Screen *int           `yaml:"screen"`
	Trim   *placement.Box `yaml:"trim"`

	source Source
	base   string
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	if overlay.Daemon != nil {
		out.Daemon = overlay.Daemon
	}
	if overlay.Debug != nil {
		out.Debug = overlay.Debug
	}
	if overlay.Clear != nil {
		out.Clear = overlay.Clear
	}
	if overlay.Atoms != nil {
		out.Atoms = overlay.Atoms
	}
	if overlay.Root != nil {
		out.Root = overlay.Root
	}
	if overlay.RandR != nil {
		out.RandR = overlay.RandR
	}
	if overlay.Filter != nil {
		out.Filter = overlay.Filter
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	out.Wallpapers = append(append([]RawWallpaper(nil), c.Wallpapers...), overlay.Wallpapers...)
	return out
}

// DefaultConfigPath is $XDG_CONFIG_HOME/xwallpaper/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "xwallpaper", "config.yaml"), nil
}

// LoadFile reads path and its includes. Includes are merged first, the file
// itself last.
func LoadFile(path string) (RawConfig, []string, error) {
	return loadRawMerged(path, make(map[string]struct{}), nil)
}

func (p *parser) loadFile(path string) error {
	raw, files, err := LoadFile(path)
	if err != nil {
		return err
	}
	p.cfg.Files = append(p.cfg.Files, files...)
	return p.cfg.apply(raw)
}

// apply merges file settings into c with the same conflict rules as the
// command line. Wallpapers are added directly; they never inherit state
// from surrounding flags.
func (c *Config) apply(raw RawConfig) error {
	if raw.Daemon != nil && *raw.Daemon {
		if err := c.setDaemon(); err != nil {
			return err
		}
	}
	if raw.RandR != nil && !*raw.RandR {
		if err := c.disableRandR(); err != nil {
			return err
		}
	}
	if raw.Atoms != nil && !*raw.Atoms {
		if err := c.disableAtoms(); err != nil {
			return err
		}
	}
	if raw.Root != nil && !*raw.Root {
		if err := c.disableRoot(); err != nil {
			return err
		}
	}
	if raw.Clear != nil && *raw.Clear {
		c.ReuseAtoms = false
	}
	if raw.Debug != nil && *raw.Debug {
		c.Debug = true
	}
	if raw.Filter != nil {
		c.Filter = *raw.Filter
	}
	if raw.Display != nil {
		c.Display = *raw.Display
	}

	for i, w := range raw.Wallpapers {
		path := "wallpapers." + strconv.Itoa(i)
		if strings.TrimSpace(w.File) == "" {
			return &ValidationError{Path: path + ".file", Source: w.source, Err: fmt.Errorf("file is required")}
		}
		if w.Mode == 0 {
			return &ValidationError{Path: path + ".mode", Source: w.source, Err: fmt.Errorf("mode is required")}
		}
		file, err := resolvePathRelativeToFile(w.base, w.File)
		if err != nil {
			return &ValidationError{Path: path + ".file", Source: w.source, Err: err}
		}
		o := Option{
			File:   file,
			Mode:   w.Mode,
			Output: w.Output,
			Screen: AnyScreen,
			Trim:   w.Trim,
		}
		if w.Screen != nil {
			if *w.Screen < 0 {
				return &ValidationError{Path: path + ".screen", Source: w.source, Err: fmt.Errorf("screen must be >= 0")}
			}
			o.Screen = *w.Screen
		}
		if o.Output != "" {
			if !c.RandR {
				return &ValidationError{Path: path + ".output", Source: w.source, Err: fmt.Errorf("output requires RandR")}
			}
			c.explicitOutputs++
		} else {
			o.autoOutput = true
		}
		c.add(o)
	}
	return nil
}

func loadRawMerged(path string, seen map[string]struct{}, stack []string) (RawConfig, []string, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, nil, err
	}
	for _, existing := range stack {
		if existing == canon {
			return RawConfig{}, nil, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
		}
	}
	if _, ok := seen[canon]; ok {
		return RawConfig{}, nil, nil
	}
	seen[canon] = struct{}{}

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", canon, err)
	}
	sources := collectSources(&doc, canon)
	for i := range raw.Wallpapers {
		raw.Wallpapers[i].base = canon
		raw.Wallpapers[i].source = sources["wallpapers."+strconv.Itoa(i)]
	}

	merged := RawConfig{}
	var files []string
	for _, inc := range raw.Include {
		paths, err := expandInclude(canon, inc)
		if err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: include %q: %w", canon, inc, err)
		}
		for _, incPath := range paths {
			incRaw, incFiles, err := loadRawMerged(incPath, seen, append(stack, canon))
			if err != nil {
				return RawConfig{}, nil, err
			}
			merged = merged.merge(incRaw)
			files = append(files, incFiles...)
		}
	}

	// Apply this file last (overrides includes).
	merged = merged.merge(raw)
	files = append(files, canon)
	return merged, files, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort; still use abs.
		return abs, nil
	}
	return real, nil
}

func expandInclude(baseFile string, include string) ([]string, error) {
	path, err := resolvePathRelativeToFile(baseFile, include)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(path, ent.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func resolvePathRelativeToFile(baseFile string, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			path = home
		} else if strings.HasPrefix(path, "~/") {
			path = filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) || baseFile == "" {
		return path, nil
	}
	return filepath.Join(filepath.Dir(baseFile), path), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// collectSources maps dotted YAML paths ("wallpapers.0.file") to positions.
func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			valNode := node.Content[i+1]
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			out[path] = Source{File: file, Line: valNode.Line, Column: valNode.Column}
			collectSourcesRec(valNode, file, path, out)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			out[prefix] = Source{File: file, Line: node.Line, Column: node.Column}
		}
		for i, item := range node.Content {
			path := prefix + "." + strconv.Itoa(i)
			out[path] = Source{File: file, Line: item.Line, Column: item.Column}
			collectSourcesRec(item, file, path, out)
		}
	}
}
