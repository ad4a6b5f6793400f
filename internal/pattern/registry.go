package pattern

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"
)

// OverridesFile is the optional per-catalog file that adjusts similarity and
// target offsets without renaming images.
const OverridesFile = "patterns.yaml"

// Override adjusts one pattern. Offset is [dx, dy].
type Override struct {
	Similarity float64 `yaml:"similarity"`
	Offset     []int   `yaml:"offset"`
}

// Registry resolves pattern names to image files for one platform. Lookups
// try the most specific directory first: variant (e.g. "win7"), OS, then
// "common", then the catalog root. Resolution happens on first use and is
// cached.
type Registry struct {
	root       string
	fsys       fs.FS
	target     platform.Target
	similarity float64
	overrides  map[string]Override

	mu       sync.Mutex
	resolved map[string]Pattern
}

// Open builds a Registry over a directory on disk. "~" is expanded.
func Open(dir string, target platform.Target, similarity float64) (*Registry, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand pattern dir %q: %w", dir, err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, fmt.Errorf("pattern dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pattern dir %q is not a directory", expanded)
	}
	return NewRegistry(expanded, os.DirFS(expanded), target, similarity)
}

// NewRegistry builds a Registry over fsys. root is prefixed to resolved paths
// so the matcher can open them.
func NewRegistry(root string, fsys fs.FS, target platform.Target, similarity float64) (*Registry, error) {
	r := &Registry{
		root:       root,
		fsys:       fsys,
		target:     target,
		similarity: similarity,
		overrides:  map[string]Override{},
		resolved:   map[string]Pattern{},
	}
	data, err := fs.ReadFile(fsys, OverridesFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &r.overrides); err != nil {
			return nil, fmt.Errorf("parse %s: %w", OverridesFile, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", OverridesFile, err)
	}
	for name, o := range r.overrides {
		if len(o.Offset) != 0 && len(o.Offset) != 2 {
			return nil, fmt.Errorf("%s: %s: offset must be [dx, dy]", OverridesFile, name)
		}
		if o.Similarity < 0 || o.Similarity > 1 {
			return nil, fmt.Errorf("%s: %s: similarity %.2f outside [0, 1]", OverridesFile, name, o.Similarity)
		}
	}
	return r, nil
}

// DefaultSimilarity is used for patterns that do not set their own.
func (r *Registry) DefaultSimilarity() float64 { return r.similarity }

// Target is the platform the registry resolves for.
func (r *Registry) Target() platform.Target { return r.target }

func (r *Registry) searchDirs() []string {
	dirs := []string{}
	if v := r.target.Variant(); v != string(r.target.OS) {
		dirs = append(dirs, v)
	}
	return append(dirs, string(r.target.OS), "common", ".")
}

// Get resolves name, failing with NotFound when no directory holds it.
func (r *Registry) Get(name string) (Pattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.resolved[name]; ok {
		return p, nil
	}

	for _, dir := range r.searchDirs() {
		rel := path.Join(dir, name)
		f, err := r.fsys.Open(rel)
		if err != nil {
			continue
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return Pattern{}, outcome.NewAmbiguous("resolve pattern", "template %s is not a decodable image", rel).
				WithPattern(name).WithCause(err)
		}

		p := Pattern{
			name:   name,
			path:   filepath.Join(r.root, filepath.FromSlash(rel)),
			width:  cfg.Width,
			height: cfg.Height,
		}
		if o, ok := r.overrides[name]; ok {
			p.similarity = o.Similarity
			if len(o.Offset) == 2 {
				p.offset = platform.Location{X: o.Offset[0], Y: o.Offset[1]}
			}
		}
		r.resolved[name] = p
		return p, nil
	}
	return Pattern{}, outcome.NewNotFound("resolve pattern", "no template for %s", r.target).WithPattern(name)
}
