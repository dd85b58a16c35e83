// Package publish copies files shipped by plugin packages into the host
// application, grouped by tag (e.g. "migrations").
//
// Packages register an fs.FS under a group from init(); the CLI's publish
// command copies every registered file of a group into a destination.
//
// Import Path: kv-shepherd.io/multiauth/internal/publish
package publish

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// GroupMigrations is the group database migrations are registered under.
const GroupMigrations = "migrations"

// Publish outcomes.
const (
	StatusCopied  = "copied"
	StatusSkipped = "skipped"
)

// File is one publishable file.
type File struct {
	Group string
	// Path is slash-separated and relative to the registered source.
	Path string
	fsys fs.FS
}

// Open opens the file from its source.
func (f File) Open() (fs.File, error) {
	return f.fsys.Open(f.Path)
}

// Result reports what Publish did with one file.
type Result struct {
	File   string `json:"file"`
	Dest   string `json:"dest"`
	Status string `json:"status"`
}

// Registry maps groups to file sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string][]fs.FS
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string][]fs.FS{}}
}

// Register adds a source to group.
func (r *Registry) Register(group string, fsys fs.FS) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return fmt.Errorf("publish group is empty")
	}
	if fsys == nil {
		return fmt.Errorf("publish group %q: source is nil", group)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[group] = append(r.sources[group], fsys)
	return nil
}

// Groups returns the registered groups sorted by name.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for g := range r.sources {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Files lists the regular files of group sorted by path. Later sources shadow
// earlier ones on equal paths.
func (r *Registry) Files(group string) ([]File, error) {
	r.mu.RLock()
	sources, ok := r.sources[group]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	byPath := map[string]File{}
	for _, src := range sources {
		err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				byPath[p] = File{Group: group, Path: p, fsys: src}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s source: %w", group, err)
		}
	}

	files := make([]File, 0, len(byPath))
	for _, f := range byPath {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Publish copies the files of group into destDir, creating it if needed.
// Existing files are skipped unless force is set.
func (r *Registry) Publish(group, destDir string, force bool) ([]Result, error) {
	files, err := r.Files(group)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		dest := filepath.Join(destDir, filepath.FromSlash(path.Clean(f.Path)))
		res := Result{File: f.Path, Dest: dest, Status: StatusCopied}

		if !force {
			if _, err := os.Stat(dest); err == nil {
				res.Status = StatusSkipped
				results = append(results, res)
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return results, fmt.Errorf("stat %s: %w", dest, err)
			}
		}
		if err := copyFile(f, dest); err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func copyFile(f File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", f.Path, err)
	}
	return out.Close()
}

// ErrUnknownGroup is returned for groups nothing registered.
var ErrUnknownGroup = errors.New("unknown publish group")

var global = NewRegistry()

// Register adds a source to group in the global registry.
func Register(group string, fsys fs.FS) error {
	return global.Register(group, fsys)
}

// MustRegister is Register for init() functions.
func MustRegister(group string, fsys fs.FS) {
	if err := Register(group, fsys); err != nil {
		panic(fmt.Sprintf("publish register failed: %v", err))
	}
}

// Groups returns the groups of the global registry.
func Groups() []string { return global.Groups() }

// Files lists the files of group in the global registry.
func Files(group string) ([]File, error) { return global.Files(group) }

// Publish copies group from the global registry into destDir.
func Publish(group, destDir string, force bool) ([]Result, error) {
	return global.Publish(group, destDir, force)
}
