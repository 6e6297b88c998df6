package loader

import (
	"path/filepath"
	"strings"

	"ragdesk/internal/domain"
)

// Registry maps file extensions to loaders. Resolution happens once at
// configuration time; unknown extensions go to the fallback loader
// when one is set, otherwise loading fails with UnsupportedFormat.
type Registry struct {
	byExt    map[string]domain.Loader
	fallback domain.Loader
}

// NewRegistry returns a registry with the built-in loaders registered:
// plain text (.txt), markdown (.md, .markdown) and CSV (.csv), with
// best-effort text decoding as the fallback for everything else.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]domain.Loader)}
	text := &TextLoader{FileType: "text"}
	r.Register(".txt", text)
	r.Register(".md", &TextLoader{FileType: "markdown"})
	r.Register(".markdown", &TextLoader{FileType: "markdown"})
	r.Register(".csv", &CSVLoader{})
	r.fallback = text
	return r
}

// Register binds an extension (with leading dot, case-insensitive) to
// a loader, replacing any previous binding.
func (r *Registry) Register(ext string, l domain.Loader) {
	r.byExt[strings.ToLower(ext)] = l
}

// SetFallback sets the loader used for unknown extensions. A nil
// fallback makes unknown extensions fail with UnsupportedFormat.
func (r *Registry) SetFallback(l domain.Loader) {
	r.fallback = l
}

// Load resolves a loader for the file name and converts the bytes into
// raw units.
func (r *Registry) Load(data []byte, name string) ([]domain.RawUnit, error) {
	ext := strings.ToLower(filepath.Ext(name))
	l, ok := r.byExt[ext]
	if !ok {
		if r.fallback == nil {
			return nil, &domain.UnsupportedFormatError{Name: name}
		}
		l = r.fallback
	}
	return l.Load(data, name)
}
