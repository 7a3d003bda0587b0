package pdfs

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageDim - one page's dimensions in pt (1" = 72pt)
type PageDim struct {
	W float64
	H float64
}

// Template is an immutable, validated template document. The stored bytes
// are read-only to the render pipeline; every output document gets its own
// load-mutate-save cycle off these bytes.
type Template struct {
	data []byte
	dims []PageDim // index 0 = page 1
}

// LoadTemplate validates bytes as a PDF and captures per-page dimensions.
// Invalid bytes yield a DocumentError before any rendering starts.
func LoadTemplate(data []byte) (*Template, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, &DocumentError{Op: "load template", Err: err}
	}
	rawDims, err := ctx.PageDims()
	if err != nil {
		return nil, &DocumentError{Op: "read page dimensions", Err: err}
	}
	dims := make([]PageDim, len(rawDims))
	for i, d := range rawDims {
		dims[i] = PageDim{W: d.Width, H: d.Height}
	}
	return &Template{data: data, dims: dims}, nil
}

func (t *Template) Bytes() []byte {
	return t.data
}

func (t *Template) PageCount() int {
	return len(t.dims)
}

// Dim returns dimensions for a 1-based page number.
// Pages in one document may differ in size.
func (t *Template) Dim(page int) (PageDim, bool) {
	if page < 1 || page > len(t.dims) {
		return PageDim{}, false
	}
	return t.dims[page-1], true
}

// TemplateStore serves validated templates from a directory, caching the
// parsed form per filename. The store never mutates or deletes stored
// files; upload ownership is elsewhere.
type TemplateStore struct {
	Root string

	mu    sync.RWMutex
	cache map[string]*Template
}

func NewTemplateStore(root string) *TemplateStore {
	return &TemplateStore{
		Root:  root,
		cache: make(map[string]*Template),
	}
}

// Get fetches a template by stored filename. Missing files are
// ErrTemplateNotFound; unparsable files are a DocumentError.
func (s *TemplateStore) Get(filename string) (*Template, error) {
	filename = filepath.Base(filename) // no path traversal past Root

	s.mu.RLock()
	t, ok := s.cache[filename]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	data, err := os.ReadFile(filepath.Join(s.Root, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	t, err = LoadTemplate(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[filename] = t
	s.mu.Unlock()
	log.Printf("[INFO][PDF] template %s loaded (%d pages)", filename, t.PageCount())
	return t, nil
}

// Invalidate drops a cached entry, e.g. after the file was re-uploaded.
func (s *TemplateStore) Invalidate(filename string) {
	s.mu.Lock()
	delete(s.cache, filepath.Base(filename))
	s.mu.Unlock()
}
