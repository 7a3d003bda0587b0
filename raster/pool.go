package raster

import (
	"context"
	"image/color"
)

// Pool holds a bounded set of long-lived Rasterizer handles sharing one
// parsed font. A Rasterizer is not safe for concurrent use, so the pool is
// the serialization point for overlay rendering and the natural place to
// cap concurrent batch work.
//
// Checkout/return is scoped: Rasterize releases its handle on every exit
// path, including measurement failure.
type Pool struct {
	handles chan *Rasterizer
}

// NewPool loads the font once via the provider and prepares size handles.
func NewPool(ctx context.Context, size int, provider *FontProvider) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	fnt, err := provider.Load(ctx)
	if err != nil {
		return nil, &RenderError{Op: "load font", Err: err}
	}
	p := &Pool{handles: make(chan *Rasterizer, size)}
	for range size {
		p.handles <- NewRasterizer(fnt)
	}
	return p, nil
}

// Acquire checks out a handle, honoring ctx cancellation while waiting.
func (p *Pool) Acquire(ctx context.Context) (*Rasterizer, error) {
	select {
	case r := <-p.handles:
		return r, nil
	case <-ctx.Done():
		return nil, &RenderError{Op: "acquire handle", Err: ctx.Err()}
	}
}

func (p *Pool) Release(r *Rasterizer) {
	p.handles <- r
}

// Rasterize is the pooled form of Rasterizer.Rasterize.
func (p *Pool) Rasterize(ctx context.Context, text string, fontSize float64, col color.Color) (*Image, error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(r)
	return r.Rasterize(text, fontSize, col)
}
