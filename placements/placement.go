package placements

import (
	"errors"
	"fmt"
)

// FieldPlacement is an authored, resolution-independent description of where
// a field's value goes on a template page. Fractions are relative to the
// page dimensions the authoring editor rendered, so placements survive
// preview zoom changes. JSON tags match the editor payload.
type FieldPlacement struct {
	FieldName  string  `json:"field_name"`
	Page       int     `json:"page"` // 1-based
	XFrac      float64 `json:"x"`
	YFrac      float64 `json:"y"`
	WidthFrac  float64 `json:"width"`
	HeightFrac float64 `json:"height"`
	FontSize   float64 `json:"font_size"`
	Color      string  `json:"color,omitempty"` // named or #rrggbb. empty = black
}

var ErrInvalidPlacement = errors.New("invalid placement")

// Validate checks an authored placement at configuration-save time.
// Render time trusts stored values; a page beyond the template's page count
// is a per-document skip there, not an error here.
func (p FieldPlacement) Validate() error {
	if p.FieldName == "" {
		return fmt.Errorf("%w: empty field name", ErrInvalidPlacement)
	}
	if p.Page < 1 {
		return fmt.Errorf("%w: field %q: page %d", ErrInvalidPlacement, p.FieldName, p.Page)
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("%w: field %q: font size %v", ErrInvalidPlacement, p.FieldName, p.FontSize)
	}
	for _, frac := range []struct {
		name string
		v    float64
	}{
		{"x", p.XFrac},
		{"y", p.YFrac},
		{"width", p.WidthFrac},
		{"height", p.HeightFrac},
	} {
		if frac.v < 0 || frac.v > 1 {
			return fmt.Errorf("%w: field %q: %s fraction %v out of [0,1]", ErrInvalidPlacement, p.FieldName, frac.name, frac.v)
		}
	}
	return nil
}
