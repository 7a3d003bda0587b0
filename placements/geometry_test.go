package placements

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveFlipsVerticalAxis(t *testing.T) {
	p := FieldPlacement{
		FieldName:  "Name",
		Page:       1,
		XFrac:      0.5,
		YFrac:      0.25,
		WidthFrac:  0.1,
		HeightFrac: 0.05,
		FontSize:   20,
	}
	got := Resolve(p, 600, 800)
	want := Box{X: 300, Y: 800 - 200 - 40, W: 60, H: 40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDependsOnPageSize(t *testing.T) {
	p := FieldPlacement{FieldName: "n", Page: 1, XFrac: 0.5, YFrac: 0.5, WidthFrac: 0.2, HeightFrac: 0.1, FontSize: 12}
	a := Resolve(p, 600, 800)
	b := Resolve(p, 595.27559, 841.88976) // A4 pt
	if a == b {
		t.Error("same box for different page sizes; geometry must be re-derived per page")
	}
}

func TestResolveDoesNotClamp(t *testing.T) {
	// YFrac close to 1 pushes the box below the bottom edge; that is
	// accepted behavior, the compositor clips.
	p := FieldPlacement{FieldName: "n", Page: 1, XFrac: 0.9, YFrac: 1, WidthFrac: 0.5, HeightFrac: 0.2, FontSize: 12}
	got := Resolve(p, 100, 100)
	if got.Y != -20 {
		t.Errorf("Y = %v, want -20 (no clamping)", got.Y)
	}
	if got.X+got.W <= 100 {
		t.Errorf("box unexpectedly clamped horizontally: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := FieldPlacement{FieldName: "Name", Page: 1, XFrac: 0.1, YFrac: 0.1, WidthFrac: 0.3, HeightFrac: 0.05, FontSize: 20}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid placement rejected: %v", err)
	}

	cases := []struct {
		name string
		mut  func(*FieldPlacement)
	}{
		{"empty field name", func(p *FieldPlacement) { p.FieldName = "" }},
		{"zero page", func(p *FieldPlacement) { p.Page = 0 }},
		{"negative font size", func(p *FieldPlacement) { p.FontSize = -1 }},
		{"x fraction above 1", func(p *FieldPlacement) { p.XFrac = 1.5 }},
		{"negative height fraction", func(p *FieldPlacement) { p.HeightFrac = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mut(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
