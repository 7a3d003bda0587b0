package pdfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/placements"
	"github.com/zeptools/docforge/raster"
)

// Composer merges per-row field values onto template pages.
// Safe for concurrent use; the raster pool is the concurrency limiter.
type Composer struct {
	Pool *raster.Pool
}

func NewComposer(pool *raster.Pool) *Composer {
	return &Composer{Pool: pool}
}

// Render produces one output document: the template with every applicable
// placement's value composited as an image overlay.
//
// Per-placement skip rules (not errors):
//   - page beyond the template's page count
//   - field absent, empty, or whitespace-only in the row
//
// The overlay is embedded at the resolved position sized by the measured
// raster dimensions scaled by raster.DownscaleFactor. The authored
// width/height fractions only feed the vertical flip; text renders at its
// natural measured size instead of being stretched to the authored box.
func (c *Composer) Render(ctx context.Context, tmpl *Template, pls []placements.FieldPlacement, row csvdata.Row) (out []byte, err error) {
	defer func() {
		// the page importer signals unsupported input by panicking
		if rec := recover(); rec != nil {
			out = nil
			err = &DocumentError{Op: "import template page", Err: fmt.Errorf("%v", rec)}
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	// fixed timestamps: output carries no wall-clock metadata
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetModificationDate(time.Unix(0, 0).UTC())

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(tmpl.Bytes()))

	overlayCnt := 0
	for page := 1; page <= tmpl.PageCount(); page++ {
		dim, _ := tmpl.Dim(page)
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: dim.W, Ht: dim.H})

		tplID := importer.ImportPageFromStream(pdf, &rs, page, "/MediaBox")
		importer.UseImportedTemplate(pdf, tplID, 0, 0, dim.W, dim.H)

		// placements for this page, in the order given
		for _, p := range pls {
			if p.Page != page {
				continue
			}
			text := row.Value(p.FieldName)
			if strings.TrimSpace(text) == "" {
				continue
			}

			col, colErr := raster.ParseColor(p.Color)
			if colErr != nil {
				return nil, &raster.RenderError{Op: "parse color", Err: colErr}
			}
			img, rErr := c.Pool.Rasterize(ctx, text, p.FontSize, col)
			if rErr != nil {
				return nil, rErr
			}

			box := placements.Resolve(p, dim.W, dim.H)
			drawW := float64(img.WidthPx) * raster.DownscaleFactor
			drawH := float64(img.HeightPx) * raster.DownscaleFactor

			overlayCnt++
			name := fmt.Sprintf("overlay%d", overlayCnt)
			opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.PNG))
			// fpdf works with a top-left origin; box.Y is the PDF
			// bottom-left y where the overlay's bottom edge goes
			yTop := dim.H - box.Y - drawH
			pdf.ImageOptions(name, box.X, yTop, drawW, drawH, false, opts, 0, "")
		}
	}

	var buf bytes.Buffer
	if outErr := pdf.Output(&buf); outErr != nil {
		return nil, &DocumentError{Op: "serialize document", Err: outErr}
	}
	return buf.Bytes(), nil
}
