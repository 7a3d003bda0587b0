package pdfs

import (
	"archive/zip"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/placements"
)

// BatchResult summarizes one batch generation run.
type BatchResult struct {
	Documents int // archive entries written
	Skipped   int // rows without a usable key value
}

// GenerateBatch renders one document per row and streams them into a zip
// archive on w, bounding peak memory to one document plus compression
// state. Entries are flat, named from the row's value for the table's
// first column, sanitized; rows whose sanitized key is empty are skipped;
// rows sanitizing to the same name silently overwrite on extraction.
//
// The first row failure aborts the whole batch. Validate the template
// (LoadTemplate) before streaming so corrupt input surfaces before any
// archive bytes are written.
//
// persistDir, when non-empty, additionally receives each document as a
// file; the directory accumulates across runs, last write wins per name.
func (c *Composer) GenerateBatch(ctx context.Context, tmpl *Template, pls []placements.FieldPlacement, table *csvdata.Table, w io.Writer, persistDir string) (*BatchResult, error) {
	if persistDir != "" {
		if err := os.MkdirAll(persistDir, 0o755); err != nil {
			return nil, err
		}
	}

	zw := zip.NewWriter(w)
	res := &BatchResult{}
	keyField := table.KeyField()

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := SanitizeFilename(row.Value(keyField))
		if name == "" {
			res.Skipped++
			continue
		}

		docBytes, err := c.Render(ctx, tmpl, pls, row)
		if err != nil {
			return nil, err
		}

		entry, err := zw.Create(name + ".pdf")
		if err != nil {
			return nil, &DocumentError{Op: "create archive entry", Err: err}
		}
		if _, err = entry.Write(docBytes); err != nil {
			return nil, &DocumentError{Op: "write archive entry", Err: err}
		}
		res.Documents++

		if persistDir != "" {
			outPath := filepath.Join(persistDir, name+".pdf")
			if err = os.WriteFile(outPath, docBytes, 0o644); err != nil {
				// the archive stream is the primary output
				log.Printf("[ERROR][PDF] persisting %s: %v", outPath, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &DocumentError{Op: "finalize archive", Err: err}
	}
	return res, nil
}
