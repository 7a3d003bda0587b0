package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/responses"
)

// 50 MiB cap on uploaded templates
const maxTemplateBytes = 50 << 20

// UploadTemplate stores a multipart PDF upload ("file" part) under the
// templates root. The upload is validated as a PDF before anything touches
// disk; re-uploading an existing filename overwrites and drops the cache.
func (a *API) UploadTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxTemplateBytes); err != nil {
		writeDomainError(w, fmt.Errorf("%w: parsing multipart form: %v", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDomainError(w, fmt.Errorf("%w: missing file part", errBadRequest))
		return
	}
	defer file.Close()

	filename := pdfs.SanitizeFilename(header.Filename)
	if filename == "" {
		writeDomainError(w, fmt.Errorf("%w: unusable filename %q", errBadRequest, header.Filename))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxTemplateBytes+1))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(data) > maxTemplateBytes {
		writeDomainError(w, fmt.Errorf("%w: template exceeds %d bytes", errBadRequest, maxTemplateBytes))
		return
	}

	tmpl, err := pdfs.LoadTemplate(data)
	if err != nil {
		writeDomainError(w, fmt.Errorf("%w: not a valid PDF", errBadRequest))
		return
	}

	outPath := filepath.Join(a.Templates.Root, filename)
	if err = os.WriteFile(outPath, data, 0o644); err != nil {
		writeDomainError(w, err)
		return
	}
	a.Templates.Invalidate(filename)
	log.Printf("[INFO][API] template %s uploaded (%d pages, %d bytes)", filename, tmpl.PageCount(), len(data))

	responses.EncodeWriteJSON(w, http.StatusCreated, map[string]any{
		"filename": filename,
		"pages":    tmpl.PageCount(),
	})
}
