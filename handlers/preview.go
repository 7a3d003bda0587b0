package handlers

import (
	"encoding/json/v2"
	"fmt"
	"net/http"

	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/placements"
	"github.com/zeptools/docforge/responses"
)

type previewRequest struct {
	TemplateFilename string                      `json:"template_filename"`
	Placements       []placements.FieldPlacement `json:"placements"`
	Row              map[string]string           `json:"row"`
}

// Preview renders a single document from an ad-hoc layout without touching
// any stored configuration. Success is application/pdf; every failure is a
// JSON envelope, so callers can branch on content type.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		writeDomainError(w, fmt.Errorf("%w: decoding body: %v", errBadRequest, err))
		return
	}
	if req.TemplateFilename == "" {
		writeDomainError(w, fmt.Errorf("%w: missing template_filename", errBadRequest))
		return
	}
	for i, p := range req.Placements {
		if err := p.Validate(); err != nil {
			writeDomainError(w, fmt.Errorf("placement %d: %w", i, err))
			return
		}
	}

	tmpl, err := a.Templates.Get(req.TemplateFilename)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	docBytes, err := a.Composer.Render(r.Context(), tmpl, req.Placements, csvdata.Row(req.Row))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	responses.WritePDFBytesWithFilename(w, "preview.pdf", docBytes)
}
