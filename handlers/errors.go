package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/zeptools/docforge/clientconf"
	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/placements"
	"github.com/zeptools/docforge/raster"
	"github.com/zeptools/docforge/responses"
)

var errBadRequest = errors.New("bad request")

// writeDomainError maps pipeline errors onto HTTP statuses with a JSON
// envelope. Render internals stay out of client responses; the full error
// goes to the log instead.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		docErr    *pdfs.DocumentError
		renderErr *raster.RenderError
	)
	switch {
	case errors.Is(err, clientconf.ErrNotFound),
		errors.Is(err, pdfs.ErrTemplateNotFound):
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, clientconf.ErrInvalid),
		errors.Is(err, placements.ErrInvalidPlacement),
		errors.Is(err, csvdata.ErrNoHeader),
		errors.Is(err, errBadRequest):
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &docErr):
		log.Printf("[ERROR][API] document error: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "document generation failed")
	case errors.As(err, &renderErr):
		log.Printf("[ERROR][API] render error: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "text rendering failed")
	default:
		log.Printf("[ERROR][API] %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
