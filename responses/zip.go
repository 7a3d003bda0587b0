package responses

import (
	"fmt"
	"net/http"
)

// WriteZipResponseHeaders write HTTP response headers for a zip archive download. i.e. headers are frozen
func WriteZipResponseHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK) // Response Header Sent & Frozen
}
