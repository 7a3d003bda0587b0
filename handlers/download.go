package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/responses"
	"github.com/zeptools/docforge/sec"
)

// DownloadArchive serves a previously generated batch archive. The token
// query parameter is a sealed grant issued by GenerateBatch; expired or
// tampered tokens are indistinguishable 404s.
func (a *API) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeDomainError(w, fmt.Errorf("%w: missing token", errBadRequest))
		return
	}
	grant, err := sec.OpenDownloadGrant(a.DownloadCipher, token, time.Now())
	if err != nil {
		if errors.Is(err, sec.ErrGrantExpired) {
			responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "download no longer available")
			return
		}
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "invalid download token")
		return
	}

	archivePath := filepath.Join(
		a.OutputDir,
		pdfs.SanitizeFilename(grant.ClientName),
		filepath.Base(grant.Archive),
	)
	f, err := os.Open(archivePath)
	if err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "archive not found")
		return
	}
	defer f.Close()

	responses.WriteZipResponseHeaders(w, filepath.Base(grant.Archive))
	if _, err = io.Copy(w, f); err != nil {
		log.Printf("[ERROR][API] streaming archive %s: %v", archivePath, err)
	}
}
