package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/responses"
	"github.com/zeptools/docforge/rw"
	"github.com/zeptools/docforge/sec"
)

// 20 MiB cap on uploaded row data
const maxCSVBytes = 20 << 20

// GenerateBatch runs the full merge for one client: multipart
// {client_name, file} where file is the CSV data source. The zip archive
// streams to the response and is simultaneously persisted under the
// client's output area; a sealed token for re-fetching it is exposed in
// the X-Download-Token header.
//
// Everything that can fail cheaply (config, template, CSV shape) is
// checked before the first archive byte, so those failures are still JSON.
// A row failure mid-stream can only truncate the archive; it is logged and
// the partial file is removed from the output area.
func (a *API) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		writeDomainError(w, fmt.Errorf("%w: parsing multipart form: %v", errBadRequest, err))
		return
	}
	clientName := r.FormValue("client_name")
	if clientName == "" {
		writeDomainError(w, fmt.Errorf("%w: missing client_name", errBadRequest))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeDomainError(w, fmt.Errorf("%w: missing file part", errBadRequest))
		return
	}
	defer file.Close()

	cfg, err := a.Configs.Get(r.Context(), clientName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tmpl, err := a.Templates.Get(cfg.TemplateFilename)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	table, err := csvdata.Parse(io.LimitReader(file, maxCSVBytes))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	clientDir := filepath.Join(a.OutputDir, pdfs.SanitizeFilename(clientName))
	if err = os.MkdirAll(clientDir, 0o755); err != nil {
		writeDomainError(w, err)
		return
	}
	archiveName := fmt.Sprintf("batch_%s.zip", time.Now().UTC().Format("20060102T150405"))
	archivePath := filepath.Join(clientDir, archiveName)
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := sec.SealDownloadGrant(a.DownloadCipher, sec.DownloadGrant{
		ClientName: clientName,
		Archive:    archiveName,
		ValidUntil: time.Now().Add(a.downloadTTL()).Unix(),
	})
	if err != nil {
		archiveFile.Close()
		os.Remove(archivePath)
		writeDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.batchDeadline())
	defer cancel()

	w.Header().Set("X-Download-Token", token)
	responses.WriteZipResponseHeaders(w, archiveName) // headers frozen from here

	cw := rw.NewCountWriter(io.MultiWriter(w, archiveFile))
	res, err := a.Composer.GenerateBatch(ctx, tmpl, cfg.Placements, table, cw, clientDir)
	closeErr := archiveFile.Close()
	if err != nil {
		log.Printf("[ERROR][API] batch for %s aborted after %d bytes: %v", clientName, cw.BytesWritten(), err)
		os.Remove(archivePath)
		return
	}
	if closeErr != nil {
		log.Printf("[ERROR][API] closing archive %s: %v", archivePath, closeErr)
	}
	log.Printf("[INFO][API] batch for %s: %d documents, %d skipped, %d bytes",
		clientName, res.Documents, res.Skipped, cw.BytesWritten())
}
