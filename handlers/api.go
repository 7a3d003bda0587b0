// Package handlers wires the document-merge pipeline to the HTTP surface.
package handlers

import (
	"sync"
	"time"

	"github.com/zeptools/docforge/clientconf"
	"github.com/zeptools/docforge/pdfs"
	"github.com/zeptools/docforge/sec"
)

type API struct {
	Templates *pdfs.TemplateStore
	Configs   clientconf.Store
	Composer  *pdfs.Composer

	OutputDir string // per-client batch output accumulates under here

	ActionLocks *sync.Map // same-client config saves are serialized on these

	DownloadCipher *sec.XChaCha20Poly1305Cipher
	DownloadTTL    time.Duration

	BatchDeadline time.Duration // wall-clock cap for one batch run
}

func (a *API) batchDeadline() time.Duration {
	if a.BatchDeadline <= 0 {
		return 10 * time.Minute
	}
	return a.BatchDeadline
}

func (a *API) downloadTTL() time.Duration {
	if a.DownloadTTL <= 0 {
		return time.Hour
	}
	return a.DownloadTTL
}
