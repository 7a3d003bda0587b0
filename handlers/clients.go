package handlers

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"time"

	"github.com/zeptools/docforge/clientconf"
	"github.com/zeptools/docforge/locks/keyonlylocks"
	"github.com/zeptools/docforge/responses"
)

// ListClients returns the names of all stored client configurations.
func (a *API) ListClients(w http.ResponseWriter, r *http.Request) {
	names, err := a.Configs.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]any{"clients": names})
}

// GetClientConfig serves one client's stored configuration.
func (a *API) GetClientConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cfg, err := a.Configs.Get(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, cfg)
}

// PutClientConfig upserts a client configuration. The referenced template
// must already be uploaded. Concurrent saves for the same client are
// rejected with 409 rather than queued; the store itself stays
// last-write-wins.
func (a *API) PutClientConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var cfg clientconf.ClientConfiguration
	if err := json.UnmarshalRead(r.Body, &cfg); err != nil {
		writeDomainError(w, fmt.Errorf("%w: decoding body: %v", errBadRequest, err))
		return
	}
	cfg.Name = name // path wins over body
	if err := cfg.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if _, err := a.Templates.Get(cfg.TemplateFilename); err != nil {
		writeDomainError(w, err)
		return
	}

	lockKeys := []string{"clientconf:" + name}
	acquired, ok := keyonlylocks.AcquireLocks(a.ActionLocks, lockKeys)
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, "another save for this client is in progress")
		return
	}
	defer keyonlylocks.ReleaseLocks(a.ActionLocks, acquired)

	cfg.UpdatedAt = time.Now().UTC()
	if err := a.Configs.Upsert(r.Context(), &cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, &cfg)
}

// DeleteClientConfig removes a client's stored configuration. Generated
// output and uploaded templates are left alone.
func (a *API) DeleteClientConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := a.Configs.Delete(r.Context(), name); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
