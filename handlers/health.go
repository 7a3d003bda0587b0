package handlers

import (
	"net/http"

	"github.com/zeptools/docforge/responses"
)

func Healthz(w http.ResponseWriter, _ *http.Request) {
	responses.EncodeWriteJSON(w, http.StatusOK, responses.Message{Type: "ok", Message: "alive"})
}
