package handlers

import (
	"net/http"

	"github.com/zeptools/docforge/routing"
)

type wrapperFunc func(http.Handler) http.Handler

func (f wrapperFunc) Wrap(inner http.Handler) http.Handler { return f(inner) }

// RegisterRoutes lays out the whole API surface on the router.
// auth guards the template and client-config endpoints; throttled caps the
// two render endpoints per caller IP.
func (a *API) RegisterRoutes(router *routing.BaseRouter, auth routing.HandlerWrapper, throttled routing.HandlerWrapper) {
	recoverW := wrapperFunc(routing.RecoverWrapper)

	router.HandleFunc("GET /healthz", Healthz, recoverW)

	router.Group("/api", func(g *routing.RouteGroup) {
		g.HandleFunc("POST /templates", a.UploadTemplate, auth)

		g.HandleFunc("GET /clients", a.ListClients, auth)
		g.HandleFunc("GET /clients/{name}", a.GetClientConfig, auth)
		g.HandleFunc("PUT /clients/{name}", a.PutClientConfig, auth)
		g.HandleFunc("DELETE /clients/{name}", a.DeleteClientConfig, auth)

		g.Group("/render", func(rg *routing.RouteGroup) {
			rg.HandleFunc("POST /preview", a.Preview, throttled)
			rg.HandleFunc("POST /batch", a.GenerateBatch, throttled)
			rg.HandleFunc("GET /download", a.DownloadArchive)
		})
	}, recoverW, LogWrapper{})
}
