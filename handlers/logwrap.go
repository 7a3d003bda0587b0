package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/zeptools/docforge/requests"
	"github.com/zeptools/docforge/routing"
)

// LogWrapper writes one access-log line per request.
type LogWrapper struct{}

var _ routing.HandlerWrapper = LogWrapper{}

func (LogWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		if requests.HasBody(r) && r.ContentLength > 0 {
			log.Printf("[INFO][Web] %s %s from %s (%d bytes in, %v)",
				r.Method, requests.FullURL(r), requests.GetClientIP(r), r.ContentLength, time.Since(start))
			return
		}
		log.Printf("[INFO][Web] %s %s from %s (%v)",
			r.Method, requests.FullURL(r), requests.GetClientIP(r), time.Since(start))
	})
}
