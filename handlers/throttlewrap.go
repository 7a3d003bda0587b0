package handlers

import (
	"net/http"
	"time"

	"github.com/zeptools/docforge/requests"
	"github.com/zeptools/docforge/responses"
	"github.com/zeptools/docforge/routing"
	"github.com/zeptools/docforge/throttle"
)

// ThrottleWrapper rate-limits by caller IP against one bucket group.
type ThrottleWrapper struct {
	Store   *throttle.BucketStore[string]
	GroupID string
}

var _ routing.HandlerWrapper = (*ThrottleWrapper)(nil)

func (t *ThrottleWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Store.Allow(t.GroupID, requests.GetClientIP(r), time.Now()) {
			responses.WriteSimpleErrorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		inner.ServeHTTP(w, r)
	})
}
