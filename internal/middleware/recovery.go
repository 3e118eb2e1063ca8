package middleware

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"cottonwood-backend/internal/metrics"
	"cottonwood-backend/pkg/utils"
)

// PanicRecovery turns a handler panic into a JSON 500. http.ErrAbortHandler
// is re-raised so net/http can abort the connection quietly.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			metrics.HTTPPanicsTotal.WithLabelValues(r.Method).Inc()
			log.Printf("[Server] PANIC RECOVERED on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
			utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
