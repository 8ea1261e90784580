package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/pitchcraft/pkg/handlers"
)

var errInternal = errors.New("internal server error")

// Recover returns middleware that converts a handler panic into a 500 JSON
// response and logs the panic value with its stack. http.ErrAbortHandler is
// re-panicked so the server can abort the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error(
					"handler panic",
					"panic", fmt.Sprint(v),
					"uri", r.URL.RequestURI(),
					"request_id", RequestIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)
				handlers.RespondJSON(w, http.StatusInternalServerError, map[string]string{"error": errInternal.Error()})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
