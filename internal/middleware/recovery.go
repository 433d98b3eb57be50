package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the error response for a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery turns a panicking request into a logged error response.
// The handler only runs when nothing has been written yet; a response
// that has already started is left for the client to see truncated.
// http.ErrAbortHandler is passed through so net/http aborts quietly.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(err)
				}

				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("response_started", wrapped.Written()),
					slog.String("stack", string(debug.Stack())),
				)

				if !wrapped.Written() {
					handler(w, r, err)
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
