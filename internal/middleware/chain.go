package middleware

import "net/http"

// Chain wraps h so the middleware run in the order given, first to last.
//
// Example:
//
//	handler := Chain(mux,
//	    RequestID,              // Executes first
//	    RequestLogging,         // Sees the request id
//	    AuthMiddleware(auth),   // Executes last
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
