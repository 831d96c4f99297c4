// Package httpmiddleware provides HTTP middleware that the router stack does
// not ship with: client rate limiting and CORS.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler. Compatible with chi's Use.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares so the first one listed is outermost.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
