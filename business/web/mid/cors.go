// Package mid contains the set of middleware functions.
package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/web"
)

// corsMethods are the methods the ledger API answers to.
const corsMethods = "GET, POST, OPTIONS"

// Cors sets the response headers needed for browsers on the configured
// origin to call the ledger API. An empty origin leaves the headers off.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", corsMethods)
				w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length")
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
