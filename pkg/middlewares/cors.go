package middlewares

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// DefaultCorsOptions lets browser based tools call the API with a bearer
// token from any origin
var DefaultCorsOptions = cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	AllowedHeaders: []string{"Authorization", "Content-Type", TxnIDHeader},
	ExposedHeaders: []string{TxnIDHeader, "X-Ratelimit-Reset"},
}

type CorsMw struct {
	h http.Handler
}

func NewCorsMw(opts cors.Options) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewCors(opts, next)
	}
}

// This should be the first middleware in the chain
func NewCors(opts cors.Options, next http.Handler) *CorsMw {
	return &CorsMw{
		h: cors.New(opts).Handler(next),
	}
}

func (mw *CorsMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	mw.h.ServeHTTP(rw, r)
}
