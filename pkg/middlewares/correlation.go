package middlewares

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
)

var idRegexp = regexp.MustCompile(`^[\w-]{3,40}$`)

// validID reports whether a caller supplied ID is safe to log and echo
func validID(id string) (string, bool) {
	if id == "" || !idRegexp.MatchString(id) {
		return "", false
	}
	return id, true
}

// CorrelationMw copies a correlation header from the request to the response
type CorrelationMw struct {
	headerName string
	next       http.Handler
}

func NewCorrelationMw(headerName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewCorrelation(headerName, next)
	}
}

func NewCorrelation(headerName string, next http.Handler) *CorrelationMw {
	return &CorrelationMw{headerName: http.CanonicalHeaderKey(headerName), next: next}
}

func (mw *CorrelationMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if ids, ok := r.Header[mw.headerName]; ok {
		if id, valid := validID(ids[0]); valid {
			rw.Header().Set(mw.headerName, id)
		} else {
			rw.Header().Set(mw.headerName, "<Bad_Correlation_Id>")
		}
	}

	mw.next.ServeHTTP(rw, r)
}
