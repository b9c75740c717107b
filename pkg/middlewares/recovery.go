package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

// RecoveryMw turns a handler panic into a 500 with an API style error body
type RecoveryMw struct {
	next http.Handler
}

func NewRecoveryMw() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewRecovery(next)
	}
}

func NewRecovery(next http.Handler) *RecoveryMw {
	return &RecoveryMw{next: next}
}

func (mw *RecoveryMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			logging.Logger(r.Context()).WithFields(logrus.Fields{
				"panic": err,
				"stack": string(debug.Stack()),
			}).Error("handler panicked")

			rw.Header().Set("Content-Type", "application/json")
			rw.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(rw).Encode(map[string]string{
				"error": panicMessage(r),
			})
		}
	}()

	mw.next.ServeHTTP(rw, r)
}

// panicMessage names the transaction so a caller can match the 500 to the log
func panicMessage(r *http.Request) string {
	if txnID, ok := logging.TxnID(r.Context()); ok {
		return fmt.Sprintf("internal error (txn %s)", txnID)
	}

	return "internal error"
}
