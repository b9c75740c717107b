package middlewares

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

// TxnIDHeader carries the transaction ID of a request in both directions
const TxnIDHeader = "X-Txn-ID"

type statusRecorder struct {
	http.ResponseWriter

	ctx        context.Context
	statusCode int
	size       int
	logBodies  bool
	headerDone bool
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.logBodies && !rw.headerDone {
		logging.Logger(rw.ctx).Debugf("response headers: %+v", rw.ResponseWriter.Header())
		rw.headerDone = true
	}

	size, err := rw.ResponseWriter.Write(b)
	rw.size += size

	if err == nil && rw.logBodies {
		logging.Logger(rw.ctx).Debugf("wrote %d bytes: %s", size, b[:size])
	}
	return size, err
}

// bodyLogger logs everything read through it at debug level
type bodyLogger struct {
	io.ReadCloser
	ctx  context.Context
	what string
}

func newBodyLogger(ctx context.Context, what string, rc io.ReadCloser) io.ReadCloser {
	return bodyLogger{ReadCloser: rc, ctx: ctx, what: what}
}

func (bl bodyLogger) Read(b []byte) (int, error) {
	size, err := bl.ReadCloser.Read(b)
	if size > 0 {
		logging.Logger(bl.ctx).Debugf("%s: read %d bytes: %s", bl.what, size, b[:size])
	}

	return size, err
}

/*
 *  AccessLogMw gives each request a transaction ID (reusing the caller's if
 *  it sent a valid one), and writes an audit record when the handler is done
 */
type AccessLogMw struct {
	logBodies bool
	next      http.Handler
}

func NewAccessLogMw(logBodies bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewAccessLog(logBodies, next)
	}
}

func NewAccessLog(logBodies bool, next http.Handler) *AccessLogMw {
	return &AccessLogMw{next: next, logBodies: logBodies}
}

func (mw *AccessLogMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	txnID, ok := validID(r.Header.Get(TxnIDHeader))
	if !ok {
		txnID = uuid.New().String()
	}
	startTime := time.Now()

	// before anything writes the body
	rw.Header().Set(TxnIDHeader, txnID)

	r = r.WithContext(logging.WithTxnID(r.Context(), txnID))

	if mw.logBodies {
		logging.Logger(r.Context()).Debugf("request headers: %+v", r.Header)
		r.Body = newBodyLogger(r.Context(), "request", r.Body)
	}

	rec := &statusRecorder{
		ResponseWriter: rw,
		ctx:            r.Context(),
		statusCode:     http.StatusOK,
		logBodies:      mw.logBodies,
	}
	mw.next.ServeHTTP(rec, r)

	logging.Logger(r.Context()).WithFields(
		logrus.Fields{
			"entrytype": "audit",
			"status":    rec.statusCode,
			"method":    r.Method,
			"remote":    r.RemoteAddr,
			"start":     startTime.Format(time.RFC3339Nano),
			"duration":  time.Since(startTime),
			"path":      r.URL.String(),
			"size":      rec.size,
		},
	).Info(http.StatusText(rec.statusCode))
}
