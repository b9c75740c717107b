package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

/*
 *  LoggingTransport is the client side counterpart of AccessLogMw.  It sends
 *  the transaction ID of the request context (or a fresh one) in the
 *  X-Txn-ID header and logs every round trip at debug level.
 */
type LoggingTransport struct {
	base      http.RoundTripper
	logBodies bool
}

func NewLoggingTransport(base http.RoundTripper, logBodies bool) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{base: base, logBodies: logBodies}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	txnID, ok := logging.TxnID(ctx)
	if !ok {
		txnID = uuid.New().String()
		ctx = logging.WithTxnID(ctx, txnID)
	}

	// RoundTrip must not modify the caller's request
	req = req.Clone(ctx)
	req.Header.Set(TxnIDHeader, txnID)

	log := logging.Logger(ctx).WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.Redacted(),
	})

	if t.logBodies && req.Body != nil {
		req.Body = newBodyLogger(ctx, "request", req.Body)
	}

	start := time.Now()
	res, err := t.base.RoundTrip(req)
	if err != nil {
		log.WithError(err).Debug("Round trip failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status":   res.StatusCode,
		"duration": time.Since(start),
	}).Debug("Round trip complete")

	if t.logBodies {
		res.Body = newBodyLogger(ctx, "response", res.Body)
	}

	return res, nil
}
