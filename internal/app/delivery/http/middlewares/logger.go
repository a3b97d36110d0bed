package middlewares

import (
	"net/http"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestLogger writes one access line per request.
func (m *Middlewares) RequestLogger(log *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				constvars.LoggingRequestIDKey:  utils.GetRequestID(r.Context()),
				constvars.LoggingRemoteAddrKey: r.RemoteAddr,
				constvars.LoggingStatusCodeKey: rec.statusCode,
				constvars.LoggingDurationKey:   time.Since(start).String(),
			}).Infof("%s %s", r.Method, r.RequestURI)
		})
	}
}
