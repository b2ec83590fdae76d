package intra

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingTransport logs every round trip at debug level.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *zap.Logger
}

func NewLoggingTransport(base http.RoundTripper, logger *zap.Logger) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingTransport{Base: base, Logger: logger.Named("http")}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	t.Logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("query", req.URL.RawQuery),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return resp, nil
}
