package intra

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestLoggingTransport(t *testing.T) {
	t.Run("logs completed requests", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		defer ts.Close()

		core, logs := observer.New(zapcore.DebugLevel)
		client := &http.Client{Transport: NewLoggingTransport(http.DefaultTransport, zap.New(core))}

		resp, err := client.Get(ts.URL + "/v2/users?page=1")
		require.NoError(t, err)
		resp.Body.Close()

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "/v2/users", fields["path"])
		assert.Equal(t, "page=1", fields["query"])
		assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	})

	t.Run("logs transport failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		boom := errors.New("dial failed")
		transport := NewLoggingTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		}), zap.New(core))

		req, _ := http.NewRequest(http.MethodGet, "http://example.test/v2/users", nil)
		_, err := transport.RoundTrip(req)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
	})

	t.Run("nil arguments get defaults", func(t *testing.T) {
		transport := NewLoggingTransport(nil, nil)

		assert.Equal(t, http.DefaultTransport, transport.Base)
		assert.NotNil(t, transport.Logger)
	})
}
