package rates

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/apperr"
)

// MockRoundTripper fakes the rate service response.
type MockRoundTripper func(req *http.Request) (*http.Response, error)

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestHTTPRate(t *testing.T) {
	src := NewHTTP("https://rates.example/convert", time.Second)

	t.Run("Success", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "EUR", req.URL.Query().Get("from"))
			assert.Equal(t, "USD", req.URL.Query().Get("to"))
			return respond(http.StatusOK, `{"rate": 1.08}`), nil
		})

		r, err := src.Rate(context.Background(), "EUR", "USD")
		require.NoError(t, err)
		assert.Equal(t, 1.08, r)
	})

	t.Run("SameCurrencySkipsNetwork", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			t.Fatal("unexpected request")
			return nil, nil
		})

		r, err := src.Rate(context.Background(), "USD", "USD")
		require.NoError(t, err)
		assert.Equal(t, 1.0, r)
	})

	t.Run("ServerError", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			return respond(http.StatusBadGateway, `upstream down`), nil
		})

		_, err := src.Rate(context.Background(), "EUR", "USD")
		assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	})

	t.Run("TransportError", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		})

		_, err := src.Rate(context.Background(), "EUR", "USD")
		assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
		assert.NotContains(t, err.Error(), "dial tcp")
	})

	t.Run("BadBody", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `{"rate": "lots"}`), nil
		})

		_, err := src.Rate(context.Background(), "EUR", "USD")
		assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	})

	t.Run("NonPositive", func(t *testing.T) {
		src.httpClient.Transport = MockRoundTripper(func(req *http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `{"rate": 0}`), nil
		})

		_, err := src.Rate(context.Background(), "EUR", "USD")
		assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	})
}

func TestHTTPClientTimeout(t *testing.T) {
	hang := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-hang:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(hang)

	src := NewHTTP(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := src.Rate(context.Background(), "EUR", "USD")

	assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}
