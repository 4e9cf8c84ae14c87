package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/logger"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 3 * time.Second

// HTTP asks a remote service for rates:
//
//	GET <base>?from=EUR&to=USD  ->  {"rate": 1.08}
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTP{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rateResponse struct {
	Rate float64 `json:"rate"`
}

func (h *HTTP) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "rates"),
		zap.String("from", from),
		zap.String("to", to),
	)

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, apperr.RateUnavailable(from, to, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Warn("rate request failed", zap.Error(err))
		return 0, apperr.RateUnavailable(from, to, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, apperr.RateUnavailable(from, to, fmt.Errorf("read rate response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn("rate source returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return 0, apperr.RateUnavailable(from, to, fmt.Errorf("status %d", resp.StatusCode))
	}

	var res rateResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Warn("failed decoding rate response", zap.Error(err))
		return 0, apperr.RateUnavailable(from, to, err)
	}
	if res.Rate <= 0 {
		return 0, apperr.RateUnavailable(from, to, fmt.Errorf("non-positive rate %v", res.Rate))
	}
	return res.Rate, nil
}
