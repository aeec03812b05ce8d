package v1

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// maxErrorBodyLen caps how much of a failed response body ends up in error
// messages.
const maxErrorBodyLen = 256

// Transport handles low-level HTTP against the single-URL sheet service.
// Every operation is selected with a type=<op> query parameter; reads are
// GETs and mutations are form-encoded POSTs. All calls pass through a
// circuit breaker so a dead backend fails fast instead of stacking requests.
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client

	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

// NewTransport creates a transport for the sheet service at baseURL.
func NewTransport(baseURL string, log zerolog.Logger) *Transport {
	settings := gobreaker.Settings{
		Name:    "sheetapi",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
		log:        log.With().Str("component", "sheetapi").Logger(),
	}
}

func (t *Transport) buildURL(op string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("type", op)
	return t.BaseURL + "?" + q.Encode()
}

// Get sends a GET for the operation and returns the raw response body.
func (t *Transport) Get(ctx context.Context, op string, query url.Values) ([]byte, error) {
	return t.do(ctx, op, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, t.buildURL(op, query), nil)
	})
}

// PostForm sends a form-encoded POST for the operation. The sheet service
// expects the operation type inside the form body as well.
func (t *Transport) PostForm(ctx context.Context, op string, form url.Values) ([]byte, error) {
	return t.do(ctx, op, func() (*http.Request, error) {
		body := url.Values{}
		for k, vs := range form {
			for _, v := range vs {
				body.Add(k, v)
			}
		}
		body.Set("type", op)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, strings.NewReader(body.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (t *Transport) do(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	data, err := t.breaker.Execute(func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := t.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: request failed: %w", op, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: reading response: %w", op, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet := string(body)
			if len(snippet) > maxErrorBodyLen {
				snippet = snippet[:maxErrorBodyLen]
			}
			return nil, fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, snippet)
		}
		return body, nil
	})
	if err != nil {
		t.log.Debug().Err(err).Str("op", op).Msg("sheet service call failed")
		return nil, err
	}
	return data, nil
}
