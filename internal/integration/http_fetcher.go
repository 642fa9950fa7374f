// Package integration реализует транспорт к удалённому REST API:
// GET запросы относительно базового адреса, декодирование JSON в типизированные
// структуры и типизированные ошибки (TransportError, DecodeError).
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"rnm-aggregator/internal/metrics"
	"strings"
	"time"
)

// Fetcher выполняет GET запрос к ресурсу удалённого API и декодирует ответ в out.
//
// path задаётся относительно базового адреса, например "/character/1,2".
// query может быть nil.
type Fetcher interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// httpFetcherImpl - реализация Fetcher поверх net/http.
//
//   - на каждый вызов накладывается собственный таймаут (поверх ctx вызывающего);
//   - ответ не 2xx превращается в TransportError, 404 дополнительно оборачивает ErrNotFound;
//   - тело, которое не удалось разобрать, превращается в DecodeError.
type httpFetcherImpl struct {
	client  *http.Client
	baseURL string
	headers map[string]string
	timeout time.Duration
}

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 10 << 20
	maxErrorBody    = 512
)

func newHttpFetcher(c *http.Client, baseURL string, headers map[string]string, timeout time.Duration) *httpFetcherImpl {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &httpFetcherImpl{
		client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		timeout: timeout,
	}
}

func (f *httpFetcherImpl) Get(ctx context.Context, path string, query url.Values, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordExternalRequest(resourceOf(path), err, time.Since(start).Seconds())
	}()

	target := f.buildURL(path, query)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &TransportError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &TransportError{URL: target, StatusCode: resp.StatusCode, Err: statusError(resp)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &TransportError{URL: target, StatusCode: resp.StatusCode, Err: err}
		}
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}

func (f *httpFetcherImpl) buildURL(path string, query url.Values) string {
	target := f.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("bad response: %s", strings.TrimSpace(string(body)))
}

// resourceOf возвращает первый сегмент пути: "/character/1,2" -> "character".
func resourceOf(path string) string {
	trimmed := strings.TrimLeft(path, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
