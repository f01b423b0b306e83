package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

// keyedAPIAdapter factors out what every keyed third-party search API
// adapter shares: a circuit breaker + retry around one HTTP GET, with
// extra headers for APIs that authenticate that way (Bing, Yelp) instead
// of a query-string key. It plays the same role for these adapters that
// RSSFetcher/WebflowScraper's shared retry+breaker wiring plays for feed
// fetching: the resilience combinators are identical, only the URL/header
// construction and response shape differ per provider.
type keyedAPIAdapter struct {
	name           string
	apiKey         string
	client         *httpclient.Client
	recorder       health.Recorder
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	headers        map[string]string
}

func newKeyedAPIAdapter(name, apiKey string, client *httpclient.Client, recorder health.Recorder, headers map[string]string) *keyedAPIAdapter {
	return &keyedAPIAdapter{
		name:           name,
		apiKey:         apiKey,
		client:         client,
		recorder:       recorder,
		circuitBreaker: circuitbreaker.New(circuitbreaker.AdapterConfig(name)),
		retryConfig:    retry.FeedFetchConfig(),
		headers:        headers,
	}
}

func (k *keyedAPIAdapter) enabled() bool { return k.apiKey != "" }

// get fetches rawURL with this adapter's extra headers, through the
// shared circuit breaker and retry policy, recording success/failure on
// the health monitor under k.name.
func (k *keyedAPIAdapter) get(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	var body []byte
	retryErr := retry.WithBackoff(ctx, k.retryConfig, func() error {
		result, err := k.circuitBreaker.Execute(func() (interface{}, error) {
			return k.doGet(ctx, rawURL)
		})
		if err != nil {
			if gobreakerOpen(err) {
				slog.Warn("keyed api adapter circuit breaker open", slog.String("engine", k.name))
			}
			return err
		}
		body = result.([]byte)
		return nil
	})
	if retryErr != nil {
		k.recorder.RecordFailure(k.name, time.Since(start), health.ClassOther, retryErr)
		return nil, retryErr
	}
	k.recorder.RecordSuccess(k.name, time.Since(start), 0)
	return body, nil
}

func (k *keyedAPIAdapter) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	if len(k.headers) == 0 {
		body, _, err := k.client.Get(ctx, rawURL)
		return body, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, val := range k.headers {
		req.Header.Set(key, val)
	}
	resp, err := k.client.Raw().Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected status: %s", resp.Status)}
	}
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return buf, nil
}
