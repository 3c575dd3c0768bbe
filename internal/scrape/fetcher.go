package scrape

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"ytfleet/internal/config"
	"ytfleet/internal/metrics"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetcher retrieves response bodies as text. One Fetcher holds one shared
// collector; it is safe for concurrent use. Every call is wrapped by the
// retry policy, so transient transport failures and timeouts are absorbed
// up to the attempt budget.
type Fetcher struct {
	baseCollector *colly.Collector
	policy        *ExponentialRetryPolicy
	logger        *zap.Logger
}

// NewFetcher constructs a configured colly-backed Fetcher. All requests
// share a fixed timeout and, when configured, a credentialed proxy
// endpoint. Cookies are disabled; the transport decompresses gzip/deflate
// bodies transparently.
func NewFetcher(httpCfg config.HTTPConfig, proxy config.ProxyConfig, logger *zap.Logger) (*Fetcher, error) {
	base := colly.NewCollector(
		colly.UserAgent(fetchUserAgent),
		colly.AllowURLRevisit(),
	)
	base.DisableCookies()
	base.WithTransport(&http.Transport{
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	})
	base.SetRequestTimeout(httpCfg.Timeout())

	if proxyURL := proxy.URL(); proxyURL != "" {
		if err := base.SetProxy(proxyURL); err != nil {
			return nil, err
		}
	}

	return &Fetcher{
		baseCollector: base,
		policy: NewExponentialRetryPolicy(
			httpCfg.MaxAttempts,
			time.Duration(httpCfg.BackoffInitialMs)*time.Millisecond,
			time.Duration(httpCfg.BackoffMaxMs)*time.Millisecond,
		),
		logger: logger,
	}, nil
}

// FetchText retrieves url and returns the body as text. desc names the
// source kind for logs and metrics only.
func (f *Fetcher) FetchText(ctx context.Context, url, desc string) (string, error) {
	f.logger.Debug("fetching", zap.String("desc", desc), zap.String("url", url))
	start := time.Now()

	var body string
	err := withRetry(ctx, f.policy, func() error {
		text, ferr := f.fetchOnce(ctx, url)
		if ferr != nil {
			return ferr
		}
		body = text
		return nil
	})

	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveFetch(desc, "error", elapsed)
		return "", err
	}
	metrics.ObserveFetch(desc, "ok", elapsed)
	f.logger.Debug("fetched",
		zap.String("desc", desc),
		zap.String("url", url),
		zap.Duration("duration", elapsed),
	)
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{body: string(r.Body)})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{err: &StatusError{URL: url, StatusCode: r.StatusCode}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	visitErr := collector.Visit(url)
	collector.Wait()

	// In synchronous mode Visit surfaces a non-2xx response as a generic
	// error; the OnError callback has already sent the typed StatusError,
	// so the channel result always wins over Visit's return.
	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return res.body, res.err
	default:
	}
	if visitErr != nil {
		return "", visitErr
	}
	return "", errors.New("fetch produced no result")
}

type fetchResult struct {
	body string
	err  error
}
