package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/gocolly/colly/v2"

	"proxyfetch/internal/shared/logger"
	"proxyfetch/proxypool/model"
)

const freeProxyListURL = "https://free-proxy-list.net/"

// FreeProxyListScraper 实现了 Scraper 接口，用于抓取 free-proxy-list.net 的 HTML 代理表格。
type FreeProxyListScraper struct {
	url       string
	userAgent string
	proxyURL  string
	timeout   time.Duration
}

// NewFreeProxyListScraper 创建一个新的 FreeProxyListScraper 实例。
func NewFreeProxyListScraper(opts Options) Scraper {
	url := opts.URL
	if url == "" {
		url = freeProxyListURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FreeProxyListScraper{
		url:       url,
		userAgent: opts.UserAgent,
		proxyURL:  opts.ProxyURL,
		timeout:   timeout,
	}
}

// Name 返回抓取器的名称。
func (s *FreeProxyListScraper) Name() string {
	return sourceFreeProxyList
}

// Scrape 执行抓取操作。页面本身不支持服务端过滤，filter 被忽略。
func (s *FreeProxyListScraper) Scrape(ctx context.Context, _ model.Filter) (iter.Seq[model.Proxy], error) {
	l := logger.WithComponent("ProxyPool/Scraper")
	l.Debug().Str("source", s.Name()).Str("url", s.url).Msg("Starting scrape...")

	// 每次调用使用独立的 collector，调用之间不共享状态。
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)
	// 由 Classify 统一处理非 2xx 响应
	c.ParseHTTPErrorResponse = true
	if s.proxyURL != "" {
		if err := c.SetProxy(s.proxyURL); err != nil {
			return nil, fmt.Errorf("failed to set forward proxy for %s: %w", s.Name(), err)
		}
	}

	var (
		status int
		body   []byte
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(s.url); err != nil {
		l.Warn().Err(err).Str("url", s.url).Str("source", s.Name()).Msg("Failed to fetch page.")
		return nil, fmt.Errorf("%s: %w: %w", s.Name(), model.ErrServiceUnavailable, err)
	}
	if err := Classify(status, body); err != nil {
		l.Warn().Err(err).Int("status_code", status).Str("source", s.Name()).Msg("Source rejected request.")
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	seq, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, ErrNoProxyTable) {
			l.Debug().Str("response_body", string(body)).Msg("Dumping HTML body for diagnostics.")
		}
		return nil, fmt.Errorf("%s: %w: %w", s.Name(), model.ErrServiceUnavailable, err)
	}
	return seq, nil
}
