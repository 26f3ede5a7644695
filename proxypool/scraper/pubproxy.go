package scraper

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"proxyfetch/internal/shared/logger"
	"proxyfetch/proxypool/model"
)

const (
	pubProxyURL = "http://pubproxy.com/api/proxy"
	// pubproxy 单次请求最多返回 20 条
	pubProxyMaxLimit = 20
	maxBodySize      = 4 << 20
	defaultTimeout   = 11 * time.Second
)

// PubProxyScraper 实现了 Scraper 接口，调用 pubproxy.com 的 JSON API。
// 过滤条件会作为查询参数下推到服务端。
type PubProxyScraper struct {
	client    *http.Client
	url       string
	userAgent string
	lastCheck int
	limit     int
}

// NewPubProxyScraper 创建一个新的 PubProxyScraper 实例。
func NewPubProxyScraper(opts Options) Scraper {
	l := logger.WithComponent("ProxyPool/Scraper")

	apiURL := opts.URL
	if apiURL == "" {
		apiURL = pubProxyURL
	}
	limit := opts.Limit
	if limit < 1 || limit > pubProxyMaxLimit {
		limit = pubProxyMaxLimit
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			l.Error().Err(err).Str("proxy_url", opts.ProxyURL).Msg("Invalid forward proxy URL, falling back to direct connection.")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &PubProxyScraper{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		url:       apiURL,
		userAgent: opts.UserAgent,
		lastCheck: opts.LastCheckMinutes,
		limit:     limit,
	}
}

func (s *PubProxyScraper) Name() string {
	return sourcePubProxy
}

// query 把过滤条件翻译为 pubproxy 的查询参数。
func (s *PubProxyScraper) query(filter model.Filter) url.Values {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(s.limit))
	if s.lastCheck > 0 {
		q.Set("last_check", strconv.Itoa(s.lastCheck))
	}

	switch filter.Protocol {
	case model.ProtocolSOCKS4, model.ProtocolSOCKS5:
		q.Set("type", string(filter.Protocol))
	case model.ProtocolHTTP:
		q.Set("type", string(model.ProtocolHTTP))
		q.Set("https", "false")
	default:
		// 未指定协议时沿用 https=true，只要支持 CONNECT 的代理
		q.Set("type", string(model.ProtocolHTTP))
		q.Set("https", "true")
	}
	if filter.Country != "" {
		q.Set("country", strings.ToUpper(strings.TrimSpace(filter.Country)))
	}
	if filter.Port != 0 {
		q.Set("port", strconv.Itoa(filter.Port))
	}
	if a, _ := model.ParseAnonymity(string(filter.Anonymity)); a == model.AnonymityAnonymous || a == model.AnonymityElite {
		q.Set("level", string(a))
	}
	return q
}

func (s *PubProxyScraper) Scrape(ctx context.Context, filter model.Filter) (iter.Seq[model.Proxy], error) {
	l := logger.WithComponent("ProxyPool/Scraper")

	// pubproxy 只返回国家代码，国家名称永远无法匹配
	if c := strings.TrimSpace(filter.Country); c != "" && len(c) != 2 {
		return nil, fmt.Errorf("%s: %w: only 2 letter codes are supported, got %q", s.Name(), model.ErrWrongCountryCode, filter.Country)
	}

	u := s.url + "?" + s.query(filter).Encode()
	l.Debug().Str("source", s.Name()).Str("url", u).Msg("Making request to proxy service.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", s.Name(), err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Str("source", s.Name()).Msg("Failed to connect to proxy service.")
		return nil, fmt.Errorf("%s: %w: %w", s.Name(), model.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.Name(), model.ErrServiceUnavailable, err)
	}

	if err := Classify(resp.StatusCode, body); err != nil {
		l.Warn().Err(err).Int("status_code", resp.StatusCode).Str("source", s.Name()).Msg("Source rejected request.")
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	seq, err := ParseAPI(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.Name(), model.ErrServiceUnavailable, err)
	}
	return seq, nil
}
