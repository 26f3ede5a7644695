package scraper

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"proxyfetch/internal/shared/types"
	"proxyfetch/proxypool/model"
)

// Scraper 接口定义了从代理源抓取代理信息的行为。
type Scraper interface {
	// Scrape 发起一次请求并返回解析出的代理序列。
	// 过滤条件只是提示：支持服务端过滤的来源会把它们作为查询参数下推，
	// 调用方仍需自行过滤。实现者不应在两次调用之间保留任何状态。
	Scrape(ctx context.Context, filter model.Filter) (iter.Seq[model.Proxy], error)

	// Name 返回抓取器的名称，用于日志记录。
	Name() string
}

// Options 是创建 Scraper 时的参数。
type Options struct {
	URL       string // 为空时使用来源的默认地址
	UserAgent string
	Timeout   time.Duration
	// ProxyURL 不为空时，通过该前向代理访问来源网站（部分来源会屏蔽数据中心 IP）。
	ProxyURL string

	LastCheckMinutes int // 仅 pubproxy
	Limit            int // 仅 pubproxy
}

// New 根据配置中的来源名称创建对应的 Scraper。
func New(cfg *types.Config) (Scraper, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}

	opts := Options{
		URL:              cfg.URL,
		UserAgent:        ua,
		Timeout:          timeout,
		ProxyURL:         cfg.ProxyURL,
		LastCheckMinutes: cfg.LastCheckMinutes,
		Limit:            cfg.UpstreamLimit,
	}
	if opts.ProxyURL != "" {
		if _, err := url.Parse(opts.ProxyURL); err != nil {
			return nil, fmt.Errorf("invalid forward proxy url %q: %w", opts.ProxyURL, err)
		}
	}

	switch cfg.SourceConf.Name {
	case types.SourceFreeProxyList, "":
		return NewFreeProxyListScraper(opts), nil
	case types.SourcePubProxy:
		return NewPubProxyScraper(opts), nil
	default:
		return nil, fmt.Errorf("unknown proxy source %q", cfg.SourceConf.Name)
	}
}

var (
	// 配额耗尽。pubproxy 的每日上限提示里也带有 "#premium"，所以必须先于 challengeMarkers 检查。
	quotaMarkers = [][]byte{
		[]byte("reached the maximum"),
		[]byte("request limit"),
		[]byte("quota exceeded"),
		[]byte("daily limit"),
	}
	challengeMarkers = [][]byte{
		[]byte("#premium"),
		[]byte("too many requests per second"),
		[]byte("g-recaptcha"),
		[]byte("h-captcha"),
		[]byte("captcha-form"),
		[]byte("cf-challenge"),
		[]byte("challenge-platform"),
		[]byte("just a moment..."),
		[]byte("attention required"),
	}
	noProxyBody = []byte("no proxy")
)

// Classify 将上游响应映射为错误类型，响应正常时返回 nil。
func Classify(status int, body []byte) error {
	lower := bytes.ToLower(body)
	switch {
	case status == http.StatusTooManyRequests || containsAny(lower, quotaMarkers):
		return fmt.Errorf("%w (status %d)", model.ErrReachedLimit, status)
	case containsAny(lower, challengeMarkers):
		return fmt.Errorf("%w (status %d)", model.ErrTemporaryBlocked, status)
	case status < 200 || status > 299:
		return fmt.Errorf("%w: received status code %d", model.ErrServiceUnavailable, status)
	case bytes.Equal(bytes.TrimSpace(lower), noProxyBody):
		return model.ErrNoProxyFound
	}
	return nil
}

func containsAny(body []byte, markers [][]byte) bool {
	for _, m := range markers {
		if bytes.Contains(body, m) {
			return true
		}
	}
	return false
}
