package proxypool

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"proxyfetch/internal/shared/logger"
	"proxyfetch/internal/shared/types"
	"proxyfetch/proxypool/model"
	"proxyfetch/proxypool/scraper"
)

// MaxLimit 是 WithLimit 允许的最大返回条数。
const MaxLimit = 100

// Fetcher 是 ProxyFetcher 组件：每次调用抓取一次代理列表，过滤后随机选取。
// 除随机数生成器外不保存任何状态，可以被多个 goroutine 并发调用。
type Fetcher struct {
	scraper scraper.Scraper

	mu  sync.Mutex // 保护 rnd
	rnd *rand.Rand
}

// New 创建 Fetcher。seed 为 0 时使用随机种子。
func New(s scraper.Scraper, seed uint64) *Fetcher {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Fetcher{
		scraper: s,
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NewFromConfig 根据配置选择来源并创建 Fetcher。
func NewFromConfig(cfg *types.Config) (*Fetcher, error) {
	s, err := scraper.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(s, cfg.Seed), nil
}

type callOptions struct {
	rnd      *rand.Rand
	limit    int
	limitSet bool
}

// Option 调整单次调用的行为。
type Option func(*callOptions)

// WithRand 为本次调用指定随机数生成器，用于可复现的选取。
// 调用方需保证 r 不会被并发使用。
func WithRand(r *rand.Rand) Option {
	return func(o *callOptions) { o.rnd = r }
}

// WithLimit 让 GetProxies 最多返回 n 条随机选取的代理，n 必须在 1..MaxLimit 之间。
func WithLimit(n int) Option {
	return func(o *callOptions) {
		o.limit = n
		o.limitSet = true
	}
}

// GetProxy 返回一个满足 filter 的代理，在所有匹配记录中均匀随机选取。
func (f *Fetcher) GetProxy(ctx context.Context, filter model.Filter, opts ...Option) (model.URLs, error) {
	o := f.options(opts)
	proxies, err := f.collect(ctx, filter)
	if err != nil {
		return model.URLs{}, err
	}

	p := proxies[f.intN(o.rnd, len(proxies))]
	return p.URLs(), nil
}

// GetProxies 返回所有满足 filter 的代理，顺序与来源页面一致且互不重复。
// 指定 WithLimit 时改为随机抽取不超过 n 条（不放回）。
func (f *Fetcher) GetProxies(ctx context.Context, filter model.Filter, opts ...Option) ([]model.URLs, error) {
	o := f.options(opts)
	if o.limitSet && (o.limit < 1 || o.limit > MaxLimit) {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", model.ErrWrongLimit, o.limit, MaxLimit)
	}

	proxies, err := f.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	if o.limitSet && o.limit < len(proxies) {
		// 部分 Fisher-Yates 洗牌
		for i := 0; i < o.limit; i++ {
			j := i + f.intN(o.rnd, len(proxies)-i)
			proxies[i], proxies[j] = proxies[j], proxies[i]
		}
		proxies = proxies[:o.limit]
	}

	result := make([]model.URLs, 0, len(proxies))
	for _, p := range proxies {
		result = append(result, p.URLs())
	}
	return result, nil
}

func (f *Fetcher) options(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// collect 执行 "校验 -> 抓取 -> 过滤 -> 去重" 流程，结果为空时返回 ErrNoProxyFound。
func (f *Fetcher) collect(ctx context.Context, filter model.Filter) ([]model.Proxy, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	l := logger.WithComponent("ProxyPool/Fetcher").With().
		Str("request_id", uuid.NewString()).
		Str("source", f.scraper.Name()).
		Logger()
	start := time.Now()

	seq, err := f.scraper.Scrape(ctx, filter)
	if err != nil {
		l.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Scrape failed.")
		return nil, err
	}

	seen := make(map[string]struct{})
	var proxies []model.Proxy
	for p := range filter.Apply(seq) {
		key := p.URL()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		proxies = append(proxies, p)
	}

	if len(proxies) == 0 {
		l.Info().Interface("filter", filter).Dur("elapsed", time.Since(start)).Msg("No proxy matched filters.")
		return nil, fmt.Errorf("%s: %w", f.scraper.Name(), model.ErrNoProxyFound)
	}

	l.Debug().Int("count", len(proxies)).Dur("elapsed", time.Since(start)).Msg("Got proxies.")
	return proxies, nil
}

func (f *Fetcher) intN(r *rand.Rand, n int) int {
	if r != nil {
		return r.IntN(n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rnd.IntN(n)
}
