package types

import "time"

// SourceConf 描述代理列表来源。
type SourceConf struct {
	Name      string        `ini:"name"`       // "free-proxy-list" 或 "pubproxy"
	URL       string        `ini:"url"`        // 覆盖默认地址，测试时指向本地服务
	UserAgent string        `ini:"user_agent"` // 请求时使用的 User-Agent
	Timeout   time.Duration `ini:"timeout"`    // 单次请求的超时时间, e.g., "11s", "400ms"
	ProxyURL  string        `ini:"proxy_url"`  // 可选的前向代理, e.g., "http://127.0.0.1:8080"
}

// FetchConf 包含选取代理时的行为配置
type FetchConf struct {
	Seed             uint64 `ini:"seed"`               // 随机数种子, 0 表示每次启动随机
	LastCheckMinutes int    `ini:"last_check_minutes"` // 仅 pubproxy 使用
	UpstreamLimit    int    `ini:"upstream_limit"`     // 仅 pubproxy 使用, 单次请求返回的最大条数
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config 是 proxyfetch 的统一配置结构体
type Config struct {
	SourceConf `ini:"source"`
	FetchConf  `ini:"fetch"`
	LogConf    `ini:"log"`
}

const (
	SourceFreeProxyList = "free-proxy-list"
	SourcePubProxy      = "pubproxy"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
	DefaultTimeout   = 11 * time.Second
)

// DefaultConfig returns the configuration used when no ini file exists.
func DefaultConfig() *Config {
	return &Config{
		SourceConf: SourceConf{
			Name:      SourceFreeProxyList,
			UserAgent: DefaultUserAgent,
			Timeout:   DefaultTimeout,
		},
		FetchConf: FetchConf{
			LastCheckMinutes: 60,
			UpstreamLimit:    20,
		},
		LogConf: LogConf{Level: "info"},
	}
}
