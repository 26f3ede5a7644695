package model

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// URLs 是返回给调用方的代理配置映射，键名与常见 HTTP 客户端的 proxies 参数一致。
type URLs struct {
	HTTP  string `json:"http"`
	HTTPS string `json:"https"`
}

// Map returns the mapping as {"http": ..., "https": ...}.
func (u URLs) Map() map[string]string {
	return map[string]string{
		"http":  u.HTTP,
		"https": u.HTTPS,
	}
}

// Transport 构造一个通过该代理转发请求的 http.Transport。
// 代理列表中的 "https" 指的是支持 CONNECT 的 HTTP 代理，因此按明文 HTTP 代理连接。
func (u URLs) Transport() (*http.Transport, error) {
	pu, err := url.Parse(u.HTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy url %q: %w", u.HTTP, err)
	}

	switch Protocol(pu.Scheme) {
	case ProtocolHTTP, ProtocolHTTPS:
		pu.Scheme = string(ProtocolHTTP)
		return &http.Transport{Proxy: http.ProxyURL(pu)}, nil

	case ProtocolSOCKS5:
		dialer, err := proxy.SOCKS5("tcp", pu.Host, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create socks5 dialer for %s: %w", pu.Host, err)
		}
		t := &http.Transport{}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			t.DialContext = cd.DialContext
		} else {
			t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: %q has no transport", ErrWrongConnType, pu.Scheme)
	}
}
