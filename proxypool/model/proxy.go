package model

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Anonymity 表示代理对客户端真实身份的隐藏程度。
type Anonymity string

const (
	AnonymityTransparent Anonymity = "transparent"
	AnonymityAnonymous   Anonymity = "anonymous"
	AnonymityElite       Anonymity = "elite"
)

// ParseAnonymity 将代理源网站上的各种写法归一化为 Anonymity。
// 空字符串返回 ("", nil)，表示未指定。
func ParseAnonymity(s string) (Anonymity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "transparent", "noa":
		return AnonymityTransparent, nil
	case "anonymous", "anm":
		return AnonymityAnonymous, nil
	case "elite", "elite proxy", "high anonymous", "high anonymity", "hia":
		return AnonymityElite, nil
	default:
		return "", fmt.Errorf("unknown anonymity level %q", s)
	}
}

// Protocol 是代理的连接类型。
type Protocol string

const (
	ProtocolHTTP   Protocol = "http"
	ProtocolHTTPS  Protocol = "https"
	ProtocolSOCKS4 Protocol = "socks4"
	ProtocolSOCKS5 Protocol = "socks5"
)

// ParseProtocol 解析连接类型，空字符串表示未指定。
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return "", nil
	case ProtocolHTTP, ProtocolHTTPS, ProtocolSOCKS4, ProtocolSOCKS5:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrWrongConnType, s)
	}
}

// Proxy 是从代理列表页面解析出的一条记录。
// 它按值传递，解析完成后不再修改。
type Proxy struct {
	IP          string    `json:"ip"`
	Port        int       `json:"port"`
	CountryCode string    `json:"country_code,omitempty"` // ISO 3166 两位代码, e.g., "US"
	Country     string    `json:"country,omitempty"`      // 国家名称, e.g., "United States"
	Anonymity   Anonymity `json:"anonymity,omitempty"`
	Protocol    Protocol  `json:"protocol"`
	Source      string    `json:"source"` // 来源网站, e.g., "free-proxy-list.net"
}

// Addr returns "ip:port".
func (p Proxy) Addr() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// URL returns "protocol://ip:port". An empty protocol is treated as http.
func (p Proxy) URL() string {
	proto := p.Protocol
	if proto == "" {
		proto = ProtocolHTTP
	}
	return string(proto) + "://" + p.Addr()
}

// URLs formats the record as the mapping an HTTP client expects.
func (p Proxy) URLs() URLs {
	u := p.URL()
	return URLs{HTTP: u, HTTPS: u}
}

// ValidateEndpoint 检查 IP 和端口在语法上是否有效。
func ValidateEndpoint(ip string, port int) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid ip address %q", ip)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrWrongPort, port)
	}
	return nil
}
