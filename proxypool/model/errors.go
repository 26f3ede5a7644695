package model

import "errors"

// 上游返回的错误类型。所有错误都直接返回给调用方，不做内部重试。
var (
	// ErrReachedLimit 上游报告请求配额已用尽。
	ErrReachedLimit = errors.New("proxy source request limit reached")
	// ErrServiceUnavailable 无法连接上游，或上游返回非成功状态码。
	ErrServiceUnavailable = errors.New("proxy source unavailable")
	// ErrTemporaryBlocked 上游返回了反爬虫页面 (CAPTCHA / challenge)。
	ErrTemporaryBlocked = errors.New("temporarily blocked by proxy source")
	// ErrNoProxyFound 解析成功，但没有记录满足过滤条件。
	ErrNoProxyFound = errors.New("no proxy found for given filters")
)

// 调用参数错误。
var (
	ErrWrongConnType    = errors.New("connection type must be http, https, socks4 or socks5")
	ErrWrongCountryCode = errors.New("country must be a 2 letter code or a country name")
	ErrWrongPort        = errors.New("port must be between 1 and 65535")
	ErrWrongLimit       = errors.New("limit out of range")
)
