package model

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
)

// Filter 是调用方提供的过滤条件，零值字段表示不限制。
// 多个字段之间是逻辑 AND 关系。
type Filter struct {
	Country   string    // 两位国家代码 ("US") 或国家名称 ("United States")，不区分大小写。pubproxy 只支持代码
	Port      int       // 0 表示任意端口
	Anonymity Anonymity // 空表示任意匿名级别
	Protocol  Protocol  // 空表示任意协议
}

// Validate 检查过滤条件在类型上是否合法。
func (f Filter) Validate() error {
	if f.Country != "" && !validCountry(f.Country) {
		return fmt.Errorf("%w: %q", ErrWrongCountryCode, f.Country)
	}
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrWrongPort, f.Port)
	}
	if f.Anonymity != "" {
		if _, err := ParseAnonymity(string(f.Anonymity)); err != nil {
			return err
		}
	}
	if f.Protocol != "" {
		if _, err := ParseProtocol(string(f.Protocol)); err != nil {
			return err
		}
	}
	return nil
}

// validCountry accepts a 2 letter code or a name made of letters and spaces.
func validCountry(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == ' ' || r == '-' || r == '.' || r == '\'':
		default:
			return false
		}
	}
	return hasLetter
}

// Match reports whether p satisfies every criterion set on f.
func (f Filter) Match(p Proxy) bool {
	if f.Country != "" {
		c := strings.TrimSpace(f.Country)
		if !strings.EqualFold(c, p.CountryCode) && !strings.EqualFold(c, p.Country) {
			return false
		}
	}
	if f.Port != 0 && f.Port != p.Port {
		return false
	}
	if f.Anonymity != "" {
		want, _ := ParseAnonymity(string(f.Anonymity))
		if want != p.Anonymity {
			return false
		}
	}
	if f.Protocol != "" && !strings.EqualFold(string(f.Protocol), string(p.Protocol)) {
		return false
	}
	return true
}

// Apply 惰性地过滤 seq，只产出满足条件的记录。
func (f Filter) Apply(seq iter.Seq[Proxy]) iter.Seq[Proxy] {
	return func(yield func(Proxy) bool) {
		for p := range seq {
			if !f.Match(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
