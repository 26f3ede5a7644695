package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"proxyfetch/proxypool/model"
)

// ErrNoProxyTable 表示文档中找不到代理列表表格。
var ErrNoProxyTable = errors.New("no proxy table in document")

const (
	sourceFreeProxyList = "free-proxy-list.net"
	sourcePubProxy      = "pubproxy.com"
)

// tableColumns holds the cell index of each known column, -1 when absent.
type tableColumns struct {
	ip, port, code, country, anonymity, https int
}

// free-proxy-list 页面的默认列顺序:
// IP Address | Port | Code | Country | Anonymity | Google | Https | Last Checked
var defaultColumns = tableColumns{ip: 0, port: 1, code: 2, country: 3, anonymity: 4, https: 6}

// ParseTable 将代理列表 HTML 解析为 Proxy 序列。
// 文档只解析一次，序列按行惰性产出；IP 或端口无效的行会被跳过。
func ParseTable(r io.Reader) (iter.Seq[model.Proxy], error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	var (
		rows *goquery.Selection
		cols tableColumns
	)
	for _, table := range doc.Find("table").EachIter() {
		c, ok := headerColumns(table)
		if !ok {
			continue
		}
		rows, cols = table.Find("tbody tr"), c
		break
	}
	if rows == nil {
		return nil, ErrNoProxyTable
	}

	return func(yield func(model.Proxy) bool) {
		for _, row := range rows.EachIter() {
			p, ok := parseRow(row.Find("td"), cols)
			if !ok {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}, nil
}

// headerColumns maps the header cells of a table to column indexes.
// A table qualifies only when both the IP and the port column are present.
func headerColumns(table *goquery.Selection) (tableColumns, bool) {
	headers := table.Find("thead th")
	if headers.Length() == 0 {
		headers = table.Find("tr").First().Find("th")
	}
	if headers.Length() == 0 {
		return tableColumns{}, false
	}

	cols := tableColumns{ip: -1, port: -1, code: -1, country: -1, anonymity: -1, https: -1}
	for i, th := range headers.EachIter() {
		switch h := strings.ToLower(strings.TrimSpace(th.Text())); {
		case h == "ip address" || h == "ip":
			cols.ip = i
		case h == "port":
			cols.port = i
		case h == "code":
			cols.code = i
		case h == "country":
			cols.country = i
		case h == "anonymity":
			cols.anonymity = i
		case h == "https":
			cols.https = i
		}
	}
	if cols.ip < 0 || cols.port < 0 {
		return tableColumns{}, false
	}
	return cols, true
}

func parseRow(cells *goquery.Selection, cols tableColumns) (model.Proxy, bool) {
	cell := func(i int) string {
		if i < 0 || i >= cells.Length() {
			return ""
		}
		return strings.TrimSpace(cells.Eq(i).Text())
	}

	ip := cell(cols.ip)
	port, err := strconv.Atoi(cell(cols.port))
	if err != nil || model.ValidateEndpoint(ip, port) != nil {
		return model.Proxy{}, false
	}

	anonymity, _ := model.ParseAnonymity(cell(cols.anonymity))

	protocol := model.ProtocolHTTP
	if strings.EqualFold(cell(cols.https), "yes") {
		protocol = model.ProtocolHTTPS
	}

	return model.Proxy{
		IP:          ip,
		Port:        port,
		CountryCode: strings.ToUpper(cell(cols.code)),
		Country:     cell(cols.country),
		Anonymity:   anonymity,
		Protocol:    protocol,
		Source:      sourceFreeProxyList,
	}, true
}

// pubProxyResponse 定义了 pubproxy.com JSON API 的响应结构。
type pubProxyResponse struct {
	Data []struct {
		IPPort     string     `json:"ipPort"`
		IP         string     `json:"ip"`
		Port       flexString `json:"port"`
		Country    string     `json:"country"`
		ProxyLevel string     `json:"proxy_level"`
		Type       string     `json:"type"`
		Support    struct {
			HTTPS flexString `json:"https"`
		} `json:"support"`
	} `json:"data"`
	Count int `json:"count"`
}

// flexString accepts both a JSON string and a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString(strings.Trim(string(b), `"`))
	return nil
}

// ParseAPI 解析 pubproxy.com 的 JSON 响应。无效的条目会被跳过。
func ParseAPI(body []byte) (iter.Seq[model.Proxy], error) {
	var resp pubProxyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}

	return func(yield func(model.Proxy) bool) {
		for _, d := range resp.Data {
			ip := strings.TrimSpace(d.IP)
			port, err := strconv.Atoi(string(d.Port))
			if (ip == "" || err != nil) && d.IPPort != "" {
				ip, port, err = splitIPPort(d.IPPort)
			}
			if err != nil || model.ValidateEndpoint(ip, port) != nil {
				continue
			}

			protocol, err := model.ParseProtocol(d.Type)
			if err != nil || protocol == "" {
				protocol = model.ProtocolHTTP
			}
			// type=http 且 support.https=1 表示支持 CONNECT，与表格的 "Https" 列一致
			if protocol == model.ProtocolHTTP && d.Support.HTTPS == "1" {
				protocol = model.ProtocolHTTPS
			}
			anonymity, _ := model.ParseAnonymity(d.ProxyLevel)

			p := model.Proxy{
				IP:          ip,
				Port:        port,
				CountryCode: strings.ToUpper(strings.TrimSpace(d.Country)),
				Anonymity:   anonymity,
				Protocol:    protocol,
				Source:      sourcePubProxy,
			}
			if !yield(p) {
				return
			}
		}
	}, nil
}

func splitIPPort(s string) (string, int, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return "", 0, fmt.Errorf("missing port in %q", s)
	}
	port, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, err
	}
	return s[:i], port, nil
}
