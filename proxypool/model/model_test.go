package model

import (
	"errors"
	"net/http"
	"slices"
	"testing"
)

var samples = []Proxy{
	{IP: "10.0.0.1", Port: 80, CountryCode: "US", Country: "United States", Anonymity: AnonymityElite, Protocol: ProtocolHTTP},
	{IP: "10.0.0.2", Port: 8080, CountryCode: "DE", Country: "Germany", Anonymity: AnonymityAnonymous, Protocol: ProtocolHTTPS},
	{IP: "10.0.0.3", Port: 3128, CountryCode: "US", Country: "United States", Anonymity: AnonymityTransparent, Protocol: ProtocolHTTP},
}

func TestParseAnonymity(t *testing.T) {
	testCases := []struct {
		in      string
		want    Anonymity
		wantErr bool
	}{
		{"", "", false},
		{"elite proxy", AnonymityElite, false},
		{"High Anonymous", AnonymityElite, false},
		{"anonymous", AnonymityAnonymous, false},
		{"NOA", AnonymityTransparent, false},
		{"invisible", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAnonymity(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseAnonymity(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseAnonymity(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseProtocol_Wrong(t *testing.T) {
	for _, in := range []string{"socks0", "ftp"} {
		if _, err := ParseProtocol(in); !errors.Is(err, ErrWrongConnType) {
			t.Errorf("ParseProtocol(%q) error = %v, want ErrWrongConnType", in, err)
		}
	}
}

func TestProxy_URLs(t *testing.T) {
	p := Proxy{IP: "1.2.3.4", Port: 8080, Protocol: ProtocolHTTPS}
	u := p.URLs()
	if u.HTTP != "https://1.2.3.4:8080" || u.HTTPS != "https://1.2.3.4:8080" {
		t.Errorf("URLs() = %+v", u)
	}

	m := u.Map()
	if len(m) != 2 || m["http"] != u.HTTP || m["https"] != u.HTTPS {
		t.Errorf("Map() = %v", m)
	}

	if got := (Proxy{IP: "1.2.3.4", Port: 80}).URL(); got != "http://1.2.3.4:80" {
		t.Errorf("URL() with empty protocol = %q", got)
	}
}

func TestFilter_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		want   error
	}{
		{"empty", Filter{}, nil},
		{"code", Filter{Country: "us"}, nil},
		{"name", Filter{Country: "United States"}, nil},
		{"numeric country", Filter{Country: "42"}, ErrWrongCountryCode},
		{"mixed country", Filter{Country: "M7"}, ErrWrongCountryCode},
		{"negative port", Filter{Port: -1}, ErrWrongPort},
		{"port too big", Filter{Port: 65536}, ErrWrongPort},
		{"bad protocol", Filter{Protocol: "socks0"}, ErrWrongConnType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() error = %v, want %v", err, tc.want)
			}
		})
	}

	if err := (Filter{Anonymity: "invisible"}).Validate(); err == nil {
		t.Error("Validate() accepted unknown anonymity level")
	}
}

func TestFilter_Apply(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}},
		{"country code", Filter{Country: "us"}, []string{"10.0.0.1", "10.0.0.3"}},
		{"country name", Filter{Country: "germany"}, []string{"10.0.0.2"}},
		{"country and port", Filter{Country: "US", Port: 3128}, []string{"10.0.0.3"}},
		{"anonymity", Filter{Anonymity: "elite proxy"}, []string{"10.0.0.1"}},
		{"protocol", Filter{Protocol: ProtocolHTTPS}, []string{"10.0.0.2"}},
		{"no match", Filter{Country: "UK"}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for p := range tc.filter.Apply(slices.Values(samples)) {
				got = append(got, p.IP)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("Apply() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestURLs_Transport(t *testing.T) {
	tr, err := Proxy{IP: "1.2.3.4", Port: 8080, Protocol: ProtocolHTTPS}.URLs().Transport()
	if err != nil {
		t.Fatalf("Transport() error = %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	pu, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}
	if pu.String() != "http://1.2.3.4:8080" {
		t.Errorf("Proxy() = %s, want http://1.2.3.4:8080", pu)
	}

	tr, err = Proxy{IP: "1.2.3.4", Port: 1080, Protocol: ProtocolSOCKS5}.URLs().Transport()
	if err != nil {
		t.Fatalf("Transport() socks5 error = %v", err)
	}
	if tr.DialContext == nil {
		t.Error("socks5 transport has no DialContext")
	}

	if _, err := (Proxy{IP: "1.2.3.4", Port: 1080, Protocol: ProtocolSOCKS4}).URLs().Transport(); !errors.Is(err, ErrWrongConnType) {
		t.Errorf("Transport() socks4 error = %v, want ErrWrongConnType", err)
	}
}
