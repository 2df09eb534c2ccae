package adminurl

import (
	"net/url"
	"strings"

	"kohchanghospital.go.th/admin/src/config"
)

const StaticPath = "/public"

type Q struct {
	Name  string
	Value string
}

// Url builds a site-relative url. The admin site is only ever served from
// one host, so relative redirects and links are enough.
func Url(path string, query []Q) string {
	result := "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

// AbsoluteUrl is for places without a request to be relative to, like log
// lines and CLI output.
func AbsoluteUrl(path string, query []Q) string {
	return strings.TrimSuffix(config.Config.BaseUrl, "/") + Url(path, query)
}

func StaticUrl(path string, query []Q) string {
	return Url(StaticPath+"/"+trim(path), query)
}

// QueryFromValues preserves a list's filter parameters in generated links.
func QueryFromValues(values url.Values) []Q {
	var result []Q
	for name, vals := range values {
		if len(vals) > 0 {
			result = append(result, Q{Name: name, Value: vals[0]})
		}
	}
	return result
}

func trim(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
