// Package favicon resolves icon URLs for bookmark tiles. Candidates are
// tried in order: the site itself, then the baidu and bing favicon
// services, then the bundled default icon.
package favicon

import (
	"net/url"
	"regexp"
)

// DefaultIcon is served by the frontend when no candidate loads
const DefaultIcon = "internet.png"

var schemePattern = regexp.MustCompile(`(?i)^(https?://|file://)`)

// Candidates are the icon URLs for one site, in fallback order
type Candidates struct {
	Site    string `json:"site"`
	Baidu   string `json:"baidu"`
	Bing    string `json:"bing"`
	Default string `json:"default"`
}

// Ordered returns the remote candidates followed by the default
func (c Candidates) Ordered() []string {
	if c.Site == "" {
		return []string{c.Default}
	}
	return []string{c.Site, c.Baidu, c.Bing, c.Default}
}

// Domain extracts the host from a bookmark URL, adding https:// when the
// URL has no scheme. It returns "" when the URL cannot be parsed.
func Domain(raw string) string {
	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Resolve builds the candidate list for a bookmark URL
func Resolve(raw string) Candidates {
	domain := Domain(raw)
	if domain == "" {
		return Candidates{Default: DefaultIcon}
	}

	return Candidates{
		Site:    "https://" + domain + "/favicon.ico",
		Baidu:   "https://www.baidu.com/favicon.ico?domain=" + domain,
		Bing:    "https://www.bing.com/favicon.ico?domain=" + domain,
		Default: DefaultIcon,
	}
}
