package search

import (
	"strings"

	"autoblog/internal/core"
)

// trustedDomains lists domains considered authoritative enough to cite.
var trustedDomains = []string{
	".go.jp",
	".or.jp",
	".ac.jp",
	".lg.jp",
	"mhlw.go.jp", "meti.go.jp", "env.go.jp", "jma.go.jp", "mext.go.jp",
	"panasonic.jp", "sharp.co.jp", "hitachi.co.jp", "sony.jp", "toshiba.co.jp",
	"daikin.co.jp", "mitsubishielectric.co.jp", "fujitsu.com",
	"nhk.or.jp", "nikkei.com", "itmedia.co.jp", "impress.co.jp",
	"kakaku.com", "biccamera.com", "yodobashi.com", "joshin.co.jp",
	"allabout.co.jp", "mynavi.jp", "careerconnection.jp",
}

// excludedPatterns lists URL fragments that disqualify a result
// even on a trusted domain (top pages, blogs, social media).
var excludedPatterns = []string{
	"/$",
	"/index",
	"blog", "ameblo", "hatena", "livedoor", "fc2",
	"note.com/user", "qiita.com/user", "zenn.dev/user",
	"twitter.com", "facebook.com", "instagram.com",
	"affiliate", "review", "2ch", "5ch",
}

// IsReliableURL reports whether a URL may be cited in generated articles.
func IsReliableURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, p := range excludedPatterns {
		if strings.HasPrefix(p, "/") {
			suffix := strings.TrimSuffix(p, "$")
			if strings.HasSuffix(lower, suffix) || strings.Contains(lower, suffix+".html") {
				return false
			}
			continue
		}
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, d := range trustedDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// FilterReliable keeps only citable results, deduplicated by URL,
// capped at limit (0 means no cap).
func FilterReliable(results []core.SearchResult, limit int) []core.SearchResult {
	seen := make(map[string]bool)
	var filtered []core.SearchResult
	for _, r := range results {
		if r.URL == "" || seen[r.URL] || !IsReliableURL(r.URL) {
			continue
		}
		seen[r.URL] = true
		filtered = append(filtered, r)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}
	return filtered
}
