// Package products extracts product candidates from saved marketplace pages.
package products

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

var asinHrefPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// LoadFromFile parses a saved Amazon search results page.
// A missing file yields an empty pool, not an error.
func LoadFromFile(path string) ([]core.HTMLProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Products file not found, affiliate pool is empty", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open products file: %w", err)
	}
	defer f.Close()
	return Extract(f)
}

// Extract pulls product candidates out of an Amazon results page.
// Result cards carry a data-asin attribute; pages saved in other layouts
// fall back to scanning /dp/ links.
func Extract(r io.Reader) ([]core.HTMLProduct, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse products HTML: %w", err)
	}

	seen := make(map[string]bool)
	var results []core.HTMLProduct

	doc.Find("[data-asin]").Each(func(_ int, s *goquery.Selection) {
		asin := strings.TrimSpace(s.AttrOr("data-asin", ""))
		if asin == "" || seen[asin] {
			return
		}
		title := extractTitle(s)
		if title == "" {
			return
		}
		seen[asin] = true
		results = append(results, core.HTMLProduct{
			ASIN:     asin,
			Title:    truncate(title, 200),
			ImageURL: s.Find("img.s-image").AttrOr("src", ""),
			Price:    extractPrice(s),
		})
	})

	if len(results) == 0 {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			m := asinHrefPattern.FindStringSubmatch(s.AttrOr("href", ""))
			if m == nil || seen[m[1]] {
				return
			}
			title := strings.TrimSpace(s.Text())
			if title == "" {
				return
			}
			seen[m[1]] = true
			results = append(results, core.HTMLProduct{
				ASIN:  m[1],
				Title: truncate(title, 200),
			})
		})
	}

	logger.Info("Extracted products from HTML", "count", len(results))
	return results, nil
}

// extractTitle tries the selectors Amazon uses for result card titles,
// newest layout first.
func extractTitle(s *goquery.Selection) string {
	selectors := []string{
		"h2 span",
		"h2 .a-size-base-plus",
		"span.a-text-normal",
		"h2 .a-size-mini",
		"a.a-link-normal",
	}
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractPrice(s *goquery.Selection) string {
	price := strings.TrimSpace(s.Find("span.a-price-whole").First().Text())
	price = strings.ReplaceAll(price, ",", "")
	return strings.TrimSuffix(price, ".")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
