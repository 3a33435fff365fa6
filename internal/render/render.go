// Package render assembles the final article HTML document.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

// sectionColors rotates backgrounds across sections and sub-sections.
var sectionColors = []struct {
	bg      string
	heading string
	border  string
}{
	{"#f0fdf4", "#10b981", "#34d399"},
	{"#eff6ff", "#3b82f6", "#60a5fa"},
	{"#fdf4ff", "#a855f7", "#c084fc"},
	{"#fff7ed", "#f97316", "#fb923c"},
}

// Renderer converts a generated article into a standalone HTML page.
// Content blocks may mix markdown and raw decoration HTML; goldmark
// handles both in one pass.
type Renderer struct {
	markdown goldmark.Markdown
}

// NewRenderer creates an article renderer
func NewRenderer() *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
	}
}

// Render builds the full HTML document. Sections may contain nils for
// stages that failed; those are reported inline and skipped.
func (r *Renderer) Render(outline *core.Outline, sections []*core.GeneratedSection, images *core.ArticleImages, assignments []core.ProductAssignment) (string, error) {
	if outline == nil {
		return "", fmt.Errorf("outline is required")
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"ja\">\n<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "  <meta name=\"description\" content=\"%s\">\n", html.EscapeString(outline.MetaDescription))
	fmt.Fprintf(&b, "  <title>%s</title>\n", html.EscapeString(outline.Title))
	b.WriteString("  <style>\n")
	b.WriteString(articleStyles)
	b.WriteString("  </style>\n</head>\n<body>\n  <article>\n")

	fmt.Fprintf(&b, "    <h1>%s</h1>\n", html.EscapeString(outline.Title))
	if images != nil && images.Eyecatch != nil {
		r.writePicture(&b, EyecatchPCFile, EyecatchMobileFile, outline.Title, "eyecatch", "eager")
	}

	r.writeTOC(&b, outline)
	r.writeMissingSectionNotice(&b, outline, sections)

	productAt := make(map[[2]int]core.ProductInfo, len(assignments))
	for _, a := range assignments {
		productAt[[2]int{a.SectionIndex, a.SubHeadingIndex}] = a.Product
	}

	globalSubIndex := 0
	for i, section := range sections {
		if section == nil {
			continue
		}
		colors := sectionColors[i%len(sectionColors)]
		fmt.Fprintf(&b, "    <div class=\"section-wrapper\" style=\"background: %s;\">\n", colors.bg)
		fmt.Fprintf(&b, "      <h2 id=\"section-%d\" style=\"background: linear-gradient(135deg, %s 0%%, %s 100%%);\">%s</h2>\n",
			i+1, colors.heading, colors.border, html.EscapeString(section.Title))

		if images != nil && i < len(images.SectionPairs) && images.SectionPairs[i] != nil {
			r.writePicture(&b, SectionPCFile(i), SectionMobileFile(i), section.Title, "section-image", "lazy")
		}

		intro, err := r.toHTML(section.Intro)
		if err != nil {
			return "", fmt.Errorf("section %d intro: %w", i+1, err)
		}
		fmt.Fprintf(&b, "      <div class=\"section-intro\">%s</div>\n", intro)

		for j, sub := range section.SubSections {
			subColors := sectionColors[globalSubIndex%len(sectionColors)]
			globalSubIndex++

			content, err := r.toHTML(sub.Content)
			if err != nil {
				return "", fmt.Errorf("section %d sub %d: %w", i+1, j+1, err)
			}
			fmt.Fprintf(&b, "      <div class=\"h3-wrapper\" style=\"background: %s;\">\n", subColors.bg)
			fmt.Fprintf(&b, "        <h3 id=\"section-%d-%d\" style=\"border-left: 4px solid %s;\">%s</h3>\n",
				i+1, j+1, subColors.heading, html.EscapeString(sub.Title))
			fmt.Fprintf(&b, "        <div class=\"h3-content\">%s</div>\n", content)

			if product, ok := productAt[[2]int{i, j}]; ok {
				b.WriteString(productBox(product))
			}
			b.WriteString("      </div>\n")
		}
		b.WriteString("    </div>\n")
	}

	r.writeSummary(&b, outline)
	b.WriteString("  </article>\n</body>\n</html>\n")

	logger.Debug("Article HTML assembled", "bytes", b.Len())
	return b.String(), nil
}

func (r *Renderer) toHTML(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) writePicture(b *strings.Builder, pcFile, mobileFile, alt, class, loading string) {
	fmt.Fprintf(b, `    <picture>
      <source media="(max-width: 768px)" srcset="images/%s" type="image/jpeg">
      <source media="(min-width: 769px)" srcset="images/%s" type="image/jpeg">
      <img src="images/%s" alt="%s" class="%s" width="800" height="450" loading="%s" />
    </picture>
`, mobileFile, pcFile, pcFile, html.EscapeString(alt), class, loading)
}

func (r *Renderer) writeTOC(b *strings.Builder, outline *core.Outline) {
	b.WriteString("    <div class=\"toc-container\">\n      <div class=\"toc-title\">目次</div>\n      <ul class=\"toc-list\">\n")
	for i, section := range outline.Sections {
		fmt.Fprintf(b, "        <li class=\"toc-item-h2\"><a href=\"#section-%d\">%s</a>\n          <ul class=\"toc-sublist\">\n",
			i+1, html.EscapeString(section.Title))
		for j, h := range section.SubHeadings {
			fmt.Fprintf(b, "            <li class=\"toc-item-h3\"><a href=\"#section-%d-%d\">%s</a></li>\n",
				i+1, j+1, html.EscapeString(h))
		}
		b.WriteString("          </ul>\n        </li>\n")
	}
	b.WriteString("      </ul>\n    </div>\n")
}

// writeMissingSectionNotice reports sections that were planned but not
// generated, so a degraded article is visibly degraded.
func (r *Renderer) writeMissingSectionNotice(b *strings.Builder, outline *core.Outline, sections []*core.GeneratedSection) {
	var missing []string
	for i := range outline.Sections {
		if i >= len(sections) || sections[i] == nil {
			missing = append(missing, outline.Sections[i].Title)
		}
	}
	if len(missing) == 0 {
		return
	}
	logger.Warn("Rendering with missing sections", "missing", strings.Join(missing, "、"))
	b.WriteString("    <div class=\"warning-box\">⚠️ 以下のセクションは生成されませんでした:<ul>\n")
	for _, title := range missing {
		fmt.Fprintf(b, "      <li>%s</li>\n", html.EscapeString(title))
	}
	b.WriteString("    </ul></div>\n")
}

func (r *Renderer) writeSummary(b *strings.Builder, outline *core.Outline) {
	b.WriteString("    <div class=\"summary-box\">\n      <div class=\"summary-title\">まとめ</div>\n      <ul class=\"check-list\">\n")
	for i, section := range outline.Sections {
		fmt.Fprintf(b, "        <li><a href=\"#section-%d\">%s</a></li>\n", i+1, html.EscapeString(section.Title))
	}
	b.WriteString("      </ul>\n    </div>\n")
}

// productBox renders one affiliate product card.
func productBox(p core.ProductInfo) string {
	var b strings.Builder
	b.WriteString("      <div class=\"pochipp-box\">\n        <div class=\"pochipp-main\">\n")
	if p.ImageURL != "" {
		fmt.Fprintf(&b, "          <div class=\"pochipp-image\"><img src=\"%s\" alt=\"%s\" width=\"100\" height=\"100\" loading=\"lazy\" /></div>\n",
			html.EscapeString(p.ImageURL), html.EscapeString(p.Title))
	}
	fmt.Fprintf(&b, "          <div class=\"pochipp-info\">\n            <div class=\"pochipp-title\">%s</div>\n", html.EscapeString(p.Title))
	if p.Price != "" {
		fmt.Fprintf(&b, "            <div class=\"pochipp-price\">¥%s</div>\n", formatPrice(p.Price))
	}
	b.WriteString("          </div>\n        </div>\n        <div class=\"pochipp-buttons\">\n")
	fmt.Fprintf(&b, "          <a href=\"%s\" class=\"pochipp-btn pochipp-btn-amazon\" target=\"_blank\" rel=\"noopener nofollow\">Amazonで見る</a>\n", p.AmazonURL)
	fmt.Fprintf(&b, "          <a href=\"%s\" class=\"pochipp-btn pochipp-btn-rakuten\" target=\"_blank\" rel=\"noopener nofollow\">楽天市場で見る</a>\n", p.RakutenURL)
	b.WriteString("        </div>\n      </div>\n")
	return b.String()
}

// formatPrice groups digits in threes: 12800 -> 12,800.
func formatPrice(price string) string {
	digits := strings.TrimSpace(price)
	for _, c := range digits {
		if c < '0' || c > '9' {
			return price
		}
	}
	var out []byte
	for i, c := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
