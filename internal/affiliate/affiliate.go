// Package affiliate builds product links and assigns them to article sub-sections.
package affiliate

import (
	"fmt"
	"net/url"

	"autoblog/internal/core"
	"autoblog/internal/logger"
)

// defaultBoostKeywords are appended to Rakuten search queries, rotating
// per sub-section so repeated products still link to distinct searches.
var defaultBoostKeywords = []string{
	"最安値", "送料無料", "ポイント10倍", "あす楽", "楽天1位",
	"即納", "正規品", "新型", "クーポン", "保証付",
	"レビュー件数順", "ランキング", "人気", "おすすめ", "セール",
	"特価", "限定", "まとめ買い", "初回限定", "期間限定",
}

// Linker builds affiliate URLs and product records.
type Linker struct {
	amazonAssociateID  string
	rakutenAffiliateID string
	boostKeywords      []string
}

// NewLinker creates a link builder. Empty association IDs produce plain
// (untagged) URLs.
func NewLinker(amazonAssociateID, rakutenAffiliateID string, boostKeywords []string) *Linker {
	if len(boostKeywords) == 0 {
		boostKeywords = defaultBoostKeywords
	}
	return &Linker{
		amazonAssociateID:  amazonAssociateID,
		rakutenAffiliateID: rakutenAffiliateID,
		boostKeywords:      boostKeywords,
	}
}

// AmazonLink builds a product detail URL with the associate tag.
func (l *Linker) AmazonLink(asin string) string {
	base := "https://www.amazon.co.jp/dp/" + asin
	if l.amazonAssociateID != "" {
		return base + "?tag=" + l.amazonAssociateID
	}
	return base
}

// RakutenSearchURL builds a marketplace search URL with a rotating boost keyword.
func (l *Linker) RakutenSearchURL(productKeyword string, index int) string {
	boost := l.boostKeywords[index%len(l.boostKeywords)]
	return "https://search.rakuten.co.jp/search/mall/" + url.PathEscape(productKeyword+" "+boost) + "/"
}

// BuildProduct turns an extracted HTML product into a linked product record.
func (l *Linker) BuildProduct(p core.HTMLProduct, productKeyword string, index int) core.ProductInfo {
	title := p.Title
	if title == "" {
		title = fmt.Sprintf("%s (%s)", productKeyword, p.ASIN)
	}
	imageURL := p.ImageURL
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://images-na.ssl-images-amazon.com/images/P/%s.09.LZZZZZZZ.jpg", p.ASIN)
	}
	description := p.Title
	if description == "" {
		description = productKeyword + "の商品です。"
	}
	return core.ProductInfo{
		Title:       title,
		ImageURL:    imageURL,
		AmazonURL:   l.AmazonLink(p.ASIN),
		RakutenURL:  l.RakutenSearchURL(productKeyword, index),
		Description: description,
		ASIN:        p.ASIN,
		Price:       p.Price,
	}
}

// FallbackProduct builds a keyword-search product for when no candidate exists.
func (l *Linker) FallbackProduct(productKeyword string) core.ProductInfo {
	return core.ProductInfo{
		Title:       productKeyword,
		AmazonURL:   "https://www.amazon.co.jp/s?k=" + url.QueryEscape(productKeyword),
		RakutenURL:  "https://search.rakuten.co.jp/search/mall/" + url.PathEscape(productKeyword) + "/",
		Description: productKeyword + "の商品です。",
	}
}

// Assign walks every sub-section of every section and attaches a product,
// cycling through the candidate pool in order. An empty pool yields no
// assignments. Reused candidates are reported, not skipped.
func (l *Linker) Assign(sections []*core.GeneratedSection, pool []core.HTMLProduct, productKeyword string) []core.ProductAssignment {
	if len(pool) == 0 {
		logger.Info("Product pool is empty, skipping affiliate assignment")
		return nil
	}

	var assignments []core.ProductAssignment
	usedASINs := make(map[string]int)
	globalIndex := 0

	for sectionIndex, section := range sections {
		if section == nil {
			continue
		}
		for subIndex := range section.SubSections {
			candidate := pool[globalIndex%len(pool)]
			if prev, reused := usedASINs[candidate.ASIN]; reused {
				logger.Debug("Reusing product candidate",
					"asin", candidate.ASIN, "first_use", prev, "index", globalIndex)
			}
			usedASINs[candidate.ASIN] = globalIndex

			assignments = append(assignments, core.ProductAssignment{
				SectionIndex:    sectionIndex,
				SubHeadingIndex: subIndex,
				Product:         l.BuildProduct(candidate, productKeyword, globalIndex),
			})
			globalIndex++
		}
	}

	logger.Info("Assigned products to sub-sections",
		"assignments", len(assignments), "pool", len(pool), "unique", len(usedASINs))
	return assignments
}
