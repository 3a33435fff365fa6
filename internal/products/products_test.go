package products

import (
	"strings"
	"testing"
)

const resultsPage = `<html><body>
<div data-asin="B0TESTASIN1" class="s-result-item">
  <img class="s-image" src="https://m.media-amazon.com/images/I/test1.jpg">
  <h2><span>エアコン洗浄スプレー 2本セット</span></h2>
  <span class="a-price-whole">1,280</span>
</div>
<div data-asin="B0TESTASIN2" class="s-result-item">
  <h2><span>フィルター掃除ブラシ</span></h2>
</div>
<div data-asin="" class="s-result-item">
  <h2><span>ASINなしの商品</span></h2>
</div>
<div data-asin="B0TESTASIN1" class="s-result-item">
  <h2><span>重複ASIN</span></h2>
</div>
<div data-asin="B0NOTITLE99" class="s-result-item"></div>
</body></html>`

func TestExtractParsesResultCards(t *testing.T) {
	results, err := Extract(strings.NewReader(resultsPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 products, got %d", len(results))
	}

	first := results[0]
	if first.ASIN != "B0TESTASIN1" {
		t.Errorf("unexpected ASIN: %s", first.ASIN)
	}
	if first.Title != "エアコン洗浄スプレー 2本セット" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.ImageURL != "https://m.media-amazon.com/images/I/test1.jpg" {
		t.Errorf("unexpected image URL: %q", first.ImageURL)
	}
	if first.Price != "1280" {
		t.Errorf("unexpected price: %q", first.Price)
	}

	if results[1].ASIN != "B0TESTASIN2" {
		t.Errorf("unexpected second ASIN: %s", results[1].ASIN)
	}
	if results[1].Price != "" {
		t.Errorf("expected empty price, got %q", results[1].Price)
	}
}

func TestExtractFallsBackToDpLinks(t *testing.T) {
	page := `<html><body>
<a href="/dp/B0LINKAAA1?ref=sr">リンクだけの商品A</a>
<a href="https://www.amazon.co.jp/dp/B0LINKBBB2">リンクだけの商品B</a>
<a href="/gp/help">ヘルプ</a>
</body></html>`

	results, err := Extract(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 products, got %d", len(results))
	}
	if results[0].ASIN != "B0LINKAAA1" || results[1].ASIN != "B0LINKBBB2" {
		t.Errorf("unexpected ASINs: %+v", results)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	results, err := Extract(strings.NewReader("<html><body>何もない</body></html>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no products, got %d", len(results))
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	results, err := LoadFromFile("/nonexistent/products.html")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil pool, got %v", results)
	}
}
