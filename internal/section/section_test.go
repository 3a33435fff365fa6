package section

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"autoblog/internal/core"
	"autoblog/internal/llm"
	"autoblog/internal/search"
)

var testSection = core.OutlineSection{
	Title:       "エアコン 掃除は自分でできる？",
	SubHeadings: []string{"頻度はどれくらい？", "準備するもの", "手順の流れ"},
}

func markdownResponse(t *testing.T, markdown string) string {
	t.Helper()
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": markdown}},
			}},
		},
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func newTestWriter(t *testing.T, handler http.HandlerFunc) (*Writer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := llm.NewClient("test-key", 5*time.Second)
	client.SetBaseURL(server.URL)
	return NewWriter(client, nil, Options{Model: "pro-model"}), server
}

func TestWriteParsesSections(t *testing.T) {
	markdown := strings.Join([]string{
		"## エアコン 掃除は自分でできる？",
		"",
		"導入文です。結論から言えば自分でできます。",
		"",
		"### 頻度はどれくらい？",
		"",
		"月に1回が目安です。",
		"",
		"### 準備するもの",
		"",
		"掃除機と中性洗剤を用意します。",
		"",
		"### 手順の流れ",
		"",
		"電源を切ってから始めます。",
	}, "\n")

	w, server := newTestWriter(t, func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, markdownResponse(t, markdown))
	})
	defer server.Close()

	result, err := w.Write(context.Background(), "エアコン 掃除", testSection, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != testSection.Title {
		t.Errorf("unexpected title: %q", result.Title)
	}
	if !strings.Contains(result.Intro, "導入文です") {
		t.Errorf("unexpected intro: %q", result.Intro)
	}
	if len(result.SubSections) != 3 {
		t.Fatalf("expected 3 sub-sections, got %d", len(result.SubSections))
	}
	if result.SubSections[1].Title != "準備するもの" {
		t.Errorf("unexpected sub-section title: %q", result.SubSections[1].Title)
	}
	if result.SubSections[2].Content != "電源を切ってから始めます。" {
		t.Errorf("unexpected last content: %q", result.SubSections[2].Content)
	}
}

func TestWriteStripsCodeFence(t *testing.T) {
	markdown := "```markdown\n## 見出し\n\n導入。\n\n### 頻度はどれくらい？\n\n本文。\n```"
	w, server := newTestWriter(t, func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, markdownResponse(t, markdown))
	})
	defer server.Close()

	result, err := w.Write(context.Background(), "kw", testSection, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SubSections) != 1 {
		t.Fatalf("expected 1 sub-section, got %d", len(result.SubSections))
	}
	if result.SubSections[0].Content != "本文。" {
		t.Errorf("unexpected content: %q", result.SubSections[0].Content)
	}
}

func TestWriteSynthesizesPlaceholders(t *testing.T) {
	w, server := newTestWriter(t, func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, markdownResponse(t, "## 見出し\n\n本文だけで小見出しがない。"))
	})
	defer server.Close()

	result, err := w.Write(context.Background(), "kw", testSection, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SubSections) != len(testSection.SubHeadings) {
		t.Fatalf("expected %d placeholder sub-sections, got %d",
			len(testSection.SubHeadings), len(result.SubSections))
	}
	for i, sub := range result.SubSections {
		if sub.Title != testSection.SubHeadings[i] {
			t.Errorf("placeholder %d: expected title %q, got %q", i, testSection.SubHeadings[i], sub.Title)
		}
	}
}

func TestWriteRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	w, server := newTestWriter(t, func(rw http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(rw, `{"error":{"message":"overloaded"}}`)
			return
		}
		fmt.Fprint(rw, markdownResponse(t, "## 見出し\n\n導入。\n\n### 頻度はどれくらい？\n\n本文。"))
	})
	defer server.Close()

	if _, err := w.Write(context.Background(), "kw", testSection, nil); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestWriteReusesResearchTopResults(t *testing.T) {
	var prompt string
	w, server := newTestWriter(t, func(rw http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}
		fmt.Fprint(rw, markdownResponse(t, "## 見出し\n\n導入。\n\n### 頻度はどれくらい？\n\n本文。"))
	})
	defer server.Close()

	research := &core.ResearchData{
		TopResults: []core.SearchResult{
			{Title: "公式ガイド", URL: "https://www.daikin.co.jp/guide", Description: "説明"},
		},
	}
	if _, err := w.Write(context.Background(), "kw", testSection, research); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "https://www.daikin.co.jp/guide") {
		t.Error("expected research URL in prompt")
	}
}

func TestCollectSourcesFallbackFiltersUntrusted(t *testing.T) {
	mock := search.NewMockProvider()
	mock.SetResults([]core.SearchResult{
		{Title: "信頼できる", URL: "https://www.mhlw.go.jp/content/page"},
		{Title: "ブログ", URL: "https://ameblo.jp/user/entry"},
	})

	w := NewWriter(nil, mock, Options{Model: "m"})
	sources := w.collectSources(context.Background(), "kw", testSection, nil)
	if len(sources) != 1 {
		t.Fatalf("expected 1 trusted source, got %d", len(sources))
	}
	if sources[0].URL != "https://www.mhlw.go.jp/content/page" {
		t.Errorf("unexpected source: %s", sources[0].URL)
	}
}

func TestNormalizeBubbleMarkup(t *testing.T) {
	in := `<div class="bubble-left" style="color:red"><span class="bubble-icon">質問</span><div class="bubble-text">掃除は必要？</div></div>
**重要** と __強調__ と *補足* です。`
	out := NormalizeBubbleMarkup(in)

	if !strings.Contains(out, `<div class="bubble-left"><span class="bubble-icon">Q</span>`) {
		t.Errorf("bubble not normalized: %q", out)
	}
	if !strings.Contains(out, "<strong>重要</strong>") {
		t.Errorf("bold star not converted: %q", out)
	}
	if !strings.Contains(out, "<strong>強調</strong>") {
		t.Errorf("bold underscore not converted: %q", out)
	}
	if !strings.Contains(out, "<em>補足</em>") {
		t.Errorf("emphasis not converted: %q", out)
	}
}
