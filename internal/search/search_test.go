package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autoblog/internal/core"
)

func TestFactoryCreatesProviders(t *testing.T) {
	factory := NewProviderFactory()

	jina, err := factory.CreateProvider(ProviderTypeJina, map[string]string{"api_key": "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jina.GetName() != "jina" {
		t.Errorf("expected jina provider, got %s", jina.GetName())
	}

	mock, err := factory.CreateProvider(ProviderTypeMock, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.GetName() != "mock" {
		t.Errorf("expected mock provider, got %s", mock.GetName())
	}

	_, err = factory.CreateProvider("unknown", nil)
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestJinaSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected JSON accept header, got %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, `{"data":[
			{"title":"結果1","url":"https://www.mhlw.go.jp/page1","description":"説明1"},
			{"title":"結果2","url":"https://example.com/page2","content":"本文から取る説明"},
			{"title":"空URL","url":""}
		]}`)
	}))
	defer server.Close()

	p := NewJinaProvider("")
	p.SetBaseURLs(server.URL, server.URL)

	results, err := p.Search(context.Background(), "エアコン 掃除", Config{MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Description != "本文から取る説明" {
		t.Errorf("expected description fallback to content, got %q", results[1].Description)
	}
}

func TestJinaSearchRespectsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"title":"a","url":"https://a.example/1"},
			{"title":"b","url":"https://b.example/2"},
			{"title":"c","url":"https://c.example/3"}
		]}`)
	}))
	defer server.Close()

	p := NewJinaProvider("")
	p.SetBaseURLs(server.URL, server.URL)

	results, err := p.Search(context.Background(), "q", Config{MaxResults: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestIsReliableURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.mhlw.go.jp/content/safety.html", true},
		{"https://news.nhk.or.jp/article/123", true},
		{"https://kakaku.com/kaden/aircon/guide", true},
		{"https://ameblo.jp/user/entry-1.html", false},
		{"https://twitter.com/someone/status/1", false},
		{"https://www.daikin.co.jp/", false},
		{"https://random-blog.example.com/post", false},
	}
	for _, tc := range cases {
		if got := IsReliableURL(tc.url); got != tc.want {
			t.Errorf("IsReliableURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestFilterReliableDeduplicates(t *testing.T) {
	results := []core.SearchResult{
		{Title: "a", URL: "https://www.mhlw.go.jp/content/a"},
		{Title: "dup", URL: "https://www.mhlw.go.jp/content/a"},
		{Title: "blog", URL: "https://ameblo.jp/entry/b"},
		{Title: "c", URL: "https://www.daikin.co.jp/air/guide"},
	}
	filtered := FilterReliable(results, 0)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered results, got %d", len(filtered))
	}
	if filtered[0].URL != "https://www.mhlw.go.jp/content/a" {
		t.Errorf("unexpected first result: %s", filtered[0].URL)
	}
}

func TestResearcherExtractsPAAAndRelated(t *testing.T) {
	googlePage := strings.Join([]string{
		"検索結果：ヘッダー行",
		"関連する質問",
		"エアコンは何年で壊れますか？",
		"掃除の頻度はどれくらいですか？",
		"http://ignored.example",
		"短い？",
		"エアコン 掃除 自分で",
		"エアコン 掃除 業者 料金",
	}, "\n")

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "google.co.jp") || strings.Contains(r.URL.RawQuery, "google") || r.Header.Get("Accept") == "text/plain" {
			fmt.Fprint(w, googlePage)
			return
		}
		fmt.Fprint(w, `{"data":[{"title":"トップ記事","url":"https://kakaku.com/item/1","description":"desc"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewJinaProvider("")
	p.SetBaseURLs(server.URL, server.URL)

	data, err := NewResearcher(p, 5).Research(context.Background(), "エアコン 掃除")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.TopResults) != 1 {
		t.Fatalf("expected 1 top result, got %d", len(data.TopResults))
	}
	if len(data.PAAQuestions) != 2 {
		t.Errorf("expected 2 PAA questions, got %d: %v", len(data.PAAQuestions), data.PAAQuestions)
	}
	if len(data.RelatedSearches) != 2 {
		t.Errorf("expected 2 related searches, got %d: %v", len(data.RelatedSearches), data.RelatedSearches)
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()
	results, err := m.Search(context.Background(), "anything", Config{MaxResults: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
