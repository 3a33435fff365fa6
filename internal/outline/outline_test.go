package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autoblog/internal/core"
	"autoblog/internal/llm"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) (*Generator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := llm.NewClient("test-key", 5*time.Second)
	client.SetBaseURL(server.URL)
	return NewGenerator(client, Options{
		ProModel:   "pro-model",
		FlashModel: "flash-model",
	}), server
}

func jsonTextResponse(t *testing.T, payload interface{}) string {
	t.Helper()
	inner, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": string(inner)}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateBuildsTwoSections(t *testing.T) {
	var proCalls atomic.Int32
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "pro-model") {
			n := proCalls.Add(1)
			fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
				"title":      fmt.Sprintf("エアコン 掃除の見出し%d", n),
				"h3Headings": []string{"頻度は？", "自分でやる手順", "業者の選び方", "費用の目安", "やってはいけないこと"},
			}))
			return
		}
		fmt.Fprint(w, jsonTextResponse(t, map[string]string{
			"title":           "エアコン 掃除を自分でやる方法と注意点",
			"metaDescription": "エアコン掃除の手順と注意点をまとめました。",
		}))
	})
	defer server.Close()

	research := &core.ResearchData{
		PAAQuestions: []string{
			"エアコンは壊れやすいですか？",
			"掃除の頻度はどれくらいですか？",
		},
	}
	result, err := gen.Generate(context.Background(), "エアコン 掃除", research)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(result.Sections))
	}
	if result.Title != "エアコン 掃除を自分でやる方法と注意点" {
		t.Errorf("unexpected title: %q", result.Title)
	}
	if len(result.Sections[0].SubHeadings) != 5 {
		t.Errorf("expected 5 sub-headings, got %d", len(result.Sections[0].SubHeadings))
	}
	if proCalls.Load() != 2 {
		t.Errorf("expected 2 pro model calls, got %d", proCalls.Load())
	}
}

func TestGenerateFallsBackOnTitleFailure(t *testing.T) {
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "pro-model") {
			fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
				"title":      "見出し",
				"h3Headings": []string{"a", "b", "c", "d", "e"},
			}))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"overloaded"}}`)
	})
	defer server.Close()

	result, err := gen.Generate(context.Background(), "加湿器", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "加湿器について知っておきたいこと" {
		t.Errorf("expected fallback title, got %q", result.Title)
	}
	if !strings.Contains(result.MetaDescription, "加湿器") {
		t.Errorf("expected fallback meta to mention keyword, got %q", result.MetaDescription)
	}
}

func TestGenerateTrimsExcessSubHeadings(t *testing.T) {
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "pro-model") {
			fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
				"title":      "見出し",
				"h3Headings": []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			}))
			return
		}
		fmt.Fprint(w, jsonTextResponse(t, map[string]string{"title": "t", "metaDescription": "m"}))
	})
	defer server.Close()

	result, err := gen.Generate(context.Background(), "冷蔵庫", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range result.Sections {
		if len(s.SubHeadings) != 6 {
			t.Errorf("section %d: expected 6 sub-headings after trim, got %d", i, len(s.SubHeadings))
		}
	}
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "pro-model") {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
				return
			}
			fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
				"title":      "見出し",
				"h3Headings": []string{"a", "b", "c", "d", "e"},
			}))
			return
		}
		fmt.Fprint(w, jsonTextResponse(t, map[string]string{"title": "t", "metaDescription": "m"}))
	})
	defer server.Close()

	if _, err := gen.Generate(context.Background(), "洗濯機", nil); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
}

func TestGenerateDiscardsFieldsFromRejectedAttempts(t *testing.T) {
	// The first response per section decodes its title before failing on
	// a malformed heading list; the retried response omits the title.
	var attempts sync.Map
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "pro-model") {
			fmt.Fprint(w, jsonTextResponse(t, map[string]string{"title": "t", "metaDescription": "m"}))
			return
		}
		body, _ := io.ReadAll(r.Body)
		n, _ := attempts.LoadOrStore(string(body), new(atomic.Int32))
		if n.(*atomic.Int32).Add(1) == 1 {
			fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
				"title":      "却下された見出し",
				"h3Headings": "リストではない",
			}))
			return
		}
		fmt.Fprint(w, jsonTextResponse(t, map[string]interface{}{
			"h3Headings": []string{"a", "b", "c", "d", "e"},
		}))
	})
	defer server.Close()

	result, err := gen.Generate(context.Background(), "空気清浄機", nil)
	if err == nil {
		for _, s := range result.Sections {
			if strings.Contains(s.Title, "却下された見出し") {
				t.Fatalf("title from a rejected attempt leaked into the outline: %q", s.Title)
			}
		}
		t.Fatal("expected failure when the usable response carries no title")
	}
	if !strings.Contains(err.Error(), "empty section title") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerateFailsOnAuthError(t *testing.T) {
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	})
	defer server.Close()

	if _, err := gen.Generate(context.Background(), "電子レンジ", nil); err == nil {
		t.Fatal("expected auth error to fail generation")
	}
}

func TestGenerateRejectsEmptyKeyword(t *testing.T) {
	gen, server := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {})
	defer server.Close()

	if _, err := gen.Generate(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected error for empty keyword")
	}
}

func TestDefaultClassifier(t *testing.T) {
	cases := []struct {
		question string
		want     bool
	}{
		{"エアコンは壊れることはありますか？", true},
		{"つけっぱなしで大丈夫ですか？", true},
		{"故障の原因は何ですか？", true},
		{"掃除の頻度はどれくらいですか？", false},
		{"おすすめのメーカーは？", false},
	}
	for _, tc := range cases {
		if got := DefaultClassifier(tc.question); got != tc.want {
			t.Errorf("DefaultClassifier(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}

func TestStripHeadingLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"【H2-1】エアコンの掃除方法", "エアコンの掃除方法"},
		{"[H2-2] 故障したときの対処法", "故障したときの対処法"},
		{"1. 掃除の手順", "掃除の手順"},
		{"（2）業者の選び方", "業者の選び方"},
		{"そのままの見出し", "そのままの見出し"},
	}
	for _, tc := range cases {
		if got := StripHeadingLabel(tc.in); got != tc.want {
			t.Errorf("StripHeadingLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
