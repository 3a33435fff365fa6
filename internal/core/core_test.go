package core

import (
	"testing"
)

func TestKeywordTokens(t *testing.T) {
	cases := []struct {
		keyword string
		want    []string
	}{
		{"エアコン 掃除", []string{"エアコン", "掃除"}},
		{"エアコン　掃除　自分で", []string{"エアコン", "掃除", "自分で"}},
		{"エアコン", []string{"エアコン"}},
		{"  エアコン  掃除  ", []string{"エアコン", "掃除"}},
		{"", nil},
	}

	for _, tc := range cases {
		got := KeywordTokens(tc.keyword)
		if len(got) != len(tc.want) {
			t.Errorf("KeywordTokens(%q) = %v, want %v", tc.keyword, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("KeywordTokens(%q)[%d] = %q, want %q", tc.keyword, i, got[i], tc.want[i])
			}
		}
	}
}

func TestSectionCharCount(t *testing.T) {
	section := GeneratedSection{
		Intro: "導入文です。",
		SubSections: []SubSection{
			{Title: "見出し", Content: `<div class="info-box">本文です。</div>`},
			{Title: "見出し2", Content: "追加の本文。"},
		},
	}

	// Tags are invisible; only the text between them counts.
	want := len([]rune("導入文です。")) + len([]rune("本文です。")) + len([]rune("追加の本文。"))
	if got := section.CharCount(); got != want {
		t.Errorf("CharCount() = %d, want %d", got, want)
	}
}

func TestSectionCharCountEmpty(t *testing.T) {
	var section GeneratedSection
	if got := section.CharCount(); got != 0 {
		t.Errorf("CharCount() = %d, want 0", got)
	}
}

func TestStageErrorMessage(t *testing.T) {
	err := StageError{Stage: StageSections, Index: 1, Message: "generation failed"}
	if err.Error() != "sections: generation failed" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
}

func TestPipelineResultDegraded(t *testing.T) {
	clean := PipelineResult{State: StatePublished}
	if clean.Degraded() {
		t.Error("clean published run must not be degraded")
	}

	degraded := PipelineResult{
		State:  StatePublished,
		Errors: []StageError{{Stage: StageImages, Index: -1, Message: "image model overloaded"}},
	}
	if !degraded.Degraded() {
		t.Error("published run with errors must be degraded")
	}

	failed := PipelineResult{
		State:  StateFailed,
		Errors: []StageError{{Stage: StageOutline, Index: -1, Message: "model unavailable"}},
	}
	if failed.Degraded() {
		t.Error("failed run is failed, not degraded")
	}
}
