// Package prompt builds the Japanese prompts sent to the Gemini models.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"autoblog/internal/core"
)

// quoteJoin renders tokens as 「a」と「b」 for emphasis inside a prompt.
func quoteJoin(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = "「" + t + "」"
	}
	return strings.Join(quoted, "と")
}

// OutlineSystem is the system prompt for a single H2 block design call.
func OutlineSystem(tokens []string, anxiety bool) string {
	goal := "読者の疑問に具体的で実用的な答えを提供する。"
	if anxiety {
		goal = "心配を抱える読者を安心させる。大丈夫かどうかの判断基準と、安心できる条件を明示する。"
	}
	return fmt.Sprintf(`読者の「自分のケースはどうなの？」という疑問に答える記事のH2セクションを1つ設計します。
%s

【絶対ルール】
★ H2見出しには%sの全ての語を必ず含める
★ H3見出しには「%s」の構成語を一切使用禁止
- H3見出しは5〜6個のみ
- H3見出しは必ず提供されたPAA（よくある質問）から作成すること
- 関連性の高いPAAをグループ化し、1つのH3見出しで複数の疑問を扱う

必ず以下のJSON形式のみを出力してください：
{
  "title": "H2見出し",
  "h3Headings": ["見出し1", "見出し2", "..."]
}`, goal, quoteJoin(tokens), strings.Join(tokens, "、"))
}

// OutlineUser is the user prompt for a single H2 block design call.
func OutlineUser(keyword string, tokens []string, research *core.ResearchData, focus string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "メインキーワード: %s\n", keyword)
	fmt.Fprintf(&b, "構成語（H3に使用禁止）: %s\n", strings.Join(tokens, "、"))
	fmt.Fprintf(&b, "このセクションの焦点: %s\n", focus)
	if research != nil {
		if len(research.PAAQuestions) > 0 {
			b.WriteString("\n【PAA（よくある質問）】\n")
			for _, q := range research.PAAQuestions {
				fmt.Fprintf(&b, "- %s\n", q)
			}
		}
		if len(research.RelatedSearches) > 0 {
			b.WriteString("\n【関連検索】\n")
			for _, q := range research.RelatedSearches {
				fmt.Fprintf(&b, "- %s\n", q)
			}
		}
	}
	b.WriteString("\nJSON形式のみで出力してください。")
	return b.String()
}

// TitleMeta asks the flash model for an article title and meta description.
func TitleMeta(keyword string, firstSection core.OutlineSection) string {
	return fmt.Sprintf(`以下の構成の記事のタイトルとメタディスクリプションを作成してください。

メインキーワード: %s
H2-1見出し: %s
H2-1のH3見出し: %s

以下のJSON形式で出力してください：
{
  "title": "読者の疑問を解決するタイトル（メインKW含む、30-45文字）",
  "metaDescription": "記事の要約（100-120文字）"
}`, keyword, firstSection.Title, strings.Join(firstSection.SubHeadings, "、"))
}

// SectionSystem is the system prompt for writing one H2 section.
func SectionSystem(now time.Time) string {
	return fmt.Sprintf(`あなたは日本の一流Webメディアで15年の経験を持つ専門ライターです。
本日は%sです。記事中の時期・価格・制度の記述はこの日付を基準にしてください。

【執筆ルール】
- です・ます調で書く
- 各H3は結論ファースト構成（1文目で結論、2文目で理由、3文目以降で詳細）
- 各H3は800字以上
- 1文は短く20〜25字を目安にする
- 装飾要素を使う: 表 <table class="info-table">、吹き出し <div class="bubble-left">/<div class="bubble-right">、リスト <ul class="check-list">、ボックス <div class="info-box">/<div class="warning-box">/<div class="ok-box">
- 見出しの追加・変更・削除は禁止（指定されたH2/H3のみ使用）

【出力形式】
## H2見出し
導入文

### H3見出し1
本文

### H3見出し2
本文`, now.Format("2006年1月2日"))
}

// SectionUser is the user prompt for writing one H2 section.
func SectionUser(keyword string, section core.OutlineSection, sources []core.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "メインキーワード: %s\n", keyword)
	fmt.Fprintf(&b, "H2見出し: %s\n", section.Title)
	b.WriteString("H3見出し一覧:\n")
	for _, h := range section.SubHeadings {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	if len(sources) > 0 {
		b.WriteString("\n【参照可能URL - 検索で確認済みのサイト】\n以下のURLは実在が確認されています。記事内で適切に引用してください：\n")
		for _, s := range sources {
			fmt.Fprintf(&b, "- [%s](%s) - %s\n", s.Title, s.URL, s.Description)
		}
		b.WriteString("\n★ 上記リストにあるURLのみ使用可能（コピペ厳守）\n★ リストにないURLは絶対に書かない\n★ URLを自分で作らない・編集しない・短縮しない\n")
	} else {
		b.WriteString("\n外部リンクは使用しないでください。\n")
	}
	b.WriteString("\n指定されたH2/H3見出しを一字一句そのまま使って執筆してください。")
	return b.String()
}

// Image builds the generation prompt for an article image.
func Image(text string) string {
	return fmt.Sprintf(`【高品質な日本語ブログ記事用アイキャッチ画像】

表示テキスト: 「%s」

要件:
- アスペクト比: 16:9
- スタイル: モダンでプロフェッショナルなブログ記事のアイキャッチ
- 画像中央に「%s」というテキストを美しいタイポグラフィで大きく配置
- 背景: テーマに関連した写真やイラスト（ぼかし効果可）`, text, text)
}

// Slug asks the flash model to translate a Japanese keyword into a URL slug.
func Slug(keyword string) string {
	return fmt.Sprintf(`以下の日本語キーワードを英語に翻訳してください。
翻訳結果は、URLスラッグとして使用できるように、簡潔で分かりやすい英単語またはフレーズにしてください。

キーワード: %s

出力形式: 英語のスラッグのみを出力してください（説明や追加のテキストは不要）。`, keyword)
}
