package core

import (
	"strings"
	"time"
)

// KeywordTokens splits a keyword into its whitespace-delimited component
// words. Both ASCII and full-width (ideographic) spaces are delimiters.
func KeywordTokens(keyword string) []string {
	fields := strings.FieldsFunc(keyword, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '　'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ResearchData holds search-derived context gathered before a run starts.
// It is read-only input to prompt construction.
type ResearchData struct {
	PAAQuestions    []string       `json:"paa_questions"`    // "People also ask" style questions
	RelatedSearches []string       `json:"related_searches"` // Related search phrases
	Suggestions     []string       `json:"suggestions"`      // Autocomplete suggestions
	TopResults      []SearchResult `json:"top_results"`      // Ranked results reused as the link allow-list
}

// SearchResult is one ranked entry from the search collaborator.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OutlineSection is one top-level heading and its sub-headings.
type OutlineSection struct {
	Title       string   `json:"title"`
	SubHeadings []string `json:"sub_headings"`
}

// Outline is the two-level heading structure scaffolding an article.
// Exactly two top-level sections carrying 5-6 sub-headings each in the
// current design; the cardinality is enforced by the outline stage.
type Outline struct {
	Title           string           `json:"title"`
	MetaDescription string           `json:"meta_description"`
	Sections        []OutlineSection `json:"sections"`
}

// SubSection is one generated sub-heading with its body content.
type SubSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedSection is the full generated content for one outline section.
type GeneratedSection struct {
	Title       string       `json:"title"`
	Intro       string       `json:"intro"`
	SubSections []SubSection `json:"sub_sections"`
}

// CharCount returns the number of runes in the section's content with
// HTML tags stripped, used for the run's aggregate character count.
func (s GeneratedSection) CharCount() int {
	n := countVisibleRunes(s.Intro)
	for _, sub := range s.SubSections {
		n += countVisibleRunes(sub.Content)
	}
	return n
}

func countVisibleRunes(html string) int {
	var n int
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			n++
		}
	}
	return n
}

// GeneratedImage is one raw image returned by the image model.
type GeneratedImage struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	AltText  string `json:"alt_text"`
}

// OptimizedImage is one compressed rendition of a generated image.
type OptimizedImage struct {
	Data  []byte `json:"-"`
	Width int    `json:"width"`
	Size  int    `json:"size"`
}

// OptimizedImagePair holds the desktop and mobile renditions of one image.
type OptimizedImagePair struct {
	PC     OptimizedImage `json:"pc"`
	Mobile OptimizedImage `json:"mobile"`
}

// ArticleImages collects every optimized image for one run, keyed for the
// HTML assembly step. SectionPairs is indexed by outline section and may
// contain nils for sections the image policy skips.
type ArticleImages struct {
	Eyecatch     *OptimizedImagePair
	SectionPairs []*OptimizedImagePair
}

// HTMLProduct is a candidate product extracted from a saved marketplace
// page; the minimum usable record is an identifier.
type HTMLProduct struct {
	ASIN     string `json:"asin"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Price    string `json:"price,omitempty"`
}

// ProductInfo is a fully resolved product ready for insertion.
type ProductInfo struct {
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	AmazonURL   string `json:"amazon_url"`
	RakutenURL  string `json:"rakuten_url"`
	Description string `json:"description,omitempty"`
	ASIN        string `json:"asin,omitempty"`
	Price       string `json:"price,omitempty"`
}

// ProductAssignment places one product at a (section, sub-heading) slot.
type ProductAssignment struct {
	SectionIndex    int         `json:"section_index"`
	SubHeadingIndex int         `json:"sub_heading_index"`
	Product         ProductInfo `json:"product"`
}

// Stage names the pipeline phase an error or progress event belongs to.
type Stage string

const (
	StageResearch  Stage = "research"
	StageOutline   Stage = "outline"
	StageSections  Stage = "sections"
	StageImages    Stage = "images"
	StageAffiliate Stage = "affiliate"
	StageAssembly  Stage = "assembly"
	StagePublish   Stage = "publish"
)

// State is the orchestrator's position in the run lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateResearching      State = "researching"
	StateBuildingOutline  State = "building_outline"
	StateWritingSections  State = "writing_sections"
	StateGeneratingImages State = "generating_images"
	StateLinkingProducts  State = "linking_products"
	StateAssembling       State = "assembling"
	StatePublished        State = "published"
	StateFailed           State = "failed"
)

// StageError records one stage-level failure without a stack trace.
// Index is the affected item (section or image index) or -1.
type StageError struct {
	Stage   Stage  `json:"stage"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (e StageError) Error() string {
	return string(e.Stage) + ": " + e.Message
}

// PipelineResult is the terminal artifact of one generation run.
type PipelineResult struct {
	RunID          string             `json:"run_id"`
	Keyword        string             `json:"keyword"`
	State          State              `json:"state"`
	Outline        *Outline           `json:"outline,omitempty"`
	Sections       []GeneratedSection `json:"sections,omitempty"`
	Assignments    []ProductAssignment `json:"assignments,omitempty"`
	HTML           string             `json:"-"`
	Slug           string             `json:"slug,omitempty"`
	PublishedURL   string             `json:"published_url,omitempty"`
	TotalCharCount int                `json:"total_char_count"`
	Errors         []StageError       `json:"errors,omitempty"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
}

// Degraded reports whether the run completed with recorded stage errors.
func (r *PipelineResult) Degraded() bool {
	return r.State == StatePublished && len(r.Errors) > 0
}
