// Package llm provides a Gemini API client for text, JSON, and image generation.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoblog/internal/logger"
)

// Client handles Gemini API interactions
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Gemini API client
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
	}
}

// SetBaseURL overrides the API endpoint, mainly for tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// Sampling controls the generation parameters for a request.
type Sampling struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

// Request describes a single generateContent call.
type Request struct {
	Model        string
	Prompt       string
	SystemPrompt string
	Sampling     *Sampling
	// UseSearch enables Google Search grounding for this request.
	UseSearch bool
	// WantImage requests an image response alongside or instead of text.
	WantImage bool
}

// Result holds the decoded parts of a generateContent response.
type Result struct {
	Text      string
	ImageData []byte
	ImageMime string
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature        *float32 `json:"temperature,omitempty"`
	TopK               *int32   `json:"topK,omitempty"`
	TopP               *float32 `json:"topP,omitempty"`
	MaxOutputTokens    *int32   `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate calls the Gemini generateContent endpoint and returns the
// decoded text and any inline image data.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Model == "" {
		return nil, &APIError{Kind: KindConfig, Message: "model is required"}
	}

	payload := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
	}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	if req.UseSearch {
		payload.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	if req.Sampling != nil {
		cfg := &generationConfig{}
		if req.Sampling.Temperature > 0 {
			cfg.Temperature = &req.Sampling.Temperature
		}
		if req.Sampling.TopK > 0 {
			cfg.TopK = &req.Sampling.TopK
		}
		if req.Sampling.TopP > 0 {
			cfg.TopP = &req.Sampling.TopP
		}
		if req.Sampling.MaxOutputTokens > 0 {
			cfg.MaxOutputTokens = &req.Sampling.MaxOutputTokens
		}
		payload.GenerationConfig = cfg
	}
	if req.WantImage {
		if payload.GenerationConfig == nil {
			payload.GenerationConfig = &generationConfig{}
		}
		payload.GenerationConfig.ResponseModalities = []string{"TEXT", "IMAGE"}
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, req.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call gemini API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		var errResp generateResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			message = errResp.Error.Message
		}
		return nil, &APIError{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, &APIError{Kind: KindParse, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if len(genResp.Candidates) == 0 {
		return nil, &APIError{Kind: KindParse, Message: "response contained no candidates"}
	}

	result := &Result{}
	for _, p := range genResp.Candidates[0].Content.Parts {
		if p.Text != "" {
			result.Text += p.Text
		}
		if p.InlineData != nil && result.ImageData == nil {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, &APIError{Kind: KindParse, Message: fmt.Sprintf("failed to decode inline image: %v", err)}
			}
			result.ImageData = data
			result.ImageMime = p.InlineData.MimeType
		}
	}

	logger.Debug("Gemini call completed",
		"model", req.Model,
		"duration", time.Since(start).String(),
		"text_len", len(result.Text),
		"has_image", result.ImageData != nil)

	return result, nil
}

// GenerateText is a convenience wrapper that returns only the text part.
func (c *Client) GenerateText(ctx context.Context, req Request) (string, error) {
	result, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", &APIError{Kind: KindParse, Message: "response contained no text"}
	}
	return result.Text, nil
}

// GenerateJSON calls the model and unmarshals its response into out.
// Markdown code fences around the JSON are stripped before decoding.
func (c *Client) GenerateJSON(ctx context.Context, req Request, out interface{}) error {
	text, err := c.GenerateText(ctx, req)
	if err != nil {
		return err
	}
	cleaned := StripCodeFences(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &APIError{Kind: KindParse, Message: fmt.Sprintf("failed to parse JSON response: %v", err)}
	}
	return nil
}

// StripCodeFences removes a surrounding ```json ... ``` (or plain ```) fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
