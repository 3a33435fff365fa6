// Package publish deploys a rendered article to a GitHub Pages repository
// in a single commit via the git data API.
package publish

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

const userAgent = "autoblog-builder"

// File is one entry of a batch commit. Binary content is sent as a
// base64 blob, text as utf-8.
type File struct {
	Path    string
	Content []byte
	Binary  bool
}

// Options identifies the target repository and branch.
type Options struct {
	Owner  string
	Repo   string
	Branch string
}

// Client talks to the GitHub REST API with a personal access token.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a GitHub API client
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.github.com",
	}
}

// SetBaseURL overrides the API endpoint, mainly for tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// Publish commits all files to the branch in one commit and returns the
// commit's html_url. The sequence is ref lookup, base tree lookup, one
// blob per file, tree create, commit create, ref update.
func (c *Client) Publish(ctx context.Context, opts Options, files []File, message string) (string, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return "", fmt.Errorf("publish target requires owner and repo")
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files to publish")
	}
	branch := opts.Branch
	if branch == "" {
		branch = "main"
	}
	if message == "" {
		message = fmt.Sprintf("Update %d files", len(files))
	}

	repoPath := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, opts.Owner, opts.Repo)

	var ref struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if err := c.do(ctx, http.MethodGet, repoPath+"/git/ref/heads/"+branch, nil, &ref); err != nil {
		return "", fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	headSHA := ref.Object.SHA

	var head struct {
		Tree struct {
			SHA string `json:"sha"`
		} `json:"tree"`
	}
	if err := c.do(ctx, http.MethodGet, repoPath+"/git/commits/"+headSHA, nil, &head); err != nil {
		return "", fmt.Errorf("failed to read head commit: %w", err)
	}

	entries := make([]treeEntry, 0, len(files))
	for _, f := range files {
		blob := blobRequest{Encoding: "utf-8", Content: string(f.Content)}
		if f.Binary {
			blob = blobRequest{Encoding: "base64", Content: base64.StdEncoding.EncodeToString(f.Content)}
		}
		var created struct {
			SHA string `json:"sha"`
		}
		if err := c.do(ctx, http.MethodPost, repoPath+"/git/blobs", blob, &created); err != nil {
			return "", fmt.Errorf("failed to create blob for %s: %w", f.Path, err)
		}
		entries = append(entries, treeEntry{Path: f.Path, Mode: "100644", Type: "blob", SHA: created.SHA})
	}

	var tree struct {
		SHA string `json:"sha"`
	}
	treeReq := treeRequest{BaseTree: head.Tree.SHA, Tree: entries}
	if err := c.do(ctx, http.MethodPost, repoPath+"/git/trees", treeReq, &tree); err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	var commit struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	}
	commitReq := commitRequest{Message: message, Tree: tree.SHA, Parents: []string{headSHA}}
	if err := c.do(ctx, http.MethodPost, repoPath+"/git/commits", commitReq, &commit); err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	refReq := refUpdateRequest{SHA: commit.SHA}
	if err := c.do(ctx, http.MethodPatch, repoPath+"/git/refs/heads/"+branch, refReq, nil); err != nil {
		return "", fmt.Errorf("failed to update branch %s: %w", branch, err)
	}

	logger.Info("Published to GitHub",
		"repo", opts.Owner+"/"+opts.Repo,
		"branch", branch,
		"files", len(files),
		"commit", commit.SHA)
	return commit.HTMLURL, nil
}

type blobRequest struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type treeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

type treeRequest struct {
	BaseTree string      `json:"base_tree"`
	Tree     []treeEntry `json:"tree"`
}

type commitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type refUpdateRequest struct {
	SHA string `json:"sha"`
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
