package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/models"
)

// GitHubFetcher resolves repository, issue, pull-request and commit
// references against the GitHub REST API.
type GitHubFetcher struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGitHubFetcher creates a new GitHub fetcher
func NewGitHubFetcher(cfg *config.Config) *GitHubFetcher {
	return &GitHubFetcher{
		baseURL: strings.TrimRight(cfg.GitHubBaseURL, "/"),
		token:   cfg.GitHubToken,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Fetch resolves one GitHub reference. Issue and PR references require
// owner/repo context in their metadata (a bare "#123" detected without a
// repository nearby cannot be resolved).
func (f *GitHubFetcher) Fetch(ctx context.Context, ref models.Reference) (*models.Payload, error) {
	path, err := f.apiPath(ref)
	if err != nil {
		return nil, err
	}

	raw, err := f.get(ctx, path)
	if err != nil {
		return nil, err
	}

	return payloadFromGitHub(ref, raw), nil
}

// apiPath maps a reference onto its REST resource path.
func (f *GitHubFetcher) apiPath(ref models.Reference) (string, error) {
	owner := ref.Metadata["owner"]
	repo := ref.Metadata["repo"]

	switch ref.Kind {
	case models.KindRepoURL:
		if owner == "" || repo == "" {
			parts := strings.SplitN(ref.NormalizedValue, "/", 2)
			if len(parts) != 2 {
				return "", &models.FetchError{Kind: models.FetchNotFound, Detail: "malformed repository reference"}
			}
			owner, repo = parts[0], parts[1]
		}
		return fmt.Sprintf("/repos/%s/%s", owner, repo), nil
	case models.KindIssue:
		if owner == "" || repo == "" {
			return "", &models.FetchError{Kind: models.FetchNotFound, Detail: "issue reference has no repository context"}
		}
		return fmt.Sprintf("/repos/%s/%s/issues/%s", owner, repo, ref.Metadata["number"]), nil
	case models.KindPullRequest:
		if owner == "" || repo == "" {
			return "", &models.FetchError{Kind: models.FetchNotFound, Detail: "pull request reference has no repository context"}
		}
		return fmt.Sprintf("/repos/%s/%s/pulls/%s", owner, repo, ref.Metadata["number"]), nil
	case models.KindCommitHash:
		if owner == "" || repo == "" {
			return "", &models.FetchError{Kind: models.FetchNotFound, Detail: "commit reference has no repository context"}
		}
		return fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, ref.NormalizedValue), nil
	default:
		return "", &models.FetchError{Kind: models.FetchNotFound, Detail: fmt.Sprintf("unsupported kind %s", ref.Kind)}
	}
}

// get performs one authenticated API call and decodes the JSON body.
func (f *GitHubFetcher) get(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusFetchError(resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return raw, nil
}

// payloadFromGitHub builds the payload from the fields the downstream
// stages care about (title/summary sized, not the full API object).
func payloadFromGitHub(ref models.Reference, raw map[string]interface{}) *models.Payload {
	payload := &models.Payload{
		Source: "github",
		URL:    rawString(raw["html_url"]),
		Fields: map[string]string{},
	}

	switch ref.Kind {
	case models.KindRepoURL:
		payload.Title = rawString(raw["full_name"])
		payload.Body = rawString(raw["description"])
		payload.Fields["default_branch"] = rawString(raw["default_branch"])
		payload.Fields["language"] = rawString(raw["language"])
	case models.KindIssue, models.KindPullRequest:
		payload.Title = rawString(raw["title"])
		payload.Body = rawString(raw["body"])
		payload.Fields["state"] = rawString(raw["state"])
		if user, ok := raw["user"].(map[string]interface{}); ok {
			payload.Fields["author"] = rawString(user["login"])
		}
	case models.KindCommitHash:
		if commit, ok := raw["commit"].(map[string]interface{}); ok {
			payload.Title = firstLine(rawString(commit["message"]))
			payload.Body = rawString(commit["message"])
		}
		payload.Fields["sha"] = rawString(raw["sha"])
	}

	return payload
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// rawString safely converts an interface{} to a string
func rawString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
