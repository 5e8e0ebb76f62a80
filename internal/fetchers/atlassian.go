package fetchers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	confluence "github.com/ctreminiom/go-atlassian/v2/confluence"
	jira "github.com/ctreminiom/go-atlassian/v2/jira/v2"

	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/models"
)

// JiraFetcher resolves ticket references (PROJ-123) against a Jira site
// through go-atlassian.
type JiraFetcher struct {
	client  *jira.Client
	baseURL string
}

// NewJiraFetcher creates a Jira ticket fetcher from the Atlassian settings
func NewJiraFetcher(cfg *config.Config) (*JiraFetcher, error) {
	client, err := jira.New(nil, cfg.AtlassianBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}
	client.Auth.SetBasicAuth(cfg.AtlassianUsername, cfg.AtlassianAPIToken)

	return &JiraFetcher{client: client, baseURL: strings.TrimRight(cfg.AtlassianBaseURL, "/")}, nil
}

// Fetch resolves one ticket reference into its summary payload.
func (f *JiraFetcher) Fetch(ctx context.Context, ref models.Reference) (*models.Payload, error) {
	issue, response, err := f.client.Issue.Get(ctx, ref.NormalizedValue, nil, []string{"issuelinks"})
	if err != nil {
		code := 0
		if response != nil {
			code = response.Code
		}
		return nil, statusFetchError(code, err)
	}

	payload := &models.Payload{
		Source: "jira",
		Title:  ref.NormalizedValue,
		URL:    f.baseURL + "/browse/" + ref.NormalizedValue,
		Fields: map[string]string{},
	}
	if issue.Fields != nil {
		payload.Title = issue.Fields.Summary
		payload.Body = issue.Fields.Description
		if issue.Fields.Status != nil {
			payload.Fields["status"] = issue.Fields.Status.Name
		}
		if issue.Fields.Assignee != nil {
			payload.Fields["assignee"] = issue.Fields.Assignee.DisplayName
		}
		if issue.Fields.Priority != nil {
			payload.Fields["priority"] = issue.Fields.Priority.Name
		}
	}
	return payload, nil
}

// confluencePageIDRe pulls the numeric page id out of Confluence URL shapes
// like .../wiki/spaces/ENG/pages/4242/Title or ?pageId=4242.
var confluencePageIDRe = regexp.MustCompile(`(?:/pages/|pageId=)(\d+)`)

// ConfluenceFetcher resolves documentation-page references against a
// Confluence site through go-atlassian.
type ConfluenceFetcher struct {
	client *confluence.Client
}

// NewConfluenceFetcher creates a Confluence page fetcher from the Atlassian settings
func NewConfluenceFetcher(cfg *config.Config) (*ConfluenceFetcher, error) {
	client, err := confluence.New(nil, cfg.AtlassianBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Confluence client: %w", err)
	}
	client.Auth.SetBasicAuth(cfg.AtlassianUsername, cfg.AtlassianAPIToken)

	return &ConfluenceFetcher{client: client}, nil
}

// Fetch resolves one doc-page reference. Pages are addressed by the numeric
// id embedded in the URL; a URL without one cannot be resolved.
func (f *ConfluenceFetcher) Fetch(ctx context.Context, ref models.Reference) (*models.Payload, error) {
	m := confluencePageIDRe.FindStringSubmatch(ref.NormalizedValue)
	if m == nil {
		return nil, &models.FetchError{Kind: models.FetchNotFound, Detail: "no page id in URL"}
	}
	pageID := m[1]

	content, response, err := f.client.Content.Get(ctx, pageID, []string{"body.storage", "version"}, 0)
	if err != nil {
		code := 0
		if response != nil {
			code = response.Code
		}
		return nil, statusFetchError(code, err)
	}

	payload := &models.Payload{
		Source: "confluence",
		Title:  content.Title,
		URL:    ref.NormalizedValue,
		Fields: map[string]string{"pageId": pageID},
	}
	if content.Body != nil && content.Body.Storage != nil {
		payload.Body = content.Body.Storage.Value
	}
	if content.Version != nil {
		payload.Fields["version"] = fmt.Sprintf("%d", content.Version.Number)
	}
	return payload, nil
}

// statusFetchError maps an HTTP status code onto the typed fetch error
// categories. Deadline and cancellation classification is left to the
// enricher, which inspects the wrapped error.
func statusFetchError(code int, err error) error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	switch {
	case code == 404:
		return &models.FetchError{Kind: models.FetchNotFound, Detail: detail}
	case code == 401 || code == 403:
		return &models.FetchError{Kind: models.FetchUnauthorized, Detail: detail}
	case code == 408 || code == 504:
		return &models.FetchError{Kind: models.FetchTimeout, Detail: detail}
	case code >= 400:
		return &models.FetchError{Kind: models.FetchUnavailable, Detail: detail}
	}
	// No usable status: let the enricher classify timeouts and cancellation.
	return err
}
