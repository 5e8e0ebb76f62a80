package fetchers

import (
	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/enricher"
	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
)

// NewSet assembles the fetcher capability set from the configured
// integrations. Integrations without credentials are simply left out:
// the enricher treats an absent fetcher as a configuration fact and skips
// those reference kinds.
func NewSet(cfg *config.Config) enricher.FetcherSet {
	set := enricher.FetcherSet{}

	gh := NewGitHubFetcher(cfg)
	set[models.KindRepoURL] = gh
	set[models.KindIssue] = gh
	set[models.KindPullRequest] = gh
	set[models.KindCommitHash] = gh

	if cfg.AtlassianAPIToken != "" {
		jf, err := NewJiraFetcher(cfg)
		if err != nil {
			log.Warnf("Jira fetcher disabled: %v", err)
		} else {
			set[models.KindTicket] = jf
		}

		cf, err := NewConfluenceFetcher(cfg)
		if err != nil {
			log.Warnf("Confluence fetcher disabled: %v", err)
		} else {
			set[models.KindDocPage] = cf
		}
	} else {
		log.Infof("No Atlassian credentials configured, ticket and doc_page references will be skipped")
	}

	return set
}
