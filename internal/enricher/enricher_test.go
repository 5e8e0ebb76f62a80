package enricher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tuannvm/context-a2a/internal/models"
)

func ref(kind models.ReferenceKind, value string) models.Reference {
	return models.Reference{Kind: kind, RawText: value, NormalizedValue: value, Confidence: 0.9}
}

func TestEnrich_FetchesOncePerDistinctValue(t *testing.T) {
	var calls int32
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			atomic.AddInt32(&calls, 1)
			return &models.Payload{Source: "github", Title: "issue " + r.NormalizedValue}, nil
		}),
	}

	// The same issue mentioned three times, plus one distinct sibling.
	parsed := models.ParsedMessage{
		Text: "see #1 and #1 and #1 and #2",
		References: []models.Reference{
			ref(models.KindIssue, "#1"),
			ref(models.KindIssue, "#1"),
			ref(models.KindIssue, "#1"),
			ref(models.KindIssue, "#2"),
		},
	}

	enriched := New(fetchers, 2, time.Second).Enrich(context.Background(), parsed)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected exactly 2 fetch calls, got %d", got)
	}
	if len(enriched.Payloads) != 2 {
		t.Errorf("Expected 2 payloads, got %d", len(enriched.Payloads))
	}
	if len(enriched.FetchErrors) != 0 {
		t.Errorf("Expected no fetch errors, got %v", enriched.FetchErrors)
	}
}

func TestEnrich_AllFailingFetchers(t *testing.T) {
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			return nil, &models.FetchError{Kind: models.FetchUnavailable, Detail: "backend down"}
		}),
		models.KindTicket: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			return nil, &models.FetchError{Kind: models.FetchUnauthorized}
		}),
	}

	parsed := models.ParsedMessage{
		References: []models.Reference{
			ref(models.KindIssue, "#7"),
			ref(models.KindTicket, "PROJ-7"),
		},
	}

	enriched := New(fetchers, 0, 0).Enrich(context.Background(), parsed)

	if len(enriched.Payloads) != 0 {
		t.Errorf("Expected no payloads, got %v", enriched.Payloads)
	}
	if len(enriched.FetchErrors) != 2 {
		t.Fatalf("Expected fetch errors for every reference, got %v", enriched.FetchErrors)
	}
	if enriched.FetchErrors["#7"].Kind != models.FetchUnavailable {
		t.Errorf("Expected unavailable for #7, got %s", enriched.FetchErrors["#7"].Kind)
	}
	if enriched.FetchErrors["PROJ-7"].Kind != models.FetchUnauthorized {
		t.Errorf("Expected unauthorized for PROJ-7, got %s", enriched.FetchErrors["PROJ-7"].Kind)
	}
}

func TestEnrich_NotFoundRecordedAndOmittedFromPayloads(t *testing.T) {
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			if r.NormalizedValue == "#404" {
				return nil, &models.FetchError{Kind: models.FetchNotFound, Detail: "no such issue"}
			}
			return &models.Payload{Source: "github", Title: "found"}, nil
		}),
	}

	parsed := models.ParsedMessage{
		References: []models.Reference{
			ref(models.KindIssue, "#404"),
			ref(models.KindIssue, "#1"),
		},
	}

	enriched := New(fetchers, 1, time.Second).Enrich(context.Background(), parsed)

	if _, ok := enriched.Payloads["#404"]; ok {
		t.Error("Expected no payload for #404")
	}
	if enriched.FetchErrors["#404"].Kind != models.FetchNotFound {
		t.Errorf("Expected not_found for #404, got %v", enriched.FetchErrors["#404"])
	}
	if _, ok := enriched.Payloads["#1"]; !ok {
		t.Error("Expected payload for #1 despite the sibling failure")
	}
}

func TestEnrich_SkipsKindsWithoutFetcher(t *testing.T) {
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			return &models.Payload{Source: "github"}, nil
		}),
	}

	parsed := models.ParsedMessage{
		References: []models.Reference{
			ref(models.KindIssue, "#1"),
			ref(models.KindDocPage, "https://acme.atlassian.net/wiki/x"),
		},
	}

	enriched := New(fetchers, 2, time.Second).Enrich(context.Background(), parsed)

	if len(enriched.Payloads) != 1 {
		t.Errorf("Expected 1 payload, got %d", len(enriched.Payloads))
	}
	// Skipping an unconfigured integration is not an error.
	if len(enriched.FetchErrors) != 0 {
		t.Errorf("Expected no fetch errors, got %v", enriched.FetchErrors)
	}
}

func TestEnrich_TimeoutRecordedAsTimeout(t *testing.T) {
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			select {
			case <-time.After(5 * time.Second):
				return &models.Payload{}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	}

	parsed := models.ParsedMessage{References: []models.Reference{ref(models.KindIssue, "#9")}}

	enriched := New(fetchers, 1, 20*time.Millisecond).Enrich(context.Background(), parsed)

	if enriched.FetchErrors["#9"].Kind != models.FetchTimeout {
		t.Errorf("Expected timeout, got %v", enriched.FetchErrors["#9"])
	}
}

func TestEnrich_CancellationSurfacesAsFetchError(t *testing.T) {
	fetchers := FetcherSet{
		models.KindIssue: FetchFunc(func(ctx context.Context, r models.Reference) (*models.Payload, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parsed := models.ParsedMessage{References: []models.Reference{ref(models.KindIssue, "#3")}}
	enriched := New(fetchers, 1, time.Second).Enrich(ctx, parsed)

	fe, ok := enriched.FetchErrors["#3"]
	if !ok {
		t.Fatal("Expected a fetch error for the canceled fetch")
	}
	if fe.Kind != models.FetchUnavailable {
		t.Errorf("Expected unavailable for canceled fetch, got %s", fe.Kind)
	}
}
