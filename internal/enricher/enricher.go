package enricher

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
)

// Fetcher resolves one reference into the external system's payload. A
// failure should be reported as a *models.FetchError so the enricher can
// record the failure category; any other error is treated as unavailable.
type Fetcher interface {
	Fetch(ctx context.Context, ref models.Reference) (*models.Payload, error)
}

// FetchFunc adapts a plain function to the Fetcher interface.
type FetchFunc func(ctx context.Context, ref models.Reference) (*models.Payload, error)

func (f FetchFunc) Fetch(ctx context.Context, ref models.Reference) (*models.Payload, error) {
	return f(ctx, ref)
}

// FetcherSet maps each reference kind to the fetcher that can resolve it.
// Kinds without an entry are skipped during enrichment: a missing fetcher
// is a configuration fact, not an error.
type FetcherSet map[models.ReferenceKind]Fetcher

const (
	defaultMaxConcurrent = 4
	defaultFetchTimeout  = 15 * time.Second
)

// Enricher resolves a ParsedMessage's references through an injected
// fetcher set. Fetches for distinct references run concurrently under a
// bounded fan-out; results for the same normalized value are fetched once
// per pass.
type Enricher struct {
	fetchers      FetcherSet
	maxConcurrent int
	fetchTimeout  time.Duration
}

// New creates a new Enricher. maxConcurrent bounds the fetch fan-out and
// fetchTimeout is the per-fetch deadline; zero values select the defaults.
func New(fetchers FetcherSet, maxConcurrent int, fetchTimeout time.Duration) *Enricher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Enricher{
		fetchers:      fetchers,
		maxConcurrent: maxConcurrent,
		fetchTimeout:  fetchTimeout,
	}
}

// Enrich resolves every reference that has a registered fetcher and merges
// the results into one EnrichedContext. Per-reference failures are recorded
// in FetchErrors and never abort the pass; the caller always gets whatever
// context could be resolved.
func (e *Enricher) Enrich(ctx context.Context, parsed models.ParsedMessage) *models.EnrichedContext {
	enriched := &models.EnrichedContext{
		Message:     parsed,
		Payloads:    make(map[string]*models.Payload),
		FetchErrors: make(map[string]models.FetchError),
	}

	// One fetch per distinct normalized value, in stored reference order.
	seen := make(map[string]bool, len(parsed.References))
	var jobs []models.Reference
	for _, ref := range parsed.References {
		if _, ok := e.fetchers[ref.Kind]; !ok {
			log.Debugf("No fetcher registered for kind %s, skipping %s", ref.Kind, ref.NormalizedValue)
			continue
		}
		if seen[ref.NormalizedValue] {
			continue
		}
		seen[ref.NormalizedValue] = true
		jobs = append(jobs, ref)
	}

	if len(jobs) == 0 {
		return enriched
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for _, ref := range jobs {
		g.Go(func() error {
			fetcher := e.fetchers[ref.Kind]

			fctx, cancel := context.WithTimeout(gctx, e.fetchTimeout)
			payload, err := fetcher.Fetch(fctx, ref)
			cancel()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fe := classifyFetchError(err)
				log.Warnf("Fetch failed for %s (%s): %s", ref.NormalizedValue, ref.Kind, fe.Error())
				enriched.FetchErrors[ref.NormalizedValue] = *fe
				return nil
			}
			enriched.Payloads[ref.NormalizedValue] = payload
			return nil
		})
	}

	// Goroutines always return nil; Wait is just the settle barrier.
	_ = g.Wait()

	return enriched
}

// classifyFetchError maps an arbitrary fetch failure onto the typed fetch
// error categories. Cancellation and deadline expiry surface as errors, not
// crashes, and are never retried here.
func classifyFetchError(err error) *models.FetchError {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.FetchError{Kind: models.FetchTimeout, Detail: err.Error()}
	}
	if errors.Is(err, context.Canceled) {
		return &models.FetchError{Kind: models.FetchUnavailable, Detail: "fetch canceled"}
	}
	return &models.FetchError{Kind: models.FetchUnavailable, Detail: err.Error()}
}
