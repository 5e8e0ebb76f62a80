package pipeline

import (
	"context"
	"fmt"

	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/enricher"
	"github.com/tuannvm/context-a2a/internal/extractor"
	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
	"github.com/tuannvm/context-a2a/internal/prompt"
	"github.com/tuannvm/context-a2a/internal/tasks"
)

// Pipeline composes the four stages (extract, enrich, assemble, plan/
// execute) behind one facade. Callers may invoke any prefix of the
// pipeline or run the whole thing through Process. A Pipeline is safe for
// concurrent use; each run owns its own intermediate objects.
type Pipeline struct {
	extractor      *extractor.Extractor
	enricher       *enricher.Enricher
	registry       *prompt.Registry
	assembler      *prompt.Assembler
	planner        *tasks.Planner
	executor       *tasks.Executor
	concurrentExec bool
}

// New creates a Pipeline wired to the given fetcher set and generation
// backend. Either capability may be nil/empty: enrichment then resolves
// nothing and execution marks tasks failed with backend_unavailable.
func New(cfg *config.Config, fetchers enricher.FetcherSet, backend tasks.Backend) *Pipeline {
	registry := prompt.NewRegistry()
	return &Pipeline{
		extractor:      extractor.New(),
		enricher:       enricher.New(fetchers, cfg.MaxConcurrentFetch, cfg.FetchTimeout),
		registry:       registry,
		assembler:      prompt.NewAssembler(registry, cfg.PromptMaxChars),
		planner:        tasks.NewPlanner(),
		executor:       tasks.NewExecutor(backend),
		concurrentExec: cfg.ConcurrentExecution,
	}
}

// Parse extracts references from free-form text.
func (p *Pipeline) Parse(text string) models.ParsedMessage {
	return p.extractor.Extract(text)
}

// Enrich resolves a parsed message's references through the fetcher set.
func (p *Pipeline) Enrich(ctx context.Context, parsed models.ParsedMessage) *models.EnrichedContext {
	return p.enricher.Enrich(ctx, parsed)
}

// BuildPrompt renders the enriched context with the named template. An
// empty name selects the default template.
func (p *Pipeline) BuildPrompt(enriched *models.EnrichedContext, templateName string) (models.FormattedPrompt, error) {
	if templateName == "" {
		templateName = "default"
	}
	return p.assembler.Build(enriched, templateName, nil)
}

// RegisterTemplate adds a custom template, shadowing any built-in of the
// same name.
func (p *Pipeline) RegisterTemplate(name, system, user string) {
	p.registry.Register(name, system, user)
}

// PlanTasks derives the task batch for an enriched context and intent.
func (p *Pipeline) PlanTasks(enriched *models.EnrichedContext, intent string) []models.AgentTask {
	return p.planner.Plan(enriched, intent)
}

// Execute advances a single task and returns its final snapshot.
func (p *Pipeline) Execute(ctx context.Context, task models.AgentTask) models.AgentTask {
	return p.executor.Execute(ctx, task)
}

// ProcessRequest is the input to the composed Process entry point.
type ProcessRequest struct {
	Text         string
	TemplateName string // defaults to "default"
	Intent       string
	ExecuteTasks bool
}

// ProcessResult carries every stage's output for one pipeline run.
type ProcessResult struct {
	Parsed   models.ParsedMessage
	Enriched *models.EnrichedContext
	Prompt   models.FormattedPrompt
	Tasks    []models.AgentTask
}

// Process runs the full pipeline: parse, enrich, assemble, plan and, when
// requested, execute. With ExecuteTasks false the returned tasks are still
// pending. The only hard failure is a structural caller error such as an
// unknown template name; fetch and task failures are recorded on the
// result object instead.
func (p *Pipeline) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	parsed := p.Parse(req.Text)
	log.Infof("Parsed message: %d references, context strength %.2f", len(parsed.References), parsed.ContextStrength)

	enriched := p.Enrich(ctx, parsed)
	log.Infof("Enrichment resolved %d payloads, %d errors", len(enriched.Payloads), len(enriched.FetchErrors))

	formatted, err := p.BuildPrompt(enriched, req.TemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	plan := p.PlanTasks(enriched, req.Intent)
	if req.ExecuteTasks {
		plan = p.executor.ExecuteAll(ctx, plan, p.concurrentExec)
	}

	return &ProcessResult{
		Parsed:   parsed,
		Enriched: enriched,
		Prompt:   formatted,
		Tasks:    plan,
	}, nil
}
