package tasks

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tuannvm/context-a2a/internal/models"
)

// Planner derives an ordered batch of AgentTasks from an enriched context
// and a stated intent. Planning is pure: it never talks to a backend.
type Planner struct{}

// NewPlanner creates a new Planner
func NewPlanner() *Planner {
	return &Planner{}
}

// Intent vocabulary. Matching is case-insensitive substring matching over
// the intent text; the first rule family whose signals are present wins a
// task, and several families may fire for one plan.
var (
	diagnosticWords = []string{"fix", "bug", "debug", "diagnose", "crash", "error", "broken", "fail", "regression"}
	docWords        = []string{"document", "docs", "doc", "readme", "explain", "describe"}
	generateWords   = []string{"implement", "create", "generate", "build", "add feature", "scaffold"}
	reviewWords     = []string{"review", "feedback", "approve"}
)

// Plan proposes tasks based on the intent text and the kinds of references
// that resolved. With no strong signal it falls back to a single generic
// code_analysis task. Every task starts pending with a fresh id.
func (p *Planner) Plan(enriched *models.EnrichedContext, intent string) []models.AgentTask {
	kinds := referenceKinds(enriched)
	lowered := strings.ToLower(intent)

	var plan []models.AgentTask

	if (kinds[models.KindIssue] || kinds[models.KindTicket]) && matchesAny(lowered, diagnosticWords) {
		plan = append(plan, p.newTask(models.TaskBugDiagnosis, enriched, intent))
	}
	if kinds[models.KindDocPage] && matchesAny(lowered, docWords) {
		plan = append(plan, p.newTask(models.TaskDocumentation, enriched, intent))
	}
	if kinds[models.KindPullRequest] || (matchesAny(lowered, reviewWords) && (kinds[models.KindRepoURL] || kinds[models.KindCommitHash])) {
		plan = append(plan, p.newTask(models.TaskCodeReview, enriched, intent))
	}
	if matchesAny(lowered, generateWords) {
		plan = append(plan, p.newTask(models.TaskCodeGeneration, enriched, intent))
	}

	if len(plan) == 0 {
		plan = append(plan, p.newTask(models.TaskCodeAnalysis, enriched, intent))
	}

	return plan
}

// newTask builds one pending task with inputs projected from the enriched
// context: the original message, the intent, the reference list and a short
// digest of the resolved payloads.
func (p *Planner) newTask(taskType models.TaskType, enriched *models.EnrichedContext, intent string) models.AgentTask {
	inputs := map[string]string{
		"message": enriched.Message.Text,
		"intent":  intent,
	}

	var refs []string
	var digest []string
	for _, ref := range enriched.Message.References {
		refs = append(refs, string(ref.Kind)+":"+ref.NormalizedValue)
		if payload, ok := enriched.Payloads[ref.NormalizedValue]; ok && payload.Title != "" {
			digest = append(digest, ref.NormalizedValue+": "+payload.Title)
		}
	}
	if len(refs) > 0 {
		inputs["references"] = strings.Join(refs, ", ")
	}
	if len(digest) > 0 {
		inputs["context"] = strings.Join(digest, "\n")
	}

	return models.AgentTask{
		ID:     uuid.NewString(),
		Type:   taskType,
		Inputs: inputs,
		Status: models.StatusPending,
	}
}

func referenceKinds(enriched *models.EnrichedContext) map[models.ReferenceKind]bool {
	kinds := make(map[models.ReferenceKind]bool, len(enriched.Message.References))
	for _, ref := range enriched.Message.References {
		kinds[ref.Kind] = true
	}
	return kinds
}

// matchesAny matches multiword phrases by substring and single words by
// token prefix, so "debugging" matches "debug" but "prefix" does not
// match "fix".
func matchesAny(text string, words []string) bool {
	fields := strings.Fields(text)
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(text, w) {
				return true
			}
			continue
		}
		for _, f := range fields {
			if strings.HasPrefix(strings.Trim(f, ".,!?:;\"'"), w) {
				return true
			}
		}
	}
	return false
}
