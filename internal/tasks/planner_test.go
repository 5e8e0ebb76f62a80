package tasks

import (
	"testing"

	"github.com/tuannvm/context-a2a/internal/models"
)

func enrichedWith(refs ...models.Reference) *models.EnrichedContext {
	return &models.EnrichedContext{
		Message: models.ParsedMessage{
			Text:       "some message",
			References: refs,
		},
		Payloads:    map[string]*models.Payload{},
		FetchErrors: map[string]models.FetchError{},
	}
}

func taskTypes(plan []models.AgentTask) map[models.TaskType]int {
	types := map[models.TaskType]int{}
	for _, task := range plan {
		types[task.Type]++
	}
	return types
}

func TestPlan_BugDiagnosisFromIssueAndDiagnosticIntent(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith(models.Reference{Kind: models.KindIssue, NormalizedValue: "#123"})

	plan := p.Plan(enriched, "fix the crash reported here")

	types := taskTypes(plan)
	if types[models.TaskBugDiagnosis] == 0 {
		t.Errorf("Expected a bug_diagnosis task, got %v", types)
	}
}

func TestPlan_DocumentationOnlyForDocIntent(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith(models.Reference{Kind: models.KindDocPage, NormalizedValue: "https://acme.atlassian.net/wiki/x"})

	plan := p.Plan(enriched, "write docs")

	types := taskTypes(plan)
	if types[models.TaskDocumentation] == 0 {
		t.Errorf("Expected a documentation task, got %v", types)
	}
	if types[models.TaskBugDiagnosis] != 0 {
		t.Errorf("Expected no bug_diagnosis task, got %v", types)
	}
}

func TestPlan_CodeReviewFromPullRequest(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith(models.Reference{Kind: models.KindPullRequest, NormalizedValue: "acme/widgets#45"})

	plan := p.Plan(enriched, "take a look")

	types := taskTypes(plan)
	if types[models.TaskCodeReview] == 0 {
		t.Errorf("Expected a code_review task, got %v", types)
	}
}

func TestPlan_FallbackToCodeAnalysis(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith()

	plan := p.Plan(enriched, "hmm")

	if len(plan) != 1 {
		t.Fatalf("Expected a single fallback task, got %d", len(plan))
	}
	if plan[0].Type != models.TaskCodeAnalysis {
		t.Errorf("Expected code_analysis fallback, got %s", plan[0].Type)
	}
}

func TestPlan_TasksStartPendingWithUniqueIDs(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith(
		models.Reference{Kind: models.KindIssue, NormalizedValue: "#1"},
		models.Reference{Kind: models.KindPullRequest, NormalizedValue: "acme/widgets#2"},
		models.Reference{Kind: models.KindDocPage, NormalizedValue: "https://docs.acme.dev/x"},
	)

	plan := p.Plan(enriched, "fix the bug, document the fix, and implement a test")

	if len(plan) < 2 {
		t.Fatalf("Expected multiple tasks, got %d", len(plan))
	}
	ids := map[string]bool{}
	for _, task := range plan {
		if task.Status != models.StatusPending {
			t.Errorf("Expected pending status, got %s", task.Status)
		}
		if ids[task.ID] {
			t.Errorf("Duplicate task id %s", task.ID)
		}
		ids[task.ID] = true
		if task.Inputs["message"] == "" {
			t.Errorf("Task %s missing message input", task.ID)
		}
		if task.Inputs["intent"] == "" {
			t.Errorf("Task %s missing intent input", task.ID)
		}
	}
}

func TestPlan_InputsProjectResolvedContext(t *testing.T) {
	p := NewPlanner()
	enriched := enrichedWith(models.Reference{Kind: models.KindIssue, NormalizedValue: "#123"})
	enriched.Payloads["#123"] = &models.Payload{Source: "github", Title: "Widget crash"}

	plan := p.Plan(enriched, "diagnose the bug")

	if plan[0].Inputs["references"] != "issue:#123" {
		t.Errorf("Unexpected references input: %q", plan[0].Inputs["references"])
	}
	if plan[0].Inputs["context"] != "#123: Widget crash" {
		t.Errorf("Unexpected context input: %q", plan[0].Inputs["context"])
	}
}
