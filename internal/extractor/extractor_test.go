package extractor

import (
	"strings"
	"testing"

	"github.com/tuannvm/context-a2a/internal/models"
)

func TestExtract_IssueAndRepo(t *testing.T) {
	e := New()
	msg := e.Extract("Fix issue #123 in acme/widgets")

	if len(msg.References) != 2 {
		t.Fatalf("Expected 2 references, got %d: %+v", len(msg.References), msg.References)
	}

	issue := msg.References[0]
	if issue.Kind != models.KindIssue {
		t.Errorf("Expected first reference to be an issue, got %s", issue.Kind)
	}
	if issue.NormalizedValue != "#123" {
		t.Errorf("Expected normalized value #123, got %s", issue.NormalizedValue)
	}
	if issue.Confidence < 0.8 {
		t.Errorf("Expected issue confidence >= 0.8, got %f", issue.Confidence)
	}

	repo := msg.References[1]
	if repo.Kind != models.KindRepoURL {
		t.Errorf("Expected second reference to be a repo, got %s", repo.Kind)
	}
	if repo.NormalizedValue != "acme/widgets" {
		t.Errorf("Expected normalized value acme/widgets, got %s", repo.NormalizedValue)
	}
	if repo.Confidence < 0.8 {
		t.Errorf("Expected repo confidence >= 0.8, got %f", repo.Confidence)
	}
}

func TestExtract_PullRequestURL(t *testing.T) {
	e := New()
	msg := e.Extract("https://github.com/acme/widgets/pull/45")

	if len(msg.References) != 1 {
		t.Fatalf("Expected exactly 1 reference, got %d: %+v", len(msg.References), msg.References)
	}

	ref := msg.References[0]
	if ref.Kind != models.KindPullRequest {
		t.Errorf("Expected pull_request, got %s", ref.Kind)
	}
	if ref.NormalizedValue != "acme/widgets#45" {
		t.Errorf("Expected normalized value acme/widgets#45, got %s", ref.NormalizedValue)
	}
	if ref.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", ref.Confidence)
	}
	if ref.Metadata["owner"] != "acme" || ref.Metadata["repo"] != "widgets" || ref.Metadata["number"] != "45" {
		t.Errorf("Unexpected metadata: %v", ref.Metadata)
	}
}

func TestExtract_IssueURL(t *testing.T) {
	e := New()
	msg := e.Extract("Please look at https://github.com/acme/widgets/issues/9.")

	if len(msg.References) != 1 {
		t.Fatalf("Expected exactly 1 reference, got %d: %+v", len(msg.References), msg.References)
	}
	if msg.References[0].Kind != models.KindIssue {
		t.Errorf("Expected issue, got %s", msg.References[0].Kind)
	}
	if msg.References[0].NormalizedValue != "acme/widgets#9" {
		t.Errorf("Expected acme/widgets#9, got %s", msg.References[0].NormalizedValue)
	}
}

func TestExtract_SSHRemote(t *testing.T) {
	e := New()
	msg := e.Extract("clone it from git@github.com:acme/widgets.git first")

	if len(msg.References) != 1 {
		t.Fatalf("Expected 1 reference, got %d: %+v", len(msg.References), msg.References)
	}
	ref := msg.References[0]
	if ref.Kind != models.KindRepoURL || ref.NormalizedValue != "acme/widgets" {
		t.Errorf("Expected repo acme/widgets, got %s %s", ref.Kind, ref.NormalizedValue)
	}
	if ref.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", ref.Confidence)
	}
}

func TestExtract_Ticket(t *testing.T) {
	e := New()
	msg := e.Extract("PROJ-123 is blocked on DATA-9")

	if len(msg.References) != 2 {
		t.Fatalf("Expected 2 references, got %d: %+v", len(msg.References), msg.References)
	}
	if msg.References[0].NormalizedValue != "PROJ-123" || msg.References[0].Kind != models.KindTicket {
		t.Errorf("Unexpected first reference: %+v", msg.References[0])
	}
	if msg.References[1].NormalizedValue != "DATA-9" {
		t.Errorf("Unexpected second reference: %+v", msg.References[1])
	}
	if msg.References[0].Confidence < 0.8 {
		t.Errorf("Expected ticket confidence >= 0.8, got %f", msg.References[0].Confidence)
	}
}

func TestExtract_DocPageURL(t *testing.T) {
	e := New()
	msg := e.Extract("design notes: https://acme.atlassian.net/wiki/spaces/ENG/pages/4242")

	if len(msg.References) != 1 {
		t.Fatalf("Expected 1 reference, got %d: %+v", len(msg.References), msg.References)
	}
	if msg.References[0].Kind != models.KindDocPage {
		t.Errorf("Expected doc_page, got %s", msg.References[0].Kind)
	}
}

func TestExtract_DedupPrefersURLPass(t *testing.T) {
	e := New()
	msg := e.Extract("See acme/widgets and https://github.com/acme/widgets")

	if len(msg.References) != 1 {
		t.Fatalf("Expected 1 deduplicated reference, got %d: %+v", len(msg.References), msg.References)
	}
	ref := msg.References[0]
	if ref.Confidence != 1.0 {
		t.Errorf("Expected the URL-pass duplicate to win with confidence 1.0, got %f", ref.Confidence)
	}
	if ref.Metadata["extraction_method"] != "url" {
		t.Errorf("Expected extraction_method url, got %s", ref.Metadata["extraction_method"])
	}
}

func TestExtract_NoDuplicateNormalizedValues(t *testing.T) {
	e := New()
	texts := []string{
		"Fix #12 and #12 and also #12 in acme/widgets, see acme/widgets",
		"PROJ-1 PROJ-1 PROJ-1",
		"https://github.com/a1/b2 and a1/b2 again",
	}
	for _, text := range texts {
		msg := e.Extract(text)
		seen := map[string]bool{}
		for _, ref := range msg.References {
			if seen[ref.NormalizedValue] {
				t.Errorf("Duplicate normalized value %q for input %q", ref.NormalizedValue, text)
			}
			seen[ref.NormalizedValue] = true
		}
	}
}

func TestExtract_StopWordsSuppressed(t *testing.T) {
	e := New()
	msg := e.Extract("choose either/or, and/or maybe a/b testing")

	if len(msg.References) != 0 {
		t.Errorf("Expected no references from prose word pairs, got %+v", msg.References)
	}
}

func TestExtract_ContextPass(t *testing.T) {
	e := New()
	msg := e.Extract("We saw the bug again in the issue tracker, number 4521")

	var found bool
	for _, ref := range msg.References {
		if ref.Kind == models.KindIssue && ref.NormalizedValue == "#4521" {
			found = true
			if ref.Confidence >= 0.8 {
				t.Errorf("Context-pass reference should carry reduced confidence, got %f", ref.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("Expected context pass to pick up bare number 4521, got %+v", msg.References)
	}
}

func TestExtract_CommitHash(t *testing.T) {
	e := New()
	sha := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b"
	msg := e.Extract("regression introduced by " + sha)

	if len(msg.References) != 1 {
		t.Fatalf("Expected 1 reference, got %d: %+v", len(msg.References), msg.References)
	}
	if msg.References[0].Kind != models.KindCommitHash || msg.References[0].NormalizedValue != sha {
		t.Errorf("Unexpected reference: %+v", msg.References[0])
	}
}

func TestExtract_EmptyAndMalformedInput(t *testing.T) {
	e := New()
	for _, text := range []string{"", "   ", "\x00\xff\xfe", strings.Repeat("/", 50)} {
		msg := e.Extract(text)
		if len(msg.References) != 0 {
			t.Errorf("Expected no references for %q, got %+v", text, msg.References)
		}
		if msg.Text != text {
			t.Errorf("Expected original text to be preserved for %q", text)
		}
	}
	if s := e.Extract("").ContextStrength; s != 0 {
		t.Errorf("Expected context strength 0 for empty input, got %f", s)
	}
}

func TestExtract_ContextStrengthBounds(t *testing.T) {
	e := New()
	texts := []string{
		"",
		"hello world",
		"repo repo repo issue issue bug pr pull request docs wiki merge branch commit review sprint epic",
		"Fix issue #123 in acme/widgets",
	}
	for _, text := range texts {
		s := e.Extract(text).ContextStrength
		if s < 0 || s > 1 {
			t.Errorf("Context strength out of range for %q: %f", text, s)
		}
	}
	saturated := e.Extract("repo repo repo repo issue issue bug bug pr pr docs docs wiki merge branch commit review sprint epic fix push fork clone diff readme").ContextStrength
	if saturated != 1.0 {
		t.Errorf("Expected saturated context strength 1.0, got %f", saturated)
	}
}
