package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tuannvm/context-a2a/internal/models"
)

// ErrTemplateNotFound reports an unknown template name. This is a caller
// programming error, not a data error, and fails the Build call.
var ErrTemplateNotFound = errors.New("template not found")

// excerptLimit bounds how much of a payload body appears in the rendered
// context section. Title/summary sized, never a full payload dump.
const excerptLimit = 240

const defaultMaxChars = 12000

// Assembler renders an EnrichedContext through a named template into a
// system/user message pair bounded by a size budget.
type Assembler struct {
	registry *Registry
	maxChars int
}

// NewAssembler creates a new Assembler. maxChars is the combined size
// budget for the rendered system and user texts; zero selects the default.
func NewAssembler(registry *Registry, maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Assembler{registry: registry, maxChars: maxChars}
}

// contextEntry is one reference's rendered contribution to the context
// section, kept alongside its confidence for truncation ordering.
type contextEntry struct {
	text       string
	confidence float64
	order      int
}

// Build renders the enriched context with the named template. Overrides
// add or replace placeholder values. If the rendered result exceeds the
// size budget, context entries are dropped starting from the
// least-confident reference and Truncated is set.
func (a *Assembler) Build(enriched *models.EnrichedContext, templateName string, overrides map[string]string) (models.FormattedPrompt, error) {
	tpl, ok := a.registry.Lookup(templateName)
	if !ok {
		return models.FormattedPrompt{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateName)
	}

	entries := contextEntries(enriched)
	truncated := false

	system, user := render(tpl, enriched, entries, overrides)

	// Drop the least-confident entries until the budget is met.
	for len(system)+len(user) > a.maxChars && len(entries) > 0 {
		truncated = true
		entries = dropLeastConfident(entries)
		system, user = render(tpl, enriched, entries, overrides)
	}

	// With no entries left the message itself may still be oversized.
	if len(system)+len(user) > a.maxChars {
		truncated = true
		if len(system) > a.maxChars {
			system = system[:a.maxChars]
			user = ""
		} else {
			user = user[:a.maxChars-len(system)]
		}
	}

	return models.FormattedPrompt{
		SystemText:   system,
		UserText:     user,
		TemplateName: templateName,
		Truncated:    truncated,
	}, nil
}

// render fills the template's placeholders from the enriched context and
// the surviving entries. Deterministic for a fixed input.
func render(tpl Template, enriched *models.EnrichedContext, entries []contextEntry, overrides map[string]string) (system, user string) {
	sections := map[string]string{
		"user_message":     enriched.Message.Text,
		"context_section":  formatContextSection(entries),
		"fetch_errors":     formatFetchErrors(enriched),
		"context_strength": fmt.Sprintf("%.2f", enriched.Message.ContextStrength),
	}
	for name, value := range overrides {
		sections[name] = value
	}

	pairs := make([]string, 0, len(sections)*2)
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", sections[name])
	}
	rep := strings.NewReplacer(pairs...)

	return rep.Replace(tpl.System), rep.Replace(tpl.User)
}

// contextEntries turns resolved references into human-readable entries, in
// reference order, with a bounded excerpt of each payload.
func contextEntries(enriched *models.EnrichedContext) []contextEntry {
	var entries []contextEntry
	for i, ref := range enriched.Message.References {
		payload, ok := enriched.Payloads[ref.NormalizedValue]
		if !ok {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "- [%s] %s", ref.Kind, ref.NormalizedValue)
		if payload.Title != "" {
			fmt.Fprintf(&sb, ": %s", payload.Title)
		}
		if payload.Body != "" {
			fmt.Fprintf(&sb, "\n  %s", excerpt(payload.Body))
		}
		if payload.URL != "" {
			fmt.Fprintf(&sb, "\n  %s", payload.URL)
		}
		entries = append(entries, contextEntry{
			text:       sb.String(),
			confidence: ref.Confidence,
			order:      i,
		})
	}
	return entries
}

func formatContextSection(entries []contextEntry) string {
	if len(entries) == 0 {
		return "No external context was resolved for this message."
	}
	var sb strings.Builder
	sb.WriteString("Referenced context:\n")
	for _, entry := range entries {
		sb.WriteString(entry.text)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatFetchErrors(enriched *models.EnrichedContext) string {
	if len(enriched.FetchErrors) == 0 {
		return ""
	}
	values := make([]string, 0, len(enriched.FetchErrors))
	for value := range enriched.FetchErrors {
		values = append(values, value)
	}
	sort.Strings(values)

	var sb strings.Builder
	sb.WriteString("Unresolved references:\n")
	for _, value := range values {
		fe := enriched.FetchErrors[value]
		fmt.Fprintf(&sb, "- %s (%s)\n", value, fe.Kind)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// dropLeastConfident removes the entry with the lowest confidence,
// breaking ties by dropping the later reference first.
func dropLeastConfident(entries []contextEntry) []contextEntry {
	lowest := 0
	for i, entry := range entries {
		if entry.confidence < entries[lowest].confidence ||
			(entry.confidence == entries[lowest].confidence && entry.order > entries[lowest].order) {
			lowest = i
		}
	}
	return append(entries[:lowest:lowest], entries[lowest+1:]...)
}

// excerpt bounds a payload body to a summary-sized snippet.
func excerpt(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) <= excerptLimit {
		return body
	}
	return body[:excerptLimit] + "..."
}
