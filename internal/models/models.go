package models

// ReferenceKind classifies a detected mention of an external artifact.
type ReferenceKind string

const (
	KindRepoURL     ReferenceKind = "repo_url"
	KindIssue       ReferenceKind = "issue"
	KindPullRequest ReferenceKind = "pull_request"
	KindTicket      ReferenceKind = "ticket"
	KindDocPage     ReferenceKind = "doc_page"
	KindGenericURL  ReferenceKind = "generic_url"
	KindCommitHash  ReferenceKind = "commit_hash"
)

// Reference represents a single structured mention detected in free text.
// References are created by the extractor and are immutable afterward.
type Reference struct {
	Kind            ReferenceKind     `json:"kind"`
	RawText         string            `json:"rawText"`
	NormalizedValue string            `json:"normalizedValue"`
	Confidence      float64           `json:"confidence"` // in [0,1]
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ParsedMessage is the extractor's output: the original text, the
// deduplicated references in order of first appearance, and an aggregate
// score of how strongly the text talks about tracked artifacts.
type ParsedMessage struct {
	Text            string      `json:"text"`
	References      []Reference `json:"references"`
	ContextStrength float64     `json:"contextStrength"` // in [0,1]
}

// Payload holds the data fetched for one reference from its external
// system. Title and Body carry the human-readable core; Fields keeps any
// system-specific extras (status, assignee, labels, ...).
type Payload struct {
	Source string            `json:"source"` // "jira", "confluence", "github", ...
	Title  string            `json:"title"`
	Body   string            `json:"body,omitempty"`
	URL    string            `json:"url,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FetchErrorKind is the closed set of failure categories a fetcher may report.
type FetchErrorKind string

const (
	FetchNotFound     FetchErrorKind = "not_found"
	FetchUnauthorized FetchErrorKind = "unauthorized"
	FetchUnavailable  FetchErrorKind = "unavailable"
	FetchTimeout      FetchErrorKind = "timeout"
)

// FetchError is the typed error a fetcher returns when a reference cannot
// be resolved.
type FetchError struct {
	Kind   FetchErrorKind `json:"kind"`
	Detail string         `json:"detail,omitempty"`
}

func (e *FetchError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// EnrichedContext is a ParsedMessage plus whatever external data could be
// resolved for its references. Payloads and FetchErrors are keyed by
// normalized value; a reference appears in at most one of the two maps.
type EnrichedContext struct {
	Message     ParsedMessage         `json:"message"`
	Payloads    map[string]*Payload   `json:"payloads"`
	FetchErrors map[string]FetchError `json:"fetchErrors"`
}

// FormattedPrompt is the assembler's output: a system/user message pair
// ready for a generation backend.
type FormattedPrompt struct {
	SystemText   string `json:"systemText"`
	UserText     string `json:"userText"`
	TemplateName string `json:"templateName"`
	Truncated    bool   `json:"truncated"`
}
