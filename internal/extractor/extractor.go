package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tuannvm/context-a2a/internal/models"
)

// Extractor scans free-form text for references to external artifacts
// (repos, issues, pull requests, tickets, documentation pages, commits).
// Extraction is a pure function of the input text and never fails:
// malformed input simply yields fewer references.
type Extractor struct{}

// New creates a new Extractor
func New() *Extractor {
	return &Extractor{}
}

// Pass identifiers, ordered by evidence specificity. Used to break
// confidence ties during dedup: URL > pattern > context-aware.
const (
	passURL = iota
	passPattern
	passContext
)

// candidate is a reference together with the span it was matched at and
// the pass that produced it. Spans are byte offsets into the input text.
type candidate struct {
	ref   models.Reference
	start int
	end   int
	pass  int
}

var (
	// URL pass: one combined expression per service shape so an issue/PR/commit
	// URL produces exactly one reference, not a repo reference plus a number.
	genericURLRe  = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	githubURLRe   = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([A-Za-z0-9][A-Za-z0-9_.-]*)/([A-Za-z0-9][A-Za-z0-9_.-]*?)(?:\.git)?(?:/(issues|pull)/(\d+)|/commit/([0-9a-fA-F]{7,40}))?/?$`)
	sshRemoteRe   = regexp.MustCompile(`\bgit@github\.com:([A-Za-z0-9][A-Za-z0-9_.-]*)/([A-Za-z0-9][A-Za-z0-9_.-]*?)(?:\.git)?\b`)
	docPageHintRe = regexp.MustCompile(`atlassian\.net/wiki/|/wiki/|/display/|^https?://docs\.`)

	// Pattern pass
	ownerRepoRe = regexp.MustCompile(`\b([A-Za-z0-9][A-Za-z0-9_.-]*)/([A-Za-z0-9][A-Za-z0-9_.-]*)\b`)
	issueNumRe  = regexp.MustCompile(`#(\d{1,7})\b`)
	ticketRe    = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9})-(\d{1,6})\b`)
	longHashRe  = regexp.MustCompile(`\b[0-9a-f]{40}\b`)

	// Context-aware pass
	bareNumberRe = regexp.MustCompile(`\b(\d{2,6})\b`)
	shortHashRe  = regexp.MustCompile(`\b[0-9a-f]{7,12}\b`)
)

// stopWords suppresses owner/repo false positives like "a/b" or common
// English word pairs ("either/or", "and/or", "yes/no").
var stopWords = map[string]bool{
	"a": true, "b": true, "i": true, "o": true,
	"and": true, "or": true, "the": true, "this": true, "that": true,
	"of": true, "in": true, "on": true, "to": true, "is": true,
	"either": true, "neither": true, "yes": true, "no": true,
	"he": true, "she": true, "his": true, "her": true, "him": true,
	"input": true, "output": true, "read": true, "write": true,
	"before": true, "after": true, "pass": true, "fail": true,
	"true": true, "false": true, "etc": true, "eg": true, "ie": true,
}

// ticketStopKeys suppresses ticket-shaped tokens that are really encodings
// or acronyms followed by a number (UTF-8, ISO-8601, RFC-1234).
var ticketStopKeys = map[string]bool{
	"UTF": true, "ISO": true, "RFC": true, "SHA": true, "MD": true,
	"GPT": true, "IPV": true, "ID": true, "X": true,
}

// keywordCategories groups the domain vocabulary the context-aware pass and
// the context-strength score look for.
var keywordCategories = map[string][]string{
	"repository":    {"repo", "repository", "branch", "merge", "clone", "fork", "commit", "push"},
	"issues":        {"issue", "bug", "ticket", "story", "epic", "sprint", "backlog", "fix"},
	"pull_requests": {"pull request", "pr", "merge request", "review", "diff"},
	"documentation": {"documentation", "docs", "wiki", "confluence", "readme", "runbook"},
}

// keywordRes holds one compiled word-boundary matcher per keyword, built once.
var keywordRes = func() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(keywordCategories))
	for cat, words := range keywordCategories {
		res := make([]*regexp.Regexp, 0, len(words))
		for _, w := range words {
			res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
		}
		out[cat] = res
	}
	return out
}()

// Extract scans text and returns the deduplicated references it contains,
// in order of first appearance, together with the context-strength score.
func (e *Extractor) Extract(text string) models.ParsedMessage {
	msg := models.ParsedMessage{Text: text}
	if strings.TrimSpace(text) == "" {
		return msg
	}

	categories, occurrences := countKeywords(text)
	msg.ContextStrength = contextStrength(categories, occurrences)

	var candidates []candidate
	candidates = append(candidates, e.urlPass(text)...)
	candidates = append(candidates, e.patternPass(text, candidates)...)
	if categories >= 1 && occurrences >= 2 {
		candidates = append(candidates, e.contextPass(text, candidates)...)
	}

	msg.References = merge(candidates)
	return msg
}

// urlPass matches canonical service URL shapes with full confidence and
// decomposes them into owner/repo/number components.
func (e *Extractor) urlPass(text string) []candidate {
	var out []candidate

	for _, loc := range genericURLRe.FindAllStringIndex(text, -1) {
		raw := strings.TrimRight(text[loc[0]:loc[1]], ".,;:!?")
		end := loc[0] + len(raw)

		if m := githubURLRe.FindStringSubmatch(raw); m != nil {
			out = append(out, githubCandidate(raw, m, loc[0], end, "url"))
			continue
		}
		if docPageHintRe.MatchString(raw) {
			out = append(out, candidate{
				ref: models.Reference{
					Kind:            models.KindDocPage,
					RawText:         raw,
					NormalizedValue: raw,
					Confidence:      1.0,
					Metadata:        map[string]string{"url_scheme": urlScheme(raw), "extraction_method": "url"},
				},
				start: loc[0], end: end, pass: passURL,
			})
			continue
		}
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindGenericURL,
				RawText:         raw,
				NormalizedValue: raw,
				Confidence:      1.0,
				Metadata:        map[string]string{"url_scheme": urlScheme(raw), "extraction_method": "url"},
			},
			start: loc[0], end: end, pass: passURL,
		})
	}

	for _, loc := range sshRemoteRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		owner := text[loc[2]:loc[3]]
		repo := text[loc[4]:loc[5]]
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindRepoURL,
				RawText:         raw,
				NormalizedValue: owner + "/" + repo,
				Confidence:      1.0,
				Metadata:        map[string]string{"owner": owner, "repo": repo, "url_scheme": "ssh", "extraction_method": "url"},
			},
			start: loc[0], end: loc[1], pass: passURL,
		})
	}

	return out
}

// githubCandidate builds the reference for a decomposed github.com URL.
func githubCandidate(raw string, m []string, start, end int, method string) candidate {
	owner, repo := m[1], m[2]
	meta := map[string]string{
		"owner":             owner,
		"repo":              repo,
		"url_scheme":        urlScheme(raw),
		"extraction_method": method,
	}
	ref := models.Reference{RawText: raw, Confidence: 1.0, Metadata: meta}

	switch {
	case m[3] == "issues":
		ref.Kind = models.KindIssue
		ref.NormalizedValue = owner + "/" + repo + "#" + m[4]
		meta["number"] = m[4]
	case m[3] == "pull":
		ref.Kind = models.KindPullRequest
		ref.NormalizedValue = owner + "/" + repo + "#" + m[4]
		meta["number"] = m[4]
	case m[5] != "":
		ref.Kind = models.KindCommitHash
		ref.NormalizedValue = strings.ToLower(m[5])
		meta["sha"] = strings.ToLower(m[5])
	default:
		ref.Kind = models.KindRepoURL
		ref.NormalizedValue = owner + "/" + repo
	}
	return candidate{ref: ref, start: start, end: end, pass: passURL}
}

// patternPass recognizes owner/repo tokens, #N markers, PROJECT-N ticket ids
// and full-length commit hashes, filtered against stop words to suppress
// false positives. Matches inside spans already claimed by the URL pass are
// skipped so a single URL never yields a second, weaker reference.
func (e *Extractor) patternPass(text string, claimed []candidate) []candidate {
	var out []candidate

	for _, loc := range ownerRepoRe.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		owner := text[loc[2]:loc[3]]
		repo := text[loc[4]:loc[5]]
		if !plausibleRepoToken(owner, repo) {
			continue
		}
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindRepoURL,
				RawText:         text[loc[0]:loc[1]],
				NormalizedValue: owner + "/" + repo,
				Confidence:      0.8,
				Metadata:        map[string]string{"owner": owner, "repo": repo, "extraction_method": "pattern"},
			},
			start: loc[0], end: loc[1], pass: passPattern,
		})
	}

	for _, loc := range issueNumRe.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		num := text[loc[2]:loc[3]]
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindIssue,
				RawText:         text[loc[0]:loc[1]],
				NormalizedValue: "#" + num,
				Confidence:      0.85,
				Metadata:        map[string]string{"number": num, "extraction_method": "pattern"},
			},
			start: loc[0], end: loc[1], pass: passPattern,
		})
	}

	for _, loc := range ticketRe.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		key := text[loc[2]:loc[3]]
		if ticketStopKeys[key] {
			continue
		}
		num := text[loc[4]:loc[5]]
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindTicket,
				RawText:         text[loc[0]:loc[1]],
				NormalizedValue: key + "-" + num,
				Confidence:      0.9,
				Metadata:        map[string]string{"project": key, "number": num, "extraction_method": "pattern"},
			},
			start: loc[0], end: loc[1], pass: passPattern,
		})
	}

	for _, loc := range longHashRe.FindAllStringIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		sha := text[loc[0]:loc[1]]
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindCommitHash,
				RawText:         sha,
				NormalizedValue: sha,
				Confidence:      0.9,
				Metadata:        map[string]string{"sha": sha, "extraction_method": "pattern"},
			},
			start: loc[0], end: loc[1], pass: passPattern,
		})
	}

	return out
}

// contextPass runs only when the keyword density threshold is met: bare
// numbers and short hex tokens near domain vocabulary are treated as issue
// and commit references with reduced confidence.
func (e *Extractor) contextPass(text string, claimed []candidate) []candidate {
	var out []candidate

	for _, loc := range bareNumberRe.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		num := text[loc[2]:loc[3]]
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindIssue,
				RawText:         num,
				NormalizedValue: "#" + num,
				Confidence:      0.6,
				Metadata:        map[string]string{"number": num, "extraction_method": "context"},
			},
			start: loc[0], end: loc[1], pass: passContext,
		})
	}

	for _, loc := range shortHashRe.FindAllStringIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		tok := text[loc[0]:loc[1]]
		// Pure digit runs are already handled as bare numbers.
		if !strings.ContainsAny(tok, "abcdef") {
			continue
		}
		out = append(out, candidate{
			ref: models.Reference{
				Kind:            models.KindCommitHash,
				RawText:         tok,
				NormalizedValue: tok,
				Confidence:      0.65,
				Metadata:        map[string]string{"sha": tok, "extraction_method": "context"},
			},
			start: loc[0], end: loc[1], pass: passContext,
		})
	}

	return out
}

// merge deduplicates candidates by normalized value (highest confidence
// wins, the more specific pass breaks ties) and orders the survivors by
// first appearance in the text.
func merge(candidates []candidate) []models.Reference {
	best := make(map[string]candidate, len(candidates))
	for _, c := range candidates {
		prev, ok := best[c.ref.NormalizedValue]
		if !ok {
			best[c.ref.NormalizedValue] = c
			continue
		}
		wins := c.ref.Confidence > prev.ref.Confidence ||
			(c.ref.Confidence == prev.ref.Confidence && c.pass < prev.pass)
		if wins {
			// The earliest span still decides ordering even when a later,
			// stronger duplicate wins the reference itself.
			if prev.start < c.start {
				c.start = prev.start
			}
			best[c.ref.NormalizedValue] = c
		} else if c.start < prev.start {
			prev.start = c.start
			best[c.ref.NormalizedValue] = prev
		}
	}

	ordered := make([]candidate, 0, len(best))
	for _, c := range best {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		return ordered[i].ref.NormalizedValue < ordered[j].ref.NormalizedValue
	})

	refs := make([]models.Reference, 0, len(ordered))
	for _, c := range ordered {
		refs = append(refs, c.ref)
	}
	return refs
}

// countKeywords tallies the distinct keyword categories matched and the
// total match count across all categories.
func countKeywords(text string) (categories, occurrences int) {
	for _, res := range keywordRes {
		matched := 0
		for _, re := range res {
			matched += len(re.FindAllStringIndex(text, -1))
		}
		if matched > 0 {
			categories++
			occurrences += matched
		}
	}
	return categories, occurrences
}

// contextStrength is a saturating score of domain-keyword presence.
func contextStrength(categories, occurrences int) float64 {
	s := 0.2*float64(categories) + 0.05*float64(occurrences)
	if s > 1.0 {
		return 1.0
	}
	return s
}

// plausibleRepoToken filters owner/repo shaped tokens that are more likely
// ordinary prose ("and/or", "a/b") or numeric fractions than repositories.
func plausibleRepoToken(owner, repo string) bool {
	if len(owner) < 2 || len(repo) < 2 {
		return false
	}
	if len(owner)+len(repo) < 6 {
		return false
	}
	if stopWords[strings.ToLower(owner)] || stopWords[strings.ToLower(repo)] {
		return false
	}
	if isDigits(owner) || isDigits(repo) {
		return false
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// overlapsAny reports whether [start,end) intersects any claimed span.
func overlapsAny(start, end int, claimed []candidate) bool {
	for _, c := range claimed {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}

func urlScheme(raw string) string {
	if i := strings.Index(raw, "://"); i > 0 {
		return raw[:i]
	}
	return ""
}
