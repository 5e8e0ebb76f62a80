package prompt

import (
	"sync"
)

// Template is a named pair of text blueprints. Blueprints contain
// {placeholder} markers filled at build time; the recognized placeholders
// are {user_message}, {context_section}, {fetch_errors} and
// {context_strength}, plus anything supplied via overrides.
type Template struct {
	Name   string
	System string
	User   string
}

// Built-in templates. A custom template registered under the same name
// takes precedence.
var builtins = map[string]Template{
	"default": {
		Name: "default",
		System: "You are a software engineering assistant. Use the referenced context below when responding.\n\n" +
			"{context_section}",
		User: "{user_message}",
	},
	"bug_analysis": {
		Name: "bug_analysis",
		System: "You are a debugging specialist. Analyze the reported problem using the referenced issues, " +
			"tickets and code context below. Identify likely root causes and suggest concrete next steps.\n\n" +
			"{context_section}\n{fetch_errors}",
		User: "Bug report:\n{user_message}",
	},
	"documentation": {
		Name: "documentation",
		System: "You are a technical writer. Produce clear, accurate documentation grounded in the " +
			"referenced pages and repositories below. Do not invent behavior that is not in the context.\n\n" +
			"{context_section}",
		User: "Documentation request:\n{user_message}",
	},
	"code_review": {
		Name: "code_review",
		System: "You are a code reviewer. Review the referenced changes with attention to correctness, " +
			"clarity and test coverage. Cite the referenced artifacts when raising findings.\n\n" +
			"{context_section}",
		User: "Review request:\n{user_message}",
	},
}

// Registry holds the process-scoped template set: the built-ins plus any
// templates registered at runtime.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]Template
}

// NewRegistry creates a registry seeded with the built-in templates.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Template)}
}

// Register adds (or replaces) a custom template under the given name.
// Custom templates shadow built-ins of the same name.
func (r *Registry) Register(name, system, user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[name] = Template{Name: name, System: system, User: user}
}

// Lookup returns the template registered under name, custom first.
func (r *Registry) Lookup(name string) (Template, bool) {
	r.mu.RLock()
	tpl, ok := r.custom[name]
	r.mu.RUnlock()
	if ok {
		return tpl, true
	}
	tpl, ok = builtins[name]
	return tpl, ok
}

// Names returns the names of all known templates (built-in and custom).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(builtins)+len(r.custom))
	names := make([]string, 0, len(builtins)+len(r.custom))
	for name := range builtins {
		seen[name] = true
		names = append(names, name)
	}
	for name := range r.custom {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}
