// Package toolpolicy compiles allow/deny tool-name patterns and evaluates
// them with deny-wins semantics. Patterns compile once into a tagged
// variant (all / exact / regex) so the per-call hot path never re-parses a
// glob, per the teacher's general style of precompiling anything evaluated
// repeatedly (see internal/config's validated, pre-parsed manifests).
package toolpolicy

import (
	"regexp"
	"strings"
)

// Policy mirrors SandboxToolPolicy: raw, uncompiled allow/deny pattern
// lists as they arrive from configuration. A nil slice and an empty slice
// are both treated as absent.
type Policy struct {
	Allow []string
	Deny  []string
}

// kind tags a compiled pattern so evaluation never has to re-inspect it.
type kind int

const (
	kindAll kind = iota
	kindExact
	kindRegex
)

type pattern struct {
	kind  kind
	exact string
	re    *regexp.Regexp
}

func (p pattern) matches(name string) bool {
	switch p.kind {
	case kindAll:
		return true
	case kindExact:
		return name == p.exact
	case kindRegex:
		return p.re.MatchString(name)
	default:
		return false
	}
}

// Compiled is a Policy with both pattern lists precompiled.
type Compiled struct {
	allow []pattern
	deny  []pattern
}

// Compile normalizes and compiles a Policy's patterns. Blank patterns are
// dropped. "*" compiles to a match-all pattern; a pattern containing "*"
// compiles to an anchored regex with "*" mapped to ".*"; anything else
// compiles to an exact match on the normalized (trimmed, lowercased) form.
func Compile(p Policy) Compiled {
	return Compiled{
		allow: compileList(p.Allow),
		deny:  compileList(p.Deny),
	}
}

func compileList(raw []string) []pattern {
	var out []pattern
	for _, s := range raw {
		norm := normalize(s)
		if norm == "" {
			continue
		}
		out = append(out, compileOne(norm))
	}
	return out
}

func compileOne(norm string) pattern {
	if norm == "*" {
		return pattern{kind: kindAll}
	}
	if strings.Contains(norm, "*") {
		parts := strings.Split(norm, "*")
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		return pattern{kind: kindRegex, re: regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")}
	}
	return pattern{kind: kindExact, exact: norm}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsToolAllowed evaluates name against the compiled policy: a matching deny
// pattern always wins; an empty allow list allows everything not denied;
// otherwise name must match some allow pattern.
func (c Compiled) IsToolAllowed(name string) bool {
	norm := normalize(name)
	for _, p := range c.deny {
		if p.matches(norm) {
			return false
		}
	}
	if len(c.allow) == 0 {
		return true
	}
	for _, p := range c.allow {
		if p.matches(norm) {
			return true
		}
	}
	return false
}

// IsToolAllowed compiles policy and evaluates name in one call, for callers
// that don't need to reuse the compiled form across many names.
func IsToolAllowed(policy Policy, name string) bool {
	return Compile(policy).IsToolAllowed(name)
}

// FilterResult partitions a tool list by policy, preserving input order in
// both output slices.
type FilterResult struct {
	Allowed []string
	Denied  []string
}

// FilterToolsByPolicy partitions tools into allowed/denied according to
// policy, each preserving tools' original relative order.
func FilterToolsByPolicy(tools []string, policy Policy) FilterResult {
	compiled := Compile(policy)
	var result FilterResult
	for _, name := range tools {
		if compiled.IsToolAllowed(name) {
			result.Allowed = append(result.Allowed, name)
		} else {
			result.Denied = append(result.Denied, name)
		}
	}
	return result
}

// Source identifies which configuration layer supplied an allow or deny
// list, for diagnostics (§4.G resolution rules).
type Source string

const (
	SourceSession Source = "session"
	SourceGlobal  Source = "global"
	SourceDefault Source = "default"
)

// ResolvedList carries a resolved allow or deny list along with which
// configuration layer supplied it and the diagnostic key path a human
// would look at to find it.
type ResolvedList struct {
	Patterns []string
	Source   Source
	KeyPath  string
}

// ResolveList picks session's list if non-nil and non-malformed, else
// global's, else the default, recording which layer won. sessionKeyPath
// and globalKeyPath name where each layer's value would live in the
// resolved config document, for error messages; defaultKeyPath is used
// when neither is present.
func ResolveList(session, global, def []string, sessionKeyPath, globalKeyPath, defaultKeyPath string) ResolvedList {
	if session != nil {
		return ResolvedList{Patterns: session, Source: SourceSession, KeyPath: sessionKeyPath}
	}
	if global != nil {
		return ResolvedList{Patterns: global, Source: SourceGlobal, KeyPath: globalKeyPath}
	}
	return ResolvedList{Patterns: def, Source: SourceDefault, KeyPath: defaultKeyPath}
}
