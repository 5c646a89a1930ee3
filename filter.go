// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// applyEntryFilters narrows the visible entry set to the configured prefix
// and rule selection, then rebuilds the path lookup.
func (r *Reader) applyEntryFilters(opts ReaderOptions) error {
	filtered := filterEntriesByPrefix(r.entries, opts.PathPrefix)

	matcher, err := newEntryMatcher(opts.Rules, opts.RuleMatcherOptions)
	if err != nil {
		return err
	}
	if matcher != nil {
		filtered = filterEntriesByRules(filtered, matcher)
	}

	if len(filtered) == len(r.entries) {
		return nil
	}

	r.entries = filtered
	r.byPath = make(map[string]int, len(filtered))
	for i := range filtered {
		r.byPath[filtered[i].Path] = i
	}

	return nil
}

// entryMatcher holds compiled include/exclude rules for entry selection.
type entryMatcher struct {
	matcher *pathrules.Matcher
}

// newEntryMatcher compiles entry selection rules; nil rules mean no matcher.
func newEntryMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*entryMatcher, error) {
	rules = normalizeEntryRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidEntryRules, err)
	}

	return &entryMatcher{matcher: matcher}, nil
}

// normalizeEntryRules normalizes rule patterns and drops empty patterns.
func normalizeEntryRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := NormalizePath(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by the compiled rule set.
func (m *entryMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// filterEntriesByPrefix keeps entries under prefix (or exact match if it points to a file).
func filterEntriesByPrefix(entries []Entry, prefix string) []Entry {
	prefix = NormalizePath(prefix)
	if prefix == "" {
		return entries
	}

	prefixWithSlash := prefix + "/"
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Path == prefix || strings.HasPrefix(entry.Path, prefixWithSlash) {
			out = append(out, entry)
		}
	}

	return out
}

// filterEntriesByRules keeps entries included by the compiled rule set.
func filterEntriesByRules(entries []Entry, matcher *entryMatcher) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !matcher.Match(entry.Path) {
			continue
		}

		out = append(out, entry)
	}

	return out
}
