package mensa

import (
	"regexp"
)

// The dietary tag vocabulary is a static ordered list of (tag, patterns)
// pairs. Patterns are word-boundary matched to avoid false substrings
// (e.g. "Rind" must not fire on other words containing the letters).
type noteTag struct {
	tag      string
	patterns []*regexp.Regexp
}

var noteVocabulary = []noteTag{
	{"Vegan", compileAll(`(?i)\bvegan`)},
	{"Vegetarisch", compileAll(`(?i)\bvegetarisch\b`, `(?i)\bfleischlos\b`)},
	{"Rindfleisch", compileAll(`(?i)\brind(er|fleisch)?\b`)},
	{"Schweinefleisch", compileAll(`(?i)\bschwein(e|efleisch)?\b`)},
	{"Geflügel", compileAll(`(?i)\bgeflügel`, `(?i)\bhähnchen\b`, `(?i)\bhühn`, `(?i)\bhuhn\b`, `(?i)\bpute(n)?\b`)},
	{"Laktosefrei", compileAll(`(?i)\blaktosefrei\b`, `(?i)\bohne\s+laktose\b`)},
	{"Wild", compileAll(`(?i)\bwild(fleisch|gulasch|braten)?\b`, `(?i)\bhirsch`, `(?i)\breh\b`)},
	{"Lammfleisch", compileAll(`(?i)\blamm`)},
	{"Fisch", compileAll(`(?i)\bfisch\b`, `(?i)\blachs\b`, `(?i)\bseelachs\b`, `(?i)\bforelle\b`, `(?i)\bhering\b`, `(?i)\bmatjes\b`, `(?i)\bkabeljau\b`)},
	{"Gelatine", compileAll(`(?i)\bgelatine\b`)},
	{"Alkohol", compileAll(`(?i)\balkohol`, `(?i)\bwein\b`, `(?i)\bbier\b`, `(?i)\brum\b`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// SimplifyNotes reduces raw free-text allergen/dietary notes to the fixed tag
// vocabulary. Output preserves the vocabulary's canonical order and contains
// each tag at most once. Vegan implies both Vegetarisch and Laktosefrei, so
// those are suppressed when Vegan matched.
func SimplifyNotes(rawNotes []string) []string {
	matched := make(map[string]bool, len(noteVocabulary))

	for _, note := range rawNotes {
		for _, entry := range noteVocabulary {
			if matched[entry.tag] {
				continue
			}
			for _, pattern := range entry.patterns {
				if pattern.MatchString(note) {
					matched[entry.tag] = true
					break
				}
			}
		}
	}

	if matched["Vegan"] {
		delete(matched, "Vegetarisch")
		delete(matched, "Laktosefrei")
	}

	tags := make([]string, 0, len(matched))
	for _, entry := range noteVocabulary {
		if matched[entry.tag] {
			tags = append(tags, entry.tag)
		}
	}
	return tags
}
