package core

// mapping.go suggests which source column feeds each target field.
//
// Suggestion happens in two passes:
//  1. Platform pass: the detected profile's synonyms, tried in order,
//     case-insensitive exact match against the source columns.
//  2. Fuzzy pass for every field still unmapped: exact (case-insensitive),
//     then substring in either direction, then the field's keyword list.
//
// A platform hit is never second-guessed by the fuzzy pass, even when the
// fuzzy pass would find a closer column. This precedence is a low-confidence
// heuristic; callers are expected to review and override the suggestion.

import (
	"sort"
	"strings"
)

// FieldMapping maps target field names to source column names.
type FieldMapping struct {
	Fields map[string]string `json:"fields"`

	// CategorySource is the column holding a nested category string
	// ("Apparel > Shirts"). Empty when none is known.
	CategorySource string `json:"category_source,omitempty"`
}

// NewFieldMapping returns an empty mapping.
func NewFieldMapping() FieldMapping {
	return FieldMapping{Fields: make(map[string]string)}
}

// Source returns the source column mapped to target, if any.
func (m FieldMapping) Source(target string) (string, bool) {
	col, ok := m.Fields[target]
	if !ok || col == "" {
		return "", false
	}
	return col, true
}

// Set maps target to col. An empty col removes the entry.
func (m *FieldMapping) Set(target, col string) {
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	if col == "" {
		delete(m.Fields, target)
		return
	}
	m.Fields[target] = col
}

// Len returns the number of mapped target fields.
func (m FieldMapping) Len() int {
	n := 0
	for _, col := range m.Fields {
		if col != "" {
			n++
		}
	}
	return n
}

// Overlay returns a copy of m with every entry of override applied on top.
// An override entry with an empty column clears that field. Keys that are
// not target fields are ignored.
func (m FieldMapping) Overlay(override FieldMapping) FieldMapping {
	out := NewFieldMapping()
	for k, v := range m.Fields {
		out.Set(k, v)
	}
	out.CategorySource = m.CategorySource

	for k, v := range override.Fields {
		if !IsTargetField(k) {
			continue
		}
		out.Set(k, v)
	}
	if override.CategorySource != "" {
		out.CategorySource = override.CategorySource
	}
	return out
}

// Targets returns the mapped target fields in schema order.
func (m FieldMapping) Targets() []string {
	var out []string
	for _, spec := range TargetFields {
		if _, ok := m.Source(spec.Name); ok {
			out = append(out, spec.Name)
		}
	}
	return out
}

// UnknownTargets returns mapping keys that are not target fields, sorted.
func (m FieldMapping) UnknownTargets() []string {
	var out []string
	for k := range m.Fields {
		if !IsTargetField(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// SuggestMapping proposes a mapping for the given source columns.
// platform may be empty or unknown, in which case only the fuzzy pass runs.
func SuggestMapping(columns []string, platform string) FieldMapping {
	mapping := NewFieldMapping()

	if profile, ok := Platform(platform); ok {
		for _, f := range profile.Fields {
			col, found := findColumnFold(columns, f.Synonyms)
			if !found {
				continue
			}
			if f.Target == CategorySourceKey {
				mapping.CategorySource = col
				continue
			}
			mapping.Set(f.Target, col)
		}
	}

	for _, spec := range TargetFields {
		if _, ok := mapping.Source(spec.Name); ok {
			continue
		}
		if col, ok := FuzzyMatchColumn(spec, columns); ok {
			mapping.Set(spec.Name, col)
		}
	}

	return mapping
}

// findColumnFold returns the first source column equal (case-insensitive)
// to one of the candidates, trying candidates in order.
func findColumnFold(columns, candidates []string) (string, bool) {
	for _, cand := range candidates {
		for _, col := range columns {
			if strings.EqualFold(col, cand) {
				return col, true
			}
		}
	}
	return "", false
}

// FuzzyMatchColumn finds a source column for a target field by exact,
// substring, then keyword comparison. The first rule that matches wins.
func FuzzyMatchColumn(spec FieldSpec, columns []string) (string, bool) {
	target := strings.ToLower(spec.Name)

	for _, col := range columns {
		if strings.ToLower(col) == target {
			return col, true
		}
	}

	for _, col := range columns {
		lc := strings.ToLower(col)
		if lc == "" {
			continue
		}
		if strings.Contains(lc, target) || strings.Contains(target, lc) {
			return col, true
		}
	}

	for _, kw := range spec.Keywords {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), kw) {
				return col, true
			}
		}
	}

	return "", false
}
