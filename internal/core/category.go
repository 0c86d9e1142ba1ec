package core

// category.go resolves nested category strings ("Apparel > Clothing > Shirts")
// to reference table IDs.
//
// Each level is matched against its table with strict precedence:
//  1. Exact name (case-insensitive, trimmed)
//  2. Substring in either direction, first row in stored order
//  3. Keyword synonyms (see categorySynonyms)
//
// Lower levels are restricted to children of the resolved parent when the
// parent resolved; otherwise the whole table is searched.

import "strings"

// CategorySeparator splits the levels of a nested category string.
const CategorySeparator = " > "

// CategoryPath holds up to three parsed category levels.
// An empty string means the level is absent.
type CategoryPath struct {
	Category       string
	SubCategory    string
	SubSubCategory string
}

// Resolution holds the resolved IDs for a CategoryPath.
// Zero means the level did not resolve.
type Resolution struct {
	CategoryID       int
	SubCategoryID    int
	SubSubCategoryID int
}

// categorySynonym is one entry of the keyword-synonym table.
type categorySynonym struct {
	keyword  string
	synonyms []string
}

// categorySynonyms is ordered; the first matching entry wins.
var categorySynonyms = []categorySynonym{
	{"apparel", []string{"clothing", "clothes"}},
	{"clothing", []string{"apparel", "clothes", "fashion"}},
	{"accessories", []string{"jewelry", "jewellery", "watches"}},
	{"traditional", []string{"ceremonial", "cultural"}},
	{"health", []string{"beauty", "wellness"}},
	{"home", []string{"house", "living", "decor"}},
	{"electronics", []string{"tech", "digital"}},
	{"books", []string{"literature", "reading"}},
}

// ParseNestedCategory splits text on CategorySeparator and returns up to
// three trimmed levels. Extra levels are ignored.
func ParseNestedCategory(text string) CategoryPath {
	if strings.TrimSpace(text) == "" {
		return CategoryPath{}
	}

	parts := strings.Split(text, CategorySeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var p CategoryPath
	p.Category = parts[0]
	if len(parts) > 1 {
		p.SubCategory = parts[1]
	}
	if len(parts) > 2 {
		p.SubSubCategory = parts[2]
	}
	return p
}

// Resolver maps category names to reference IDs.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	ref *ReferenceData
}

// NewResolver creates a resolver over ref. A nil ref never matches.
func NewResolver(ref *ReferenceData) *Resolver {
	return &Resolver{ref: ref}
}

// Resolve finds the IDs for each present level of p.
func (r *Resolver) Resolve(p CategoryPath) Resolution {
	var res Resolution
	if r == nil || r.ref == nil {
		return res
	}

	if p.Category != "" {
		res.CategoryID = BestMatch(p.Category, r.ref.Categories)
	}

	if p.SubCategory != "" {
		rows := r.ref.SubCategories
		if res.CategoryID != 0 {
			rows = childrenOf(rows, res.CategoryID)
		}
		res.SubCategoryID = BestMatch(p.SubCategory, rows)
	}

	if p.SubSubCategory != "" {
		rows := r.ref.SubSubCategories
		if res.SubCategoryID != 0 {
			rows = childrenOf(rows, res.SubCategoryID)
		}
		res.SubSubCategoryID = BestMatch(p.SubSubCategory, rows)
	}

	return res
}

// BestMatch returns the ID of the row whose name best matches term, or 0.
func BestMatch(term string, rows []CategoryRow) int {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(rows) == 0 {
		return 0
	}

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = strings.ToLower(strings.TrimSpace(row.Name))
	}

	for i, name := range names {
		if name == term {
			return rows[i].ID
		}
	}

	for i, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(term, name) || strings.Contains(name, term) {
			return rows[i].ID
		}
	}

	for i, name := range names {
		if synonymMatch(term, name) {
			return rows[i].ID
		}
	}

	return 0
}

// synonymMatch reports whether term and name share a keyword-synonym entry:
// a keyword in one side and the keyword or one of its synonyms in the other.
func synonymMatch(term, name string) bool {
	for _, e := range categorySynonyms {
		if strings.Contains(term, e.keyword) && containsAny(name, e.keyword, e.synonyms) {
			return true
		}
		if strings.Contains(name, e.keyword) && containsAny(term, e.keyword, e.synonyms) {
			return true
		}
	}
	return false
}

func containsAny(s, keyword string, synonyms []string) bool {
	if strings.Contains(s, keyword) {
		return true
	}
	for _, syn := range synonyms {
		if strings.Contains(s, syn) {
			return true
		}
	}
	return false
}
