package core

// transform.go applies a FieldMapping to a SourceTable and produces the
// target Table.
//
// The steps run in a fixed order:
//  1. Copy mapped source values into the 15 target fields
//  2. Resolve categories per row when a category-source column is available
//  3. Normalize price
//  4. Rebuild variant_attributes from every variant-like source column
//  5. Clean image URLs
//  6. Fill defaults (category_id "1", variant_quantity "0")
//  7. Drop rows with a blank name or description, then all-null rows
//
// The Transformer holds no per-call state, so repeated calls with the same
// input produce the same output.

import (
	"fmt"
	"strconv"
)

// DefaultCategoryID is used for every unresolved category level.
const DefaultCategoryID = 1

// DefaultVariantQuantity is used when no quantity is mapped or present.
const DefaultVariantQuantity = "0"

// TransformResult is the output of a transform run.
type TransformResult struct {
	Table    *Table
	Warnings []string

	// Counters for reporting.
	InputRows         int
	DroppedRows       int
	CategorySource    string // Column used for category resolution, if any
	DefaultedCategory int    // Rows whose category_id fell back to the default
}

// Transformer converts source tables to the target schema.
type Transformer struct {
	resolve func(CategoryPath) Resolution
}

// NewTransformer creates a transformer resolving categories against ref.
func NewTransformer(ref *ReferenceData) *Transformer {
	return &Transformer{resolve: NewResolver(ref).Resolve}
}

// Transform converts src using mapping. platform is the detected profile key
// and may be empty; it supplies category-source candidates when the mapping
// does not name one.
func (t *Transformer) Transform(src *SourceTable, mapping FieldMapping, platform string) *TransformResult {
	res := &TransformResult{InputRows: len(src.Rows)}
	idx := src.Index()

	records := make([]Record, len(src.Rows))
	for i := range records {
		records[i] = NewRecord()
	}

	// 1. Copy mapped values
	for _, target := range mapping.Targets() {
		col, _ := mapping.Source(target)
		pos, ok := idx[col]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Mapped column '%s' for %s not found in file", col, target))
			continue
		}
		for i := range records {
			records[i].SetText(target, ToPgText(src.Cell(i, pos)))
		}
	}

	// 2. Categories
	catCol := categorySourceColumn(src, mapping, platform)
	if catCol != "" {
		res.CategorySource = catCol
		unresolved, err := t.applyCategories(src, idx[catCol], records)
		res.DefaultedCategory = unresolved
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Category mapping failed: %v. Using default category.", err))
			for _, rec := range records {
				rec.Set(FieldCategoryID, strconv.Itoa(DefaultCategoryID))
				rec.SetNull(FieldSubCategoryID)
				rec.SetNull(FieldSubSubCategoryID)
			}
			res.DefaultedCategory = len(records)
		}
	}

	// 3. Price
	for _, rec := range records {
		rec.SetText(FieldPrice, CleanPrice(rec.Get(FieldPrice)))
	}

	// 4. Variant attributes
	applyVariantAttributes(src, records)

	// 5. Image URLs
	for _, rec := range records {
		rec.SetText(FieldImageURLs, CleanImageURLs(rec.Get(FieldImageURLs)))
	}

	// 6. Defaults
	for _, rec := range records {
		if !rec.Get(FieldCategoryID).Valid {
			rec.Set(FieldCategoryID, strconv.Itoa(DefaultCategoryID))
			res.DefaultedCategory++
		}
		if !rec.Get(FieldVariantQuantity).Valid {
			rec.Set(FieldVariantQuantity, DefaultVariantQuantity)
		}
	}

	// 7. Required-field and empty-row filters
	table := NewTable()
	for _, rec := range records {
		if isBlank(rec.Get(FieldName)) || isBlank(rec.Get(FieldDescription)) {
			continue
		}
		if rec.AllNull() {
			continue
		}
		table.Records = append(table.Records, rec)
	}
	res.Table = table
	res.DroppedRows = res.InputRows - len(table.Records)

	if res.DefaultedCategory > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d rows have no resolvable category and use default category_id %d", res.DefaultedCategory, DefaultCategoryID))
	}

	return res
}

// applyCategories parses and resolves the category column of every row and
// returns how many rows had no resolvable top-level category.
// A panic inside resolution is turned into an error so the whole batch can
// fall back to default IDs.
func (t *Transformer) applyCategories(src *SourceTable, pos int, records []Record) (unresolved int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	for i, rec := range records {
		path := ParseNestedCategory(src.Cell(i, pos))
		ids := t.resolve(path)
		if ids.CategoryID == 0 {
			unresolved++
		}
		rec.Set(FieldCategoryID, strconv.Itoa(orDefault(ids.CategoryID)))
		rec.Set(FieldSubCategoryID, strconv.Itoa(orDefault(ids.SubCategoryID)))
		rec.Set(FieldSubSubCategoryID, strconv.Itoa(orDefault(ids.SubSubCategoryID)))
	}
	return unresolved, nil
}

func orDefault(id int) int {
	if id == 0 {
		return DefaultCategoryID
	}
	return id
}

// categorySourceColumn picks the column holding nested category strings.
// An explicit mapping entry wins; otherwise the platform profile's
// candidates are tried in order against the exact column names.
func categorySourceColumn(src *SourceTable, mapping FieldMapping, platform string) string {
	idx := src.Index()
	if mapping.CategorySource != "" {
		if _, ok := idx[mapping.CategorySource]; ok {
			return mapping.CategorySource
		}
	}

	profile, ok := Platform(platform)
	if !ok {
		return ""
	}
	for _, cand := range profile.CategorySources() {
		if _, ok := idx[cand]; ok {
			return cand
		}
	}
	return ""
}

// applyVariantAttributes overwrites variant_attributes for every row when
// the source has at least one variant-like column.
func applyVariantAttributes(src *SourceTable, records []Record) {
	var cols []string
	var positions []int
	for i, col := range src.Columns {
		if IsVariantColumn(col) {
			cols = append(cols, col)
			positions = append(positions, i)
		}
	}
	if len(cols) == 0 {
		return
	}

	values := make([]string, len(positions))
	for i, rec := range records {
		for j, pos := range positions {
			values[j] = src.Cell(i, pos)
		}
		rec.SetText(FieldVariantAttributes, VariantAttributesJSON(cols, values))
	}
}
