package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType represents the expected data type for a target field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldInteger
	FieldJSON
	FieldURLList
)

// FieldSpec describes a single column of the target product schema.
type FieldSpec struct {
	Name     string    // Target column name, as written to the output header
	Type     FieldType // Expected data type after transformation
	Required bool      // Must be mapped and non-null for a complete row
	Keywords []string  // Fuzzy fallback keywords, tried in order
}

// Target field names.
const (
	FieldName              = "name"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldBrand             = "brand"
	FieldCategoryID        = "category_id"
	FieldSubCategoryID     = "sub_category_id"
	FieldSubSubCategoryID  = "sub_sub_category_id"
	FieldCertification     = "certification"
	FieldCountryOfOrigin   = "country_of_origin"
	FieldDetails           = "details"
	FieldCare              = "care"
	FieldSizeFit           = "size_fit"
	FieldVariantAttributes = "variant_attributes"
	FieldVariantQuantity   = "variant_quantity"
	FieldImageURLs         = "image_urls"

	// CategorySourceKey is the platform profile entry listing columns that
	// hold a nested category string. It is not a target field.
	CategorySourceKey = "category_source"
)

// TargetFields is the fixed output schema: required fields first, then optional.
var TargetFields = []FieldSpec{
	{Name: FieldName, Type: FieldText, Required: true, Keywords: []string{"title", "name", "product"}},
	{Name: FieldDescription, Type: FieldText, Required: true, Keywords: []string{"description", "body", "content", "details"}},
	{Name: FieldPrice, Type: FieldNumeric, Required: true, Keywords: []string{"price", "cost", "amount"}},
	{Name: FieldBrand, Type: FieldText, Required: true, Keywords: []string{"brand", "vendor", "manufacturer"}},
	{Name: FieldCategoryID, Type: FieldInteger, Required: true, Keywords: []string{"category", "type", "classification"}},
	{Name: FieldSubCategoryID, Type: FieldInteger},
	{Name: FieldSubSubCategoryID, Type: FieldInteger},
	{Name: FieldCertification, Type: FieldText},
	{Name: FieldCountryOfOrigin, Type: FieldText},
	{Name: FieldDetails, Type: FieldText},
	{Name: FieldCare, Type: FieldText},
	{Name: FieldSizeFit, Type: FieldText},
	{Name: FieldVariantAttributes, Type: FieldJSON},
	{Name: FieldVariantQuantity, Type: FieldInteger, Keywords: []string{"quantity", "stock", "inventory", "qty"}},
	{Name: FieldImageURLs, Type: FieldURLList, Keywords: []string{"image", "photo", "picture", "url"}},
}

// fieldIndex maps a target field name to its position in TargetFields.
var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(TargetFields))
	for i, spec := range TargetFields {
		idx[spec.Name] = i
	}
	return idx
}()

// FieldNames returns the target schema column names in output order.
func FieldNames() []string {
	names := make([]string, len(TargetFields))
	for i, spec := range TargetFields {
		names[i] = spec.Name
	}
	return names
}

// RequiredFields returns the names of the required target fields.
func RequiredFields() []string {
	var names []string
	for _, spec := range TargetFields {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

// OptionalFields returns the names of the optional target fields.
func OptionalFields() []string {
	var names []string
	for _, spec := range TargetFields {
		if !spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

// IsTargetField reports whether name is one of the target schema fields.
func IsTargetField(name string) bool {
	_, ok := fieldIndex[name]
	return ok
}

// SourceTable is the parsed input file: a header row plus data rows.
// Cells are raw strings; an empty cell is treated as null.
type SourceTable struct {
	Columns []string
	Rows    [][]string
}

// HeaderIndex maps column names to their position in a source row.
type HeaderIndex map[string]int

// Index builds an exact-name HeaderIndex for the table's columns.
func (t *SourceTable) Index() HeaderIndex {
	idx := make(HeaderIndex, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}

// Cell returns the raw value at (row, col), or "" when the row is short.
func (t *SourceTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Record is one output row. It always carries every target field, in
// TargetFields order; invalid entries are null.
type Record []pgtype.Text

// NewRecord returns a record with every field null.
func NewRecord() Record {
	return make(Record, len(TargetFields))
}

// Get returns the value of the named field.
func (r Record) Get(field string) pgtype.Text {
	i, ok := fieldIndex[field]
	if !ok || i >= len(r) {
		return pgtype.Text{}
	}
	return r[i]
}

// Set stores a non-null value for the named field.
func (r Record) Set(field, value string) {
	if i, ok := fieldIndex[field]; ok {
		r[i] = pgtype.Text{String: value, Valid: true}
	}
}

// SetText stores v as-is, preserving nullness.
func (r Record) SetText(field string, v pgtype.Text) {
	if i, ok := fieldIndex[field]; ok {
		r[i] = v
	}
}

// SetNull clears the named field.
func (r Record) SetNull(field string) {
	if i, ok := fieldIndex[field]; ok {
		r[i] = pgtype.Text{}
	}
}

// AllNull reports whether every field of the record is null.
func (r Record) AllNull() bool {
	for _, v := range r {
		if v.Valid {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Table is the converted output: the target schema columns plus records.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable returns an empty table with the full target schema header.
func NewTable() *Table {
	return &Table{Columns: FieldNames()}
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Strings renders the records as string rows in column order, with null
// cells written as empty strings.
func (t *Table) Strings() [][]string {
	rows := make([][]string, len(t.Records))
	for i, rec := range t.Records {
		row := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			if v := rec.Get(col); v.Valid {
				row[j] = v.String
			}
		}
		rows[i] = row
	}
	return rows
}

// ToPgText converts a raw cell to pgtype.Text.
// Returns invalid (null) only for the empty string; whitespace is preserved.
func ToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
