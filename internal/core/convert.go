package core

// convert.go provides the per-cell normalizers applied by the Transformer.
//
// These functions handle the messy reality of vendor exports:
//   - Currency symbols, thousands separators and decimal commas in prices
//   - Several image URLs packed into one cell with mixed separators
//   - Variant options spread over many "Option1 Value"-style columns
//
// Every normalizer returns pgtype.Text with Valid=false when nothing usable
// remains, so the value is written as an empty cell.

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// priceStripRegex removes everything except digits and separators.
	priceStripRegex = regexp.MustCompile(`[^\d.,]`)

	// imageSplitRegex splits a cell holding several image URLs.
	imageSplitRegex = regexp.MustCompile(`[;,|\n]`)

	// attrNameRegex strips non-word characters from attribute names.
	attrNameRegex = regexp.MustCompile(`[^\p{L}\p{N}_]`)
)

// VariantKeywords select the source columns that describe variant attributes.
var VariantKeywords = []string{"color", "size", "style", "option", "variant", "attribute"}

// CleanPrice normalizes a raw price cell to a plain decimal string.
//
// "$1,234.56" -> "1234.56", "19,99" -> "19.99", "abc" -> null.
// When both ',' and '.' appear the comma is a thousands separator; a lone
// comma is a decimal separator.
func CleanPrice(v pgtype.Text) pgtype.Text {
	if !v.Valid {
		return pgtype.Text{}
	}

	s := priceStripRegex.ReplaceAllString(strings.TrimSpace(v.String), "")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasComma && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: FormatPrice(f), Valid: true}
}

// FormatPrice renders f with the shortest representation that round-trips.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CleanImageURLs keeps only the http(s) URLs of a multi-URL cell and joins
// them with commas. Returns null when none remain.
func CleanImageURLs(v pgtype.Text) pgtype.Text {
	if !v.Valid {
		return pgtype.Text{}
	}
	s := strings.TrimSpace(v.String)
	if s == "" {
		return pgtype.Text{}
	}

	var urls []string
	for _, part := range imageSplitRegex.Split(s, -1) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "http") {
			urls = append(urls, part)
		}
	}
	if len(urls) == 0 {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.Join(urls, ","), Valid: true}
}

// IsVariantColumn reports whether a source column describes a variant attribute.
func IsVariantColumn(col string) bool {
	lc := strings.ToLower(col)
	for _, kw := range VariantKeywords {
		if strings.Contains(lc, kw) {
			return true
		}
	}
	return false
}

// SanitizeAttributeName turns a column header into a JSON key:
// lowercased, spaces to underscores, non-word characters removed.
func SanitizeAttributeName(col string) string {
	s := strings.ReplaceAll(strings.ToLower(col), " ", "_")
	return attrNameRegex.ReplaceAllString(s, "")
}

// attribute is one key/value pair of a variant attribute object.
type attribute struct {
	key   string
	value string
}

// VariantAttributesJSON builds a JSON object from the non-empty variant
// cells of one row. Keys keep first-seen column order; a later column with
// the same sanitized name overwrites the value. Returns null when empty.
func VariantAttributesJSON(columns, values []string) pgtype.Text {
	var attrs []attribute
	pos := make(map[string]int)

	for i, col := range columns {
		if i >= len(values) {
			break
		}
		val := strings.TrimSpace(values[i])
		if val == "" {
			continue
		}
		key := SanitizeAttributeName(col)
		if p, ok := pos[key]; ok {
			attrs[p].value = val
			continue
		}
		pos[key] = len(attrs)
		attrs = append(attrs, attribute{key: key, value: val})
	}

	if len(attrs) == 0 {
		return pgtype.Text{}
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, a := range attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(a.key)
		v, _ := json.Marshal(a.value)
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return pgtype.Text{String: b.String(), Valid: true}
}

// isBlank reports whether a nullable value is null or only whitespace.
func isBlank(v pgtype.Text) bool {
	return !v.Valid || strings.TrimSpace(v.String) == ""
}
