package core

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// Normalizer Benchmarks
// ============================================================================

// BenchmarkCleanPrice benchmarks price normalization.
// This runs once per row on every conversion.
func BenchmarkCleanPrice(b *testing.B) {
	testCases := []pgtype.Text{
		text("19.99"),
		text("$1,234.56"),
		text("19,99"),
		text("(12.50)"),
		text("  999.99  "),
		text("€1234.56"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanPrice(tc)
		}
	}
}

func BenchmarkVariantAttributesJSON(b *testing.B) {
	cols := []string{"Option1 Name", "Option1 Value", "Option2 Name", "Option2 Value"}
	vals := []string{"Color", "Red", "Size", "M"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		VariantAttributesJSON(cols, vals)
	}
}

// ============================================================================
// Category Benchmarks
// ============================================================================

// BenchmarkBestMatch_Synonym benchmarks the slowest path: no exact or
// substring hit, so every synonym entry is checked against every row.
func BenchmarkBestMatch_Synonym(b *testing.B) {
	rows := make([]CategoryRow, 200)
	for i := range rows {
		rows[i] = CategoryRow{ID: i + 1, Name: fmt.Sprintf("Category %d", i)}
	}
	rows[199].Name = "Apparel"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BestMatch("Clothes", rows)
	}
}

// ============================================================================
// Transform Benchmarks
// ============================================================================

func benchmarkSource(n int) *SourceTable {
	src := &SourceTable{
		Columns: []string{"Title", "Body", "Price", "Vendor", "Category", "Color", "Size", "Images"},
		Rows:    make([][]string, n),
	}
	for i := range src.Rows {
		src.Rows[i] = []string{
			fmt.Sprintf("Product %d", i),
			"A product description",
			"$1,299.00",
			"Acme",
			"Apparel > Shirts > T-Shirts",
			"Red",
			"M",
			"https://example.com/a.jpg|https://example.com/b.jpg",
		}
	}
	return src
}

// BenchmarkTransform_1000 benchmarks a full transform of 1000 rows with
// category resolution.
func BenchmarkTransform_1000(b *testing.B) {
	src := benchmarkSource(1000)
	mapping := mappingOf(
		FieldName, "Title",
		FieldDescription, "Body",
		FieldPrice, "Price",
		FieldBrand, "Vendor",
		FieldImageURLs, "Images",
	)
	mapping.CategorySource = "Category"
	tr := NewTransformer(testReference())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Transform(src, mapping, "")
	}
}
