package core

// validation.go checks a transformed Table against the target schema.
//
// Validation happens at two levels:
//  1. Column checks: every required field must be a column of the table
//  2. Value checks: required fields must be non-null; price must parse as a
//     number and category_id as an integer
//
// Missing columns and null required values are issues (the table is not
// valid). Unparseable price or category values are warnings only. The
// Validator never mutates the table.

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationReport summarizes the quality of a transformed table.
type ValidationReport struct {
	Valid        bool     `json:"valid"`
	Issues       []string `json:"issues"`
	Warnings     []string `json:"warnings"`
	TotalRows    int      `json:"total_rows"`
	CompleteRows int      `json:"complete_rows"`
}

// ValidPercent returns the share of complete rows, 0-100.
func (r ValidationReport) ValidPercent() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.CompleteRows) / float64(r.TotalRows) * 100
}

// Validate produces a ValidationReport for table.
func Validate(table *Table) ValidationReport {
	report := ValidationReport{
		Issues:   []string{},
		Warnings: []string{},
	}
	if table == nil {
		table = &Table{}
	}
	report.TotalRows = len(table.Records)

	required := RequiredFields()
	for _, field := range required {
		if !table.HasColumn(field) {
			report.Issues = append(report.Issues, fmt.Sprintf("Missing required column: %s", field))
			continue
		}
		if n := countNull(table, field); n > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf("Column '%s' has %d missing values", field, n))
		}
	}

	if table.HasColumn(FieldPrice) {
		if n := countInvalid(table, FieldPrice, isNumeric); n > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%d rows have invalid price format", n))
		}
	}

	if table.HasColumn(FieldCategoryID) {
		if n := countInvalid(table, FieldCategoryID, isInteger); n > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%d rows have invalid category_id format", n))
		}
	}

	for _, rec := range table.Records {
		complete := true
		for _, field := range required {
			if !rec.Get(field).Valid {
				complete = false
				break
			}
		}
		if complete {
			report.CompleteRows++
		}
	}

	report.Valid = len(report.Issues) == 0
	return report
}

func countNull(table *Table, field string) int {
	n := 0
	for _, rec := range table.Records {
		if !rec.Get(field).Valid {
			n++
		}
	}
	return n
}

// countInvalid counts non-null values of field that fail ok.
func countInvalid(table *Table, field string, ok func(string) bool) int {
	n := 0
	for _, rec := range table.Records {
		v := rec.Get(field)
		if v.Valid && !ok(v.String) {
			n++
		}
	}
	return n
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}
