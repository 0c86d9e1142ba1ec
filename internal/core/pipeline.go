package core

// pipeline.go runs the complete conversion of one parsed file:
// detect -> suggest mapping -> apply override -> transform -> validate.
// It is shared by the HTTP service and the command-line converter.

import (
	"fmt"
	"time"
)

// ConvertOptions are the caller's adjustments to the automatic analysis.
type ConvertOptions struct {
	// Platform forces a profile instead of detection. Empty means detect;
	// UnknownPlatform disables platform synonyms.
	Platform string `json:"platform,omitempty"`

	// Mapping entries override the suggested mapping; an empty column
	// clears a suggestion.
	Mapping FieldMapping `json:"mapping"`
}

// Analysis is the automatic part of a conversion: platform detection and
// the suggested mapping.
type Analysis struct {
	Columns  []string        `json:"columns"`
	RowCount int             `json:"row_count"`
	Platform string          `json:"platform"`
	Detected bool            `json:"detected"`
	Scores   []PlatformScore `json:"scores"`
	Mapping  FieldMapping    `json:"mapping"`
}

// Analyze detects the platform of src and suggests a mapping.
func Analyze(src *SourceTable) Analysis {
	a := Analysis{
		Columns:  src.Columns,
		RowCount: len(src.Rows),
		Scores:   ScorePlatforms(src.Columns),
		Platform: UnknownPlatform,
	}
	if key, ok := DetectPlatform(src.Columns); ok {
		a.Platform = key
		a.Detected = true
	}
	a.Mapping = SuggestMapping(src.Columns, a.platformKey())
	return a
}

// platformKey returns the profile key, or "" when unknown.
func (a Analysis) platformKey() string {
	if a.Detected {
		return a.Platform
	}
	return ""
}

// Stats summarizes a conversion for display.
type Stats struct {
	OriginalColumns  int     `json:"original_columns"`
	MappedColumns    int     `json:"mapped_columns"`
	RequiredMapped   int     `json:"required_mapped"`
	RequiredTotal    int     `json:"required_total"`
	OptionalMapped   int     `json:"optional_mapped"`
	OptionalTotal    int     `json:"optional_total"`
	RowsRead         int     `json:"rows_read"`
	RowsProcessed    int     `json:"rows_processed"`
	RowsDropped      int     `json:"rows_dropped"`
	DefaultedRows    int     `json:"defaulted_category_rows"`
	PlatformDetected string  `json:"platform_detected"`
	ValidPercent     float64 `json:"valid_percent"`
}

// Conversion is the outcome of one pipeline run.
type Conversion struct {
	Platform       string           `json:"platform"`
	Mapping        FieldMapping     `json:"mapping"`
	CategorySource string           `json:"category_source,omitempty"`
	Report         ValidationReport `json:"report"`
	Warnings       []string         `json:"warnings"`
	Stats          Stats            `json:"stats"`
	Duration       time.Duration    `json:"duration_ns"`

	Table *Table `json:"-"`
}

// Convert runs the pipeline over src. analysis may be nil, in which case it
// is computed.
func (t *Transformer) Convert(src *SourceTable, analysis *Analysis, opts ConvertOptions) (*Conversion, error) {
	start := time.Now()

	if unknown := opts.Mapping.UnknownTargets(); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownField, unknown)
	}

	if analysis == nil {
		a := Analyze(src)
		analysis = &a
	}

	platform := analysis.platformKey()
	mapping := analysis.Mapping
	switch {
	case opts.Platform == "":
	case opts.Platform == UnknownPlatform:
		if platform != "" {
			platform = ""
			mapping = SuggestMapping(src.Columns, "")
		}
	default:
		if _, ok := Platform(opts.Platform); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, opts.Platform)
		}
		if opts.Platform != platform {
			platform = opts.Platform
			mapping = SuggestMapping(src.Columns, platform)
		}
	}
	mapping = mapping.Overlay(opts.Mapping)

	res := t.Transform(src, mapping, platform)
	report := Validate(res.Table)

	detected := platform
	if detected == "" {
		detected = UnknownPlatform
	}

	conv := &Conversion{
		Platform:       detected,
		Mapping:        mapping,
		CategorySource: res.CategorySource,
		Report:         report,
		Warnings:       res.Warnings,
		Table:          res.Table,
	}
	if conv.Warnings == nil {
		conv.Warnings = []string{}
	}
	conv.Stats = computeStats(src, mapping, res, report, detected)
	conv.Duration = time.Since(start)
	return conv, nil
}

func computeStats(src *SourceTable, mapping FieldMapping, res *TransformResult, report ValidationReport, platform string) Stats {
	st := Stats{
		OriginalColumns:  len(src.Columns),
		MappedColumns:    mapping.Len(),
		RequiredTotal:    len(RequiredFields()),
		OptionalTotal:    len(OptionalFields()),
		RowsRead:         res.InputRows,
		RowsProcessed:    len(res.Table.Records),
		RowsDropped:      res.DroppedRows,
		DefaultedRows:    res.DefaultedCategory,
		PlatformDetected: platform,
		ValidPercent:     report.ValidPercent(),
	}
	for _, spec := range TargetFields {
		if _, ok := mapping.Source(spec.Name); !ok {
			continue
		}
		if spec.Required {
			st.RequiredMapped++
		} else {
			st.OptionalMapped++
		}
	}
	return st
}
