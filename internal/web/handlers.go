package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
	"github.com/JonMunkholm/catalogconv/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var platforms []templates.PlatformOption
	for _, p := range core.Platforms() {
		platforms = append(platforms, templates.PlatformOption{Key: p.Key, Label: p.Label})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Page(templates.PageData{
		Title:          "Product Catalog Converter",
		Platforms:      platforms,
		RequiredFields: core.RequiredFields(),
		OptionalFields: core.OptionalFields(),
		MaxUploadMB:    s.cfg.Upload.MaxFileSize / (1024 * 1024),
	}).Render(r.Context(), w)
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status          string             `json:"status"`
	Sessions        int                `json:"sessions"`
	Conversions     core.LimiterStatus `json:"conversions"`
	ReferenceLoaded bool               `json:"reference_loaded"`
}

// handleHealth reports liveness plus a little state for operators.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		Sessions:        s.service.Sessions().Len(),
		Conversions:     s.service.Limiter().Status(),
		ReferenceLoaded: !s.service.Reference().Empty(),
	})
}

// handleStatus returns the current state of the conversion limiter.
// Used for monitoring and to check if the system can accept more work.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// FieldInfo describes one target schema field.
type FieldInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// SchemaResponse is returned by /api/schema.
type SchemaResponse struct {
	Fields         []FieldInfo `json:"fields"`
	RequiredFields []string    `json:"required_fields"`
	OptionalFields []string    `json:"optional_fields"`
	Platforms      []string    `json:"supported_platforms"`
}

// handleSchema describes the target product schema.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	resp := SchemaResponse{
		RequiredFields: core.RequiredFields(),
		OptionalFields: core.OptionalFields(),
	}
	for _, spec := range core.TargetFields {
		resp.Fields = append(resp.Fields, FieldInfo{
			Name:     spec.Name,
			Type:     fieldTypeToString(spec.Type),
			Required: spec.Required,
		})
	}
	for _, p := range core.Platforms() {
		resp.Platforms = append(resp.Platforms, p.Key)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlatformInfo describes one registered platform profile.
type PlatformInfo struct {
	Key             string              `json:"key"`
	Label           string              `json:"label"`
	Fields          map[string][]string `json:"fields"`
	CategorySources []string            `json:"category_sources,omitempty"`
}

// handlePlatforms lists the platform profiles with their column synonyms.
func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	profiles := core.Platforms()
	out := make([]PlatformInfo, 0, len(profiles))
	for _, p := range profiles {
		info := PlatformInfo{
			Key:             p.Key,
			Label:           p.Label,
			Fields:          make(map[string][]string),
			CategorySources: p.CategorySources(),
		}
		for _, f := range p.Fields {
			if f.Target == core.CategorySourceKey {
				continue
			}
			info.Fields[f.Target] = f.Synonyms
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExample downloads a platform's sample export as CSV.
func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "platform")
	profile, ok := core.Platform(key)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnknownPlatform, key), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, profile.ExampleColumns, profile.ExampleRows); err != nil {
		respondErr(w, r, err)
		return
	}

	filename := profile.Key + "_example.csv"
	w.Header().Set("Content-Type", tabular.FormatCSV.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// fieldTypeToString converts a FieldType to a string for JSON.
func fieldTypeToString(ft core.FieldType) string {
	switch ft {
	case core.FieldNumeric:
		return "numeric"
	case core.FieldInteger:
		return "integer"
	case core.FieldJSON:
		return "json"
	case core.FieldURLList:
		return "url_list"
	default:
		return "text"
	}
}
