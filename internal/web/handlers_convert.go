package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/logging"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
	"github.com/JonMunkholm/catalogconv/internal/web/templates"
)

var (
	errNoFile         = errors.New("no file provided")
	errInvalidMapping = errors.New("invalid mapping")
)

// maxMappingBody bounds the JSON body of a convert request.
const maxMappingBody = 1 << 20

// handleAnalyze parses an uploaded export, detects its platform and opens a
// conversion session.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondErr(w, r, err)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.AnalyzeUpload(ctx, header.Filename, file)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleConvert applies the caller's mapping override to a session and
// converts it. The body is a JSON core.ConvertOptions; an empty body accepts
// the suggestion as-is.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	r = r.WithContext(WithRequestMetadata(r.Context(), r))

	var opts core.ConvertOptions
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMappingBody))
		if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidMapping, err), http.StatusBadRequest)
			return
		}
	}

	result, err := s.service.Convert(r.Context(), sessionID, opts)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Report(templates.ReportData{
			SessionID:     result.SessionID,
			Platform:      result.Platform,
			Valid:         result.Report.Valid,
			RowsRead:      result.Stats.RowsRead,
			RowsProcessed: result.Stats.RowsProcessed,
			RowsDropped:   result.Stats.RowsDropped,
			ValidPercent:  result.Stats.ValidPercent,
			Issues:        result.Report.Issues,
			Warnings:      append(append([]string{}, result.Warnings...), result.Report.Warnings...),
			Columns:       result.Columns,
			Preview:       result.Preview,
		}).Render(r.Context(), w)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleDownload serves a converted session as CSV or Excel.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	r = r.WithContext(WithRequestMetadata(r.Context(), r))

	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	file, err := s.service.Export(sessionID, format)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("conversion downloaded",
		"format", string(format),
		"bytes", len(file.Data),
	)

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Write(file.Data)
}

// handleCloseSession discards a session and its converted data.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(WithRequestMetadata(r.Context(), r))
	if err := s.service.CloseSession(chi.URLParam(r, "sessionID")); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
