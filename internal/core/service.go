package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/catalogconv/internal/logging"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

// OutputPrefix is prepended to the input file stem for downloads.
const OutputPrefix = "catalog_products"

// DefaultPreviewRows is the number of rows returned in previews.
const DefaultPreviewRows = 10

// ServiceConfig holds the tunables of a Service. Zero values select defaults.
type ServiceConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration // Per conversion; 0 means none
	SessionTTL    time.Duration
	PreviewRows   int
}

// Recorder receives conversion metrics.
type Recorder interface {
	ObserveAnalysis(platform string)
	ObserveConversion(platform, outcome string, rowsIn, rowsOut, defaulted int, d time.Duration)
	SetActiveSessions(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string) {}
func (nopRecorder) ObserveConversion(string, string, int, int, int, time.Duration) {}
func (nopRecorder) SetActiveSessions(int) {}

// Service provides the conversion workflow used by the web layer: analyze an
// upload, convert it with an optional mapping override, then export it.
type Service struct {
	ref         *ReferenceData
	transformer *Transformer
	limiter     *ConversionLimiter
	sessions    *SessionStore
	recorder    Recorder
	cfg         ServiceConfig
}

// NewService creates a Service resolving categories against ref.
// ref is shared read-only across all conversions.
func NewService(ref *ReferenceData, cfg ServiceConfig) *Service {
	if ref == nil {
		ref = &ReferenceData{}
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}

	s := &Service{
		ref:         ref,
		transformer: NewTransformer(ref),
		limiter:     NewConversionLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		sessions:    NewSessionStore(cfg.SessionTTL),
		recorder:    nopRecorder{},
		cfg:         cfg,
	}
	s.sessions.OnChange(func(n int) { s.recorder.SetActiveSessions(n) })
	return s
}

// SetRecorder installs a metrics recorder. Call before serving requests.
func (s *Service) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Reference returns the reference data in use.
func (s *Service) Reference() *ReferenceData {
	return s.ref
}

// Sessions returns the session store, for the sweeper.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Limiter returns the conversion limiter, for status and shutdown.
func (s *Service) Limiter() *ConversionLimiter {
	return s.limiter
}

// AnalyzeResult is returned by AnalyzeUpload.
type AnalyzeResult struct {
	SessionID string         `json:"session_id"`
	FileName  string         `json:"file_name"`
	Format    tabular.Format `json:"format"`
	Analysis
	Preview [][]string `json:"preview"`
}

// AnalyzeUpload parses an uploaded file, detects its platform, suggests a
// mapping and opens a session for the following steps.
func (s *Service) AnalyzeUpload(ctx context.Context, fileName string, r io.Reader) (*AnalyzeResult, error) {
	format, err := tabular.DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	src, err := ReadSource(r, format)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := Analyze(src)
	id := s.sessions.Create(Session{
		FileName: fileName,
		Format:   format,
		Source:   src,
		Analysis: analysis,
	})
	s.recorder.ObserveAnalysis(analysis.Platform)

	logging.FromContext(logging.WithSession(ctx, id)).Info("upload analyzed",
		"file", fileName,
		"format", string(format),
		"columns", len(src.Columns),
		"rows", len(src.Rows),
		"platform", analysis.Platform,
		"mapped_fields", analysis.Mapping.Len(),
		"client_ip", ClientIPFromContext(ctx),
	)

	return &AnalyzeResult{
		SessionID: id,
		FileName:  fileName,
		Format:    format,
		Analysis:  analysis,
		Preview:   headRows(src.Rows, s.cfg.PreviewRows),
	}, nil
}

// ConvertResult is returned by Convert.
type ConvertResult struct {
	SessionID string `json:"session_id"`
	*Conversion
	Columns []string   `json:"columns"`
	Preview [][]string `json:"preview"`
}

// Convert applies opts to a session's analysis, transforms and validates
// the data, and stores the result for export.
func (s *Service) Convert(ctx context.Context, sessionID string, opts ConvertOptions) (*ConvertResult, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.WithSession(ctx, sessionID), "file", sess.FileName)

	conv, err := s.transformer.Convert(sess.Source, &sess.Analysis, opts)
	if err != nil {
		s.recorder.ObserveConversion(sess.Analysis.Platform, "error", len(sess.Source.Rows), 0, 0, 0)
		logger.Warn("conversion rejected", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.sessions.SetConversion(sessionID, conv); err != nil {
		return nil, err
	}

	outcome := "ok"
	if !conv.Report.Valid {
		outcome = "invalid"
	}
	s.recorder.ObserveConversion(conv.Platform, outcome,
		conv.Stats.RowsRead, conv.Stats.RowsProcessed, conv.Stats.DefaultedRows, conv.Duration)

	logger.Info("conversion completed",
		"platform", conv.Platform,
		"mapped_fields", conv.Mapping.Len(),
		"rows_in", conv.Stats.RowsRead,
		"rows_out", conv.Stats.RowsProcessed,
		"rows_dropped", conv.Stats.RowsDropped,
		"valid", conv.Report.Valid,
		"warnings", len(conv.Warnings),
		"duration_ms", conv.Duration.Milliseconds(),
	)

	return &ConvertResult{
		SessionID:  sessionID,
		Conversion: conv,
		Columns:    conv.Table.Columns,
		Preview:    headRows(conv.Table.Strings(), s.cfg.PreviewRows),
	}, nil
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export renders a converted session in format f.
func (s *Service) Export(sessionID string, f tabular.Format) (*ExportFile, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Conversion == nil {
		return nil, ErrNotConverted
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, sess.Conversion.Table, f); err != nil {
		return nil, fmt.Errorf("export %s: %w", sessionID, err)
	}

	return &ExportFile{
		Name:        tabular.OutputName(OutputPrefix, sess.FileName, f),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// CloseSession discards a session.
func (s *Service) CloseSession(sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return ErrSessionNotFound
	}
	return nil
}

// Shutdown waits for running conversions to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ReadSource parses r in format f into a SourceTable.
func ReadSource(r io.Reader, f tabular.Format) (*SourceTable, error) {
	sheet, err := tabular.Read(r, f)
	if err != nil {
		return nil, err
	}
	return &SourceTable{Columns: sheet.Columns, Rows: sheet.Rows}, nil
}

// WriteTable writes a converted table to w in format f.
func WriteTable(w io.Writer, t *Table, f tabular.Format) error {
	return tabular.Write(w, f, t.Columns, t.Strings())
}

// headRows returns at most n rows.
func headRows(rows [][]string, n int) [][]string {
	if len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		return [][]string{}
	}
	return rows
}
