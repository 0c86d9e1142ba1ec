package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/logging"
	"github.com/JonMunkholm/catalogconv/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error. Code is the support
// code from core.MapError; Message and Action are for people.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errorStatuses maps service sentinels to HTTP statuses. The first entry
// found in the error chain wins.
var errorStatuses = []struct {
	target error
	status int
}{
	{core.ErrSessionNotFound, http.StatusNotFound},
	{core.ErrNotConverted, http.StatusConflict},
	{core.ErrTooManyConversions, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{core.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
	{core.ErrUnknownField, http.StatusBadRequest},
	{core.ErrUnknownPlatform, http.StatusBadRequest},
	{core.ErrEmptyFile, http.StatusBadRequest},
	{core.ErrNoHeader, http.StatusBadRequest},
}

// statusFor picks the HTTP status for a service error. Errors with a known
// support code but no sentinel are client errors; everything else is a 500.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	if core.IsUserFacing(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondErr responds with the status derived from err.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// respondError logs err with its support code and writes the user message
// as an HTMX fragment, JSON or plain text depending on the request.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	log := logging.WithFields(r.Context(),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected")
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for or sent JSON. API routes
// default to JSON.
func wantsJSON(r *http.Request) bool {
	for _, h := range []string{"Accept", "Content-Type"} {
		if strings.Contains(r.Header.Get(h), "application/json") {
			return true
		}
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
