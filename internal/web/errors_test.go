package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/catalogconv/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"session", fmt.Errorf("get: %w", core.ErrSessionNotFound), http.StatusNotFound},
		{"not converted", core.ErrNotConverted, http.StatusConflict},
		{"busy", core.ErrTooManyConversions, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"format", core.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"unknown field", core.ErrUnknownField, http.StatusBadRequest},
		{"no header", core.ErrNoHeader, http.StatusBadRequest},
		{"csv parse", errors.New("parse csv: record on line 3: wrong number of fields"), http.StatusBadRequest},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   bool
	}{
		{"api path", "/api/schema", nil, true},
		{"accept header", "/", map[string]string{"Accept": "application/json"}, true},
		{"json body", "/", map[string]string{"Content-Type": "application/json"}, true},
		{"page", "/", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := wantsJSON(req); got != tt.want {
				t.Errorf("wantsJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}
