// Package templates holds the HTML components of the converter UI.
//
// Components are plain templ.Component values so handlers can render them
// as full pages or as HTMX fragments.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PlatformOption is one entry of the platform selector.
type PlatformOption struct {
	Key   string
	Label string
}

// PageData is the content of the upload page.
type PageData struct {
	Title          string
	Platforms      []PlatformOption
	RequiredFields []string
	OptionalFields []string
	MaxUploadMB    int64
}

// ReportData is a conversion summary rendered after a convert request.
type ReportData struct {
	SessionID     string
	Platform      string
	Valid         bool
	RowsRead      int
	RowsProcessed int
	RowsDropped   int
	ValidPercent  float64
	Issues        []string
	Warnings      []string
	Columns       []string
	Preview       [][]string
}

// writer emits HTML parts and keeps the first write error.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// Page renders the full upload page.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		w.text(data.Title)
		w.raw(`</title><style>` + pageCSS + `</style></head><body><main>`)
		w.raw(`<h1>`)
		w.text(data.Title)
		w.raw(`</h1>`)

		w.raw(`<section><h2>1. Upload a product export</h2>`)
		w.raw(`<form id="upload-form"><input type="file" name="file" accept=".csv,.xlsx,.xls" required>`)
		w.raw(`<button type="submit">Analyze</button></form><p class="hint">CSV or Excel, up to `)
		w.text(fmt.Sprintf("%d MB", data.MaxUploadMB))
		w.raw(`. Example files: `)
		for i, p := range data.Platforms {
			if i > 0 {
				w.raw(`, `)
			}
			w.raw(`<a href="/api/examples/`)
			w.text(p.Key)
			w.raw(`">`)
			w.text(p.Label)
			w.raw(`</a>`)
		}
		w.raw(`</p></section>`)

		w.raw(`<section id="mapping" hidden><h2>2. Review the mapping</h2>`)
		w.raw(`<p>Detected platform: <strong id="platform"></strong></p>`)
		w.raw(`<label>Platform <select id="platform-select"><option value="">Detected</option><option value="unknown">None</option>`)
		for _, p := range data.Platforms {
			w.raw(`<option value="`)
			w.text(p.Key)
			w.raw(`">`)
			w.text(p.Label)
			w.raw(`</option>`)
		}
		w.raw(`</select></label><table><thead><tr><th>Field</th><th>Source column</th></tr></thead><tbody>`)
		fieldRows(w, data.RequiredFields, true)
		fieldRows(w, data.OptionalFields, false)
		w.raw(`</tbody></table><button id="convert">Convert</button></section>`)

		w.raw(`<section id="result" hidden><h2>3. Download</h2><div id="report"></div>`)
		w.raw(`<a id="download-csv">CSV</a> <a id="download-xlsx">Excel</a></section>`)
		w.raw(`<div id="error"></div></main><script>` + pageJS + `</script></body></html>`)
		return w.err
	})
}

func fieldRows(w *writer, fields []string, required bool) {
	for _, f := range fields {
		w.raw(`<tr><td>`)
		w.text(f)
		if required {
			w.raw(` <span class="req">*</span>`)
		}
		w.raw(`</td><td><select class="field-map" data-field="`)
		w.text(f)
		w.raw(`"></select></td></tr>`)
	}
}

// ErrorAlert renders an error fragment with an optional suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div class="alert" role="alert"><strong>`)
		w.text(message)
		w.raw(`</strong>`)
		if action != "" {
			w.raw(`<p>`)
			w.text(action)
			w.raw(`</p>`)
		}
		if code != "" {
			w.raw(`<small>Error code: `)
			w.text(code)
			w.raw(`</small>`)
		}
		w.raw(`</div>`)
		return w.err
	})
}

// Report renders the summary of a conversion with a preview table.
func Report(data ReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		status := "valid"
		if !data.Valid {
			status = "has issues"
		}
		w.raw(`<div class="report" data-session="`)
		w.text(data.SessionID)
		w.raw(`"><p>Platform: <strong>`)
		w.text(data.Platform)
		w.raw(`</strong>. Output `)
		w.text(status)
		w.raw(`.</p><p>`)
		w.text(fmt.Sprintf("%d of %d rows converted (%d dropped), %.1f%% complete.",
			data.RowsProcessed, data.RowsRead, data.RowsDropped, data.ValidPercent))
		w.raw(`</p>`)

		list(w, "issues", data.Issues)
		list(w, "warnings", data.Warnings)

		if len(data.Columns) > 0 {
			w.raw(`<table class="preview"><thead><tr>`)
			for _, c := range data.Columns {
				w.raw(`<th>`)
				w.text(c)
				w.raw(`</th>`)
			}
			w.raw(`</tr></thead><tbody>`)
			for _, row := range data.Preview {
				w.raw(`<tr>`)
				for _, cell := range row {
					w.raw(`<td>`)
					w.text(cell)
					w.raw(`</td>`)
				}
				w.raw(`</tr>`)
			}
			w.raw(`</tbody></table>`)
		}
		w.raw(`</div>`)
		return w.err
	})
}

func list(w *writer, class string, items []string) {
	if len(items) == 0 {
		return
	}
	w.raw(`<ul class="` + class + `">`)
	for _, it := range items {
		w.raw(`<li>`)
		w.text(it)
		w.raw(`</li>`)
	}
	w.raw(`</ul>`)
}

// Render is a convenience for tests and handlers that need the HTML as a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

const pageCSS = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
main{max-width:960px;margin:auto}section{margin-bottom:2rem}
table{border-collapse:collapse;width:100%}td,th{border:1px solid #ddd;padding:4px 8px;text-align:left}
.req{color:#c00}.hint{color:#666;font-size:.9rem}
.alert{background:#fee;border:1px solid #c00;padding:1rem}.warnings li{color:#a60}.issues li{color:#c00}`

const pageJS = `
let session = null, columns = [];
const $ = (s) => document.querySelector(s);
function showError(body) {
  $('#error').innerHTML = '<div class="alert">' + (body.message || 'Request failed') +
    (body.action ? '<p>' + body.action + '</p>' : '') + '</div>';
}
$('#upload-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  $('#error').innerHTML = '';
  const res = await fetch('/api/analyze', {method: 'POST', body: new FormData(e.target)});
  const body = await res.json();
  if (!res.ok) { showError(body); return; }
  session = body.session_id; columns = body.columns;
  $('#platform').textContent = body.platform;
  document.querySelectorAll('.field-map').forEach((sel) => {
    sel.innerHTML = '<option value="">(none)</option>';
    columns.forEach((c) => { const o = document.createElement('option'); o.value = c; o.textContent = c; sel.appendChild(o); });
    sel.value = (body.mapping.fields || {})[sel.dataset.field] || '';
  });
  $('#mapping').hidden = false;
});
$('#convert').addEventListener('click', async () => {
  const fields = {};
  document.querySelectorAll('.field-map').forEach((sel) => { fields[sel.dataset.field] = sel.value; });
  const res = await fetch('/api/convert/' + session, {
    method: 'POST', headers: {'Content-Type': 'application/json', 'HX-Request': 'true'},
    body: JSON.stringify({platform: $('#platform-select').value, mapping: {fields: fields}}),
  });
  const html = await res.text();
  if (!res.ok) { $('#error').innerHTML = html; return; }
  $('#report').innerHTML = html;
  $('#download-csv').href = '/api/download/' + session + '?format=csv';
  $('#download-xlsx').href = '/api/download/' + session + '?format=xlsx';
  $('#result').hidden = false;
});`
