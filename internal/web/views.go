package web

// views.go renders the HTML pages as templ components.
//
// The pages are small enough that they are written directly against
// templ.ComponentFunc; every piece of user data goes through
// templ.EscapeString.

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/core"
	"github.com/JonMunkholm/sheetview/internal/grid"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

const pageStyle = `
body{font-family:system-ui,sans-serif;margin:0;background:#f7f7f8;color:#1f2328}
header{display:flex;gap:.75rem;align-items:center;padding:.75rem 1rem;background:#fff;border-bottom:1px solid #d0d7de}
header h1{font-size:1.1rem;margin:0 auto 0 0}
main{padding:1rem}
button,.btn{font:inherit;padding:.35rem .8rem;border:1px solid #d0d7de;border-radius:6px;background:#fff;color:inherit;text-decoration:none;cursor:pointer}
.error{margin-top:1rem;padding:.75rem;border:1px solid #cf222e;border-radius:6px;background:#ffebe9}
.error code{font-size:.85em;color:#57606a}
table.grid{border-collapse:collapse;background:#fff}
.grid th,.grid td{border:1px solid #d0d7de;padding:.2rem .5rem;min-width:4rem;height:1.4rem;white-space:pre}
.grid th{background:#f0f2f4;font-weight:500;color:#57606a}
.grid td.num{text-align:right}
.grid td:focus{outline:2px solid #0969da}
`

// page writes the shared document shell around body.
func page(title string, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>` + pageStyle + `</style></head><body>`)
		body(h)
		h.raw(`</body></html>`)
		return h.err
	})
}

// UploadPage renders the file picker. Choosing a file uploads it and opens
// the viewer; a rejected file shows the error and keeps the picker.
func UploadPage(maxFileSize int64) templ.Component {
	return page("Open spreadsheet", func(h *htmlWriter) {
		h.raw(`<header><h1>Spreadsheet viewer</h1><a class="btn" href="/viewer">Start empty</a></header><main>`)
		h.raw(`<form id="upload" enctype="multipart/form-data">`)
		h.raw(`<p><label for="file">Choose an XLS, XLSX or CSV file (up to `)
		h.text(formatBytes(maxFileSize))
		h.raw(`)</label></p>`)
		h.raw(`<input id="file" name="file" type="file" accept="`)
		h.text(uploadAccept())
		h.raw(`"></form><div id="status" role="status"></div></main>`)
		h.raw(uploadScript)
	})
}

const uploadScript = `<script>
const input = document.getElementById('file');
const status = document.getElementById('status');
input.addEventListener('change', async () => {
  if (!input.files.length) return;
  const body = new FormData();
  body.append('file', input.files[0]);
  status.textContent = 'Reading ' + input.files[0].name + '...';
  const res = await fetch('/api/upload', {method: 'POST', body});
  if (res.ok) { window.location = '/viewer'; return; }
  let e = {message: 'Upload failed', action: '', code: ''};
  try { e = await res.json(); } catch (_) {}
  if (res.status === 422) { alert(e.message); window.location = '/viewer'; return; }
  status.className = 'error';
  status.textContent = e.message + (e.action ? '. ' + e.action : '') + (e.code ? ' (' + e.code + ')' : '');
  input.value = '';
});
</script>`

// ViewerPage renders g as a table with lettered column headers and 1-based
// row numbers. Cells are editable in place.
func ViewerPage(g grid.Grid) templ.Component {
	return page("Spreadsheet", func(h *htmlWriter) {
		h.raw(`<header><h1>Spreadsheet</h1>`)
		for _, f := range codec.ExportFormats() {
			h.raw(`<a class="btn" href="/api/export/`)
			h.text(string(f))
			h.raw(`" download="`)
			h.text(codec.ExportFileName(f))
			h.raw(`">Export `)
			h.text(string(f))
			h.raw(`</a>`)
		}
		h.raw(`<button id="new" type="button">Open New File</button></header><main>`)

		h.raw(`<table class="grid"><thead><tr><th></th>`)
		for c := 0; c < g.Width(); c++ {
			h.raw(`<th scope="col">`)
			h.text(grid.ColumnName(c))
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for r, row := range g {
			h.raw(`<tr><th scope="row">`)
			h.raw(strconv.Itoa(r + 1))
			h.raw(`</th>`)
			for c, cell := range row {
				h.raw(`<td contenteditable="true" data-r="`)
				h.raw(strconv.Itoa(r))
				h.raw(`" data-c="`)
				h.raw(strconv.Itoa(c))
				h.raw(`"`)
				if cell.Kind() == grid.KindNumber {
					h.raw(` class="num"`)
				}
				h.raw(`>`)
				h.text(cell.String())
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></main>`)
		h.raw(viewerScript)
	})
}

const viewerScript = `<script>
document.querySelectorAll('td[contenteditable]').forEach(td => {
  td.addEventListener('focus', () => { td.dataset.before = td.textContent; });
  td.addEventListener('blur', async () => {
    if (td.textContent === td.dataset.before) return;
    const res = await fetch('/api/cell', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({row: +td.dataset.r, col: +td.dataset.c, value: td.textContent}),
    });
    if (!res.ok) td.textContent = td.dataset.before;
  });
});
document.getElementById('new').addEventListener('click', async () => {
  await fetch('/api/new', {method: 'POST'});
  window.location = '/';
});
</script>`

// ErrorPage renders a user-facing error with its support code.
func ErrorPage(msg core.UserMessage) templ.Component {
	return page("Error", func(h *htmlWriter) {
		h.raw(`<header><h1>Spreadsheet viewer</h1><a class="btn" href="/">Back</a></header><main><div class="error"><p>`)
		h.text(msg.Message)
		h.raw(`</p>`)
		if msg.Action != "" {
			h.raw(`<p>`)
			h.text(msg.Action)
			h.raw(`</p>`)
		}
		h.raw(`<code>`)
		h.text(msg.Code)
		h.raw(`</code></div></main>`)
	})
}

// uploadAccept lists extensions and MIME types for the file input.
func uploadAccept() string {
	s := ""
	for _, f := range codec.UploadFormats() {
		s += "." + string(f) + ","
	}
	return s + codec.MIMEXLS + "," + codec.MIMEXLSX + "," + codec.MIMECSV
}

// formatBytes renders n with a binary unit, for example "50 MB".
func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit*unit && n%(unit*unit*unit) == 0:
		return strconv.FormatInt(n/(unit*unit*unit), 10) + " GB"
	case n >= unit*unit:
		return strconv.FormatInt(n/(unit*unit), 10) + " MB"
	case n >= unit:
		return strconv.FormatInt(n/unit, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
