// Package pages holds the studio's page collection: the ordered list of
// named text pages, the active selection, and its persisted mirror in the
// key-value store.
package pages

import (
	"bytes"
	"io"
	"os"
)

// Page is a named unit of editable text content.
type Page struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// File is one input to a bulk upload. Name may be path-qualified
// ("site/about.html"); it becomes the page name verbatim.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// BytesFile wraps in-memory content as an upload input.
func BytesFile(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DiskFile reads the upload input from path when the upload runs.
func DiskFile(name, path string) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// EventKind identifies what changed in the store.
type EventKind string

const (
	EventLoaded   EventKind = "loaded"
	EventAdded    EventKind = "added"
	EventDeleted  EventKind = "deleted"
	EventSelected EventKind = "selected"
	EventContent  EventKind = "content"
)

// Event describes a store change. Pages is a snapshot taken after the
// change; PageID names the page the change was about, if any.
type Event struct {
	Kind     EventKind `json:"kind"`
	PageID   string    `json:"page_id,omitempty"`
	ActiveID string    `json:"active_id"`
	Pages    []Page    `json:"pages"`
}

// DefaultPageID is the id of the page seeded into an empty store.
const DefaultPageID = "p1"

// DefaultPageName is the name of the page seeded into an empty store.
const DefaultPageName = "index.html"

// DefaultHTML seeds new document pages.
const DefaultHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Vibe Studio</title>
  <style>
    body { font-family: Inter, ui-sans-serif, system-ui, -apple-system; margin: 0; padding: 2rem; background: #0f1221; color: #e6e8ff; }
    .card { background: linear-gradient(180deg, rgba(255,255,255,0.06), rgba(255,255,255,0.02)); border: 1px solid rgba(255,255,255,0.12); padding: 24px; border-radius: 16px; box-shadow: 0 10px 30px rgba(0,0,0,0.35); }
    h1 { margin: 0 0 8px; }
    p { opacity: 0.85; }
    .btn { display:inline-block; margin-top: 16px; padding: 10px 16px; background:#6366f1; color:#fff; border-radius:10px; text-decoration:none }
  </style>
</head>
<body>
  <div class="card">
    <h1>Welcome to Vibe Studio</h1>
    <p>Edit code on the left and toggle live preview from File &rarr; Preview.</p>
    <a class="btn" href="#">Nice!</a>
  </div>
</body>
</html>`
