package studio

import (
	"fmt"

	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/playback"
)

// Sandbox policies for the two iframe surfaces.
const (
	PublishedSandbox = "allow-scripts allow-same-origin allow-forms"
	PreviewSandbox   = PublishedSandbox + " allow-pointer-lock allow-popups allow-modals"
)

// EditorView is what the editor pane shows.
type EditorView struct {
	PageID  string `json:"page_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Typing  bool   `json:"typing"`
	Cursor  int    `json:"cursor"`
	Label   string `json:"label,omitempty"`
}

// PreviewView is what the preview pane shows. When Visible is false the
// pane is not rendered at all.
type PreviewView struct {
	Visible bool   `json:"visible"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	Sandbox string `json:"sandbox,omitempty"`
}

// StatusBar is the footer line.
type StatusBar struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// State is the full shell snapshot served to clients.
type State struct {
	Pages         []pages.Page   `json:"pages"`
	ActiveID      string         `json:"active_id"`
	Editor        EditorView     `json:"editor"`
	Preview       PreviewView    `json:"preview"`
	Status        StatusBar      `json:"status"`
	Playback      playback.State `json:"playback"`
	LastPublished string         `json:"last_published,omitempty"`
	DefaultSpeed  int            `json:"default_speed"`
}

// TypingLabel is the editor footer shown while playback runs.
func TypingLabel(cursor int) string {
	return fmt.Sprintf("CBS Mode typing… %d", cursor)
}

// StatusLine renders the footer for n pages.
func StatusLine(n int, preview bool) StatusBar {
	right := "Live Preview: Off"
	if preview {
		right = "Live Preview: On"
	}
	return StatusBar{Left: fmt.Sprintf("Ready — %d page(s)", n), Right: right}
}

// Editor returns the editor pane model. With no active page it is an empty
// surface.
func (s *Shell) Editor() EditorView {
	return editorView(s.pages, s.engine.State())
}

func editorView(store *pages.Store, ps playback.State) EditorView {
	var v EditorView
	if page, ok := store.Active(); ok {
		v.PageID = page.ID
		v.Name = page.Name
		v.Content = page.Content
	}
	if ps.Typing() {
		v.Typing = true
		v.Cursor = ps.Revealed
		v.Label = TypingLabel(ps.Revealed)
	}
	return v
}

// Preview returns the preview pane model.
func (s *Shell) Preview() PreviewView {
	if !s.PreviewVisible() {
		return PreviewView{}
	}
	v := PreviewView{Visible: true, Sandbox: PreviewSandbox}
	if page, ok := s.pages.Active(); ok {
		v.Name = page.Name
		v.Content = page.Content
	}
	return v
}

// Status returns the footer.
func (s *Shell) Status() StatusBar {
	return StatusLine(s.pages.Len(), s.PreviewVisible())
}

// State returns the full snapshot.
func (s *Shell) State() State {
	ps := s.engine.State()
	return State{
		Pages:         s.pages.List(),
		ActiveID:      s.pages.ActiveID(),
		Editor:        editorView(s.pages, ps),
		Preview:       s.Preview(),
		Status:        s.Status(),
		Playback:      ps,
		LastPublished: s.LastPublished(),
		DefaultSpeed:  s.DefaultSpeed(),
	}
}
