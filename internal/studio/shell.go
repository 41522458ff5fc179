// Package studio is the navigation shell: it owns the preview toggle and
// turns top bar and sidebar actions into Page Store, Publish Registry and
// playback engine calls.
package studio

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/dialog"
	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/playback"
	"github.com/ziadkadry99/vibe-studio/internal/publish"
)

// Dialog labels shown for each prompted action.
const (
	PublishLabel  = "Publish name (letters, numbers, dashes)"
	AddPageLabel  = "New page name (e.g., page.html)"
	PlaybackLabel = "CBS typing speed (1-100)"
)

// Shell composes the stores behind the editor UI.
type Shell struct {
	pages    *pages.Store
	registry *publish.Registry
	engine   *playback.Engine
	log      logrus.FieldLogger

	mu           sync.Mutex
	preview      bool
	defaultSpeed int
	lastLink     string
	previewSubs  []func(bool)
}

// New creates a Shell with the preview visible.
func New(store *pages.Store, registry *publish.Registry, engine *playback.Engine, log logrus.FieldLogger) *Shell {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Shell{
		pages:        store,
		registry:     registry,
		engine:       engine,
		log:          log,
		preview:      true,
		defaultSpeed: playback.DefaultSpeed,
	}
}

// SetDefaultSpeed changes the speed suggested by the playback dialog.
// Values outside 1..100 are ignored.
func (s *Shell) SetDefaultSpeed(speed int) {
	if speed < playback.MinSpeed || speed > playback.MaxSpeed {
		return
	}
	s.mu.Lock()
	s.defaultSpeed = speed
	s.mu.Unlock()
}

func (s *Shell) Pages() *pages.Store         { return s.pages }
func (s *Shell) Registry() *publish.Registry { return s.registry }
func (s *Shell) Engine() *playback.Engine    { return s.engine }

// OnPreview registers fn to be called with the new visibility after every
// toggle.
func (s *Shell) OnPreview(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewSubs = append(s.previewSubs, fn)
}

// PreviewVisible reports whether the preview pane is shown.
func (s *Shell) PreviewVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// TogglePreview flips the preview pane and returns the new visibility.
// Pages are not touched.
func (s *Shell) TogglePreview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = !s.preview
	for _, fn := range s.previewSubs {
		fn(s.preview)
	}
	return s.preview
}

// LastPublished returns the link from the most recent publish in this
// session, or "".
func (s *Shell) LastPublished() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLink
}

// Publish snapshots the active page under a prompted name. ok is false when
// there is no active page or the dialog was cancelled.
func (s *Shell) Publish(ctx context.Context, p dialog.Prompter, origin string) (link string, ok bool, err error) {
	page, found := s.pages.Active()
	if !found {
		return "", false, nil
	}

	resp, err := p.Prompt(ctx, dialog.Request{Label: PublishLabel, Default: pages.TrimExt(page.Name)})
	if err != nil {
		return "", false, err
	}
	if !resp.OK {
		return "", false, nil
	}

	link, err = s.registry.Publish(ctx, origin, resp.Value, page.Content)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	s.lastLink = link
	s.mu.Unlock()
	return link, true, nil
}

// Upload replaces the collection with a project's documents. Zero files is
// a no-op.
func (s *Shell) Upload(ctx context.Context, files []pages.File) ([]pages.Page, error) {
	return s.pages.LoadBulk(ctx, files)
}

// AddPage prompts for a name and appends a new page, suggesting
// page-<n+1>.html.
func (s *Shell) AddPage(ctx context.Context, p dialog.Prompter) (pages.Page, bool, error) {
	def := fmt.Sprintf("page-%d.html", s.pages.Len()+1)
	resp, err := p.Prompt(ctx, dialog.Request{Label: AddPageLabel, Default: def})
	if err != nil {
		return pages.Page{}, false, err
	}
	if !resp.OK {
		return pages.Page{}, false, nil
	}
	return s.pages.Add(ctx, resp.Value)
}

// DeletePage removes a page without prompting.
func (s *Shell) DeletePage(ctx context.Context, id string) error {
	return s.pages.Delete(ctx, id)
}

// Select makes id the active page.
func (s *Shell) Select(ctx context.Context, id string) error {
	return s.pages.SetActive(ctx, id)
}

// Edit stores a keystroke's worth of content for page id.
func (s *Shell) Edit(ctx context.Context, id, content string) error {
	return s.pages.UpdateContent(ctx, id, content)
}

// DefaultSpeed is the speed the playback dialog suggests.
func (s *Shell) DefaultSpeed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultSpeed
}

// StartPlayback prompts for a speed and replays the active page. It reports
// false when there is no active page or the dialog was cancelled.
func (s *Shell) StartPlayback(ctx context.Context, p dialog.Prompter) (bool, error) {
	page, found := s.pages.Active()
	if !found {
		return false, nil
	}

	def := strconv.Itoa(s.DefaultSpeed())

	resp, err := p.Prompt(ctx, dialog.Request{Label: PlaybackLabel, Default: def})
	if err != nil {
		return false, err
	}
	speed, ok := playback.ParseSpeed(resp.Value)
	if !resp.OK || !ok {
		return false, nil
	}

	// The run stays bound to the page it started on even if the selection
	// moves while it plays.
	id := page.ID
	sink := playback.SinkFunc(func(text string) {
		if err := s.pages.UpdateContent(context.Background(), id, text); err != nil {
			s.log.WithError(err).WithField("page", id).Warn("playback write failed")
		}
	})
	if err := s.engine.Start(sink, page.Content, playback.Interval(speed)); err != nil {
		return false, fmt.Errorf("starting playback: %w", err)
	}
	return true, nil
}

// StopPlayback cancels a run in progress. Content revealed so far stays.
func (s *Shell) StopPlayback() {
	s.engine.Cancel()
}

// Close tears down the playback engine.
func (s *Shell) Close() {
	s.engine.Close()
}
