package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/vibe-studio/internal/history"
	"github.com/ziadkadry99/vibe-studio/internal/kv"
)

var (
	// ErrNotFound is returned when a page id does not exist.
	ErrNotFound = errors.New("page not found")
	// ErrCorrupt is returned when the persisted collection cannot be decoded.
	ErrCorrupt = errors.New("persisted page collection is corrupt")
)

// Options configures a Store.
type Options struct {
	// DocumentPatterns overrides DefaultDocumentPatterns.
	DocumentPatterns []string
	// History, when set, receives add/delete/upload entries.
	History history.Recorder
	Logger  logrus.FieldLogger
}

// Store is the in-memory page collection mirrored to a kv.Store. All
// mutations are serialized and persisted before they return, so callers
// never observe a partially written collection.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	matcher  *Matcher
	history  history.Recorder
	log      logrus.FieldLogger
	pages    []Page
	activeID string
	subs     []func(Event)
}

// Open loads the collection from store. An absent key seeds a single
// default page.
func Open(ctx context.Context, store kv.Store, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		kv:      store,
		matcher: NewMatcher(opts.DocumentPatterns),
		history: opts.History,
		log:     log,
	}

	raw, found, err := store.Get(ctx, kv.KeyPages)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}
	if found {
		var loaded []Page
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrCorrupt, kv.KeyPages, err)
		}
		s.pages = loaded
	} else {
		s.pages = []Page{{ID: DefaultPageID, Name: DefaultPageName, Content: DefaultHTML}}
	}
	if len(s.pages) > 0 {
		s.activeID = s.pages[0].ID
	}
	active, found, err := store.Get(ctx, kv.KeyActivePage)
	if err != nil {
		return nil, fmt.Errorf("loading active page: %w", err)
	}
	if found && s.indexOf(active) >= 0 {
		s.activeID = active
	}

	return s, nil
}

// Matcher returns the document matcher the store filters uploads with.
func (s *Store) Matcher() *Matcher { return s.matcher }

// Subscribe registers fn to be called after every change. Callbacks run
// synchronously in mutation order and must not call back into the Store.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// List returns a copy of the collection in order.
func (s *Store) List() []Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of pages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Get returns the page with the given id.
func (s *Store) Get(id string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Page{}, false
	}
	return s.pages[i], true
}

// ActiveID returns the selected page id, or "" when nothing is selected.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the selected page.
func (s *Store) Active() (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.activeID)
	if i < 0 {
		return Page{}, false
	}
	return s.pages[i], true
}

// Add appends a page named name and selects it. An empty name means the
// caller's dialog was cancelled: nothing happens and ok is false.
func (s *Store) Add(ctx context.Context, name string) (page Page, ok bool, err error) {
	if name == "" {
		return Page{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	page = Page{ID: s.newID(), Name: name}
	if s.matcher.Match(name) {
		page.Content = DefaultHTML
	}

	if err := s.commit(ctx, append(s.snapshot(), page), page.ID); err != nil {
		return Page{}, false, err
	}

	s.record(ctx, history.Entry{
		Action:  history.ActionPageAdded,
		Subject: page.ID,
		Summary: fmt.Sprintf("added page %s", name),
	})
	s.log.WithFields(logrus.Fields{"id": page.ID, "name": name}).Debug("page added")
	s.notify(EventAdded, page.ID)
	return page, true, nil
}

// Delete removes the page. If it was active the first remaining page is
// selected, or the selection is cleared when none remain. Deleting an
// unknown id does nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	removed := s.pages[i]
	next := append(s.pages[:i:i], s.pages[i+1:]...)

	active := s.activeID
	if active == id {
		active = ""
		if len(next) > 0 {
			active = next[0].ID
		}
	}
	if err := s.commit(ctx, next, active); err != nil {
		return err
	}

	s.record(ctx, history.Entry{
		Action:        history.ActionPageDeleted,
		Subject:       id,
		Summary:       fmt.Sprintf("deleted page %s", removed.Name),
		PreviousValue: removed.Content,
	})
	s.log.WithFields(logrus.Fields{"id": id, "name": removed.Name}).Debug("page deleted")
	s.notify(EventDeleted, id)
	return nil
}

// SetActive selects the page with the given id.
func (s *Store) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return fmt.Errorf("selecting %s: %w", id, ErrNotFound)
	}
	if s.activeID == id {
		return nil
	}
	s.activeID = id
	s.saveActive(ctx)
	s.notify(EventSelected, id)
	return nil
}

// UpdateContent replaces the content of the page with the given id. An
// unknown id is a no-op.
func (s *Store) UpdateContent(ctx context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	if s.pages[i].Content == content {
		return nil
	}
	next := s.snapshot()
	next[i].Content = content
	if err := s.commit(ctx, next, s.activeID); err != nil {
		return err
	}
	s.notify(EventContent, id)
	return nil
}

// LoadBulk replaces the whole collection with the given files and selects
// the first loaded page. Only recognized documents are kept unless none of
// the files is one, in which case every file is used. All files are read
// before the collection is swapped; a read failure leaves the store
// untouched. An empty input is a no-op.
func (s *Store) LoadBulk(ctx context.Context, files []File) ([]Page, error) {
	if len(files) == 0 {
		return nil, nil
	}

	targets := s.filterDocuments(files)
	loaded := make([]Page, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range targets {
		g.Go(func() error {
			content, err := readFile(gctx, f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Name, err)
			}
			loaded[i] = Page{
				ID:      fmt.Sprintf("u%d_%s", i, strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
				Name:    f.Name,
				Content: content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, loaded, loaded[0].ID); err != nil {
		return nil, err
	}

	s.record(ctx, history.Entry{
		Action:  history.ActionProjectUploaded,
		Subject: loaded[0].ID,
		Summary: fmt.Sprintf("uploaded %d page(s)", len(loaded)),
	})
	s.log.WithFields(logrus.Fields{"inputs": len(files), "pages": len(loaded)}).Info("project uploaded")
	s.notify(EventLoaded, "")
	return s.snapshot(), nil
}

// filterDocuments keeps recognized documents, or everything when none is.
func (s *Store) filterDocuments(files []File) []File {
	var docs []File
	for _, f := range files {
		if s.matcher.Match(f.Name) {
			docs = append(docs, f)
		}
	}
	if len(docs) == 0 {
		return files
	}
	return docs
}

func readFile(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Open == nil {
		return "", errors.New("no reader")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) newID() string {
	for {
		id := uuid.NewString()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []Page {
	out := make([]Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// commit persists next and only then makes it the live collection, so a
// failed write leaves the store as it was. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []Page, activeID string) error {
	if next == nil {
		next = []Page{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding pages: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyPages, string(data)); err != nil {
		return fmt.Errorf("persisting pages: %w", err)
	}
	s.pages = next
	s.activeID = activeID
	s.saveActive(ctx)
	return nil
}

// saveActive persists the selection. A failed write only costs the
// selection on the next start, so it is logged rather than returned.
// Callers hold s.mu.
func (s *Store) saveActive(ctx context.Context) {
	if err := s.kv.Set(ctx, kv.KeyActivePage, s.activeID); err != nil {
		s.log.WithError(err).WithField("id", s.activeID).Warn("persisting active page")
	}
}

func (s *Store) record(ctx context.Context, entry history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Log(ctx, entry); err != nil {
		s.log.WithError(err).WithField("action", entry.Action).Warn("recording history")
	}
}

// notify fans the change out to subscribers. Callers hold s.mu.
func (s *Store) notify(kind EventKind, pageID string) {
	if len(s.subs) == 0 {
		return
	}
	ev := Event{Kind: kind, PageID: pageID, ActiveID: s.activeID, Pages: s.snapshot()}
	for _, fn := range s.subs {
		fn(ev)
	}
}
