// Package publish keeps the registry of published page snapshots: a
// persisted mapping from publish-name to the HTML captured at publish time.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/history"
	"github.com/ziadkadry99/vibe-studio/internal/kv"
)

var (
	// ErrCorrupt is returned when the persisted registry cannot be decoded.
	ErrCorrupt = errors.New("persisted publish registry is corrupt")
	// ErrReservedName is returned for names whose link would be served by
	// the studio itself instead of the published page.
	ErrReservedName = errors.New("publish name is reserved")
)

// ReservedNames are the top-level paths the studio serves. A page published
// under one of them could never be reached by its link.
var ReservedNames = []string{"api", "ws", "assets", "healthz", ".", ".."}

// ValidateName rejects names that cannot round-trip through a link.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("publish name is required")
	}
	for _, reserved := range ReservedNames {
		if name == reserved {
			return fmt.Errorf("%q: %w", name, ErrReservedName)
		}
	}
	return nil
}

// Registry is a write-mostly map of publish-name to HTML. Entries are
// never removed; publishing an existing name overwrites it.
type Registry struct {
	mu      sync.Mutex
	kv      kv.Store
	history history.Recorder
	log     logrus.FieldLogger
}

// NewRegistry creates a Registry over store. rec may be nil.
func NewRegistry(store kv.Store, rec history.Recorder, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{kv: store, history: rec, log: log}
}

// Publish stores content under name and returns the shareable address
// formed from origin and the percent-encoded name.
func (r *Registry) Publish(ctx context.Context, origin, name, content string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	previous, existed := entries[name]
	entries[name] = content

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encoding registry: %w", err)
	}
	if err := r.kv.Set(ctx, kv.KeyPublished, string(data)); err != nil {
		return "", fmt.Errorf("persisting registry: %w", err)
	}

	if r.history != nil {
		summary := fmt.Sprintf("published %s", name)
		if existed {
			summary = fmt.Sprintf("republished %s", name)
		}
		err := r.history.Log(ctx, history.Entry{
			Action:        history.ActionPagePublished,
			Subject:       name,
			Summary:       summary,
			PreviousValue: previous,
			NewValue:      content,
		})
		if err != nil {
			r.log.WithError(err).WithField("name", name).Warn("recording publish history")
		}
	}

	link := Link(origin, name)
	r.log.WithFields(logrus.Fields{"name": name, "overwrote": existed, "bytes": len(content)}).Info("page published")
	return link, nil
}

// Resolve returns the snapshot published under name. A missing registry,
// a missing key and an empty snapshot all report found=false.
func (r *Registry) Resolve(ctx context.Context, name string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return "", false, err
	}
	content, ok := entries[name]
	if !ok || content == "" {
		return "", false, nil
	}
	return content, true, nil
}

// Names lists every published name in sorted order.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// load reads the whole registry; an absent key is an empty registry.
func (r *Registry) load(ctx context.Context) (map[string]string, error) {
	raw, found, err := r.kv.Get(ctx, kv.KeyPublished)
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	entries := map[string]string{}
	if !found {
		return entries, nil
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", ErrCorrupt, kv.KeyPublished, err)
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

// Link joins origin and the escaped name into a shareable address. The
// name is escaped as a single path component, so "@", "/", "?" and "#"
// never leak into the path structure.
func Link(origin, name string) string {
	return strings.TrimRight(origin, "/") + "/" + EscapeName(name)
}

// EscapeName percent-encodes name as one URI component, with spaces as
// %20 rather than "+".
func EscapeName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
