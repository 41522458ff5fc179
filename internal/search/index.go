// Package search keeps a similarity index over the page collection.
package search

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/pages"
)

const collectionName = "pages"

const snippetLen = 160

// Result is one page hit.
type Result struct {
	PageID     string  `json:"page_id"`
	Name       string  `json:"name"`
	Snippet    string  `json:"snippet"`
	Similarity float32 `json:"similarity"`
}

// Index is an in-memory chromem collection of pages. It is rebuilt from
// scratch on every change; collections here are small.
type Index struct {
	mu  sync.RWMutex
	col *chromem.Collection
	ef  chromem.EmbeddingFunc
	log logrus.FieldLogger
}

// NewIndex creates an empty index.
func NewIndex(log logrus.FieldLogger) (*Index, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	x := &Index{ef: HashEmbedding(), log: log}
	col, err := x.newCollection()
	if err != nil {
		return nil, err
	}
	x.col = col
	return x, nil
}

func (x *Index) newCollection() (*chromem.Collection, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, x.ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return col, nil
}

// Rebuild replaces the indexed pages.
func (x *Index) Rebuild(ctx context.Context, list []pages.Page) error {
	col, err := x.newCollection()
	if err != nil {
		return err
	}

	if len(list) > 0 {
		docs := make([]chromem.Document, len(list))
		for i, p := range list {
			docs[i] = chromem.Document{
				ID: p.ID,
				// The name is indexed too, which also keeps empty pages
				// indexable.
				Content: p.Name + "\n" + p.Content,
				Metadata: map[string]string{
					"name":    p.Name,
					"snippet": snippet(p.Content),
				},
			}
		}
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return fmt.Errorf("indexing pages: %w", err)
		}
	}

	x.mu.Lock()
	x.col = col
	x.mu.Unlock()
	return nil
}

// Count returns the number of indexed pages.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.col.Count()
}

// Search returns up to limit pages ordered by similarity to query.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	x.mu.RLock()
	col := x.col
	x.mu.RUnlock()

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := col.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			PageID:     h.ID,
			Name:       h.Metadata["name"],
			Snippet:    h.Metadata["snippet"],
			Similarity: h.Similarity,
		}
	}
	return results, nil
}

// Follow indexes the store now and again after every change, until ctx
// is done. Rebuilds run on their own goroutine; bursts of changes collapse
// into one rebuild.
func (x *Index) Follow(ctx context.Context, store *pages.Store) {
	dirty := make(chan struct{}, 1)
	mark := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}
	store.Subscribe(func(pages.Event) { mark() })
	mark()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
				if err := x.Rebuild(ctx, store.List()); err != nil && ctx.Err() == nil {
					x.log.WithError(err).Warn("rebuilding search index")
				}
			}
		}
	}()
}

func snippet(content string) string {
	r := []rune(content)
	if len(r) <= snippetLen {
		return string(r)
	}
	return string(r[:snippetLen]) + "…"
}
