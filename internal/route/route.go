// Package route decides, once per document load, whether a request path
// shows the editor shell or a published page.
package route

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Kind is the outcome of resolving a path.
type Kind string

const (
	KindEditor       Kind = "editor"
	KindPublished    Kind = "published"
	KindNotPublished Kind = "not_published"
)

// DefaultReserved are the path prefixes owned by the studio itself.
var DefaultReserved = []string{"/api/", "/ws/", "/assets/", "/healthz", "/@"}

// Result is a resolved path. Name is the decoded publish name; HTML is set
// only for KindPublished.
type Result struct {
	Kind Kind
	Name string
	HTML string
}

// Lookup finds published content by name.
type Lookup interface {
	Resolve(ctx context.Context, name string) (string, bool, error)
}

// Resolver maps request paths to results.
type Resolver struct {
	lookup   Lookup
	reserved []string
}

// NewResolver creates a Resolver. With no reserved prefixes it uses
// DefaultReserved.
func NewResolver(lookup Lookup, reserved ...string) *Resolver {
	if len(reserved) == 0 {
		reserved = DefaultReserved
	}
	return &Resolver{lookup: lookup, reserved: reserved}
}

// Reserved reports whether path belongs to the studio rather than a
// published page.
func (r *Resolver) Reserved(path string) bool {
	for _, p := range r.reserved {
		if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}

// Resolve inspects an escaped request path. A segment that is not valid
// percent-encoding is looked up as given and will normally come back
// not published.
func (r *Resolver) Resolve(ctx context.Context, escapedPath string) (Result, error) {
	if escapedPath == "" || escapedPath == "/" || r.Reserved(escapedPath) {
		return Result{Kind: KindEditor}, nil
	}

	raw := strings.TrimPrefix(escapedPath, "/")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return Result{Kind: KindNotPublished, Name: raw}, nil
	}

	html, found, err := r.lookup.Resolve(ctx, name)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %q: %w", name, err)
	}
	if !found {
		return Result{Kind: KindNotPublished, Name: name}, nil
	}
	return Result{Kind: KindPublished, Name: name, HTML: html}, nil
}
