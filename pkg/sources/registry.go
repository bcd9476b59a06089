package sources

import "fmt"

// Registry resolves urls to the source that handles them.
type Registry struct {
	sources []Source
}

func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

func (r *Registry) Sources() []Source {
	return r.sources
}

// Lookup returns the first source that recognizes url.
func (r *Registry) Lookup(url string) (Source, URLKind, error) {
	for _, s := range r.sources {
		if kind := s.Classify(url); kind != KindUnknown {
			return s, kind, nil
		}
	}
	return nil, KindUnknown, fmt.Errorf("%s: %w", url, ErrUnsupportedURL)
}

// Watchlister returns the source that treats url as a watchlist, if any.
func (r *Registry) Watchlister(url string) (Watchlister, bool) {
	for _, s := range r.sources {
		if w, ok := s.(Watchlister); ok && w.IsWatchlist(url) {
			return w, true
		}
	}
	return nil, false
}
