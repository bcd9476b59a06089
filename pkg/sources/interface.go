package sources

import (
	"context"
	"errors"
	"io"

	"github.com/kerbaras/mangadir/pkg/data"
)

var (
	// ErrLogin means the site rejected the configured credentials.
	ErrLogin = errors.New("login rejected")
	// ErrScraping means a fetched page lacks the structure a listing needs.
	// An empty listing is not an error.
	ErrScraping = errors.New("unexpected page structure")
	// ErrUnsupportedURL is returned when no source recognizes a url.
	ErrUnsupportedURL = errors.New("unsupported url")
)

type URLKind int

const (
	KindUnknown URLKind = iota
	KindSeries
	KindChapter
)

// Content is what a source hands back for a chapter: either one archive
// stream or an ordered list of page URLs.
type Content struct {
	Body io.ReadCloser
	// Size is the length of Body, or -1 when unknown.
	Size int64

	Pages []string
}

// Source is implemented by every supported site.
type Source interface {
	Name() string
	Classify(url string) URLKind

	// FetchListing returns the series at url with its current chapters.
	FetchListing(ctx context.Context, url string) (*data.Series, error)
	// ParseEntry extracts a chapter label and release groups from a listing
	// entry. ok is false for entries that are not chapters.
	ParseEntry(label string) (chapter string, groups []string, ok bool)
	FetchChapter(ctx context.Context, chapter *data.Chapter) (*Content, error)
	// SeriesURL returns the listing url a chapter url belongs to.
	SeriesURL(ctx context.Context, chapterURL string) (string, error)
}

// Watchlister is implemented by sources that export a list of followed
// series.
type Watchlister interface {
	IsWatchlist(url string) bool
	Watchlist(ctx context.Context, url string) ([]string, error)
}
