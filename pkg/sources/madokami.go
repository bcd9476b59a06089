package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/utils"
	"github.com/rs/zerolog/log"
)

const MadokamiURL = "https://manga.madokami.al"

// Madokami reads the HTTP basic auth protected file listings of a Madokami
// host. Every chapter is a single archive file.
type Madokami struct {
	api     *utils.API
	baseURL string

	seriesRe     *regexp.Regexp
	chapterRe    *regexp.Regexp
	watchedRe    *regexp.Regexp
	translatedRe *regexp.Regexp
}

var _ Source = (*Madokami)(nil)
var _ Watchlister = (*Madokami)(nil)

func NewMadokami(username, password string) *Madokami {
	return NewMadokamiWithURL(MadokamiURL, username, password)
}

func NewMadokamiWithURL(baseURL, username, password string) *Madokami {
	baseURL = strings.TrimRight(baseURL, "/")
	host := regexp.QuoteMeta(baseURL)
	return &Madokami{
		api:          utils.NewAPI(baseURL, utils.WithBasicAuth(username, password)),
		baseURL:      baseURL,
		seriesRe:     regexp.MustCompile(`^` + host + `/(?:Manga|Raws)/[^.]+$`),
		chapterRe:    regexp.MustCompile(`^` + host + `/(?:Manga|Raws)/.*/.*/.*\..*`),
		watchedRe:    regexp.MustCompile(`^` + host + `/user/watched\.opml$`),
		translatedRe: regexp.MustCompile(`^` + host + `/Manga/[^.]+$`),
	}
}

func (m *Madokami) Name() string {
	return "madokami"
}

func (m *Madokami) Classify(url string) URLKind {
	switch {
	case m.seriesRe.MatchString(url):
		return KindSeries
	case m.chapterRe.MatchString(url):
		return KindChapter
	default:
		return KindUnknown
	}
}

func (m *Madokami) ParseEntry(label string) (string, []string, bool) {
	return ParseLabel(label)
}

func (m *Madokami) fetch(ctx context.Context, url string) (*http.Response, error) {
	log.Debug().Str("url", url).Msg("fetching")
	resp, err := m.api.Fetch(ctx, url)
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("madokami: %w", ErrLogin)
	}
	return resp, err
}

func (m *Madokami) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := m.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func (m *Madokami) FetchListing(ctx context.Context, seriesURL string) (*data.Series, error) {
	seriesURL = strings.TrimRight(seriesURL, "/")
	base, err := url.Parse(seriesURL + "/")
	if err != nil {
		return nil, err
	}

	doc, err := m.fetchDocument(ctx, seriesURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("span.title").First().Text())
	if title == "" {
		return nil, fmt.Errorf("series title not found: %w", ErrScraping)
	}

	chapters, err := WalkListing(doc, base, m.ParseEntry)
	if err != nil {
		return nil, err
	}

	series := &data.Series{URL: seriesURL, Name: title, Following: true, Chapters: chapters}
	for _, c := range chapters {
		c.SeriesName = title
	}
	return series, nil
}

// FetchChapter opens the chapter archive. The caller closes Content.Body.
func (m *Madokami) FetchChapter(ctx context.Context, chapter *data.Chapter) (*Content, error) {
	resp, err := m.fetch(ctx, chapter.URL)
	if err != nil {
		return nil, err
	}
	return &Content{Body: resp.Body, Size: resp.ContentLength}, nil
}

// SeriesURL strips the file name from a chapter url. The result matches the
// url stored by FetchListing, which has no trailing slash.
func (m *Madokami) SeriesURL(_ context.Context, chapterURL string) (string, error) {
	i := strings.LastIndex(chapterURL, "/")
	if m.Classify(chapterURL) != KindChapter || i < 0 {
		return "", fmt.Errorf("%s: %w", chapterURL, ErrUnsupportedURL)
	}
	return chapterURL[:i], nil
}

func (m *Madokami) IsWatchlist(url string) bool {
	return m.watchedRe.MatchString(url)
}

// Watchlist returns the series urls of an OPML watchlist. Raw directories
// are left out so a series is not followed twice.
func (m *Madokami) Watchlist(ctx context.Context, watchlistURL string) ([]string, error) {
	doc, err := m.fetchDocument(ctx, watchlistURL)
	if err != nil {
		return nil, err
	}

	outlines := doc.Find("outline")
	if outlines.Length() == 0 && doc.Find("opml").Length() == 0 {
		return nil, fmt.Errorf("watchlist is not OPML: %w", ErrScraping)
	}

	urls := []string{}
	outlines.Each(func(_ int, o *goquery.Selection) {
		// The HTML parser lowercases attribute names.
		href, ok := o.Attr("htmlurl")
		if ok && m.translatedRe.MatchString(href) {
			urls = append(urls, href)
		}
	})
	return urls, nil
}
