package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/integrations"
	"github.com/kerbaras/mangadir/pkg/sources"
	"github.com/kerbaras/mangadir/pkg/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrNotListed is returned by Get when a chapter url is missing from the
// listing of its own series.
var ErrNotListed = errors.New("chapter not in series listing")

// Repository interface needed by downloader
type Repository interface {
	CreateSeries(s *data.Series) error
	GetSeriesByURL(url string) (*data.Series, error)
	GetSeriesByAlias(alias string) (*data.Series, error)
	ListSeries(followingOnly bool) ([]*data.Series, error)
	SetFollowing(s *data.Series, following bool) error
	SaveChapter(seriesID int64, c *data.Chapter, ignore bool) (bool, error)
	MarkDownloaded(url string) error
	MarkNew(url string) error
	Ignore(url string) error
	GetChapters(seriesID int64) ([]*data.Chapter, error)
	ListChaptersByStatus(status data.Status) ([]*data.Chapter, error)
}

// Progress receives the progress of a single chapter download.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFunc starts reporting for chapter. total counts bytes, or pages
// when pages is set. A negative total is unknown.
type ProgressFunc func(chapter *data.Chapter, total int64, pages bool) Progress

type noProgress struct{}

func (noProgress) Add(int) error { return nil }
func (noProgress) Finish() error { return nil }

type progressWriter struct {
	p Progress
}

// Write never fails. A broken progress display must not abort a download.
func (w progressWriter) Write(b []byte) (int, error) {
	if err := w.p.Add(len(b)); err != nil {
		log.Debug().Err(err).Msg("progress update failed")
	}
	return len(b), nil
}

type Option func(*Downloader)

func WithProgress(fn ProgressFunc) Option {
	return func(d *Downloader) {
		d.progress = fn
	}
}

// WithPageRate sets how fast pages of page based sources are fetched.
func WithPageRate(limit rate.Limit) Option {
	return func(d *Downloader) {
		d.limiter = rate.NewLimiter(limit, 1)
	}
}

// Downloader follows series, keeps their chapter records current and writes
// chapter archives under the layout.
type Downloader struct {
	repo     Repository
	registry *sources.Registry
	layout   integrations.Layout
	client   *utils.API
	limiter  *rate.Limiter
	progress ProgressFunc
}

func NewDownloader(repo Repository, registry *sources.Registry, layout integrations.Layout, opts ...Option) *Downloader {
	d := &Downloader{
		repo:     repo,
		registry: registry,
		layout:   layout,
		client:   utils.NewAPI(""),
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1), // 2 req/sec
		progress: func(*data.Chapter, int64, bool) Progress { return noProgress{} },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Downloader) Layout() integrations.Layout {
	return d.layout
}

// Follow follows the series at url and records its chapters. A watchlist url
// follows every series it lists; failures there are collected and the rest
// of the list is still followed, except for rejected credentials.
func (d *Downloader) Follow(ctx context.Context, url string, ignore bool) ([]*data.Series, error) {
	w, ok := d.registry.Watchlister(url)
	if !ok {
		series, err := d.follow(ctx, url, ignore)
		if err != nil {
			return nil, err
		}
		return []*data.Series{series}, nil
	}

	urls, err := w.Watchlist(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var (
		followed []*data.Series
		errs     []error
	)
	for _, u := range urls {
		series, err := d.follow(ctx, u, ignore)
		if errors.Is(err, sources.ErrLogin) {
			return followed, err
		}
		if err != nil {
			log.Warn().Err(err).Str("url", u).Msg("failed to follow series")
			errs = append(errs, err)
			continue
		}
		followed = append(followed, series)
	}
	return followed, errors.Join(errs...)
}

func (d *Downloader) follow(ctx context.Context, url string, ignore bool) (*data.Series, error) {
	src, kind, err := d.registry.Lookup(url)
	if err != nil {
		return nil, err
	}
	if kind == sources.KindChapter {
		if url, err = src.SeriesURL(ctx, url); err != nil {
			return nil, err
		}
	}

	listing, err := src.FetchListing(ctx, url)
	if err != nil {
		return nil, err
	}

	series, err := d.repo.GetSeriesByURL(listing.URL)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		series = listing
		series.Following = true
		if err := d.repo.CreateSeries(series); err != nil {
			return nil, err
		}
		log.Debug().Str("series", series.Name).Str("url", series.URL).Msg("following series")
	case err != nil:
		return nil, err
	case series.Following:
		log.Warn().Str("series", series.Name).Msg("already following")
	default:
		series.Name = listing.Name
		if err := d.repo.SetFollowing(series, true); err != nil {
			return nil, err
		}
	}

	series.Chapters = listing.Chapters
	d.saveChapters(series, listing.Chapters, ignore)
	return series, nil
}

// saveChapters records chapters under series and returns the ones that were
// not known before. Failed saves are logged and skipped.
func (d *Downloader) saveChapters(series *data.Series, chapters []*data.Chapter, ignore bool) []*data.Chapter {
	var created []*data.Chapter
	for _, c := range chapters {
		ok, err := d.repo.SaveChapter(series.ID, c, ignore)
		if err != nil {
			log.Warn().Err(err).Str("series", series.Name).Str("chapter", c.Label).Msg("failed to save chapter")
			continue
		}
		if ok {
			c.SeriesName = series.Name
			created = append(created, c)
			log.Debug().Str("series", series.Name).Str("chapter", c.Label).Msg("saved chapter")
		}
	}
	return created
}

func (d *Downloader) Unfollow(alias string) (*data.Series, error) {
	series, err := d.repo.GetSeriesByAlias(alias)
	if err != nil {
		return nil, err
	}
	if err := d.repo.SetFollowing(series, false); err != nil {
		return nil, err
	}
	return series, nil
}

// Update refetches every followed series and returns the chapters that
// appeared since the last fetch. A failing series does not stop the others.
func (d *Downloader) Update(ctx context.Context) ([]*data.Chapter, error) {
	series, err := d.repo.ListSeries(true)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	var (
		created []*data.Chapter
		errs    []error
	)
	for _, s := range series {
		listing, err := d.fetchListing(ctx, s.URL)
		if errors.Is(err, sources.ErrLogin) {
			return created, err
		}
		if err != nil {
			log.Warn().Err(err).Str("series", s.Name).Msg("failed to update series")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if len(listing.Chapters) == 0 {
			log.Warn().Str("series", s.Name).Msg("zero chapters found")
		}
		created = append(created, d.saveChapters(s, listing.Chapters, false)...)
	}
	return created, errors.Join(errs...)
}

func (d *Downloader) fetchListing(ctx context.Context, url string) (*data.Series, error) {
	src, _, err := d.registry.Lookup(url)
	if err != nil {
		return nil, err
	}
	return src.FetchListing(ctx, url)
}

// DownloadNew downloads every new chapter of the followed series, or only of
// the series named by aliases, and returns the downloaded chapters.
func (d *Downloader) DownloadNew(ctx context.Context, aliases ...string) ([]*data.Chapter, error) {
	only := map[int64]bool{}
	for _, alias := range aliases {
		series, err := d.repo.GetSeriesByAlias(alias)
		if err != nil {
			return nil, err
		}
		only[series.ID] = true
	}

	chapters, err := d.repo.ListChaptersByStatus(data.StatusNew)
	if err != nil {
		return nil, fmt.Errorf("failed to list new chapters: %w", err)
	}

	var (
		downloaded []*data.Chapter
		errs       []error
	)
	for _, c := range chapters {
		if len(only) > 0 && !only[c.SeriesID] {
			continue
		}
		if _, err := d.Download(ctx, c); err != nil {
			if errors.Is(err, sources.ErrLogin) || ctx.Err() != nil {
				return downloaded, err
			}
			log.Warn().Err(err).Str("chapter", c.String()).Msg("failed to download chapter")
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		downloaded = append(downloaded, c)
	}
	return downloaded, errors.Join(errs...)
}

// Download writes the archive of chapter to its canonical path and marks the
// record downloaded.
func (d *Downloader) Download(ctx context.Context, chapter *data.Chapter) (string, error) {
	dest, err := d.fetch(ctx, chapter)
	if err != nil {
		return "", err
	}
	if err := d.repo.MarkDownloaded(chapter.URL); err != nil {
		return dest, err
	}
	chapter.Status = data.StatusDownloaded
	return dest, nil
}

// Get downloads the chapter at url, or every chapter of the series at url,
// whether or not the series is followed. Recorded chapters are marked
// downloaded.
func (d *Downloader) Get(ctx context.Context, url string) ([]*data.Chapter, error) {
	src, kind, err := d.registry.Lookup(url)
	if err != nil {
		return nil, err
	}

	seriesURL := url
	if kind == sources.KindChapter {
		if seriesURL, err = src.SeriesURL(ctx, url); err != nil {
			return nil, err
		}
	}
	listing, err := src.FetchListing(ctx, seriesURL)
	if err != nil {
		return nil, err
	}

	chapters := listing.Chapters
	if kind == sources.KindChapter {
		chapter := findChapter(listing.Chapters, url)
		if chapter == nil {
			return nil, fmt.Errorf("%s: %w", url, ErrNotListed)
		}
		chapters = []*data.Chapter{chapter}
	}

	var got []*data.Chapter
	for _, c := range chapters {
		_, err := d.Download(ctx, c)
		if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
			return got, fmt.Errorf("failed to download %s: %w", c, err)
		}
		got = append(got, c)
	}
	return got, nil
}

// findChapter compares urls unescaped, listings may percent-encode hrefs.
func findChapter(chapters []*data.Chapter, chapterURL string) *data.Chapter {
	want := unescape(chapterURL)
	for _, c := range chapters {
		if unescape(c.URL) == want {
			return c
		}
	}
	return nil
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// fetch writes the archive of chapter and returns its path. Archives are
// written next to their final path and renamed into place once complete.
func (d *Downloader) fetch(ctx context.Context, chapter *data.Chapter) (string, error) {
	if chapter == nil {
		return "", fmt.Errorf("chapter cannot be nil")
	}

	src, _, err := d.registry.Lookup(chapter.URL)
	if err != nil {
		return "", err
	}
	dest, err := d.layout.Path(chapter.SeriesName, chapter.Label, chapter.Groups)
	if err != nil {
		return "", err
	}

	log.Debug().Str("chapter", chapter.String()).Str("url", chapter.URL).Msg("downloading chapter")
	content, err := src.FetchChapter(ctx, chapter)
	if err != nil {
		return "", err
	}

	part := dest + ".part"
	if content.Body != nil {
		err = d.writeArchive(part, chapter, content)
	} else {
		err = d.buildArchive(ctx, part, chapter, content.Pages)
	}
	if err != nil {
		os.Remove(part)
		return "", err
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return "", fmt.Errorf("failed to move archive into place: %w", err)
	}
	return dest, nil
}

func (d *Downloader) writeArchive(dest string, chapter *data.Chapter, content *sources.Content) error {
	defer content.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	bar := d.progress(chapter, content.Size, false)
	_, err = io.Copy(io.MultiWriter(f, progressWriter{bar}), content.Body)
	bar.Finish()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to download chapter %s: %w", chapter.Label, err)
	}
	return nil
}

func (d *Downloader) buildArchive(ctx context.Context, dest string, chapter *data.Chapter, pages []string) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages found for chapter %s", chapter.Label)
	}

	tmp, err := os.MkdirTemp("", "mangadir-pages-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	bar := d.progress(chapter, int64(len(pages)), true)
	defer bar.Finish()

	files := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
		file, err := d.fetchPage(ctx, tmp, i, page)
		if err != nil {
			return fmt.Errorf("failed to download page %d: %w", i, err)
		}
		files = append(files, file)
		if err := bar.Add(1); err != nil {
			log.Debug().Err(err).Msg("progress update failed")
		}
	}

	return integrations.BuildArchive(dest, files)
}

func (d *Downloader) fetchPage(ctx context.Context, dir string, index int, pageURL string) (string, error) {
	resp, err := d.client.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	ext := ".jpg"
	if u, err := url.Parse(pageURL); err == nil && path.Ext(u.Path) != "" {
		ext = path.Ext(u.Path)
	}

	file := filepath.Join(dir, fmt.Sprintf("%06d%s", index, ext))
	f, err := os.Create(file)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", err
	}
	return file, f.Close()
}

// Ignore marks chapters of the series ignored: the named labels, or every
// new chapter when none are given.
func (d *Downloader) Ignore(alias string, labels ...string) ([]*data.Chapter, error) {
	return d.transition(alias, labels, data.StatusNew, data.StatusIgnored, d.repo.Ignore)
}

// Unignore is the inverse of Ignore.
func (d *Downloader) Unignore(alias string, labels ...string) ([]*data.Chapter, error) {
	return d.transition(alias, labels, data.StatusIgnored, data.StatusNew, d.repo.MarkNew)
}

func (d *Downloader) transition(alias string, labels []string, from, to data.Status, mark func(string) error) ([]*data.Chapter, error) {
	series, err := d.repo.GetSeriesByAlias(alias)
	if err != nil {
		return nil, err
	}
	chapters, err := d.repo.GetChapters(series.ID)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, l := range labels {
		wanted[l] = true
	}

	var changed []*data.Chapter
	for _, c := range chapters {
		if c.Status != from || (len(wanted) > 0 && !wanted[c.Label]) {
			continue
		}
		if err := mark(c.URL); err != nil {
			return changed, err
		}
		c.Status = to
		changed = append(changed, c)
	}
	return changed, nil
}

// ExportEPUB compiles the downloaded chapters of a series into one EPub.
func (d *Downloader) ExportEPUB(alias string) (string, error) {
	series, err := d.repo.GetSeriesByAlias(alias)
	if err != nil {
		return "", err
	}
	chapters, err := d.repo.GetChapters(series.ID)
	if err != nil {
		return "", err
	}
	return integrations.NewEPubBuilder(d.layout).CreateEPub(series, chapters)
}
