package sources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesPath = "/Manga/F/FO/FOO/Foo"

const listingPage = `<html><body>
<h1><span class="title">Foo</span></h1>
<table class="mobile-files-table">
<tr><th>Name</th><th>Size</th><th></th></tr>
<tr>
  <td><a href="/Manga/F/FO/FOO/Foo/foo%20-%20c007%20%5BGroupA%5D%5BGroupB%5D.zip">foo - c007 [GroupA][GroupB].zip</a></td>
  <td>12 MB</td>
  <td><a href="/reader/1">Read</a></td>
</tr>
<tr>
  <td><a href="/Manga/F/FO/FOO/Foo/foo%20-%20c9a.zip">foo - c9a.zip</a></td>
  <td>8 MB</td>
  <td><a href="/reader/2">Read</a></td>
</tr>
<tr>
  <td><a href="/Manga/F/FO/FOO/Foo/randomfile.txt">randomfile.txt</a></td>
  <td>1 KB</td>
  <td><a href="/reader/3">Read</a></td>
</tr>
<tr>
  <td><a href="/Manga/F/FO/FOO/Foo/foo%20-%20c010.jpg">foo - c010.jpg</a></td>
  <td>1 KB</td>
</tr>
</table>
</body></html>`

const watchlistPage = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="1.0">
<head><title>Watched</title></head>
<body>
<outline text="Foo" htmlUrl="%[1]s/Manga/F/FO/FOO/Foo" xmlUrl="%[1]s/rss/1"/>
<outline text="Foo raw" htmlUrl="%[1]s/Raws/F/FO/FOO/Foo" xmlUrl="%[1]s/rss/2"/>
<outline text="Bar" htmlUrl="%[1]s/Manga/B/BA/BAR/Bar" xmlUrl="%[1]s/rss/3"/>
<outline text="broken"/>
</body>
</opml>`

func newMadokamiServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, found := routes[r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, strings.ReplaceAll(body, "%[1]s", server.URL))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMadokamiFetchListing(t *testing.T) {
	server := newMadokamiServer(t, map[string]string{seriesPath: listingPage})
	m := NewMadokamiWithURL(server.URL, "user", "secret")

	series, err := m.FetchListing(context.Background(), server.URL+seriesPath)
	require.NoError(t, err)

	assert.Equal(t, "Foo", series.Name)
	assert.Equal(t, "foo", series.Alias())
	assert.Equal(t, server.URL+seriesPath, series.URL)
	require.Len(t, series.Chapters, 2)

	first := series.Chapters[0]
	assert.Equal(t, "007", first.Label)
	assert.Equal(t, []string{"GroupA", "GroupB"}, first.Groups)
	assert.Equal(t, server.URL+"/Manga/F/FO/FOO/Foo/foo%20-%20c007%20%5BGroupA%5D%5BGroupB%5D.zip", first.URL)
	assert.Equal(t, "Foo", first.SeriesName)
	assert.Equal(t, data.StatusNew, first.Status)

	second := series.Chapters[1]
	assert.Equal(t, "9", second.Label)
	assert.Empty(t, second.Groups)
}

func TestMadokamiLoginRejected(t *testing.T) {
	server := newMadokamiServer(t, map[string]string{seriesPath: listingPage})
	m := NewMadokamiWithURL(server.URL, "user", "wrong")

	_, err := m.FetchListing(context.Background(), server.URL+seriesPath)
	assert.ErrorIs(t, err, ErrLogin)

	_, err = m.FetchChapter(context.Background(), &data.Chapter{URL: server.URL + seriesPath + "/foo - c001.zip"})
	assert.ErrorIs(t, err, ErrLogin)
}

func TestMadokamiListingStructure(t *testing.T) {
	server := newMadokamiServer(t, map[string]string{
		"/Manga/E/EM/EMPT/Empty":   `<span class="title">Empty</span><table class="mobile-files-table"><tr><th>Name</th></tr></table>`,
		"/Manga/B/BR/BROK/Broken":  `<span class="title">Broken</span><p>maintenance</p>`,
		"/Manga/N/NO/NOTI/NoTitle": `<table class="mobile-files-table"><tr><th>Name</th></tr></table>`,
	})
	m := NewMadokamiWithURL(server.URL, "user", "secret")
	ctx := context.Background()

	series, err := m.FetchListing(ctx, server.URL+"/Manga/E/EM/EMPT/Empty")
	require.NoError(t, err, "an empty listing is valid")
	assert.Empty(t, series.Chapters)

	_, err = m.FetchListing(ctx, server.URL+"/Manga/B/BR/BROK/Broken")
	assert.ErrorIs(t, err, ErrScraping)

	_, err = m.FetchListing(ctx, server.URL+"/Manga/N/NO/NOTI/NoTitle")
	assert.ErrorIs(t, err, ErrScraping)
}

func TestMadokamiFetchChapter(t *testing.T) {
	server := newMadokamiServer(t, map[string]string{seriesPath + "/foo - c001.zip": "PK-archive-bytes"})
	m := NewMadokamiWithURL(server.URL, "user", "secret")

	content, err := m.FetchChapter(context.Background(), &data.Chapter{URL: server.URL + seriesPath + "/foo%20-%20c001.zip"})
	require.NoError(t, err)
	defer content.Body.Close()

	body, err := io.ReadAll(content.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-archive-bytes", string(body))
	assert.Equal(t, int64(len("PK-archive-bytes")), content.Size)
	assert.Empty(t, content.Pages)
}

func TestMadokamiClassifyAndSeriesURL(t *testing.T) {
	m := NewMadokami("", "")

	assert.Equal(t, KindSeries, m.Classify("https://manga.madokami.al/Manga/F/FO/FOO/Foo"))
	assert.Equal(t, KindSeries, m.Classify("https://manga.madokami.al/Raws/F/FO/FOO/Foo"))
	assert.Equal(t, KindChapter, m.Classify("https://manga.madokami.al/Manga/F/FO/FOO/Foo/foo%20-%20c001.zip"))
	assert.Equal(t, KindChapter, m.Classify("https://manga.madokami.al/Raws/F/FO/FOO/Foo/foo%20-%20c001.zip"))
	assert.Equal(t, KindUnknown, m.Classify("https://example.com/Manga/F/FO/FOO/Foo"))

	rawSeries, err := m.SeriesURL(context.Background(), "https://manga.madokami.al/Raws/F/FO/FOO/Foo/foo%20-%20c001.zip")
	require.NoError(t, err)
	assert.Equal(t, "https://manga.madokami.al/Raws/F/FO/FOO/Foo", rawSeries)

	seriesURL, err := m.SeriesURL(context.Background(), "https://manga.madokami.al/Manga/F/FO/FOO/Foo/foo%20-%20c001.zip")
	require.NoError(t, err)
	assert.Equal(t, "https://manga.madokami.al/Manga/F/FO/FOO/Foo", seriesURL)

	_, err = m.SeriesURL(context.Background(), "https://manga.madokami.al/Manga/F/FO/FOO/Foo")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestMadokamiWatchlist(t *testing.T) {
	server := newMadokamiServer(t, map[string]string{"/user/watched.opml": watchlistPage})
	m := NewMadokamiWithURL(server.URL, "user", "secret")

	require.True(t, m.IsWatchlist(server.URL+"/user/watched.opml"))
	assert.False(t, m.IsWatchlist(server.URL+seriesPath))

	urls, err := m.Watchlist(context.Background(), server.URL+"/user/watched.opml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/Manga/F/FO/FOO/Foo",
		server.URL + "/Manga/B/BA/BAR/Bar",
	}, urls)
}
