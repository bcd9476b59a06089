package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMangaID   = "6b1eb93e-473a-4ab3-9922-1a66d2a29a4a"
	testChapterID = "cd5635a9-5e2d-41ef-9fe1-2ff13cdf5841"
	testSite      = "https://mangadex.example"
)

func newMangaDexServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/manga/"+testMangaID, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"id":         testMangaID,
				"attributes": map[string]any{"title": map[string]string{"en": "Naruto"}},
			},
		})
	})
	mux.HandleFunc("/manga/"+testMangaID+"/feed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("translatedLanguage[]"))
		assert.Equal(t, "scanlation_group", r.URL.Query().Get("includes[]"))
		writeJSON(w, map[string]any{
			"data": []map[string]any{
				{
					"id":         testChapterID,
					"attributes": map[string]any{"chapter": "1", "title": "Uzumaki Naruto!"},
					"relationships": []map[string]any{
						{"id": "g1", "type": "scanlation_group", "attributes": map[string]string{"name": "Band"}},
						{"id": testMangaID, "type": "manga"},
					},
				},
				{
					"id":         "aaaaaaaa-0000-0000-0000-000000000002",
					"attributes": map[string]any{"chapter": nil},
				},
			},
		})
	})
	mux.HandleFunc("/at-home/server/"+testChapterID, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"baseUrl": "https://cdn.example",
			"chapter": map[string]any{"hash": "abc", "data": []string{"1.png", "2.jpg"}},
		})
	})
	mux.HandleFunc("/chapter/"+testChapterID, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"id": testChapterID,
				"relationships": []map[string]any{
					{"id": testMangaID, "type": "manga"},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestMangaDexFetchListing(t *testing.T) {
	server := newMangaDexServer(t)
	md := NewMangaDexWithURL(server.URL, testSite, "")

	series, err := md.FetchListing(context.Background(), testSite+"/title/"+testMangaID+"/naruto")
	require.NoError(t, err)

	assert.Equal(t, "Naruto", series.Name)
	assert.Equal(t, testSite+"/title/"+testMangaID, series.URL)
	require.Len(t, series.Chapters, 2)

	assert.Equal(t, "1", series.Chapters[0].Label)
	assert.Equal(t, []string{"Band"}, series.Chapters[0].Groups)
	assert.Equal(t, testSite+"/chapter/"+testChapterID, series.Chapters[0].URL)
	assert.Equal(t, "Naruto", series.Chapters[0].SeriesName)

	assert.Equal(t, "Oneshot", series.Chapters[1].Label)
	assert.Empty(t, series.Chapters[1].Groups)
}

func TestMangaDexFetchChapterReturnsPages(t *testing.T) {
	server := newMangaDexServer(t)
	md := NewMangaDexWithURL(server.URL, testSite, "en")

	content, err := md.FetchChapter(context.Background(), &data.Chapter{URL: testSite + "/chapter/" + testChapterID})
	require.NoError(t, err)
	assert.Nil(t, content.Body)
	assert.Equal(t, []string{
		"https://cdn.example/data/abc/1.png",
		"https://cdn.example/data/abc/2.jpg",
	}, content.Pages)
}

func TestMangaDexSeriesURL(t *testing.T) {
	server := newMangaDexServer(t)
	md := NewMangaDexWithURL(server.URL, testSite, "en")

	seriesURL, err := md.SeriesURL(context.Background(), testSite+"/chapter/"+testChapterID)
	require.NoError(t, err)
	assert.Equal(t, testSite+"/title/"+testMangaID, seriesURL)

	_, err = md.SeriesURL(context.Background(), testSite+"/title/"+testMangaID)
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestMangaDexClassify(t *testing.T) {
	md := NewMangaDex("en")
	assert.Equal(t, KindSeries, md.Classify("https://mangadex.org/title/"+testMangaID))
	assert.Equal(t, KindSeries, md.Classify("https://mangadex.org/title/"+testMangaID+"/naruto"))
	assert.Equal(t, KindChapter, md.Classify("https://mangadex.org/chapter/"+testChapterID))
	assert.Equal(t, KindUnknown, md.Classify("https://mangadex.org/user/me"))

	label, groups, ok := md.ParseEntry(" 10.5 ")
	assert.True(t, ok)
	assert.Equal(t, "10.5", label)
	assert.Empty(t, groups)
}

func TestRegistryLookup(t *testing.T) {
	madokami := NewMadokami("", "")
	registry := NewRegistry(madokami)
	registry.Register(NewMangaDex("en"))

	src, kind, err := registry.Lookup("https://mangadex.org/chapter/" + testChapterID)
	require.NoError(t, err)
	assert.Equal(t, "mangadex", src.Name())
	assert.Equal(t, KindChapter, kind)

	src, kind, err = registry.Lookup("https://manga.madokami.al/Manga/F/FO/FOO/Foo")
	require.NoError(t, err)
	assert.Equal(t, "madokami", src.Name())
	assert.Equal(t, KindSeries, kind)

	_, _, err = registry.Lookup("https://example.com/")
	assert.ErrorIs(t, err, ErrUnsupportedURL)

	w, ok := registry.Watchlister("https://manga.madokami.al/user/watched.opml")
	assert.True(t, ok)
	assert.Same(t, madokami, w)

	_, ok = registry.Watchlister("https://mangadex.org/title/" + testMangaID)
	assert.False(t, ok)
	assert.Len(t, registry.Sources(), 2)
}
