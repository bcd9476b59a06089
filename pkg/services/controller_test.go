package services

import (
	"path/filepath"
	"testing"

	"github.com/kerbaras/mangadir/pkg/config"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DownloadDirectory = filepath.Join(dir, "downloads")
	cfg.Database = filepath.Join(dir, "db", "mangadir.db")
	return cfg
}

func TestNewMangaController(t *testing.T) {
	controller, err := NewMangaController(testConfig(t))
	require.NoError(t, err)
	defer controller.Close()

	require.NotNil(t, controller.Downloader)
	assert.Len(t, controller.registry.Sources(), 2)

	library, err := controller.Library(false)
	require.NoError(t, err)
	assert.Empty(t, library)
}

func TestNewMangaControllerInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DownloadDirectory = ""

	_, err := NewMangaController(cfg)
	assert.Error(t, err)
}

func TestControllerLibrary(t *testing.T) {
	controller, err := NewMangaController(testConfig(t))
	require.NoError(t, err)
	defer controller.Close()

	foo := &data.Series{URL: "https://manga.madokami.al/Manga/F/FO/FOO/Foo", Name: "Foo", Following: true}
	require.NoError(t, controller.repo.CreateSeries(foo))
	bar := &data.Series{URL: "https://manga.madokami.al/Manga/B/BA/BAR/Bar", Name: "Bar", Following: false}
	require.NoError(t, controller.repo.CreateSeries(bar))

	for _, label := range []string{"001", "002", "003"} {
		_, err := controller.repo.SaveChapter(foo.ID, &data.Chapter{Label: label, URL: foo.URL + "/" + label + ".zip"}, false)
		require.NoError(t, err)
	}
	require.NoError(t, controller.repo.MarkDownloaded(foo.URL+"/001.zip"))

	t.Run("followed only", func(t *testing.T) {
		library, err := controller.Library(false)
		require.NoError(t, err)
		require.Len(t, library, 1)
		assert.Equal(t, "Foo", library[0].Name)
		assert.Equal(t, 3, library[0].Total)
		assert.Equal(t, 1, library[0].Downloaded)
	})

	t.Run("all series", func(t *testing.T) {
		library, err := controller.Library(true)
		require.NoError(t, err)
		assert.Len(t, library, 2)
	})

	t.Run("chapters by alias", func(t *testing.T) {
		series, chapters, err := controller.Chapters("foo")
		require.NoError(t, err)
		assert.Equal(t, foo.ID, series.ID)
		assert.Len(t, chapters, 3)

		_, _, err = controller.Chapters("baz")
		assert.ErrorIs(t, err, data.ErrRecordNotFound)
	})

	t.Run("new chapters", func(t *testing.T) {
		chapters, err := controller.NewChapters()
		require.NoError(t, err)
		require.Len(t, chapters, 2)
		assert.Equal(t, "Foo", chapters[0].SeriesName)
	})
}
