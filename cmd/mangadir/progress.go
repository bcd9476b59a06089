package cmd

import (
	"os"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/services"
	"github.com/schollz/progressbar/v3"
)

// newProgressBar shows bytes for archive downloads and a page count for
// chapters assembled from pages.
func newProgressBar(chapter *data.Chapter, total int64, pages bool) services.Progress {
	if !pages {
		return progressbar.DefaultBytes(total, chapter.String())
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(chapter.String()),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetItsString("page"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
