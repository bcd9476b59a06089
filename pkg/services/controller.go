package services

import (
	"fmt"

	"github.com/kerbaras/mangadir/pkg/config"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/integrations"
	"github.com/kerbaras/mangadir/pkg/sources"
)

// SeriesSummary is a series with its chapter counts.
type SeriesSummary struct {
	*data.Series
	Total      int
	Downloaded int
}

type MangaController struct {
	*Downloader
	repo *data.Repository
}

// NewMangaController opens the store named by cfg and wires every supported
// source.
func NewMangaController(cfg *config.Config, opts ...Option) (*MangaController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := data.OpenRepository(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	registry := sources.NewRegistry(
		sources.NewMadokami(cfg.Madokami.Username, cfg.Madokami.Password),
		sources.NewMangaDex(cfg.MangaDex.Language),
	)
	layout := integrations.NewLayout(cfg.DownloadDirectory, cfg.CBZ)

	return &MangaController{
		Downloader: NewDownloader(repo, registry, layout, opts...),
		repo:       repo,
	}, nil
}

// Library lists followed series, or every known series when all is set.
func (c *MangaController) Library(all bool) ([]SeriesSummary, error) {
	series, err := c.repo.ListSeries(!all)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	out := make([]SeriesSummary, 0, len(series))
	for _, s := range series {
		total, downloaded, err := c.repo.CountChapters(s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SeriesSummary{Series: s, Total: total, Downloaded: downloaded})
	}
	return out, nil
}

func (c *MangaController) Chapters(alias string) (*data.Series, []*data.Chapter, error) {
	series, err := c.repo.GetSeriesByAlias(alias)
	if err != nil {
		return nil, nil, err
	}
	chapters, err := c.repo.GetChapters(series.ID)
	if err != nil {
		return nil, nil, err
	}
	return series, chapters, nil
}

// NewChapters returns the chapters of followed series still to download.
func (c *MangaController) NewChapters() ([]*data.Chapter, error) {
	return c.repo.ListChaptersByStatus(data.StatusNew)
}

func (c *MangaController) Close() error {
	return c.repo.Close()
}
