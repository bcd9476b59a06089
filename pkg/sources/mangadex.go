package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	MangaDexAPI  = "https://api.mangadex.org"
	MangaDexSite = "https://mangadex.org"
)

type relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

type Manga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title map[string]string `json:"title"`
	} `json:"attributes"`
}

// title prefers the English title and falls back to any other one.
func (m *Manga) title() string {
	if t := m.Attributes.Title["en"]; t != "" {
		return t
	}
	for _, t := range m.Attributes.Title {
		return t
	}
	return m.ID
}

type Chapter struct {
	ID         string `json:"id"`
	Attributes struct {
		Chapter *string `json:"chapter"`
		Title   string  `json:"title"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

func (c *Chapter) groups() []string {
	groups := []string{}
	for _, r := range c.Relationships {
		if r.Type == "scanlation_group" && r.Attributes.Name != "" {
			groups = append(groups, r.Attributes.Name)
		}
	}
	return groups
}

// MangaDex reads the public MangaDex API. Chapters come as page lists.
type MangaDex struct {
	api      *utils.API
	siteURL  string
	language string

	seriesRe  *regexp.Regexp
	chapterRe *regexp.Regexp
}

var _ Source = (*MangaDex)(nil)

func NewMangaDex(language string) *MangaDex {
	return NewMangaDexWithURL(MangaDexAPI, MangaDexSite, language)
}

func NewMangaDexWithURL(apiURL, siteURL, language string) *MangaDex {
	siteURL = strings.TrimRight(siteURL, "/")
	site := regexp.QuoteMeta(siteURL)
	if language == "" {
		language = "en"
	}
	return &MangaDex{
		api:       utils.NewAPI(apiURL),
		siteURL:   siteURL,
		language:  language,
		seriesRe:  regexp.MustCompile(`^` + site + `/title/([0-9a-f-]{36})(?:/.*)?$`),
		chapterRe: regexp.MustCompile(`^` + site + `/chapter/([0-9a-f-]{36})(?:/.*)?$`),
	}
}

func (m *MangaDex) Name() string {
	return "mangadex"
}

func (m *MangaDex) Classify(url string) URLKind {
	switch {
	case m.seriesRe.MatchString(url):
		return KindSeries
	case m.chapterRe.MatchString(url):
		return KindChapter
	default:
		return KindUnknown
	}
}

// ParseEntry accepts the chapter attribute as is. Oneshots have none.
func (m *MangaDex) ParseEntry(label string) (string, []string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Oneshot"
	}
	return label, []string{}, true
}

func (m *MangaDex) FetchListing(ctx context.Context, seriesURL string) (*data.Series, error) {
	match := m.seriesRe.FindStringSubmatch(seriesURL)
	if match == nil {
		return nil, fmt.Errorf("%s: %w", seriesURL, ErrUnsupportedURL)
	}
	id := match[1]

	var manga struct {
		Data Manga `json:"data"`
	}
	if err := m.api.Get(ctx, "/manga/"+id, nil, &manga); err != nil {
		return nil, fmt.Errorf("failed to get manga: %w", err)
	}

	params := url.Values{}
	params.Set("translatedLanguage[]", m.language)
	params.Set("order[chapter]", "asc")
	params.Set("includes[]", "scanlation_group")
	params.Set("limit", "500")

	var feed struct {
		Data []Chapter `json:"data"`
	}
	if err := m.api.Get(ctx, "/manga/"+id+"/feed", params, &feed); err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}

	series := &data.Series{
		URL:       m.siteURL + "/title/" + id,
		Name:      manga.Data.title(),
		Following: true,
		Chapters:  []*data.Chapter{},
	}
	for _, ch := range feed.Data {
		raw := ""
		if ch.Attributes.Chapter != nil {
			raw = *ch.Attributes.Chapter
		}
		label, _, ok := m.ParseEntry(raw)
		if !ok {
			log.Debug().Str("chapter", ch.ID).Msg("skipping chapter without label")
			continue
		}
		series.Chapters = append(series.Chapters, &data.Chapter{
			SeriesName: series.Name,
			Label:      label,
			Groups:     ch.groups(),
			URL:        m.siteURL + "/chapter/" + ch.ID,
			Status:     data.StatusNew,
		})
	}
	return series, nil
}

// FetchChapter resolves the page URLs of a chapter through the at-home
// server API.
func (m *MangaDex) FetchChapter(ctx context.Context, chapter *data.Chapter) (*Content, error) {
	match := m.chapterRe.FindStringSubmatch(chapter.URL)
	if match == nil {
		return nil, fmt.Errorf("%s: %w", chapter.URL, ErrUnsupportedURL)
	}

	var server struct {
		BaseURL string `json:"baseUrl"`
		Chapter struct {
			Hash string   `json:"hash"`
			Data []string `json:"data"`
		} `json:"chapter"`
	}
	if err := m.api.Get(ctx, "/at-home/server/"+match[1], nil, &server); err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	if len(server.Chapter.Data) == 0 {
		return nil, fmt.Errorf("no pages found for chapter %s", chapter.Label)
	}

	pages := make([]string, len(server.Chapter.Data))
	for i, page := range server.Chapter.Data {
		pages[i] = fmt.Sprintf("%s/data/%s/%s", server.BaseURL, server.Chapter.Hash, page)
	}
	return &Content{Pages: pages}, nil
}

func (m *MangaDex) SeriesURL(ctx context.Context, chapterURL string) (string, error) {
	match := m.chapterRe.FindStringSubmatch(chapterURL)
	if match == nil {
		return "", fmt.Errorf("%s: %w", chapterURL, ErrUnsupportedURL)
	}

	var chapter struct {
		Data Chapter `json:"data"`
	}
	if err := m.api.Get(ctx, "/chapter/"+match[1], nil, &chapter); err != nil {
		return "", fmt.Errorf("failed to get chapter: %w", err)
	}
	for _, r := range chapter.Data.Relationships {
		if r.Type == "manga" {
			return m.siteURL + "/title/" + r.ID, nil
		}
	}
	return "", fmt.Errorf("chapter %s has no manga: %w", match[1], ErrScraping)
}
