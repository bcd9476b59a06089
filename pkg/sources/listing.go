package sources

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/rs/zerolog/log"
)

// LabelParser matches Source.ParseEntry.
type LabelParser func(label string) (chapter string, groups []string, ok bool)

// WalkListing collects the chapters of a directory listing page in row
// order. Rows without a "Read" link are uploads that are not chapters, and
// rows whose name does not parse are skipped. A page without the listing
// table fails with ErrScraping.
func WalkListing(doc *goquery.Document, base *url.URL, parse LabelParser) ([]*data.Chapter, error) {
	table := doc.Find("table.mobile-files-table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("files table not found: %w", ErrScraping)
	}

	chapters := []*data.Chapter{}
	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(i int, row *goquery.Selection) {
		if !hasReadLink(row) {
			return
		}

		link := row.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			log.Warn().Err(err).Str("href", href).Msg("skipping row with unreadable link")
			return
		}

		name := strings.TrimSpace(link.Text())
		chapter, groups, ok := parse(name)
		if !ok {
			log.Debug().Str("entry", name).Msg("skipping entry that is not a chapter")
			return
		}

		chapters = append(chapters, &data.Chapter{
			Label:  chapter,
			Groups: groups,
			URL:    base.ResolveReference(ref).String(),
			Status: data.StatusNew,
		})
	})

	return chapters, nil
}

func hasReadLink(row *goquery.Selection) bool {
	return row.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return strings.TrimSpace(a.Text()) == "Read"
	}).Length() > 0
}
