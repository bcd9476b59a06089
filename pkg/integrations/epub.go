package integrations

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/mangadir/pkg/data"
)

type EPubBuilder struct {
	layout Layout
}

func NewEPubBuilder(layout Layout) *EPubBuilder {
	return &EPubBuilder{layout: layout}
}

// CreateEPub compiles the downloaded archives of a series into a single
// EPub next to them and returns its path.
func (p *EPubBuilder) CreateEPub(series *data.Series, chapters []*data.Chapter) (string, error) {
	var downloaded []*data.Chapter
	for _, c := range chapters {
		if c.Status == data.StatusDownloaded {
			downloaded = append(downloaded, c)
		}
	}
	if len(downloaded) == 0 {
		return "", fmt.Errorf("no downloaded chapters to compile")
	}

	sortChapters(downloaded)

	e, err := epub.NewEpub(series.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("mangadir")
	e.SetLang("en")

	// go-epub reads image sources on Write, so extracted pages must outlive
	// the loop.
	workDir, err := os.MkdirTemp("", "mangadir-epub-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(workDir)

	for i, chapter := range downloaded {
		archive, err := p.layout.Path(series.Name, chapter.Label, chapter.Groups)
		if err != nil {
			return "", err
		}
		if err := p.addChapterToEPub(e, workDir, i, chapter, archive); err != nil {
			return "", fmt.Errorf("failed to add chapter %s: %w", chapter.Label, err)
		}
	}

	dir, err := p.layout.SeriesDir(series.Name)
	if err != nil {
		return "", err
	}
	outputPath := filepath.Join(dir, sanitize(strings.ReplaceAll(series.Name, "/", ""))+".epub")

	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// addChapterToEPub extracts the pages of one archive and adds them as a section.
func (p *EPubBuilder) addChapterToEPub(e *epub.Epub, workDir string, index int, chapter *data.Chapter, archive string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	var pages []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isImageFile(f.Name) {
			pages = append(pages, f)
		}
	}
	if len(pages) == 0 {
		return fmt.Errorf("no images found in %s", filepath.Base(archive))
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Name < pages[j].Name
	})

	chapterTitle := fmt.Sprintf("Chapter %s", chapter.Label)
	if len(chapter.Groups) > 0 {
		chapterTitle += " " + GroupTags(chapter.Groups)
	}

	var htmlContent strings.Builder
	htmlContent.WriteString(fmt.Sprintf("<h1>%s</h1>\n", chapterTitle))

	for i, page := range pages {
		name := fmt.Sprintf("c%04d-%s", index, filepath.Base(page.Name))
		extracted := filepath.Join(workDir, name)
		if err := extract(page, extracted); err != nil {
			return err
		}

		internalPath, err := e.AddImage(extracted, name)
		if err != nil {
			return fmt.Errorf("failed to add image %s: %w", page.Name, err)
		}

		htmlContent.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internalPath, i+1, "\n",
		))
	}

	_, err = e.AddSection(htmlContent.String(), chapterTitle, "", "")
	if err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}

	return nil
}

var leadingNumber = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?`)

// sortChapters orders chapters by their leading number, so "1000" comes after
// "200". Ties and labels without a number fall back to the chapter token.
func sortChapters(chapters []*data.Chapter) {
	number := func(label string) (float64, bool) {
		n, err := strconv.ParseFloat(leadingNumber.FindString(label), 64)
		return n, err == nil
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		a, aok := number(chapters[i].Label)
		b, bok := number(chapters[j].Label)
		if aok && bok && a != b {
			return a < b
		}
		return ChapterToken(chapters[i].Label) < ChapterToken(chapters[j].Label)
	})
}

func extract(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func isImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".webp"
}
