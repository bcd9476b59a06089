package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	numericLabel = regexp.MustCompile(`^[0-9-]*$`)
	letterLabel  = regexp.MustCompile(`^[0-9]*[A-Za-z][0-9]*$`)
	letterNumber = regexp.MustCompile(`^([0-9]*)[A-Za-z]`)
	decimalLabel = regexp.MustCompile(`^[0-9]*\.[0-9]*$`)
	spaceRuns    = regexp.MustCompile(` +`)
)

// keepCharacters are the non-alphanumeric characters allowed in paths.
const keepCharacters = " .-[]/'"

// Layout decides where chapter archives go. It has no state besides its
// fields, so the same chapter always maps to the same path.
type Layout struct {
	Root      string
	Extension string
}

// ExtensionFor returns the archive extension for the cbz setting.
func ExtensionFor(cbz bool) string {
	if cbz {
		return "cbz"
	}
	return "zip"
}

func NewLayout(root string, cbz bool) Layout {
	return Layout{Root: root, Extension: ExtensionFor(cbz)}
}

// ChapterToken normalizes a chapter label. The first matching rule wins:
//
//	"7", "5-12"  -> "c007", "c005-012"
//	"9a", "35v2" -> "c009", "c035"
//	"1.5"        -> "c001 x5"
//	"Special"    -> "c000 [Special]"
func ChapterToken(label string) string {
	switch {
	case numericLabel.MatchString(label):
		parts := strings.Split(label, "-")
		for i, p := range parts {
			parts[i] = zeroPad(p, 3)
		}
		return "c" + strings.Join(parts, "-")
	case letterLabel.MatchString(label):
		number := letterNumber.FindStringSubmatch(label)[1]
		return "c" + zeroPad(number, 3)
	case decimalLabel.MatchString(label):
		number, decimal, _ := strings.Cut(label, ".")
		return fmt.Sprintf("c%s x%s", zeroPad(number, 3), decimal)
	default:
		return fmt.Sprintf("c000 [%s]", label)
	}
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// GroupTags renders ["A", "B"] as "[A][B]".
func GroupTags(groups []string) string {
	var b strings.Builder
	for _, g := range groups {
		b.WriteString("[" + g + "]")
	}
	return b.String()
}

// Filename returns the archive file name for a chapter, without directory.
func (l Layout) Filename(series, label string, groups []string) string {
	name := strings.ReplaceAll(series, "/", "")
	filename := fmt.Sprintf("%s - %s %s.%s", name, ChapterToken(label), GroupTags(groups), l.Extension)
	return sanitize(strings.ReplaceAll(filename, "/", ""))
}

// SeriesDir returns the directory holding a series' archives, creating it
// when missing.
func (l Layout) SeriesDir(series string) (string, error) {
	root, err := expandPath(l.Root)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(root, sanitize(strings.ReplaceAll(series, "/", "")))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// Path returns the absolute archive path for a chapter. Its directory exists
// when Path returns.
func (l Layout) Path(series, label string, groups []string) (string, error) {
	dir, err := l.SeriesDir(series)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, l.Filename(series, label, groups)), nil
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(keepCharacters, r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimRight(spaceRuns.ReplaceAllString(s, " "), " ")
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return filepath.Abs(path)
}
