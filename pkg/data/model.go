package data

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the download state of a chapter record.
type Status int

const (
	StatusIgnored    Status = -1
	StatusNew        Status = 0
	StatusDownloaded Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusNew:
		return "new"
	case StatusDownloaded:
		return "downloaded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignored":
		return StatusIgnored, nil
	case "new":
		return StatusNew, nil
	case "downloaded":
		return StatusDownloaded, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

type Series struct {
	ID        int64
	URL       string
	Name      string
	Following bool

	// Chapters holds the chapters found by the last listing fetch. It is
	// never loaded from the database.
	Chapters []*Chapter
}

var (
	aliasStrip  = regexp.MustCompile(`[^a-z0-9-]`)
	aliasDashes = regexp.MustCompile(`-+`)
)

// Alias returns a command-line friendly version of the series name.
func (s *Series) Alias() string {
	return MakeAlias(s.Name)
}

// MakeAlias lowercases name, turns spaces into dashes, drops everything that
// is not an ASCII letter, digit or dash and collapses repeated dashes.
func MakeAlias(name string) string {
	alias := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	alias = aliasStrip.ReplaceAllString(alias, "")
	return aliasDashes.ReplaceAllString(alias, "-")
}

type Chapter struct {
	ID         int64
	SeriesID   int64
	SeriesName string
	Label      string
	Groups     []string
	URL        string
	Status     Status
}

func (c *Chapter) String() string {
	if len(c.Groups) == 0 {
		return fmt.Sprintf("%s %s", c.SeriesName, c.Label)
	}
	return fmt.Sprintf("%s %s [%s]", c.SeriesName, c.Label, strings.Join(c.Groups, "]["))
}
