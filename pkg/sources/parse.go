package sources

import (
	"regexp"
	"strings"
)

var (
	nameRe     = regexp.MustCompile(`-? c([0-9-]+).*?(?: \[(.*)\])?\.`)
	fallbackRe = regexp.MustCompile(`\- (.*) (?:\[(.*)\])?`)
)

// ParseLabel extracts the chapter label and release groups from a file name
// such as "Foo - c007 [GroupA][GroupB].zip". The strict "c<number>" form is
// tried before the looser "- <label> [groups]" form; the loose form can
// mis-split groups and only extends coverage.
func ParseLabel(label string) (chapter string, groups []string, ok bool) {
	m := nameRe.FindStringSubmatchIndex(label)
	if m == nil {
		m = fallbackRe.FindStringSubmatchIndex(label)
	}
	if m == nil || m[2] < 0 {
		return "", nil, false
	}

	chapter = label[m[2]:m[3]]
	groups = []string{}
	if m[4] >= 0 && m[5] > m[4] {
		groups = strings.Split(label[m[4]:m[5]], "][")
	}
	return chapter, groups, true
}
