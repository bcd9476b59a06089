package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		chapter string
		groups  []string
		ok      bool
	}{
		{"numbered with groups", "foo - c007 [GroupA][GroupB].zip", "007", []string{"GroupA", "GroupB"}, true},
		{"letter suffix", "foo - c9a.zip", "9", []string{}, true},
		{"range", "foo - c001-007 [G].zip", "001-007", []string{"G"}, true},
		{"volume tag between", "Foo - c035 (v04) [Group].cbz", "035", []string{"Group"}, true},
		{"no leading dash", "Foo c012.zip", "012", []string{}, true},
		{"fallback label", "Foo - Special [Grp].zip", "Special", []string{"Grp"}, true},
		{"fallback multi word", "Foo - Extra Story [A].zip", "Extra Story", []string{"A"}, true},
		{"fallback keeps brackets it cannot place", "Foo - Extra [A] Story.zip", "Extra [A]", []string{}, true},
		{"unrelated file", "randomfile.txt", "", nil, false},
		{"fallback needs trailing space", "Foo - Special.zip", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapter, groups, ok := ParseLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.chapter, chapter)
			assert.Equal(t, tt.groups, groups)
		})
	}
}
