package styles

import (
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Short", 10, "Short"},
		{"Exactly ten", 11, "Exactly ten"},
		{"A rather long series name", 10, "A rathe..."},
		{"Kimetsu", 3, "Kim"},
		{"鬼滅の刃 無限列車編", 6, "鬼滅の..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestStatusContainsName(t *testing.T) {
	for _, s := range []data.Status{data.StatusIgnored, data.StatusNew, data.StatusDownloaded} {
		assert.Contains(t, Status(s), s.String())
	}
}

func TestTableRendersRows(t *testing.T) {
	view := Table(
		[]table.Column{{Title: "Alias", Width: 10}, {Title: "Chapters", Width: 8}},
		[]table.Row{{"foo", "3"}, {"bar", "12"}},
	).View()

	assert.Contains(t, view, "Alias")
	assert.Contains(t, view, "foo")
	assert.Contains(t, view, "bar")
}

func TestTableKeepsEveryRow(t *testing.T) {
	rows := []table.Row{}
	for _, alias := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf"} {
		rows = append(rows, table.Row{alias, "1"})
	}

	view := Table([]table.Column{{Title: "Alias", Width: 10}, {Title: "Chapters", Width: 8}}, rows).View()

	for _, row := range rows {
		assert.Contains(t, view, row[0])
	}
}
