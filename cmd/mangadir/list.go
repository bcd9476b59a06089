package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/styles"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List followed series",
	Long:  "Display the followed series with their chapter counts in a formatted table",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")

		controller := newController()
		defer controller.Close()

		library, err := controller.Library(all)
		cobra.CheckErr(err)

		if len(library) == 0 {
			fmt.Println("📚 Not following anything. Use 'mangadir follow <url>' to add a series.")
			return
		}

		columns := []table.Column{
			{Title: "Alias", Width: 30},
			{Title: "Name", Width: 40},
			{Title: "Chapters", Width: 10},
			{Title: "Downloaded", Width: 12},
		}

		rows := []table.Row{}
		for _, s := range library {
			name := s.Name
			if !s.Following {
				name += " (unfollowed)"
			}
			rows = append(rows, table.Row{
				styles.Truncate(s.Alias(), 28),
				styles.Truncate(name, 38),
				fmt.Sprintf("%d", s.Total),
				fmt.Sprintf("%d", s.Downloaded),
			})
		}

		fmt.Printf("\n%s\n\n", styles.TitleStyle.Render(fmt.Sprintf("📚 Library (%d series)", len(library))))
		fmt.Println(styles.Table(columns, rows).View())
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters [alias]",
	Short: "List the chapters of a series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		series, chapters, err := controller.Chapters(args[0])
		cobra.CheckErr(err)

		if len(chapters) == 0 {
			fmt.Printf("📭 %s: zero chapters found\n", series.Name)
			return
		}

		columns := []table.Column{
			{Title: "Chapter", Width: 12},
			{Title: "Groups", Width: 40},
			{Title: "Status", Width: 12},
		}

		rows := []table.Row{}
		for _, c := range chapters {
			rows = append(rows, table.Row{
				c.Label,
				styles.Truncate(strings.Join(c.Groups, ", "), 38),
				c.Status.String(),
			})
		}

		fmt.Printf("\n%s\n\n", styles.TitleStyle.Render(fmt.Sprintf("📖 %s (%d chapters)", series.Name, len(chapters))))
		fmt.Println(styles.Table(columns, rows).View())
	},
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "List chapters waiting to be downloaded",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		chapters, err := controller.NewChapters()
		cobra.CheckErr(err)

		if len(chapters) == 0 {
			fmt.Println("📭 No new chapters.")
			return
		}
		printChapters(chapters)
	},
}

// printChapters prints chapters grouped by series, keeping their order.
func printChapters(chapters []*data.Chapter) {
	series := ""
	for _, c := range chapters {
		if c.SeriesName != series {
			series = c.SeriesName
			fmt.Printf("\n%s\n", styles.SeriesStyle.Render(series))
		}
		line := "  " + c.Label
		if len(c.Groups) > 0 {
			line += " " + styles.MutedStyle.Render("["+strings.Join(c.Groups, "][")+"]")
		}
		fmt.Printf("%s  %s\n", line, styles.Status(c.Status))
	}
}

func init() {
	listCmd.Flags().BoolP("all", "a", false, "include unfollowed series")
}
