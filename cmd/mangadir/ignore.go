package cmd

import (
	"fmt"

	"github.com/kerbaras/mangadir/pkg/styles"
	"github.com/spf13/cobra"
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore [alias] [chapter...]",
	Short: "Skip chapters when downloading",
	Long:  "Mark the named chapters of a series ignored, or every new chapter when none are named",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		changed, err := controller.Ignore(args[0], args[1:]...)
		cobra.CheckErr(err)
		fmt.Printf("🙈 Ignored %d chapters of %s\n", len(changed), styles.SeriesStyle.Render(args[0]))
	},
}

var unignoreCmd = &cobra.Command{
	Use:   "unignore [alias] [chapter...]",
	Short: "Mark ignored chapters new again",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		changed, err := controller.Unignore(args[0], args[1:]...)
		cobra.CheckErr(err)
		fmt.Printf("👀 Marked %d chapters of %s new\n", len(changed), styles.SeriesStyle.Render(args[0]))
	},
}
