package cmd

import (
	"fmt"

	"github.com/kerbaras/mangadir/pkg/data"
	"github.com/kerbaras/mangadir/pkg/styles"
	"github.com/spf13/cobra"
)

var followCmd = &cobra.Command{
	Use:   "follow [url...]",
	Short: "Follow series and record their chapters",
	Long: "Fetch the listing of each series url and start following it. A chapter url follows its " +
		"series; a watchlist url follows every series it lists.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ignore, _ := cmd.Flags().GetBool("ignore")

		controller := newController()
		defer controller.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		failed := false
		for _, url := range args {
			fmt.Printf("🔍 Fetching %s\n", url)
			followed, err := controller.Follow(ctx, url, ignore)
			for _, series := range followed {
				printFollowed(series, ignore)
			}
			if err != nil {
				fmt.Println(styles.ErrorStyle.Render("❌ " + err.Error()))
				failed = true
			}
		}
		if failed {
			cobra.CheckErr(fmt.Errorf("some series could not be followed"))
		}
	},
}

func printFollowed(series *data.Series, ignore bool) {
	name := styles.SeriesStyle.Render(series.Name)
	if len(series.Chapters) == 0 {
		fmt.Printf("⚠️  Following %s, zero chapters found\n", name)
		return
	}
	fmt.Printf("✅ Following %s (%s), %d chapters listed\n",
		name, styles.MutedStyle.Render(series.Alias()), len(series.Chapters))
	if ignore {
		fmt.Println(styles.MutedStyle.Render("   chapters recorded as ignored"))
	}
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow [alias]",
	Short: "Stop following a series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		series, err := controller.Unfollow(args[0])
		cobra.CheckErr(err)
		fmt.Printf("👋 No longer following %s\n", styles.SeriesStyle.Render(series.Name))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check followed series for new chapters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		fmt.Println("🔄 Updating followed series...")
		created, err := controller.Update(ctx)
		printChapters(created)
		if len(created) == 0 {
			fmt.Println("📭 No new chapters.")
		} else {
			fmt.Printf("\n✨ %d new chapters\n", len(created))
		}
		cobra.CheckErr(err)
	},
}

func init() {
	followCmd.Flags().BoolP("ignore", "i", false, "mark every chapter found as ignored")
}
