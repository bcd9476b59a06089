package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [alias...]",
	Short: "Download new chapters",
	Long:  "Download every new chapter of the followed series, or only of the series named by alias",
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		downloaded, err := controller.DownloadNew(ctx, args...)
		if len(downloaded) == 0 && err == nil {
			fmt.Println("📭 Nothing to download.")
			return
		}
		fmt.Printf("✅ Downloaded %d chapters into %s\n", len(downloaded), controller.Layout().Root)
		cobra.CheckErr(err)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [url...]",
	Short: "Download chapters by url",
	Long: "Download the chapter at each url, or every chapter of a series url. The series does " +
		"not need to be followed.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		for _, url := range args {
			got, err := controller.Get(ctx, url)
			cobra.CheckErr(err)
			if len(got) == 0 {
				fmt.Printf("⚠️  %s: zero chapters found\n", url)
				continue
			}
			fmt.Printf("✅ %s: downloaded %d chapters\n", url, len(got))
		}
	},
}
