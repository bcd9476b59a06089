package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var epubCmd = &cobra.Command{
	Use:   "epub [alias]",
	Short: "Generate EPUB from downloaded chapters",
	Long:  "Compile every downloaded chapter archive of a series into a single EPUB next to them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		fmt.Println("📚 Composing EPUB...")
		path, err := controller.ExportEPUB(args[0])
		if err != nil {
			cobra.CheckErr(fmt.Errorf("EPUB generation failed: %w", err))
		}
		fmt.Printf("📖 EPUB created: %s\n", path)
	},
}
