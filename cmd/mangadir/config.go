package cmd

import (
	"fmt"
	"strings"

	"github.com/kerbaras/mangadir/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
	Long:  "Read and change settings. Known keys: " + strings.Join(config.Keys, ", "),
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		keys := config.Keys
		if len(args) == 1 {
			keys = args
		}
		for _, key := range keys {
			value, err := cfg.Get(key)
			cobra.CheckErr(err)
			if key == "madokami.password" && value != "" && len(args) == 0 {
				value = "********"
			}
			fmt.Printf("%s = %s\n", key, value)
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(cfg.Set(args[0], args[1]))
		cobra.CheckErr(cfg.Validate())
		cobra.CheckErr(cfg.Save())
		fmt.Printf("✅ %s saved to %s\n", args[0], cfg.Path())
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
