package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/kerbaras/mangadir/pkg/config"
	"github.com/kerbaras/mangadir/pkg/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mangadir",
	Short: "Follow manga series and archive their chapters",
	Long: "Follow series on directory-listing manga sites, keep track of their chapters " +
		"and download new ones into a tidy archive tree",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().
			Timestamp().
			Logger()

		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(unignoreCmd)
	rootCmd.AddCommand(epubCmd)
	rootCmd.AddCommand(configCmd)
}

// newController opens the library described by the loaded config.
func newController() *services.MangaController {
	controller, err := services.NewMangaController(cfg, services.WithProgress(newProgressBar))
	cobra.CheckErr(err)
	return controller
}

// commandContext is cancelled on interrupt so partial downloads are cleaned up.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
