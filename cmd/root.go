// Package cmd implements the command-line interface for offplay.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/resource"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("player", "", "Path or name of the mpv executable")
	lo.Must0(viper.BindPFlag(key.PlayerBinary, rootCmd.PersistentFlags().Lookup("player")))

	rootCmd.PersistentFlags().Bool("autoplay", true, "Advance to the next video when the current one ends")
	lo.Must0(viper.BindPFlag(key.PlayerAutoplay, rootCmd.PersistentFlags().Lookup("autoplay")))

	rootCmd.PersistentFlags().Bool("shuffle", false, "Pick a random video for next/previous")
	lo.Must0(viper.BindPFlag(key.PlayerShuffle, rootCmd.PersistentFlags().Lookup("shuffle")))

	rootCmd.Flags().StringP("play", "p", "", "Load a stored video on start")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("play", completionVideoNames))

	// Remove handles left behind by a previous run that did not exit cleanly.
	go func() {
		if err := resource.Sweep(); err != nil {
			log.Warn(err)
		}
	}()
}

// rootCmd defines the entry point for the offplay application.
var rootCmd = &cobra.Command{
	Use:   constant.Offplay,
	Short: "An offline video library with resumable playback",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(style.Current().Accent).Render("    - An offline video library with resumable playback"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		options := tui.Options{
			Play: lo.Must(cmd.Flags().GetString("play")),
		}
		handleErr(tui.Run(&options))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
