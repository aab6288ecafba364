package cmd

import (
	"github.com/offplay/offplay/mini"
	"github.com/offplay/offplay/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("mini", "m", false, "Use the prompt-driven interface")
}

var playCmd = &cobra.Command{
	Use:               "play [name]",
	Short:             "Play a stored video, resuming where it was left",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionVideoNames,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		lib, err := openLibrary()
		handleErr(err)
		_, err = lib.find(args[0])
		handleErr(lib.Close())
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("mini")) {
			handleErr(mini.Run(&mini.Options{Play: args[0]}))
			return
		}
		handleErr(tui.Run(&tui.Options{Play: args[0]}))
	},
}
