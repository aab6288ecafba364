package cmd

import (
	"github.com/offplay/offplay/mini"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(miniCmd)
}

// miniCmd launches the prompt-driven interface.
var miniCmd = &cobra.Command{
	Use:   "mini",
	Short: "Launch the prompt-driven player",
	Long:  `Browse and play the library through simple menus instead of the full-screen interface.`,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()
		handleErr(mini.Run(&mini.Options{}))
	},
}
