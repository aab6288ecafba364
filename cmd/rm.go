package cmd

import (
	"fmt"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var rmCmd = &cobra.Command{
	Use:               "rm [names...]",
	Short:             "Delete stored videos",
	Aliases:           []string{"remove"},
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completionVideoNames,
	Run: func(cmd *cobra.Command, args []string) {
		lib, err := openLibrary()
		handleErr(err)
		defer lib.Close()

		notifier := notifierFor(lo.Must(cmd.Flags().GetBool("yes")))

		for _, name := range args {
			if _, err := lib.find(name); err != nil {
				fmt.Printf("%s %v\n", style.Fg(style.Current().Warning)(icon.Get(icon.Notice)), err)
				continue
			}

			ok, err := notifier.Confirm(fmt.Sprintf(constant.NoticeConfirmDelete, name), constant.LabelConfirm, constant.LabelCancel)
			handleErr(err)
			if !ok {
				continue
			}

			handleErr(lib.store.Delete(name))
			fmt.Printf("%s deleted %s\n", style.Fg(style.Current().Success)(icon.Get(icon.Success)), name)
		}
	},
}
