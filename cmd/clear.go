package cmd

import (
	"fmt"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/resource"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	clearCmd.Flags().BoolP("temp", "t", false, "Only remove playback files left in the temp directory")
}

// clearCmd deletes every stored video, or only leftover playback files with --temp.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored videos",
	Run: func(cmd *cobra.Command, args []string) {
		success := style.Fg(style.Current().Success)(icon.Get(icon.Success))

		if lo.Must(cmd.Flags().GetBool("temp")) {
			handleErr(resource.Sweep())
			fmt.Printf("%s temp files cleared\n", success)
			return
		}

		notifier := notifierFor(lo.Must(cmd.Flags().GetBool("yes")))
		ok, err := notifier.Confirm(constant.NoticeConfirmClear, constant.LabelDeleteAll, constant.LabelCancel)
		handleErr(err)
		if !ok {
			return
		}

		lib, err := openLibrary()
		handleErr(err)
		defer lib.Close()

		count := lib.playlist.Len()
		erase := util.PrintErasable(fmt.Sprintf("%s Clearing library...", icon.Get(icon.Video)))
		err = lib.store.Clear()
		erase()
		handleErr(err)

		fmt.Printf("%s %s deleted\n", success, util.Quantify(count, "video", "videos"))
	},
}
