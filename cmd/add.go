package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

// addCmd stores video files in the library, replacing entries with the same name.
var addCmd = &cobra.Command{
	Use:     "add [files...]",
	Short:   "Add video files to the library",
	Long:    "Store video files in the local library. A file with the same name as a stored video replaces it, including its saved position.",
	Args:    cobra.MinimumNArgs(1),
	Example: "  offplay add ~/Videos/*.mp4",
	Run: func(cmd *cobra.Command, args []string) {
		lib, err := openLibrary()
		handleErr(err)
		defer lib.Close()

		var files []*intake.File
		for _, path := range args {
			f, err := intake.FromPath(path)
			if err != nil {
				log.Warn(err)
				fmt.Printf("%s %v\n", style.Fg(style.Current().Error)(icon.Get(icon.Fail)), err)
				continue
			}
			files = append(files, f)
		}

		accepted, rejected := intake.Partition(files)
		for _, err := range rejected {
			fmt.Printf("%s %s %v\n", style.Fg(style.Current().Warning)(icon.Get(icon.Notice)), constant.NoticeUnsupported, err)
		}

		var stored int
		for _, f := range accepted {
			erase := util.PrintErasable(fmt.Sprintf("%s Storing %s...", icon.Get(icon.Video), f.Name))
			err := lib.store.Put(&store.Record{Name: f.Name, Blob: f.Data, MIME: f.MIME})
			erase()

			if err != nil {
				log.Errorf("store %q: %v", f.Name, err)
				fmt.Printf("%s %s: %v\n", style.Fg(style.Current().Error)(icon.Get(icon.Fail)), f.Name, err)
				continue
			}

			stored++
			fmt.Printf("%s %s %s\n",
				style.Fg(style.Current().Success)(icon.Get(icon.Success)),
				f.Name,
				style.Faint(humanize.Bytes(uint64(len(f.Data)))),
			)
		}

		if stored > 0 {
			fmt.Printf("%s stored\n", util.Quantify(stored, "video", "videos"))
		}
	},
}
