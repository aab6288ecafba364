package cmd

import (
	"encoding/json"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type location struct {
	name    string
	resolve func() string
	flag    string
	short   mo.Option[string]
	hidden  bool
}

var locations = []location{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Library", where.Database, "library", mo.Some("d"), false},
	{"Preferences", where.Prefs, "prefs", mo.Some("p"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Data", where.Data, "data", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range locations {
		if short, ok := l.short.Get(); ok {
			whereCmd.Flags().BoolP(l.flag, short, false, "print only the "+l.name+" path")
		} else {
			whereCmd.Flags().Bool(l.flag, false, "print only the "+l.name+" path")
		}
		if l.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(l.flag))
		}
	}
	whereCmd.Flags().Bool("json", false, "print every path as JSON")

	whereCmd.MarkFlagsMutuallyExclusive(append(lo.Map(locations, func(l location, _ int) string {
		return l.flag
	}), "json")...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where offplay keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range locations {
			if lo.Must(cmd.Flags().GetBool(l.flag)) {
				cmd.Println(l.resolve())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := make(map[string]string, len(locations))
			for _, l := range locations {
				paths[l.flag] = l.resolve()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			handleErr(enc.Encode(paths))
			return
		}

		header := style.New().Bold(true).Foreground(style.Current().Accent).Render
		visible := lo.Reject(locations, func(l location, _ int) bool { return l.hidden })
		for i, l := range visible {
			path := l.resolve()
			cmd.Printf("%s %s %s\n", header(l.name), style.Warning("--"+l.flag), style.Faint(usage(path)))
			cmd.Println(path)

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}

// usage sums the size of every file under path.
func usage(path string) string {
	var total uint64
	err := afero.Walk(filesystem.API(), path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	if err != nil {
		return "missing"
	}
	return humanize.Bytes(total)
}
