package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/invopop/jsonschema"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	listCmd.Flags().Bool("json-schema", false, "Print the JSON schema of the --json output")
	listCmd.MarkFlagsMutuallyExclusive("json", "json-schema")
	listCmd.SetOut(os.Stdout)
}

// listOutput is the --json document.
type listOutput struct {
	Videos []*store.Record `json:"videos" jsonschema:"description=Stored videos, newest first"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored videos, newest first",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("json-schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&listOutput{})))
			return
		}

		lib, err := openLibrary()
		handleErr(err)
		defer lib.Close()

		records, err := lib.store.List()
		handleErr(err)

		byName := lo.KeyBy(records, func(r *store.Record) string { return r.Name })
		ordered := lo.FilterMap(lib.playlist.Names(), func(name string, _ int) (*store.Record, bool) {
			r, ok := byName[name]
			return r, ok
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(listOutput{Videos: ordered}))
			return
		}

		if len(ordered) == 0 {
			cmd.Println(style.Faint("No videos stored. Add some with `offplay add`."))
			return
		}

		for _, r := range ordered {
			cmd.Println(formatRecord(r))
		}
	},
}

func formatRecord(r *store.Record) string {
	p := style.Current()

	var state string
	if r.Playing() {
		state = style.Fg(p.Accent)(icon.Get(icon.Play))
	} else {
		state = style.Fg(p.Faint)(icon.Get(icon.Pause))
	}

	parts := []string{
		state,
		style.Fg(p.Text)(r.Name),
		style.Fg(p.Subtext)(humanize.Bytes(uint64(max(r.Size, 0)))),
	}
	if r.LastPosition > 0 {
		parts = append(parts, style.Fg(p.Warning)("at "+util.FormatTime(r.LastPosition)))
	}
	if r.Created > 0 {
		parts = append(parts, style.Faint(fmt.Sprintf("added %s", humanize.Time(time.UnixMilli(r.Created)))))
	}
	return strings.Join(parts, "  ")
}
