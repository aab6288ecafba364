package cmd

import (
	"os"

	"github.com/offplay/offplay/config"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "only show variables that are unset")
	envCmd.Flags().BoolP("describe", "d", false, "print the setting each variable overrides")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

type envVar struct {
	name, about string
}

// envVars lists the path overrides followed by one variable per config key.
func envVars() []envVar {
	vars := []envVar{
		{where.EnvConfigPath, "Directory holding offplay.toml and prefs.json"},
		{where.EnvDataPath, "Directory holding the video library"},
	}

	keys := lo.Keys(config.Default)
	slices.Sort(keys)
	for _, k := range keys {
		field := config.Default[k]
		vars = append(vars, envVar{field.Env(), field.Description})
	}
	return vars
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables offplay reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
		describe := lo.Must(cmd.Flags().GetBool("describe"))

		name := style.New().Bold(true).Foreground(style.Current().Accent).Render
		for _, v := range envVars() {
			value, present := os.LookupEnv(v.name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			if describe {
				cmd.Println(style.Faint(v.about))
			}

			cmd.Print(name(v.name), "=")
			if present {
				cmd.Println(style.Success(value))
			} else {
				cmd.Println(style.Error("unset"))
			}
		}
	},
}
