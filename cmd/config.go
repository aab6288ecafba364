package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offplay/offplay/config"
	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

func errUnknownKey(name string) error {
	return fmt.Errorf("unknown key %s, did you mean %s?", style.Error(name), style.Warning(config.Closest(name)))
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func configFile() string {
	return filepath.Join(where.Config(), constant.Offplay+".toml")
}

// keyArg takes the key from the first argument or --key, and checks it is registered.
func keyArg(cmd *cobra.Command, args []string) config.Field {
	name := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		handleErr(errors.New("key is required as an argument or --key flag"))
	}

	field, ok := config.Default[name]
	if !ok {
		handleErr(errUnknownKey(name))
	}
	return field
}

// persist writes the in-memory settings, creating the config file if needed.
func persist() {
	if err := config.Validate(); err != nil {
		handleErr(err)
	}

	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = viper.SafeWriteConfigAs(configFile())
	}
	handleErr(err)
}

func done(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Success(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", nil, "keys to describe, all when omitted")
	configInfoCmd.Flags().BoolP("json", "j", false, "print as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	configInfoCmd.SetOut(os.Stdout)

	for _, c := range []*cobra.Command{configSetCmd, configGetCmd, configResetCmd} {
		configCmd.AddCommand(c)
		c.Flags().StringP("key", "k", "", "setting key")
		_ = c.RegisterFlagCompletionFunc("key", completionConfigKeys)
	}
	configSetCmd.Flags().StringSliceP("value", "v", nil, "new value")
	configResetCmd.Flags().BoolP("all", "a", false, "reset every setting")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")

	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configDeleteCmd)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe settings with their current and default values",
	Run: func(cmd *cobra.Command, args []string) {
		names := lo.Must(cmd.Flags().GetStringSlice("key"))
		if len(names) == 0 {
			names = lo.Keys(config.Default)
			slices.Sort(names)
		}

		fields := lo.Map(names, func(name string, _ int) *config.Field {
			field, ok := config.Default[name]
			if !ok {
				handleErr(errUnknownKey(name))
			}
			return &field
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			cmd.Print(field.Pretty())
			if i < len(fields)-1 {
				cmd.Print("\n\n")
			}
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value...]",
	Short:             "Change a setting and save it to the config file",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := keyArg(cmd, args)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}
		if len(raw) == 0 {
			handleErr(errors.New("value is required as an argument or --value flag"))
		}

		v, err := field.Parse(raw)
		handleErr(err)

		viper.Set(field.Key, v)
		persist()
		done("set %s to %s", style.Accent(field.Key), style.Warning(fmt.Sprint(v)))
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a setting",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(viper.Get(keyArg(cmd, args).Key))
	},
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key]",
	Short:             "Restore one setting, or all of them, to the default",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for name, field := range config.Default {
				viper.Set(name, field.Value)
			}
			persist()
			done("reset all settings")
			return
		}

		field := keyArg(cmd, args)
		viper.Set(field.Key, field.Value)
		persist()
		done("reset %s to %s", style.Accent(field.Key), style.Warning(fmt.Sprint(field.Value)))
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile()
		if lo.Must(cmd.Flags().GetBool("force")) {
			if exists := lo.Must(filesystem.API().Exists(path)); exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfigAs(path))
		done("wrote config to %s", path)
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		done("deleted %s", configFile())
	},
}
