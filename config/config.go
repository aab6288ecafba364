package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads offplay.toml from the config directory on top of the
// registered defaults and environment overrides, then validates the result.
// A missing config file is not an error.
func Setup() error {
	viper.SetConfigName(constant.Offplay)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Offplay)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return Validate()
}

// Validate reports every setting whose current value the field does not accept.
func Validate() error {
	keys := lo.Keys(Default)
	slices.Sort(keys)

	var errs []error
	for _, k := range keys {
		field := Default[k]
		if v := viper.Get(k); !field.Accepts(v) {
			errs = append(errs, fmt.Errorf("%s: %v is outside %s", k, v, field.Span()))
		}
	}
	return errors.Join(errs...)
}
