// Package config registers every setting offplay reads, with its default,
// its environment variable and the values it accepts.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field describes one setting.
type Field struct {
	Key         string
	Value       any
	Description string

	// Min and Max bound numeric settings. Max of 0 leaves the range open above.
	Min, Max float64
	bounded  bool

	// Choices, when set, lists the accepted string values.
	Choices []string
}

// Pretty renders the field for "config info".
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable overriding this field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Offplay + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Accepts reports whether v is a valid value for the field.
func (f *Field) Accepts(v any) bool {
	if len(f.Choices) > 0 {
		return lo.Contains(f.Choices, fmt.Sprint(v))
	}
	if !f.bounded {
		return true
	}

	n, err := strconv.ParseFloat(fmt.Sprint(v), 64)
	if err != nil {
		return false
	}
	return n >= f.Min && (f.Max == 0 || n <= f.Max)
}

// Span describes the accepted values for display, empty when anything goes.
func (f *Field) Span() string {
	switch {
	case len(f.Choices) > 0:
		return strings.Join(f.Choices, ", ")
	case f.bounded && f.Max == 0:
		return fmt.Sprintf(">= %v", f.Min)
	case f.bounded:
		return fmt.Sprintf("%v..%v", f.Min, f.Max)
	}
	return ""
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Accepts     string `json:"accepts,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
		Accepts:     f.Span(),
	})
}

// TypeName names the Go type of the default value.
func (f *Field) TypeName() string {
	return reflect.TypeOf(f.Value).String()
}

type option func(*Field)

func within(min, max float64) option {
	return func(f *Field) {
		f.Min, f.Max, f.bounded = min, max, true
	}
}

func oneOf(choices ...string) option {
	return func(f *Field) { f.Choices = choices }
}

// Default maps every registered key to its field.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string, opts ...option) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}

	f := Field{Key: k, Value: v, Description: desc}
	for _, opt := range opts {
		opt(&f)
	}
	Default[k] = f
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.PlayerBinary, "mpv", "Path or name of the mpv executable used for playback")
	register(key.PlayerAutoplay, true, "Advance to the next video when the current one ends")
	register(key.PlayerLoop, false, "Restart the current video when it ends.\nOnly used until the loop toggle is saved in preferences")
	register(key.PlayerShuffle, false, "Pick a random video for next/previous")
	register(key.PlayerVolume, 0.8, "Initial volume from 0 to 1.\nOnly used until a volume is saved in preferences", within(0, 1))
	register(key.PlayerRate, 1.0, "Initial playback rate.\nOnly used until a rate is saved in preferences", within(0.5, 2))
	register(key.SkipShort, 5, "Seconds to skip with the arrow keys", within(1, 0))
	register(key.SkipLong, 10, "Seconds to skip with the rewind/forward commands", within(1, 0))
	register(key.RateStep, 0.25, "Playback rate change per step, bounded to 0.5..2", within(0.05, 1))
	register(key.VolumeStep, 0.05, "Volume change per step, bounded to 0..1", within(0.01, 1))
	register(key.SyncThrottleMs, 1000, "Minimum milliseconds between two immediate position commits", within(1, 0))
	register(key.SyncDebounceMs, 700, "Delay in milliseconds of the trailing position commit", within(0, 0))
	register(key.IntakePlayFirst, true, "Start playing the first accepted file after an upload")
	register(key.TUIItemSpacing, 0, "Spacing between playlist entries", within(0, 3))
	register(key.TUISearchPrompt, "> ", "Prompt shown in the playlist search field")
	register(key.TUIProgressWidth, 0, "Width of the progress bar.\n0 spans the whole window", within(0, 0))
	register(key.IconsVariant, "plain", "Icons variant.\nnerd requires a nerd font", oneOf("emoji", "kaomoji", "plain", "squares", "nerd"))
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Log verbosity, from least to most verbose", oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"))
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"accent": style.Accent,
	"label":  style.Secondary,
	"value":  func(k string) any { return viper.Get(k) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Success(b)
			}
			return style.Error(b)
		case string:
			return style.Warning(strconv.Quote(value))
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ label "Key:" }}     {{ accent .Key }}
{{ label "Env:" }}     {{ .Env }}
{{ label "Value:" }}   {{ hl (value .Key) }}
{{ label "Default:" }} {{ hl .Value }}
{{ label "Type:" }}    {{ .TypeName }}{{ with .Span }}
{{ label "Accepts:" }} {{ . }}{{ end }}`))
