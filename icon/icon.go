// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/offplay/offplay/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a UI symbol in the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Stop
	Loop
	Shuffle
	Autoplay
	Mute
	Volume
	Video
	Success
	Fail
	Question
	Notice
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var icons = map[Icon]*iconDef{
	Play:     {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "▶"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(￣ー￣)", squares: "⏸"},
	Stop:     {emoji: "⏹️", nerd: "", plain: "[]", kaomoji: "(・_・)", squares: "■"},
	Loop:     {emoji: "🔁", nerd: "", plain: "L", kaomoji: "(⌒▽⌒)", squares: "↻"},
	Shuffle:  {emoji: "🔀", nerd: "", plain: "S", kaomoji: "(〃▽〃)", squares: "⤨"},
	Autoplay: {emoji: "⏭️", nerd: "", plain: ">>", kaomoji: "(≧▽≦)", squares: "⏭"},
	Mute:     {emoji: "🔇", nerd: "", plain: "M", kaomoji: "(-_-)", squares: "▫"},
	Volume:   {emoji: "🔊", nerd: "", plain: "V", kaomoji: "(^o^)", squares: "▪"},
	Video:    {emoji: "🎞️", nerd: "", plain: "*", kaomoji: "(°ロ°)", squares: "▣"},
	Success:  {emoji: "🎉", nerd: "", plain: "+", kaomoji: "(ᵔᴥᵔ)", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "", plain: "x", kaomoji: "(╯°□°)╯", squares: "🟥"},
	Question: {emoji: "🤔", nerd: "", plain: "?", kaomoji: "(・・?)", squares: "🟨"},
	Notice:   {emoji: "📢", nerd: "", plain: "!", kaomoji: "(o_O)", squares: "🟦"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	if def, ok := icons[i]; ok {
		return def.Get()
	}
	return ""
}
