// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Defaults - these keys seed the transport before any user preference is persisted.
const (
	PlayerBinary   = "player.binary"
	PlayerAutoplay = "player.autoplay"
	PlayerLoop     = "player.loop"
	PlayerShuffle  = "player.shuffle"
	PlayerVolume   = "player.volume"
	PlayerRate     = "player.rate"
)

// Transport Steps - these keys define the granularity of relative seek, rate and volume commands.
const (
	SkipShort  = "skip.short"
	SkipLong   = "skip.long"
	RateStep   = "rate.step"
	VolumeStep = "volume.step"
)

// Metadata Synchronization - these keys bound the write volume of playback position commits.
const (
	SyncThrottleMs = "sync.throttle_ms"
	SyncDebounceMs = "sync.debounce_ms"
)

// Intake - these keys govern how uploaded files are handled.
const (
	IntakePlayFirst = "intake.play_first"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal Interface - these keys tune the layout of the interactive player.
const (
	TUIItemSpacing   = "tui.item_spacing"
	TUISearchPrompt  = "tui.search_prompt"
	TUIProgressWidth = "tui.progress_width"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
